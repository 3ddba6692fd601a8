//go:build integration

package sequence

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thouesa/thouesa-backend/pkg/db/dbtest"
)

func TestRepositoryConcurrentUpsertOnPostgres(t *testing.T) {
	conn := dbtest.OpenPostgres(t)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(16)

	repo := NewRepository(conn)

	const workers = 50
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		values = map[int64]int{}
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			value, err := repo.NextValue(context.Background(), "20260115", "JO_TO_DZ")
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			values[value]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, values, workers)
	for v := int64(1); v <= workers; v++ {
		assert.Equal(t, 1, values[v], "value %d", v)
	}
}
