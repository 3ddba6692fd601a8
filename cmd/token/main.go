package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/thouesa/thouesa-backend/pkg/auth"
	"github.com/thouesa/thouesa-backend/pkg/config"
	"github.com/thouesa/thouesa-backend/pkg/enums"
	"github.com/thouesa/thouesa-backend/pkg/logger"
)

// token prints a signed access token for operators and local testing.
func main() {
	userFlag := flag.String("user", "", "user id (uuid); a random id is used when empty")
	roleFlag := flag.String("role", string(enums.UserRoleCustomer), "CUSTOMER|ADMIN")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "token"})
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	token, err := mint(cfg.JWT, *userFlag, *roleFlag, time.Now())
	if err != nil {
		logg.Error(context.Background(), "failed to mint token", err)
		os.Exit(1)
	}
	fmt.Println(token)
}

func mint(cfg config.JWTConfig, rawUser, rawRole string, now time.Time) (string, error) {
	role, err := enums.ParseUserRole(rawRole)
	if err != nil {
		return "", err
	}
	userID := uuid.New()
	if rawUser != "" {
		if userID, err = uuid.Parse(rawUser); err != nil {
			return "", fmt.Errorf("invalid -user: %w", err)
		}
	}
	return auth.MintAccessToken(cfg, now, auth.AccessTokenPayload{UserID: userID, Role: role})
}
