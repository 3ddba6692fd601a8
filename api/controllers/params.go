package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/thouesa/thouesa-backend/api/middleware"
	"github.com/thouesa/thouesa-backend/api/validators"
	"github.com/thouesa/thouesa-backend/internal/orders"
	"github.com/thouesa/thouesa-backend/pkg/enums"
	pkgerrors "github.com/thouesa/thouesa-backend/pkg/errors"
	"github.com/thouesa/thouesa-backend/pkg/pagination"
)

func actorFromRequest(r *http.Request) (orders.Actor, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return orders.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return orders.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user identity")
	}
	role := middleware.RoleFromContext(r.Context())
	if !role.IsValid() {
		return orders.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "role missing")
	}
	return orders.Actor{UserID: userID, Role: role}, nil
}

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, name+" is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name).
			WithDetails(map[string]any{"field": name})
	}
	return id, nil
}

func parsePagination(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}

func parseStatusQuery(r *http.Request) (*enums.OrderStatus, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("status"))
	if raw == "" {
		return nil, nil
	}
	status, err := enums.ParseOrderStatus(strings.ToUpper(raw))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").
			WithDetails(map[string]any{"field": "status"})
	}
	return &status, nil
}

func parseDirectionQuery(r *http.Request) (*enums.Direction, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("direction"))
	if raw == "" {
		return nil, nil
	}
	direction, err := enums.ParseDirection(strings.ToUpper(raw))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid direction").
			WithDetails(map[string]any{"field": "direction"})
	}
	return &direction, nil
}

// parseDateQuery accepts RFC 3339 timestamps or plain dates. A plain end date
// covers the whole day.
func parseDateQuery(r *http.Request, key string, endOfDay bool) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		ts = ts.UTC()
		return &ts, nil
	}
	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid date").
			WithDetails(map[string]any{"field": key})
	}
	if endOfDay {
		day = day.Add(24*time.Hour - time.Nanosecond)
	}
	return &day, nil
}
