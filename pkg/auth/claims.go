package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/thouesa/thouesa-backend/pkg/enums"
)

// AccessTokenPayload is what the caller supplies when minting.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Role   enums.UserRole
	JTI    string
}

// AccessTokenClaims is the JWT body. user_id duplicates sub as a typed UUID.
type AccessTokenClaims struct {
	UserID uuid.UUID      `json:"user_id"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Validate implements jwt.ClaimsValidator; the parser calls it after the
// registered claims pass.
func (c AccessTokenClaims) Validate() error {
	if c.UserID == uuid.Nil {
		return ErrMissingUserID
	}
	if !c.Role.IsValid() {
		return fmt.Errorf("invalid user role %q", c.Role)
	}
	return nil
}

func (c AccessTokenClaims) IsAdmin() bool {
	return c.Role == enums.UserRoleAdmin
}
