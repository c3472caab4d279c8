package auth

import (
	"context"

	"github.com/gin-gonic/gin"
)

type Role string

const (
	RoleGuest Role = "guest"
	RoleOwner Role = "owner"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleGuest, RoleOwner, RoleAdmin:
		return true
	}
	return false
}

// Principal is the authenticated caller of one request.
type Principal struct {
	UserID int  `json:"user_id"`
	Role   Role `json:"role"`
}

func (p Principal) IsZero() bool {
	return p.UserID == 0
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	if !ok || p.IsZero() {
		return Principal{}, false
	}
	return p, true
}

// GetPrincipal reads the principal placed on the request by AuthMiddleware.
func GetPrincipal(c *gin.Context) (Principal, bool) {
	return PrincipalFrom(c.Request.Context())
}

func GetUserID(c *gin.Context) (int, bool) {
	p, ok := GetPrincipal(c)
	if !ok {
		return 0, false
	}
	return p.UserID, true
}
