package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/nirmaanhq/siteops-api/internal/domain"
)

// UserContext holds authenticated user information
type UserContext struct {
	UserID uuid.UUID
	Name   string
	Email  string
	Role   domain.Role
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// MustFromContext extracts user context or panics
func MustFromContext(ctx context.Context) *UserContext {
	user, ok := FromContext(ctx)
	if !ok {
		panic("user context not found in context")
	}
	return user
}

// HasRole checks if user has a specific role
func (u *UserContext) HasRole(role domain.Role) bool {
	return u.Role == role
}

// HasAnyRole checks if user has any of the specified roles
func (u *UserContext) HasAnyRole(roles ...domain.Role) bool {
	for _, role := range roles {
		if u.Role == role {
			return true
		}
	}
	return false
}

// IsAdmin checks if the user holds admin or owner privileges
func (u *UserContext) IsAdmin() bool {
	return u.HasAnyRole(domain.RoleAdmin, domain.RoleOwner)
}

// CanApprove checks if the user may review DPRs and material requests
func (u *UserContext) CanApprove() bool {
	return u.HasAnyRole(domain.RoleSupervisor, domain.RoleManager, domain.RoleAdmin, domain.RoleOwner)
}

// CanManageBilling checks if the user may create and issue invoices
func (u *UserContext) CanManageBilling() bool {
	return u.HasAnyRole(domain.RoleManager, domain.RoleAdmin, domain.RoleOwner)
}

// NameInitials returns initials from the name (e.g., "Asha Rao" -> "AR")
func (u *UserContext) NameInitials() string {
	if u.Name == "" {
		return ""
	}
	parts := strings.Fields(u.Name)
	initials := ""
	for _, part := range parts {
		if len(part) > 0 {
			initials += strings.ToUpper(string(part[0]))
		}
	}
	return initials
}
