package auth_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/nirmaanhq/siteops-api/internal/auth"
	"github.com/nirmaanhq/siteops-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userWithRole(role domain.Role) *auth.UserContext {
	return &auth.UserContext{
		UserID: uuid.New(),
		Name:   "Asha Rao",
		Email:  "asha@example.com",
		Role:   role,
	}
}

func TestUserContext_RoundTrip(t *testing.T) {
	user := userWithRole(domain.RoleManager)
	ctx := auth.WithUserContext(context.Background(), user)

	got, ok := auth.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, user, got)

	_, ok = auth.FromContext(context.Background())
	assert.False(t, ok)
}

func TestUserContext_MustFromContextPanics(t *testing.T) {
	assert.Panics(t, func() {
		auth.MustFromContext(context.Background())
	})
}

func TestUserContext_HasAnyRole(t *testing.T) {
	user := userWithRole(domain.RoleSupervisor)

	assert.True(t, user.HasAnyRole(domain.RoleSupervisor, domain.RoleManager))
	assert.False(t, user.HasAnyRole(domain.RoleAdmin, domain.RoleOwner))
	assert.False(t, user.HasAnyRole())
}

func TestUserContext_IsAdmin(t *testing.T) {
	assert.True(t, userWithRole(domain.RoleAdmin).IsAdmin())
	assert.True(t, userWithRole(domain.RoleOwner).IsAdmin())
	assert.False(t, userWithRole(domain.RoleManager).IsAdmin())
	assert.False(t, userWithRole(domain.RoleWorker).IsAdmin())
}

func TestUserContext_CanApprove(t *testing.T) {
	assert.False(t, userWithRole(domain.RoleWorker).CanApprove())
	assert.True(t, userWithRole(domain.RoleSupervisor).CanApprove())
	assert.True(t, userWithRole(domain.RoleManager).CanApprove())
	assert.True(t, userWithRole(domain.RoleOwner).CanApprove())
}

func TestUserContext_CanManageBilling(t *testing.T) {
	assert.False(t, userWithRole(domain.RoleWorker).CanManageBilling())
	assert.False(t, userWithRole(domain.RoleSupervisor).CanManageBilling())
	assert.True(t, userWithRole(domain.RoleManager).CanManageBilling())
	assert.True(t, userWithRole(domain.RoleAdmin).CanManageBilling())
}

func TestUserContext_NameInitials(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Asha Rao", "AR"},
		{"ravi", "R"},
		{"Anil Kumar Gupta", "AKG"},
		{"", ""},
	}

	for _, tt := range tests {
		user := &auth.UserContext{Name: tt.name}
		assert.Equal(t, tt.want, user.NameInitials())
	}
}
