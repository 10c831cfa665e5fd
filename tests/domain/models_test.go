package domain_test

import (
	"testing"
	"time"

	"github.com/nirmaanhq/siteops-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole_IsValid(t *testing.T) {
	for _, role := range []domain.Role{
		domain.RoleWorker, domain.RoleSupervisor, domain.RoleManager,
		domain.RoleAdmin, domain.RoleOwner,
	} {
		assert.True(t, role.IsValid(), string(role))
	}
	assert.False(t, domain.Role("SUPERUSER").IsValid())
	assert.False(t, domain.Role("worker").IsValid())
	assert.False(t, domain.Role("").IsValid())
}

func TestTaskStatus_IsValid(t *testing.T) {
	for _, status := range []domain.TaskStatus{
		domain.TaskStatusPending, domain.TaskStatusInProgress,
		domain.TaskStatusPendingApproval, domain.TaskStatusCompleted,
		domain.TaskStatusRejected,
	} {
		assert.True(t, status.IsValid(), string(status))
	}
	assert.False(t, domain.TaskStatus("DONE").IsValid())
}

func TestMaterialStatus_IsValid(t *testing.T) {
	for _, status := range []domain.MaterialStatus{
		domain.MaterialStatusRequested, domain.MaterialStatusApproved,
		domain.MaterialStatusRejected, domain.MaterialStatusDelivered,
	} {
		assert.True(t, status.IsValid(), string(status))
	}
	assert.False(t, domain.MaterialStatus("ORDERED").IsValid())
}

func TestApprovalStatus_IsValid(t *testing.T) {
	assert.True(t, domain.ApprovalStatusPending.IsValid())
	assert.True(t, domain.ApprovalStatusApproved.IsValid())
	assert.True(t, domain.ApprovalStatusRejected.IsValid())
	assert.False(t, domain.ApprovalStatus("PENDING").IsValid())
}

func TestInvoiceStatus_IsValid(t *testing.T) {
	assert.True(t, domain.InvoiceStatusDraft.IsValid())
	assert.True(t, domain.InvoiceStatusIssued.IsValid())
	assert.True(t, domain.InvoiceStatusPaid.IsValid())
	assert.False(t, domain.InvoiceStatus("Cancelled").IsValid())
}

func TestPartyType_IsValid(t *testing.T) {
	assert.True(t, domain.PartyTypeClient.IsValid())
	assert.True(t, domain.PartyTypeContractor.IsValid())
	assert.False(t, domain.PartyType("Vendor").IsValid())
}

func TestParseDate(t *testing.T) {
	parsed, err := domain.ParseDate("2026-08-14")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC), parsed)

	_, err = domain.ParseDate("14-08-2026")
	assert.Error(t, err)
	_, err = domain.ParseDate("2026-13-40")
	assert.Error(t, err)
	_, err = domain.ParseDate("")
	assert.Error(t, err)
}
