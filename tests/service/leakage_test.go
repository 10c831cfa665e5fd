package service_test

import (
	"testing"

	"github.com/nirmaanhq/siteops-api/internal/domain"
	"github.com/nirmaanhq/siteops-api/internal/service"
	"github.com/stretchr/testify/assert"
)

func TestDetectLeakage_AboveThreshold(t *testing.T) {
	usages := []domain.DPRMaterialUsage{
		{ItemName: "Cement", QuantityUsed: 111},
	}
	requests := []domain.MaterialRequest{
		{ItemName: "Cement", Quantity: 100},
	}

	alert, excess := service.DetectLeakage(usages, requests)

	assert.True(t, alert)
	assert.Equal(t, "11% above request", excess)
}

func TestDetectLeakage_WithinThreshold(t *testing.T) {
	// 109 of 100 requested is under the 110% threshold
	usages := []domain.DPRMaterialUsage{
		{ItemName: "Cement", QuantityUsed: 109},
	}
	requests := []domain.MaterialRequest{
		{ItemName: "Cement", Quantity: 100},
	}

	alert, excess := service.DetectLeakage(usages, requests)

	assert.False(t, alert)
	assert.Empty(t, excess)
}

func TestDetectLeakage_ExactThresholdDoesNotAlert(t *testing.T) {
	usages := []domain.DPRMaterialUsage{
		{ItemName: "Cement", QuantityUsed: 110},
	}
	requests := []domain.MaterialRequest{
		{ItemName: "Cement", Quantity: 100},
	}

	alert, _ := service.DetectLeakage(usages, requests)

	assert.False(t, alert)
}

func TestDetectLeakage_FirstMatchingRequestWins(t *testing.T) {
	// Two requests share an item name; only the first is consulted, so
	// usage within its quantity raises no alert even though the second
	// request is smaller.
	usages := []domain.DPRMaterialUsage{
		{ItemName: "Cement", QuantityUsed: 95},
	}
	requests := []domain.MaterialRequest{
		{ItemName: "Cement", Quantity: 100},
		{ItemName: "Cement", Quantity: 10},
	}

	alert, _ := service.DetectLeakage(usages, requests)

	assert.False(t, alert)
}

func TestDetectLeakage_LastExceedingEntryWins(t *testing.T) {
	usages := []domain.DPRMaterialUsage{
		{ItemName: "Cement", QuantityUsed: 150},
		{ItemName: "Steel", QuantityUsed: 125},
	}
	requests := []domain.MaterialRequest{
		{ItemName: "Cement", Quantity: 100},
		{ItemName: "Steel", Quantity: 100},
	}

	alert, excess := service.DetectLeakage(usages, requests)

	assert.True(t, alert)
	assert.Equal(t, "25% above request", excess)
}

func TestDetectLeakage_AlertStaysRaised(t *testing.T) {
	// A later in-bounds entry must not clear an alert raised earlier
	usages := []domain.DPRMaterialUsage{
		{ItemName: "Cement", QuantityUsed: 150},
		{ItemName: "Steel", QuantityUsed: 50},
	}
	requests := []domain.MaterialRequest{
		{ItemName: "Cement", Quantity: 100},
		{ItemName: "Steel", Quantity: 100},
	}

	alert, excess := service.DetectLeakage(usages, requests)

	assert.True(t, alert)
	assert.Equal(t, "50% above request", excess)
}

func TestDetectLeakage_ZeroQuantityRequestIgnored(t *testing.T) {
	usages := []domain.DPRMaterialUsage{
		{ItemName: "Cement", QuantityUsed: 500},
	}
	requests := []domain.MaterialRequest{
		{ItemName: "Cement", Quantity: 0},
	}

	alert, excess := service.DetectLeakage(usages, requests)

	assert.False(t, alert)
	assert.Empty(t, excess)
}

func TestDetectLeakage_UnknownItemIgnored(t *testing.T) {
	usages := []domain.DPRMaterialUsage{
		{ItemName: "Bricks", QuantityUsed: 5000},
	}
	requests := []domain.MaterialRequest{
		{ItemName: "Cement", Quantity: 100},
	}

	alert, _ := service.DetectLeakage(usages, requests)

	assert.False(t, alert)
}

func TestDetectLeakage_RoundsPercentage(t *testing.T) {
	// 115.5 of 100 requested is 15.5% over, rounded to 16
	usages := []domain.DPRMaterialUsage{
		{ItemName: "Cement", QuantityUsed: 115.5},
	}
	requests := []domain.MaterialRequest{
		{ItemName: "Cement", Quantity: 100},
	}

	alert, excess := service.DetectLeakage(usages, requests)

	assert.True(t, alert)
	assert.Equal(t, "16% above request", excess)
}
