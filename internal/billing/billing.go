// Package billing implements GST computation for construction invoicing.
// All amounts are float64 in base currency units; rounding is a display
// concern and never happens here.
package billing

import (
	"math"
	"regexp"

	"github.com/nirmaanhq/siteops-api/internal/domain"
)

// GSTSlabs are the GST rates applicable to construction supplies
var GSTSlabs = []float64{5, 12, 18, 28}

// HSNConstruction maps common construction HSN/SAC codes to descriptions
var HSNConstruction = map[string]string{
	"9954": "Works contract services",
	"2523": "Portland cement",
	"7214": "Steel bars and rods",
	"9985": "Support services (labour supply)",
}

// GSTIN format: 2-digit state code, 5-letter PAN prefix, 4 digits, 1 letter,
// 1 entity code, literal Z, 1 check character.
var gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)

// LineAmounts holds the computed tax breakdown of a single invoice line
type LineAmounts struct {
	TaxableAmount float64
	CGST          float64
	SGST          float64
	IGST          float64
	Total         float64
}

// Summary holds the aggregate of an invoice after retention and advance
type Summary struct {
	TotalTaxable      float64
	TotalCGST         float64
	TotalSGST         float64
	TotalIGST         float64
	GrossTotal        float64
	RetentionAmount   float64
	AdvanceAdjustment float64
	TotalAmount       float64
}

// CalculateLineItem computes the tax split for one line. Intra-state supply
// splits the tax evenly between CGST and SGST; inter-state supply levies
// IGST for the full amount. Inputs are not validated; negative or zero
// values flow through arithmetically.
func CalculateLineItem(quantity, rate, gstRate float64, interState bool) LineAmounts {
	taxable := quantity * rate
	taxTotal := taxable * gstRate / 100

	a := LineAmounts{
		TaxableAmount: taxable,
		Total:         taxable + taxTotal,
	}
	if interState {
		a.IGST = taxTotal
	} else {
		a.CGST = taxTotal / 2
		a.SGST = taxTotal / 2
	}
	return a
}

// SummarizeInvoice aggregates line items and applies retention and advance
// adjustment. The net payable may be negative; it is not clamped.
func SummarizeInvoice(items []domain.InvoiceLineItem, retentionPercent, advanceAdjustment float64) Summary {
	s := Summary{AdvanceAdjustment: advanceAdjustment}
	for _, item := range items {
		s.TotalTaxable += item.TaxableAmount
		s.TotalCGST += item.CGST
		s.TotalSGST += item.SGST
		s.TotalIGST += item.IGST
	}
	s.GrossTotal = s.TotalTaxable + s.TotalCGST + s.TotalSGST + s.TotalIGST
	s.RetentionAmount = s.GrossTotal * retentionPercent / 100
	s.TotalAmount = s.GrossTotal - s.RetentionAmount - advanceAdjustment
	return s
}

// IsInterState reports whether supply crosses state lines, judged purely by
// the registered state codes of the two parties.
func IsInterState(supplierStateCode, recipientStateCode string) bool {
	return supplierStateCode != recipientStateCode
}

// ValidateGSTIN checks a GSTIN against the published format. It performs a
// structural check only, not a checksum verification.
func ValidateGSTIN(gstin string) bool {
	return gstinPattern.MatchString(gstin)
}

// IsValidGSTRate reports whether the rate is one of the recognised slabs
func IsValidGSTRate(rate float64) bool {
	for _, slab := range GSTSlabs {
		if rate == slab {
			return true
		}
	}
	return false
}

// RoundDisplay rounds an amount to two decimals for presentation
func RoundDisplay(amount float64) float64 {
	return math.Round(amount*100) / 100
}
