package domain

import (
	"time"

	"github.com/google/uuid"
)

// CreateProjectRequest is the payload for creating a project
type CreateProjectRequest struct {
	Name             string   `json:"name" validate:"required,min=2,max=200"`
	Location         string   `json:"location" validate:"max=200"`
	Budget           float64  `json:"budget" validate:"gte=0"`
	StartDate        string   `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	StateCode        string   `json:"stateCode" validate:"required,len=2,numeric"`
	Milestones       []string `json:"milestones" validate:"dive,max=200"`
	RetentionPercent float64  `json:"retentionPercent" validate:"gte=0,lte=100"`
	GSTRequired      *bool    `json:"gstRequirement"`
}

// UpdateProjectRequest is the payload for updating a project
type UpdateProjectRequest struct {
	Name             *string  `json:"name" validate:"omitempty,min=2,max=200"`
	Location         *string  `json:"location" validate:"omitempty,max=200"`
	Status           *string  `json:"status" validate:"omitempty,oneof='Active' 'On Hold' 'Completed'"`
	Budget           *float64 `json:"budget" validate:"omitempty,gte=0"`
	Milestones       []string `json:"milestones" validate:"omitempty,dive,max=200"`
	RetentionPercent *float64 `json:"retentionPercent" validate:"omitempty,gte=0,lte=100"`
	GSTRequired      *bool    `json:"gstRequirement"`
}

// CreateTaskRequest is the payload for creating a task
type CreateTaskRequest struct {
	ProjectID   uuid.UUID `json:"projectId" validate:"required"`
	Title       string    `json:"title" validate:"required,min=2,max=200"`
	Description string    `json:"description" validate:"max=2000"`
	AssignedTo  string    `json:"assignedTo" validate:"max=200"`
	DueDate     string    `json:"dueDate" validate:"required,datetime=2006-01-02"`
}

// UpdateTaskRequest is the payload for updating task details
type UpdateTaskRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=2,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	AssignedTo  *string `json:"assignedTo" validate:"omitempty,max=200"`
	DueDate     *string `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	DelayReason *string `json:"delayReason" validate:"omitempty,max=500"`
}

// TaskDTO is a task enriched with the derived delay projection
type TaskDTO struct {
	Task
	IsDelayed        bool   `json:"isDelayed"`
	DelayReasonShown string `json:"delayReason,omitempty"`
}

// CreateMaterialRequestRequest is the payload for raising a material request
type CreateMaterialRequestRequest struct {
	ProjectID     uuid.UUID `json:"projectId" validate:"required"`
	ItemName      string    `json:"itemName" validate:"required,min=2,max=200"`
	Quantity      float64   `json:"quantity" validate:"required,gt=0"`
	Unit          string    `json:"unit" validate:"max=50"`
	EstimatedCost float64   `json:"estimatedCost" validate:"gte=0"`
}

// UpdateMaterialUsageRequest records consumed quantity against a request
type UpdateMaterialUsageRequest struct {
	UsedQuantity float64 `json:"usedQuantity" validate:"gte=0"`
}

// DPRMaterialUsageInput is one material consumption line in a DPR submission
type DPRMaterialUsageInput struct {
	ItemName     string  `json:"itemName" validate:"required,min=2,max=200"`
	QuantityUsed float64 `json:"quantityUsed" validate:"gte=0"`
}

// SubmitDPRRequest is the payload for submitting a daily progress report
type SubmitDPRRequest struct {
	ProjectID        uuid.UUID               `json:"projectId" validate:"required"`
	ReportDate       string                  `json:"reportDate" validate:"required,datetime=2006-01-02"`
	Description      string                  `json:"description" validate:"required,max=5000"`
	Weather          string                  `json:"weather" validate:"max=100"`
	WorkforceCount   int                     `json:"workforceCount" validate:"gte=0"`
	CompletedTaskIDs []uuid.UUID             `json:"completedTaskIds" validate:"dive,required"`
	MaterialsUsed    []DPRMaterialUsageInput `json:"materialsUsed" validate:"dive"`
}

// ReviewDPRRequest carries the approver's remarks
type ReviewDPRRequest struct {
	Remarks string `json:"remarks" validate:"max=2000"`
}

// TranscribeRequest carries a base64-encoded voice note
type TranscribeRequest struct {
	AudioBase64 string `json:"audioBase64" validate:"required"`
	MimeType    string `json:"mimeType" validate:"omitempty,max=100"`
}

// TranscribeResponse returns the transcription text
type TranscribeResponse struct {
	Text string `json:"text"`
}

// ProjectSummaryResponse returns the generated executive summary
type ProjectSummaryResponse struct {
	Summary string `json:"summary"`
}

// InvoiceLineItemInput is one priced line in an invoice creation request.
// Only the pricing inputs are accepted; tax amounts are computed server-side.
type InvoiceLineItemInput struct {
	Description string  `json:"description" validate:"required,min=2,max=500"`
	HSNCode     string  `json:"hsnCode" validate:"omitempty,max=10"`
	Quantity    float64 `json:"quantity" validate:"required"`
	Unit        string  `json:"unit" validate:"max=50"`
	Rate        float64 `json:"rate" validate:"required"`
	GSTRate     float64 `json:"gstRate" validate:"required"`
}

// CreateInvoiceRequest is the payload for creating an invoice
type CreateInvoiceRequest struct {
	ProjectID         uuid.UUID              `json:"projectId" validate:"required"`
	InvoiceDate       string                 `json:"invoiceDate" validate:"required,datetime=2006-01-02"`
	SupplierID        uuid.UUID              `json:"supplierId" validate:"required"`
	RecipientID       uuid.UUID              `json:"recipientId" validate:"required"`
	AdvanceAdjustment float64                `json:"advanceAdjustment" validate:"gte=0"`
	Items             []InvoiceLineItemInput `json:"items" validate:"required,min=1,dive"`
}

// CreatePartyRequest is the payload for registering a party
type CreatePartyRequest struct {
	Name      string `json:"name" validate:"required,min=2,max=200"`
	GSTIN     string `json:"gstin" validate:"omitempty,len=15"`
	Address   string `json:"address" validate:"max=500"`
	StateCode string `json:"stateCode" validate:"required,len=2,numeric"`
	Type      string `json:"type" validate:"required,oneof=Client Contractor"`
}

// UpdatePartyRequest is the payload for updating a party
type UpdatePartyRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=2,max=200"`
	GSTIN     *string `json:"gstin" validate:"omitempty,len=15"`
	Address   *string `json:"address" validate:"omitempty,max=500"`
	StateCode *string `json:"stateCode" validate:"omitempty,len=2,numeric"`
}

// UpdateUserRoleRequest is the payload for changing a user's role
type UpdateUserRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=WORKER SUPERVISOR MANAGER ADMIN OWNER"`
}

// CheckInRequest is the payload for an attendance check-in
type CheckInRequest struct {
	ProjectID uuid.UUID `json:"projectId" validate:"required"`
	Latitude  float64   `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64   `json:"longitude" validate:"gte=-180,lte=180"`
	Accuracy  float64   `json:"accuracy" validate:"gte=0"`
}

// DashboardMetrics aggregates headline numbers for the home screen
type DashboardMetrics struct {
	ActiveProjects     int64   `json:"activeProjects"`
	OpenTasks          int64   `json:"openTasks"`
	DelayedTasks       int     `json:"delayedTasks"`
	PendingDPRs        int64   `json:"pendingDprs"`
	PendingMaterials   int64   `json:"pendingMaterials"`
	OutstandingBilling float64 `json:"outstandingBilling"`
}

// ListMeta carries pagination information
type ListMeta struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// ListResponse is the generic paginated list envelope
type ListResponse[T any] struct {
	Data []T      `json:"data"`
	Meta ListMeta `json:"meta"`
}

// ParseDate parses a YYYY-MM-DD request field
func ParseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
