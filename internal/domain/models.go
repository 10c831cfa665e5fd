package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// BaseModel contains common fields for all entities
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// Role represents a user's role on a site
type Role string

const (
	RoleWorker     Role = "WORKER"
	RoleSupervisor Role = "SUPERVISOR"
	RoleManager    Role = "MANAGER"
	RoleAdmin      Role = "ADMIN"
	RoleOwner      Role = "OWNER"
)

// IsValid checks if the role is valid
func (r Role) IsValid() bool {
	switch r {
	case RoleWorker, RoleSupervisor, RoleManager, RoleAdmin, RoleOwner:
		return true
	}
	return false
}

// UserStatus represents the lifecycle of a user account
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusPending  UserStatus = "pending"
	UserStatusInactive UserStatus = "inactive"
)

// ProjectStatus represents the status of a project
type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "Active"
	ProjectStatusOnHold    ProjectStatus = "On Hold"
	ProjectStatusCompleted ProjectStatus = "Completed"
)

// IsValid checks if the project status is valid
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusActive, ProjectStatusOnHold, ProjectStatusCompleted:
		return true
	}
	return false
}

// TaskStatus represents the status of a site task
type TaskStatus string

const (
	TaskStatusPending         TaskStatus = "PENDING"
	TaskStatusInProgress      TaskStatus = "IN_PROGRESS"
	TaskStatusPendingApproval TaskStatus = "PENDING_APPROVAL"
	TaskStatusCompleted       TaskStatus = "COMPLETED"
	TaskStatusRejected        TaskStatus = "REJECTED"
)

// IsValid checks if the task status is valid
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusPendingApproval,
		TaskStatusCompleted, TaskStatusRejected:
		return true
	}
	return false
}

// MaterialStatus represents the status of a material request
type MaterialStatus string

const (
	MaterialStatusRequested MaterialStatus = "REQUESTED"
	MaterialStatusApproved  MaterialStatus = "APPROVED"
	MaterialStatusRejected  MaterialStatus = "REJECTED"
	MaterialStatusDelivered MaterialStatus = "DELIVERED"
)

// IsValid checks if the material status is valid
func (s MaterialStatus) IsValid() bool {
	switch s {
	case MaterialStatusRequested, MaterialStatusApproved,
		MaterialStatusRejected, MaterialStatusDelivered:
		return true
	}
	return false
}

// ApprovalStatus represents the review status of a daily progress report
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "Pending"
	ApprovalStatusApproved ApprovalStatus = "Approved"
	ApprovalStatusRejected ApprovalStatus = "Rejected"
)

// IsValid checks if the approval status is valid
func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalStatusPending, ApprovalStatusApproved, ApprovalStatusRejected:
		return true
	}
	return false
}

// InvoiceStatus represents the lifecycle of a tax invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft  InvoiceStatus = "Draft"
	InvoiceStatusIssued InvoiceStatus = "Issued"
	InvoiceStatusPaid   InvoiceStatus = "Paid"
)

// IsValid checks if the invoice status is valid
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusIssued, InvoiceStatusPaid:
		return true
	}
	return false
}

// PartyType distinguishes billed parties
type PartyType string

const (
	PartyTypeClient     PartyType = "Client"
	PartyTypeContractor PartyType = "Contractor"
)

// IsValid checks if the party type is valid
func (t PartyType) IsValid() bool {
	switch t {
	case PartyTypeClient, PartyTypeContractor:
		return true
	}
	return false
}

// User represents a registered user of the platform
type User struct {
	BaseModel
	Name   string     `gorm:"column:name;not null" json:"name"`
	Email  string     `gorm:"column:email;uniqueIndex;not null" json:"email"`
	Role   Role       `gorm:"column:role;not null;default:'WORKER'" json:"role"`
	Status UserStatus `gorm:"column:status;not null;default:'pending'" json:"status"`
}

// Project represents a construction project
type Project struct {
	BaseModel
	Name             string         `gorm:"column:name;not null" json:"name"`
	Location         string         `gorm:"column:location" json:"location"`
	Status           ProjectStatus  `gorm:"column:status;not null;default:'Active'" json:"status"`
	Budget           float64        `gorm:"column:budget" json:"budget"`
	StartDate        time.Time      `gorm:"column:start_date" json:"startDate"`
	StateCode        string         `gorm:"column:state_code;not null" json:"stateCode"`
	Milestones       pq.StringArray `gorm:"column:milestones;type:text[]" json:"milestones"`
	RetentionPercent float64        `gorm:"column:retention_percent;default:0" json:"retentionPercent"`
	GSTRequired      bool           `gorm:"column:gst_required;default:true" json:"gstRequirement"`
}

// Task represents a unit of site work.
// DelayReason holds a manually recorded reason only; the effective delay
// state is derived on every read and never written back.
type Task struct {
	BaseModel
	ProjectID    uuid.UUID  `gorm:"column:project_id;type:uuid;not null;index" json:"projectId"`
	Title        string     `gorm:"column:title;not null" json:"title"`
	Description  string     `gorm:"column:description" json:"description"`
	AssignedTo   string     `gorm:"column:assigned_to" json:"assignedTo"`
	Status       TaskStatus `gorm:"column:status;not null;default:'PENDING'" json:"status"`
	DueDate      time.Time  `gorm:"column:due_date" json:"dueDate"`
	CompletedAt  *time.Time `gorm:"column:completed_at" json:"completedAt,omitempty"`
	DelayReason  string     `gorm:"column:delay_reason" json:"-"`
	Remarks      string     `gorm:"column:remarks" json:"remarks,omitempty"`
	RelatedDPRID *uuid.UUID `gorm:"column:related_dpr_id;type:uuid" json:"relatedDprId,omitempty"`
}

// MaterialRequest represents a procurement request raised from site
type MaterialRequest struct {
	BaseModel
	ProjectID     uuid.UUID      `gorm:"column:project_id;type:uuid;not null;index" json:"projectId"`
	ItemName      string         `gorm:"column:item_name;not null" json:"itemName"`
	Quantity      float64        `gorm:"column:quantity;not null" json:"quantity"`
	Unit          string         `gorm:"column:unit" json:"unit"`
	Status        MaterialStatus `gorm:"column:status;not null;default:'REQUESTED'" json:"status"`
	RequestedBy   string         `gorm:"column:requested_by" json:"requestedBy"`
	RequestDate   time.Time      `gorm:"column:request_date" json:"requestDate"`
	EstimatedCost float64        `gorm:"column:estimated_cost" json:"estimatedCost"`
	UsedQuantity  float64        `gorm:"column:used_quantity;default:0" json:"usedQuantity"`
}

// DPR represents a daily progress report submitted from site
type DPR struct {
	BaseModel
	ProjectID        uuid.UUID          `gorm:"column:project_id;type:uuid;not null;index" json:"projectId"`
	ReportDate       time.Time          `gorm:"column:report_date;not null" json:"reportDate"`
	Description      string             `gorm:"column:description" json:"description"`
	Weather          string             `gorm:"column:weather" json:"weather"`
	WorkforceCount   int                `gorm:"column:workforce_count" json:"workforceCount"`
	PhotoPath        string             `gorm:"column:photo_path" json:"-"`
	SubmittedBy      string             `gorm:"column:submitted_by" json:"submittedBy"`
	SubmittedByID    uuid.UUID          `gorm:"column:submitted_by_id;type:uuid" json:"submittedById"`
	CompletedTaskIDs pq.StringArray     `gorm:"column:completed_task_ids;type:text[]" json:"completedTaskIds"`
	ApprovalStatus   ApprovalStatus     `gorm:"column:approval_status;not null;default:'Pending'" json:"approvalStatus"`
	ApproverID       *uuid.UUID         `gorm:"column:approver_id;type:uuid" json:"approverId,omitempty"`
	ApproverRemarks  string             `gorm:"column:approver_remarks" json:"approverRemarks,omitempty"`
	LeakageAlert     bool               `gorm:"column:leakage_alert;default:false" json:"leakageAlert"`
	LeakageExcess    string             `gorm:"column:leakage_excess" json:"leakageExcess,omitempty"`
	MaterialsUsed    []DPRMaterialUsage `gorm:"foreignKey:DPRID" json:"materialsUsed"`
}

// DPRMaterialUsage records a quantity of material consumed in a DPR
type DPRMaterialUsage struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	DPRID        uuid.UUID `gorm:"column:dpr_id;type:uuid;not null;index" json:"dprId"`
	ItemName     string    `gorm:"column:item_name;not null" json:"itemName"`
	QuantityUsed float64   `gorm:"column:quantity_used;not null" json:"quantityUsed"`
}

// TableName overrides the default table name
func (DPRMaterialUsage) TableName() string {
	return "dpr_material_usages"
}

// Party represents a billed party (client or contractor) with GST details
type Party struct {
	BaseModel
	Name      string    `gorm:"column:name;not null" json:"name"`
	GSTIN     string    `gorm:"column:gstin" json:"gstin"`
	Address   string    `gorm:"column:address" json:"address"`
	StateCode string    `gorm:"column:state_code;not null" json:"stateCode"`
	Type      PartyType `gorm:"column:type;not null" json:"type"`
}

// Invoice represents a GST tax invoice (RA bill)
type Invoice struct {
	BaseModel
	ProjectID         uuid.UUID         `gorm:"column:project_id;type:uuid;not null;index" json:"projectId"`
	InvoiceNumber     string            `gorm:"column:invoice_number;uniqueIndex;not null" json:"invoiceNumber"`
	InvoiceDate       time.Time         `gorm:"column:invoice_date;not null" json:"invoiceDate"`
	SupplierID        uuid.UUID         `gorm:"column:supplier_id;type:uuid;not null" json:"supplierId"`
	RecipientID       uuid.UUID         `gorm:"column:recipient_id;type:uuid;not null" json:"recipientId"`
	PlaceOfSupply     string            `gorm:"column:place_of_supply" json:"placeOfSupply"`
	InterState        bool              `gorm:"column:inter_state;default:false" json:"interState"`
	Status            InvoiceStatus     `gorm:"column:status;not null;default:'Draft'" json:"status"`
	TotalTaxable      float64           `gorm:"column:total_taxable" json:"totalTaxable"`
	TotalCGST         float64           `gorm:"column:total_cgst" json:"totalCgst"`
	TotalSGST         float64           `gorm:"column:total_sgst" json:"totalSgst"`
	TotalIGST         float64           `gorm:"column:total_igst" json:"totalIgst"`
	GrossTotal        float64           `gorm:"column:gross_total" json:"grossTotal"`
	RetentionAmount   float64           `gorm:"column:retention_amount" json:"retentionAmount"`
	AdvanceAdjustment float64           `gorm:"column:advance_adjustment" json:"advanceAdjustment"`
	TotalAmount       float64           `gorm:"column:total_amount" json:"totalAmount"`
	Items             []InvoiceLineItem `gorm:"foreignKey:InvoiceID" json:"items"`
	Supplier          *Party            `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	Recipient         *Party            `gorm:"foreignKey:RecipientID" json:"recipient,omitempty"`
}

// InvoiceLineItem is one priced line on an invoice. Tax amounts are always
// recomputed from quantity, rate and gstRate; stored values are for
// reporting and never trusted from input.
type InvoiceLineItem struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	InvoiceID     uuid.UUID `gorm:"column:invoice_id;type:uuid;not null;index" json:"invoiceId"`
	Position      int       `gorm:"column:position;not null" json:"position"`
	Description   string    `gorm:"column:description;not null" json:"description"`
	HSNCode       string    `gorm:"column:hsn_code" json:"hsnCode"`
	Quantity      float64   `gorm:"column:quantity;not null" json:"quantity"`
	Unit          string    `gorm:"column:unit" json:"unit"`
	Rate          float64   `gorm:"column:rate;not null" json:"rate"`
	GSTRate       float64   `gorm:"column:gst_rate;not null" json:"gstRate"`
	TaxableAmount float64   `gorm:"column:taxable_amount" json:"taxableAmount"`
	CGST          float64   `gorm:"column:cgst" json:"cgst"`
	SGST          float64   `gorm:"column:sgst" json:"sgst"`
	IGST          float64   `gorm:"column:igst" json:"igst"`
	Total         float64   `gorm:"column:total" json:"total"`
}

// TableName overrides the default table name
func (InvoiceLineItem) TableName() string {
	return "invoice_line_items"
}

// AttendanceRecord captures a check-in/check-out pair with geolocation
type AttendanceRecord struct {
	BaseModel
	UserID       uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index" json:"userId"`
	UserName     string     `gorm:"column:user_name" json:"userName"`
	ProjectID    uuid.UUID  `gorm:"column:project_id;type:uuid;not null;index" json:"projectId"`
	CheckInTime  time.Time  `gorm:"column:check_in_time;not null" json:"checkInTime"`
	CheckOutTime *time.Time `gorm:"column:check_out_time" json:"checkOutTime,omitempty"`
	Latitude     float64    `gorm:"column:latitude" json:"latitude"`
	Longitude    float64    `gorm:"column:longitude" json:"longitude"`
	Accuracy     float64    `gorm:"column:accuracy" json:"accuracy"`
}

// AuditEntry is one append-only record of a state-changing operation.
// The primary key is derived from the wall clock at record time and is
// strictly increasing; rows are never updated or deleted.
type AuditEntry struct {
	ID          int64     `gorm:"primary_key;autoIncrement:false" json:"id"`
	Action      string    `gorm:"column:action;not null;index" json:"action"`
	PerformedBy string    `gorm:"column:performed_by;not null" json:"performedBy"`
	Role        Role      `gorm:"column:role;not null" json:"role"`
	TargetID    string    `gorm:"column:target_id;index" json:"targetId"`
	Remarks     string    `gorm:"column:remarks" json:"remarks,omitempty"`
	Timestamp   time.Time `gorm:"column:timestamp;not null" json:"timestamp"`
}

// TableName overrides the default table name
func (AuditEntry) TableName() string {
	return "audit_entries"
}

// Audit action codes. The code names the entity and the transition so the
// trail reads without joining back to source rows.
const (
	AuditTaskCreated          = "TASK_CREATED"
	AuditTaskStatusInProgress = "TASK_STATUS_IN_PROGRESS"
	AuditTaskStatusCompleted  = "TASK_STATUS_COMPLETED"
	AuditTaskStatusRejected   = "TASK_STATUS_REJECTED"
	AuditDPRSubmitted         = "DPR_SUBMITTED"
	AuditDPRApproved          = "DPR_APPROVED"
	AuditDPRRejected          = "DPR_REJECTED"
	AuditMaterialRequested    = "MATERIAL_STATUS_REQUESTED"
	AuditMaterialApproved     = "MATERIAL_STATUS_APPROVED"
	AuditMaterialRejected     = "MATERIAL_STATUS_REJECTED"
	AuditMaterialDelivered    = "MATERIAL_STATUS_DELIVERED"
	AuditInvoiceCreated       = "INVOICE_CREATED"
	AuditInvoiceStatusIssued  = "INVOICE_STATUS_ISSUED"
	AuditInvoiceStatusPaid    = "INVOICE_STATUS_PAID"
	AuditProjectCreated       = "PROJECT_CREATED"
	AuditProjectUpdated       = "PROJECT_UPDATED"
	AuditPartyCreated         = "PARTY_CREATED"
	AuditPartyUpdated         = "PARTY_UPDATED"
	AuditAttendanceCheckIn    = "ATTENDANCE_CHECK_IN"
	AuditAttendanceCheckOut   = "ATTENDANCE_CHECK_OUT"
)

// NumberSequence tracks per-project, per-year RA bill numbering
type NumberSequence struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProjectID  uuid.UUID `gorm:"column:project_id;type:uuid;not null;uniqueIndex:idx_sequence_project_year"`
	Year       int       `gorm:"column:year;not null;uniqueIndex:idx_sequence_project_year"`
	LastNumber int       `gorm:"column:last_number;not null;default:0"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides the default table name
func (NumberSequence) TableName() string {
	return "number_sequences"
}
