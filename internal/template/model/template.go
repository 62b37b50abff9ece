package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/OpenMFG/formflow/internal/apperr"
)

// BaseModel defines the base model structure with common fields for the template package.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;column:id;not null;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"type:timestamptz;column:created_at;not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"type:timestamptz;column:updated_at;not null" json:"updatedAt"`
}

// BeforeCreate is a GORM hook that is triggered before a new record is created.
func (base *BaseModel) BeforeCreate(tx *gorm.DB) (err error) {
	if base.ID == uuid.Nil {
		base.ID, err = uuid.NewRandom()
		if err != nil {
			return
		}
	}
	base.CreatedAt = time.Now().UTC()
	base.UpdatedAt = time.Now().UTC()
	return
}

// BeforeUpdate is a GORM hook that is triggered before an existing record is updated.
func (base *BaseModel) BeforeUpdate(tx *gorm.DB) (err error) {
	base.UpdatedAt = time.Now().UTC()
	return
}

// ApprovalLevel is one stage in a template's approval flow, bound to exactly
// one approver. LevelIndex values are contiguous starting at 1; the order is
// the enforced approval sequence.
type ApprovalLevel struct {
	LevelIndex   int    `json:"levelIndex"`
	Name         string `json:"name"`         // Level name, e.g. "Supervisor"
	ApproverID   string `json:"approverId"`   // User bound to this level
	ApproverName string `json:"approverName"` // Display name for "Waiting for X"
}

// ApprovalFlow is the ordered list of approval levels attached to a form
// template. An empty flow means submissions require no approval.
type ApprovalFlow []ApprovalLevel

// Validate checks the flow-attachment invariants: at least one level,
// contiguous level indexes starting at 1, and a non-empty approver per level.
func (f ApprovalFlow) Validate() error {
	if len(f) == 0 {
		return apperr.Validation("approval flow must have at least one level")
	}
	for i, level := range f {
		if level.LevelIndex != i+1 {
			return apperr.Validation("approval flow levels must be contiguous starting at 1, got index %d at position %d", level.LevelIndex, i)
		}
		if level.ApproverID == "" {
			return apperr.Validation("approval flow level %d has no approver", level.LevelIndex)
		}
	}
	return nil
}

// FormTemplate represents a dynamic form definition together with its
// approval flow. The Schema is opaque to the workflow engine; the form
// renderer owns field semantics. RequiredFields is checked as a
// defense-in-depth boundary rule on submission.
type FormTemplate struct {
	BaseModel
	Name           string          `gorm:"type:varchar(255);column:name;not null" json:"name"`
	Description    string          `gorm:"type:text;column:description" json:"description,omitempty"`
	PlantID        string          `gorm:"type:varchar(100);column:plant_id;not null" json:"plantId"`
	Schema         json.RawMessage `gorm:"type:jsonb;column:schema;not null" json:"schema"`
	RequiredFields RequiredFields  `gorm:"type:jsonb;column:required_fields;serializer:json" json:"requiredFields"`
	Flow           ApprovalFlow    `gorm:"type:jsonb;column:flow;serializer:json" json:"approvalFlow"`
	Archived       bool            `gorm:"type:boolean;column:archived;not null;default:false" json:"archived"`
}

func (t *FormTemplate) TableName() string {
	return "form_templates"
}

// HasFlow reports whether submissions against this template enter the
// approval workflow.
func (t *FormTemplate) HasFlow() bool {
	return len(t.Flow) > 0
}

// RequiredFields lists the field ids the submission boundary check enforces.
type RequiredFields []string

// CreateTemplateDTO is the request body for creating a form template.
type CreateTemplateDTO struct {
	Name           string          `json:"name" binding:"required"`
	Description    string          `json:"description"`
	PlantID        string          `json:"plantId" binding:"required"`
	Schema         json.RawMessage `json:"schema" binding:"required"`
	RequiredFields []string        `json:"requiredFields"`
	Flow           ApprovalFlow    `json:"approvalFlow"`
}

// AttachFlowDTO is the request body for attaching or replacing a template's
// approval flow. Running submissions keep the snapshot captured at their
// creation; a flow edit never retroactively alters them.
type AttachFlowDTO struct {
	Flow ApprovalFlow `json:"approvalFlow" binding:"required"`
}

// TemplateResponseDTO represents a form template in list responses.
type TemplateResponseDTO struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	PlantID        string          `json:"plantId"`
	Schema         json.RawMessage `json:"schema"`
	RequiredFields []string        `json:"requiredFields"`
	Flow           ApprovalFlow    `json:"approvalFlow"`
	Archived       bool            `json:"archived"`
}

// ToResponseDTO converts a FormTemplate to its response representation.
func (t *FormTemplate) ToResponseDTO() TemplateResponseDTO {
	return TemplateResponseDTO{
		ID:             t.ID,
		Name:           t.Name,
		Description:    t.Description,
		PlantID:        t.PlantID,
		Schema:         t.Schema,
		RequiredFields: t.RequiredFields,
		Flow:           t.Flow,
		Archived:       t.Archived,
	}
}
