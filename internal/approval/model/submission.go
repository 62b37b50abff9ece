package model

import (
	"time"

	"github.com/google/uuid"

	templatemodel "github.com/OpenMFG/formflow/internal/template/model"
)

// SubmissionStatus represents the state of a submission in the approval workflow.
// The string values are consumed verbatim by UI clients and must not change.
type SubmissionStatus string

const (
	SubmissionStatusDraft           SubmissionStatus = "DRAFT"            // Saved but not yet submitted; pre-workflow
	SubmissionStatusSubmitted       SubmissionStatus = "SUBMITTED"        // Submitted against a template with no approval flow
	SubmissionStatusPendingApproval SubmissionStatus = "PENDING_APPROVAL" // Awaiting the approver at CurrentLevel
	SubmissionStatusApproved        SubmissionStatus = "APPROVED"         // All levels approved; terminal
	SubmissionStatusRejected        SubmissionStatus = "REJECTED"         // Rejected at some level; terminal
)

// Terminal reports whether no further approval decision can be applied.
func (s SubmissionStatus) Terminal() bool {
	return s == SubmissionStatusApproved || s == SubmissionStatusRejected || s == SubmissionStatusSubmitted
}

// Decision is an approver's verdict on a pending submission.
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReject  Decision = "REJECT"
)

// Valid reports whether d is a known decision value.
func (d Decision) Valid() bool {
	return d == DecisionApprove || d == DecisionReject
}

// FlowSnapshot is the approval flow copied from the template at submission
// creation. A running submission is bound to its snapshot; editing the
// template's flow later never alters in-flight submissions.
type FlowSnapshot struct {
	SnapshotAt time.Time                    `json:"snapshotAt"`
	Levels     []templatemodel.ApprovalLevel `json:"levels"`
}

// LevelAt returns the level with the given 1-based index, or nil when the
// index is outside the snapshot.
func (f *FlowSnapshot) LevelAt(levelIndex int) *templatemodel.ApprovalLevel {
	if levelIndex < 1 || levelIndex > len(f.Levels) {
		return nil
	}
	return &f.Levels[levelIndex-1]
}

// LastLevel returns the highest level index in the snapshot.
func (f *FlowSnapshot) LastLevel() int {
	return len(f.Levels)
}

// LevelOf returns the 1-based level index at which userID appears as an
// approver, or nil when the user holds no level in this flow.
func (f *FlowSnapshot) LevelOf(userID string) *int {
	for _, level := range f.Levels {
		if level.ApproverID == userID {
			idx := level.LevelIndex
			return &idx
		}
	}
	return nil
}

// FileRef is an opaque reference to an uploaded file attached to a form
// field. The workflow engine never inspects file contents.
type FileRef struct {
	FieldID string `json:"fieldId"`
	Name    string `json:"name"`
	Key     string `json:"key"`
}

// FieldValues is the opaque field-value mapping owned by the form renderer.
type FieldValues map[string]any

// Submission represents one filled instance of a form progressing through
// its approval flow. Mutated exclusively by the approval state machine.
type Submission struct {
	BaseModel
	TemplateID  uuid.UUID        `gorm:"type:uuid;column:template_id;not null" json:"templateId"`
	PlantID     string           `gorm:"type:varchar(100);column:plant_id;not null" json:"plantId"`
	SubmittedBy string           `gorm:"type:varchar(100);column:submitted_by;not null" json:"submittedBy"`
	Data        FieldValues      `gorm:"type:jsonb;column:data;serializer:json" json:"data"`
	Files       []FileRef        `gorm:"type:jsonb;column:files;serializer:json" json:"files"`
	Status      SubmissionStatus `gorm:"type:varchar(50);column:status;not null" json:"status"`
	// CurrentLevel is the 1-based index into the flow snapshot; meaningful
	// only while Status is PENDING_APPROVAL.
	CurrentLevel int `gorm:"column:current_level;not null;default:0" json:"currentLevel"`
	// CurrentApproverID is denormalized from the snapshot for approver inbox
	// queries. The snapshot remains the source of truth; the state machine
	// keeps this column in sync within the same transaction. Empty once the
	// submission is terminal.
	CurrentApproverID string           `gorm:"type:varchar(100);column:current_approver_id;index" json:"-"`
	Flow              FlowSnapshot     `gorm:"type:jsonb;column:flow;serializer:json" json:"flowSnapshot"`
	History           []ApprovalAction `gorm:"foreignKey:SubmissionID;references:ID" json:"approvalHistory"`
}

func (s *Submission) TableName() string {
	return "submissions"
}

// ApprovalAction is one append-only entry in a submission's audit trail.
// Never mutated or reordered after append.
type ApprovalAction struct {
	BaseModel
	SubmissionID uuid.UUID `gorm:"type:uuid;column:submission_id;not null;index" json:"-"`
	LevelIndex   int       `gorm:"column:level_index;not null" json:"levelIndex"`
	ApproverID   string    `gorm:"type:varchar(100);column:approver_id;not null" json:"approverId"`
	Decision     Decision  `gorm:"type:varchar(20);column:decision;not null" json:"decision"`
	Comments     string    `gorm:"type:text;column:comments" json:"comments"`
	ActionedAt   time.Time `gorm:"type:timestamptz;column:actioned_at;not null" json:"actionedAt"`
}

func (a *ApprovalAction) TableName() string {
	return "approval_actions"
}
