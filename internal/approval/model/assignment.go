package model

import (
	"time"

	"github.com/google/uuid"
)

// AssignmentStatus represents the state of a direct template-to-employee assignment.
type AssignmentStatus string

const (
	AssignmentStatusPending AssignmentStatus = "PENDING" // Waiting for the assignee to fill the form
	AssignmentStatusFilled  AssignmentStatus = "FILLED"  // Filled exactly once; a submission exists
)

// Assignment is a direct template-to-employee task that produces a
// submission once filled. An assignment flips to FILLED exactly once;
// re-submission is rejected.
type Assignment struct {
	BaseModel
	TemplateID   uuid.UUID        `gorm:"type:uuid;column:template_id;not null" json:"templateId"`
	PlantID      string           `gorm:"type:varchar(100);column:plant_id;not null;index" json:"plantId"`
	AssignedTo   string           `gorm:"type:varchar(100);column:assigned_to;not null;index" json:"assignedTo"`
	AssignedBy   string           `gorm:"type:varchar(100);column:assigned_by;not null" json:"assignedBy"`
	DueDate      *time.Time       `gorm:"type:timestamptz;column:due_date" json:"dueDate,omitempty"`
	Status       AssignmentStatus `gorm:"type:varchar(20);column:status;not null" json:"status"`
	SubmissionID *uuid.UUID       `gorm:"type:uuid;column:submission_id" json:"submissionId,omitempty"`
}

func (a *Assignment) TableName() string {
	return "assignments"
}
