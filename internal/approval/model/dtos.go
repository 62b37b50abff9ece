package model

import (
	"time"

	"github.com/google/uuid"
)

// TurnInfo is the resolved "whose turn is it" view for one user and one
// submission. UI clients render "Your Turn" vs "Waiting for X" from these
// fields and never re-derive the rule.
type TurnInfo struct {
	IsMyTurn            bool    `json:"isMyTurn"`
	PendingApproverName *string `json:"pendingApproverName,omitempty"`
	UserLevel           *int    `json:"userLevel,omitempty"`
}

// CreateAssignmentDTO is the request body for assigning templates to employees.
// One assignment is created per (template, employee) pair.
type CreateAssignmentDTO struct {
	TemplateIDs []uuid.UUID `json:"templateIds" binding:"required"`
	EmployeeIDs []string    `json:"employeeIds" binding:"required"`
	PlantID     string      `json:"plantId" binding:"required"`
	DueDate     *time.Time  `json:"dueDate,omitempty"`
}

// SubmitAssignmentDTO is the request body for filling an assignment.
type SubmitAssignmentDTO struct {
	Data  FieldValues `json:"data" binding:"required"`
	Files []FileRef   `json:"files"`
}

// SubmitDirectDTO is the request body for a direct (unassigned) submission.
type SubmitDirectDTO struct {
	TemplateID uuid.UUID   `json:"templateId" binding:"required"`
	PlantID    string      `json:"plantId" binding:"required"`
	Data       FieldValues `json:"data" binding:"required"`
	Files      []FileRef   `json:"files"`
}

// DecisionDTO is the request body for an approval decision, used both for a
// single submission and for a bundle.
type DecisionDTO struct {
	Decision Decision `json:"decision" binding:"required"`
	Comments string   `json:"comments"`
}

// CreateBundleDTO is the request body for grouping submissions into a bundle.
type CreateBundleDTO struct {
	SubmissionIDs []uuid.UUID `json:"submissionIds" binding:"required"`
}

// SubmissionResponseDTO is a submission as exposed to UI clients, decorated
// with the resolved turn fields for the requesting user.
type SubmissionResponseDTO struct {
	ID           uuid.UUID        `json:"id"`
	TemplateID   uuid.UUID        `json:"templateId"`
	PlantID      string           `json:"plantId"`
	SubmittedBy  string           `json:"submittedBy"`
	Data         FieldValues      `json:"data"`
	Files        []FileRef        `json:"files,omitempty"`
	Status       SubmissionStatus `json:"status"`
	CurrentLevel int              `json:"currentLevel"`
	Flow         FlowSnapshot     `json:"flowSnapshot"`
	History      []ApprovalAction `json:"approvalHistory"`
	CreatedAt    time.Time        `json:"createdAt"`
	TurnInfo
}

// MemberFailure records why one bundle member could not be transitioned.
type MemberFailure struct {
	SubmissionID uuid.UUID `json:"submissionId"`
	Kind         string    `json:"kind"`
	Message      string    `json:"message"`
}

// BundleOutcome is the aggregate result of a bundle decision: the members
// that transitioned and the per-member failures, so a caller can surface
// "7 of 8 approved, 1 failed".
type BundleOutcome struct {
	BundleID     uuid.UUID               `json:"bundleId"`
	Transitioned []SubmissionResponseDTO `json:"transitioned"`
	Failures     []MemberFailure         `json:"failures"`
}
