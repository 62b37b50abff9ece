package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/OpenMFG/formflow/internal/approval/model"
	templatemodel "github.com/OpenMFG/formflow/internal/template/model"
)

// SubmissionTransition is the target state of a guarded submission update.
type SubmissionTransition struct {
	Status            model.SubmissionStatus
	CurrentLevel      int
	CurrentApproverID string
}

// SubmissionRepository is the persistence contract for submissions and their
// append-only approval history. The state machine is its only writer.
type SubmissionRepository interface {
	// GetSubmissionInTx loads a submission with its history, locking intent
	// left to the guarded update. Returns a NotFound error for unknown ids.
	GetSubmissionInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Submission, error)

	// CreateSubmissionInTx persists a new submission.
	CreateSubmissionInTx(ctx context.Context, tx *gorm.DB, sub *model.Submission) error

	// AdvanceSubmissionInTx applies the state transition only if the
	// submission is still PENDING_APPROVAL at fromLevel. Returns false when
	// the guard did not match, which means a concurrent decision won.
	AdvanceSubmissionInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, fromLevel int, next SubmissionTransition) (bool, error)

	// AppendActionInTx appends one history entry. The audit trail is
	// append-only; nothing updates or deletes rows in it.
	AppendActionInTx(ctx context.Context, tx *gorm.DB, action *model.ApprovalAction) error

	// GetSubmissionsByIDs loads the given submissions, history included.
	GetSubmissionsByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Submission, error)

	// ListByCurrentApprover returns pending submissions awaiting the given
	// approver, newest first.
	ListByCurrentApprover(ctx context.Context, approverID string, offset, limit int) ([]model.Submission, error)

	// ListBySubmitter returns submissions created by the given user, newest first.
	ListBySubmitter(ctx context.Context, userID string, offset, limit int) ([]model.Submission, error)
}

// AssignmentRepository is the persistence contract for assignments.
type AssignmentRepository interface {
	GetAssignmentInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Assignment, error)
	CreateAssignmentsInTx(ctx context.Context, tx *gorm.DB, assignments []model.Assignment) ([]model.Assignment, error)

	// MarkAssignmentFilledInTx flips PENDING to FILLED and links the created
	// submission. Returns false when the assignment was already filled.
	MarkAssignmentFilledInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, submissionID uuid.UUID) (bool, error)

	ListAssignmentsByEmployee(ctx context.Context, employeeID string, offset, limit int) ([]model.Assignment, error)
	ListAssignmentsByPlant(ctx context.Context, plantID string, offset, limit int) ([]model.Assignment, error)
}

// BundleRepository is the persistence contract for bundles.
type BundleRepository interface {
	GetBundle(ctx context.Context, id uuid.UUID) (*model.Bundle, error)
	CreateBundle(ctx context.Context, bundle *model.Bundle) error

	// MarkBundleProcessed flips PENDING to PROCESSED. Returns false when a
	// concurrent decision already processed the bundle.
	MarkBundleProcessed(ctx context.Context, id uuid.UUID) (bool, error)
}

// TemplateProvider resolves form templates for submission creation.
type TemplateProvider interface {
	GetTemplate(ctx context.Context, id uuid.UUID) (*templatemodel.FormTemplate, error)
}
