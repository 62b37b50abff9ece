package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/OpenMFG/formflow/internal/approval/model"
)

// ApprovalService owns the transaction boundary around approval decisions.
// It is the only component that mutates submissions, always through the
// state machine.
type ApprovalService struct {
	db   *gorm.DB
	repo SubmissionRepository
	sm   *ApprovalStateMachine
}

// NewApprovalService creates a new ApprovalService.
func NewApprovalService(db *gorm.DB, repo SubmissionRepository) *ApprovalService {
	return &ApprovalService{
		db:   db,
		repo: repo,
		sm:   NewApprovalStateMachine(repo),
	}
}

// ProcessApproval applies one approve/reject decision from actorID to the
// submission. The load, guarded transition and history append run in a
// single transaction; the call either commits the full decision or leaves
// the record untouched.
func (s *ApprovalService) ProcessApproval(
	ctx context.Context,
	submissionID uuid.UUID,
	actorID string,
	decision model.Decision,
	comments string,
) (*model.Submission, error) {
	var updated *model.Submission

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub, err := s.repo.GetSubmissionInTx(ctx, tx, submissionID)
		if err != nil {
			return err
		}

		updated, err = s.sm.Decide(ctx, tx, sub, actorID, decision, comments)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("approval decision processed",
		"submission_id", submissionID,
		"actor_id", actorID,
		"decision", decision,
		"status", updated.Status,
		"current_level", updated.CurrentLevel,
	)

	return updated, nil
}

// ToResponseDTO converts a submission to its outbound representation,
// decorated with the resolved turn fields for viewerID.
func ToResponseDTO(sub *model.Submission, viewerID string) model.SubmissionResponseDTO {
	return model.SubmissionResponseDTO{
		ID:           sub.ID,
		TemplateID:   sub.TemplateID,
		PlantID:      sub.PlantID,
		SubmittedBy:  sub.SubmittedBy,
		Data:         sub.Data,
		Files:        sub.Files,
		Status:       sub.Status,
		CurrentLevel: sub.CurrentLevel,
		Flow:         sub.Flow,
		History:      sub.History,
		CreatedAt:    sub.CreatedAt,
		TurnInfo:     ResolveTurn(sub, viewerID),
	}
}
