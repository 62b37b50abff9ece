package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/OpenMFG/formflow/internal/apperr"
	"github.com/OpenMFG/formflow/internal/approval/model"
)

// SubmissionStore is the gorm-backed SubmissionRepository.
type SubmissionStore struct {
	db *gorm.DB
}

// NewSubmissionStore creates a new SubmissionStore.
func NewSubmissionStore(db *gorm.DB) *SubmissionStore {
	return &SubmissionStore{db: db}
}

var _ SubmissionRepository = (*SubmissionStore)(nil)

func (s *SubmissionStore) GetSubmissionInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Submission, error) {
	var sub model.Submission
	err := tx.WithContext(ctx).
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("actioned_at ASC") }).
		First(&sub, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("submission %s not found", id)
		}
		return nil, fmt.Errorf("failed to retrieve submission %s: %w", id, err)
	}
	return &sub, nil
}

func (s *SubmissionStore) CreateSubmissionInTx(ctx context.Context, tx *gorm.DB, sub *model.Submission) error {
	if err := tx.WithContext(ctx).Create(sub).Error; err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}

// AdvanceSubmissionInTx performs the optimistic per-submission guard: the
// update applies only while the record is still PENDING_APPROVAL at
// fromLevel. Under concurrent decisions exactly one caller matches the
// guard; the others see zero rows affected.
func (s *SubmissionStore) AdvanceSubmissionInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, fromLevel int, next SubmissionTransition) (bool, error) {
	result := tx.WithContext(ctx).Model(&model.Submission{}).
		Where("id = ? AND status = ? AND current_level = ?", id, model.SubmissionStatusPendingApproval, fromLevel).
		Updates(map[string]any{
			"status":              next.Status,
			"current_level":       next.CurrentLevel,
			"current_approver_id": next.CurrentApproverID,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to update submission %s: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (s *SubmissionStore) AppendActionInTx(ctx context.Context, tx *gorm.DB, action *model.ApprovalAction) error {
	if err := tx.WithContext(ctx).Create(action).Error; err != nil {
		return fmt.Errorf("failed to append approval action: %w", err)
	}
	return nil
}

func (s *SubmissionStore) GetSubmissionsByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Submission, error) {
	if len(ids) == 0 {
		return []model.Submission{}, nil
	}

	var subs []model.Submission
	err := s.db.WithContext(ctx).
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("actioned_at ASC") }).
		Where("id IN ?", []uuid.UUID(ids)).
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve submissions: %w", err)
	}
	return subs, nil
}

func (s *SubmissionStore) ListByCurrentApprover(ctx context.Context, approverID string, offset, limit int) ([]model.Submission, error) {
	var subs []model.Submission
	err := s.db.WithContext(ctx).
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("actioned_at ASC") }).
		Where("status = ? AND current_approver_id = ?", model.SubmissionStatusPendingApproval, approverID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions for approver %s: %w", approverID, err)
	}
	return subs, nil
}

func (s *SubmissionStore) ListBySubmitter(ctx context.Context, userID string, offset, limit int) ([]model.Submission, error) {
	var subs []model.Submission
	err := s.db.WithContext(ctx).
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("actioned_at ASC") }).
		Where("submitted_by = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions for user %s: %w", userID, err)
	}
	return subs, nil
}
