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

// AssignmentStore is the gorm-backed AssignmentRepository.
type AssignmentStore struct {
	db *gorm.DB
}

// NewAssignmentStore creates a new AssignmentStore.
func NewAssignmentStore(db *gorm.DB) *AssignmentStore {
	return &AssignmentStore{db: db}
}

var _ AssignmentRepository = (*AssignmentStore)(nil)

func (s *AssignmentStore) GetAssignmentInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Assignment, error) {
	var assignment model.Assignment
	err := tx.WithContext(ctx).First(&assignment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("assignment %s not found", id)
		}
		return nil, fmt.Errorf("failed to retrieve assignment %s: %w", id, err)
	}
	return &assignment, nil
}

func (s *AssignmentStore) CreateAssignmentsInTx(ctx context.Context, tx *gorm.DB, assignments []model.Assignment) ([]model.Assignment, error) {
	if len(assignments) == 0 {
		return []model.Assignment{}, nil
	}
	if err := tx.WithContext(ctx).Create(&assignments).Error; err != nil {
		return nil, fmt.Errorf("failed to create assignments: %w", err)
	}
	return assignments, nil
}

// MarkAssignmentFilledInTx is the idempotent-submission guard: the flip
// applies only while the assignment is still PENDING, so the second of two
// concurrent submissions sees zero rows affected.
func (s *AssignmentStore) MarkAssignmentFilledInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, submissionID uuid.UUID) (bool, error) {
	result := tx.WithContext(ctx).Model(&model.Assignment{}).
		Where("id = ? AND status = ?", id, model.AssignmentStatusPending).
		Updates(map[string]any{
			"status":        model.AssignmentStatusFilled,
			"submission_id": submissionID,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to update assignment %s: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (s *AssignmentStore) ListAssignmentsByEmployee(ctx context.Context, employeeID string, offset, limit int) ([]model.Assignment, error) {
	var assignments []model.Assignment
	err := s.db.WithContext(ctx).
		Where("assigned_to = ?", employeeID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments for employee %s: %w", employeeID, err)
	}
	return assignments, nil
}

func (s *AssignmentStore) ListAssignmentsByPlant(ctx context.Context, plantID string, offset, limit int) ([]model.Assignment, error) {
	var assignments []model.Assignment
	err := s.db.WithContext(ctx).
		Where("plant_id = ?", plantID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments for plant %s: %w", plantID, err)
	}
	return assignments, nil
}
