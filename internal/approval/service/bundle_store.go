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

// BundleStore is the gorm-backed BundleRepository.
type BundleStore struct {
	db *gorm.DB
}

// NewBundleStore creates a new BundleStore.
func NewBundleStore(db *gorm.DB) *BundleStore {
	return &BundleStore{db: db}
}

var _ BundleRepository = (*BundleStore)(nil)

func (s *BundleStore) GetBundle(ctx context.Context, id uuid.UUID) (*model.Bundle, error) {
	var bundle model.Bundle
	err := s.db.WithContext(ctx).First(&bundle, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("bundle %s not found", id)
		}
		return nil, fmt.Errorf("failed to retrieve bundle %s: %w", id, err)
	}
	return &bundle, nil
}

func (s *BundleStore) CreateBundle(ctx context.Context, bundle *model.Bundle) error {
	if err := s.db.WithContext(ctx).Create(bundle).Error; err != nil {
		return fmt.Errorf("failed to create bundle: %w", err)
	}
	return nil
}

// MarkBundleProcessed flips PENDING to PROCESSED with the same guarded
// update pattern used for submissions.
func (s *BundleStore) MarkBundleProcessed(ctx context.Context, id uuid.UUID) (bool, error) {
	result := s.db.WithContext(ctx).Model(&model.Bundle{}).
		Where("id = ? AND status = ?", id, model.BundleStatusPending).
		Update("status", model.BundleStatusProcessed)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update bundle %s: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}
