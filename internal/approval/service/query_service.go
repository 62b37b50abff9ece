package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/OpenMFG/formflow/internal/apperr"
	"github.com/OpenMFG/formflow/internal/approval/model"
	"github.com/OpenMFG/formflow/utils"
)

// SubmissionQueryService provides the read-only projections consumed by UI
// clients. Every returned submission carries resolved turn fields for the
// requesting viewer; nothing here mutates workflow state.
type SubmissionQueryService struct {
	db   *gorm.DB
	repo SubmissionRepository
}

// NewSubmissionQueryService creates a new SubmissionQueryService.
func NewSubmissionQueryService(db *gorm.DB, repo SubmissionRepository) *SubmissionQueryService {
	return &SubmissionQueryService{db: db, repo: repo}
}

// GetApprovalTask returns one submission with its history and the turn
// fields resolved for viewerID.
func (s *SubmissionQueryService) GetApprovalTask(ctx context.Context, submissionID uuid.UUID, viewerID string) (*model.SubmissionResponseDTO, error) {
	subs, err := s.repo.GetSubmissionsByIDs(ctx, []uuid.UUID{submissionID})
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, apperr.NotFound("submission %s not found", submissionID)
	}

	dto := ToResponseDTO(&subs[0], viewerID)
	return &dto, nil
}

// ListApprovalTasks returns the submissions currently awaiting the given
// approver, newest first.
func (s *SubmissionQueryService) ListApprovalTasks(ctx context.Context, approverID string, offset, limit *int) ([]model.SubmissionResponseDTO, error) {
	if approverID == "" {
		return nil, apperr.Validation("approver ID cannot be empty")
	}

	finalOffset, finalLimit := utils.GetPaginationParams(offset, limit)
	subs, err := s.repo.ListByCurrentApprover(ctx, approverID, finalOffset, finalLimit)
	if err != nil {
		return nil, err
	}
	return s.toResponseDTOs(subs, approverID), nil
}

// ListSubmittedBy returns the submissions a user created, newest first.
func (s *SubmissionQueryService) ListSubmittedBy(ctx context.Context, userID string, offset, limit *int) ([]model.SubmissionResponseDTO, error) {
	if userID == "" {
		return nil, apperr.Validation("user ID cannot be empty")
	}

	finalOffset, finalLimit := utils.GetPaginationParams(offset, limit)
	subs, err := s.repo.ListBySubmitter(ctx, userID, finalOffset, finalLimit)
	if err != nil {
		return nil, err
	}
	return s.toResponseDTOs(subs, userID), nil
}

func (s *SubmissionQueryService) toResponseDTOs(subs []model.Submission, viewerID string) []model.SubmissionResponseDTO {
	dtos := make([]model.SubmissionResponseDTO, 0, len(subs))
	for i := range subs {
		dtos = append(dtos, ToResponseDTO(&subs[i], viewerID))
	}
	return dtos
}
