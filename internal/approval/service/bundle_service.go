package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/OpenMFG/formflow/internal/apperr"
	"github.com/OpenMFG/formflow/internal/approval/model"
)

// DecisionProcessor applies one approval decision to one submission.
// Satisfied by ApprovalService.
type DecisionProcessor interface {
	ProcessApproval(ctx context.Context, submissionID uuid.UUID, actorID string, decision model.Decision, comments string) (*model.Submission, error)
}

// BundleService groups submissions for one combined reviewer decision and
// fans that decision out across the members.
//
// A bundle decision is deliberately not all-or-nothing: members may sit at
// different levels with different approvers, so each member's transition is
// evaluated independently and ineligible members are skipped with a recorded
// reason. Only intra-member serialization matters; the processor's guard
// provides it.
type BundleService struct {
	db          *gorm.DB
	bundles     BundleRepository
	submissions SubmissionRepository
	processor   DecisionProcessor
}

// NewBundleService creates a new BundleService.
func NewBundleService(db *gorm.DB, bundles BundleRepository, submissions SubmissionRepository, processor DecisionProcessor) *BundleService {
	return &BundleService{
		db:          db,
		bundles:     bundles,
		submissions: submissions,
		processor:   processor,
	}
}

// CreateBundle groups the given submissions atomically. The member set is
// immutable after creation.
func (s *BundleService) CreateBundle(ctx context.Context, submissionIDs []uuid.UUID, submittedBy string) (*model.Bundle, error) {
	if len(submissionIDs) == 0 {
		return nil, apperr.Validation("a bundle must have at least one submission")
	}

	members, err := s.submissions.GetSubmissionsByIDs(ctx, submissionIDs)
	if err != nil {
		return nil, err
	}
	if len(members) != len(submissionIDs) {
		return nil, apperr.NotFound("one or more bundle members do not exist")
	}

	bundle := &model.Bundle{
		SubmissionIDs: submissionIDs,
		SubmittedBy:   submittedBy,
		Status:        model.BundleStatusPending,
	}
	if err := s.bundles.CreateBundle(ctx, bundle); err != nil {
		return nil, err
	}

	slog.Info("bundle created",
		"bundle_id", bundle.ID,
		"members", len(submissionIDs),
		"submitted_by", submittedBy,
	)

	return bundle, nil
}

// GetBundle returns one bundle by id.
func (s *BundleService) GetBundle(ctx context.Context, id uuid.UUID) (*model.Bundle, error) {
	return s.bundles.GetBundle(ctx, id)
}

// DecideBundle applies one decision to every member of the bundle. Each
// member transitions exactly as a single ProcessApproval call would at its
// own current level; members not awaiting this actor, or already decided,
// are recorded as per-member failures with distinguishable reasons. The
// bundle flips to PROCESSED once every member has a terminal-for-this-actor
// outcome.
func (s *BundleService) DecideBundle(
	ctx context.Context,
	bundleID uuid.UUID,
	actorID string,
	decision model.Decision,
	comments string,
) (*model.BundleOutcome, error) {
	if !decision.Valid() {
		return nil, apperr.Validation("unknown decision %q", decision)
	}

	bundle, err := s.bundles.GetBundle(ctx, bundleID)
	if err != nil {
		return nil, err
	}
	if bundle.Status == model.BundleStatusProcessed {
		return nil, apperr.InvalidState("bundle %s has already been processed", bundleID)
	}

	outcome := &model.BundleOutcome{
		BundleID:     bundleID,
		Transitioned: []model.SubmissionResponseDTO{},
		Failures:     []model.MemberFailure{},
	}

	for _, submissionID := range bundle.SubmissionIDs {
		sub, err := s.processor.ProcessApproval(ctx, submissionID, actorID, decision, comments)
		if err != nil {
			outcome.Failures = append(outcome.Failures, model.MemberFailure{
				SubmissionID: submissionID,
				Kind:         string(apperr.KindOf(err)),
				Message:      err.Error(),
			})
			continue
		}
		outcome.Transitioned = append(outcome.Transitioned, ToResponseDTO(sub, actorID))
	}

	processed, err := s.bundles.MarkBundleProcessed(ctx, bundleID)
	if err != nil {
		return nil, err
	}
	if !processed {
		return nil, apperr.InvalidState("bundle %s was processed concurrently", bundleID)
	}

	slog.Info("bundle decision processed",
		"bundle_id", bundleID,
		"actor_id", actorID,
		"decision", decision,
		"transitioned", len(outcome.Transitioned),
		"failures", len(outcome.Failures),
	)

	return outcome, nil
}
