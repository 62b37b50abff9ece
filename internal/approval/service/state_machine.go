package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/OpenMFG/formflow/internal/apperr"
	"github.com/OpenMFG/formflow/internal/approval/model"
)

// ApprovalStateMachine handles submission state transitions. It encapsulates
// the decision rules: only the approver bound to the current level may act,
// rejection at any level short-circuits the whole chain, and approval either
// advances to the next level or terminates the flow.
//
// Decisions are a one-way ratchet. The per-submission guard in
// AdvanceSubmissionInTx serializes concurrent decisions: exactly one call
// advances the state per level, the loser observes InvalidState.
type ApprovalStateMachine struct {
	repo SubmissionRepository
}

// NewApprovalStateMachine creates a new instance of ApprovalStateMachine.
func NewApprovalStateMachine(repo SubmissionRepository) *ApprovalStateMachine {
	return &ApprovalStateMachine{repo: repo}
}

// Decide applies one approval decision to a loaded submission inside the
// caller's transaction, returning the updated record.
func (sm *ApprovalStateMachine) Decide(
	ctx context.Context,
	tx *gorm.DB,
	sub *model.Submission,
	actorID string,
	decision model.Decision,
	comments string,
) (*model.Submission, error) {
	if sub == nil {
		return nil, fmt.Errorf("submission cannot be nil")
	}
	if !decision.Valid() {
		return nil, apperr.Validation("unknown decision %q", decision)
	}

	if sub.Status != model.SubmissionStatusPendingApproval {
		return nil, apperr.InvalidState("submission %s is %s and accepts no further decisions", sub.ID, sub.Status)
	}

	level := sub.Flow.LevelAt(sub.CurrentLevel)
	if level == nil {
		// A validated flow snapshot always covers CurrentLevel; reaching this
		// means the record is corrupt, not a caller mistake.
		return nil, fmt.Errorf("submission %s has no level %d in its flow snapshot", sub.ID, sub.CurrentLevel)
	}

	if level.ApproverID != actorID {
		return nil, apperr.NotAuthorized("user %s is not the approver at level %d of submission %s", actorID, sub.CurrentLevel, sub.ID)
	}

	next := sm.nextTransition(sub, decision)

	applied, err := sm.repo.AdvanceSubmissionInTx(ctx, tx, sub.ID, sub.CurrentLevel, next)
	if err != nil {
		return nil, fmt.Errorf("failed to advance submission %s: %w", sub.ID, err)
	}
	if !applied {
		return nil, apperr.InvalidState("submission %s was decided concurrently; refresh and retry", sub.ID)
	}

	action := &model.ApprovalAction{
		SubmissionID: sub.ID,
		LevelIndex:   sub.CurrentLevel,
		ApproverID:   actorID,
		Decision:     decision,
		Comments:     comments,
		ActionedAt:   time.Now().UTC(),
	}
	if err := sm.repo.AppendActionInTx(ctx, tx, action); err != nil {
		return nil, fmt.Errorf("failed to append approval action for submission %s: %w", sub.ID, err)
	}

	sub.Status = next.Status
	sub.CurrentLevel = next.CurrentLevel
	sub.CurrentApproverID = next.CurrentApproverID
	sub.History = append(sub.History, *action)
	return sub, nil
}

// nextTransition computes the target state for a decision at the
// submission's current level.
func (sm *ApprovalStateMachine) nextTransition(sub *model.Submission, decision model.Decision) SubmissionTransition {
	if decision == model.DecisionReject {
		// Rejection at any level terminates the whole chain.
		return SubmissionTransition{
			Status:       model.SubmissionStatusRejected,
			CurrentLevel: sub.CurrentLevel,
		}
	}

	if sub.CurrentLevel >= sub.Flow.LastLevel() {
		return SubmissionTransition{
			Status:       model.SubmissionStatusApproved,
			CurrentLevel: sub.CurrentLevel,
		}
	}

	nextLevel := sub.Flow.LevelAt(sub.CurrentLevel + 1)
	return SubmissionTransition{
		Status:            model.SubmissionStatusPendingApproval,
		CurrentLevel:      sub.CurrentLevel + 1,
		CurrentApproverID: nextLevel.ApproverID,
	}
}
