package service

import (
	"github.com/OpenMFG/formflow/internal/approval/model"
)

// ResolveTurn computes, for one user and one submission, whether it is
// currently that user's turn to act, the name to show while waiting
// otherwise, and the level the user holds in the flow for display.
//
// It is a pure function of its inputs: no side effects, no I/O, safe to
// call concurrently and repeatedly. Every submission exposed to a UI
// carries its result; no other component re-derives the rule.
func ResolveTurn(sub *model.Submission, userID string) model.TurnInfo {
	info := model.TurnInfo{
		UserLevel: sub.Flow.LevelOf(userID),
	}

	if sub.Status != model.SubmissionStatusPendingApproval {
		return info
	}

	level := sub.Flow.LevelAt(sub.CurrentLevel)
	if level == nil {
		return info
	}

	if level.ApproverID == userID {
		info.IsMyTurn = true
		return info
	}

	name := pendingApproverName(level.ApproverName, level.Name)
	info.PendingApproverName = &name
	return info
}

// pendingApproverName prefers the approver's display name and falls back to
// the level name when the snapshot carries none.
func pendingApproverName(approverName, levelName string) string {
	if approverName != "" {
		return approverName
	}
	return levelName
}
