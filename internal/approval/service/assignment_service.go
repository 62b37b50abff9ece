package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/OpenMFG/formflow/internal/apperr"
	"github.com/OpenMFG/formflow/internal/approval/model"
	templatemodel "github.com/OpenMFG/formflow/internal/template/model"
	"github.com/OpenMFG/formflow/utils"
)

// AssignmentService creates and tracks direct template-to-employee
// assignments, and turns filled assignments (or direct submissions) into
// submissions bound to a flow snapshot.
type AssignmentService struct {
	db          *gorm.DB
	assignments AssignmentRepository
	submissions SubmissionRepository
	templates   TemplateProvider
}

// NewAssignmentService creates a new AssignmentService.
func NewAssignmentService(db *gorm.DB, assignments AssignmentRepository, submissions SubmissionRepository, templates TemplateProvider) *AssignmentService {
	return &AssignmentService{
		db:          db,
		assignments: assignments,
		submissions: submissions,
		templates:   templates,
	}
}

// AssignTemplates creates one PENDING assignment per (template, employee)
// pair in a single transaction.
func (s *AssignmentService) AssignTemplates(
	ctx context.Context,
	templateIDs []uuid.UUID,
	employeeIDs []string,
	plantID string,
	assignedBy string,
	dueDate *time.Time,
) ([]model.Assignment, error) {
	if len(templateIDs) == 0 {
		return nil, apperr.Validation("at least one template is required")
	}
	if len(employeeIDs) == 0 {
		return nil, apperr.Validation("at least one employee is required")
	}
	if plantID == "" {
		return nil, apperr.Validation("plant ID cannot be empty")
	}

	// Resolve templates up front so one unknown or archived template fails
	// the whole batch before anything is written.
	for _, templateID := range templateIDs {
		tmpl, err := s.templates.GetTemplate(ctx, templateID)
		if err != nil {
			return nil, err
		}
		if tmpl.Archived {
			return nil, apperr.InvalidState("template %s is archived and cannot be assigned", templateID)
		}
	}

	assignments := make([]model.Assignment, 0, len(templateIDs)*len(employeeIDs))
	for _, templateID := range templateIDs {
		for _, employeeID := range employeeIDs {
			assignments = append(assignments, model.Assignment{
				TemplateID: templateID,
				PlantID:    plantID,
				AssignedTo: employeeID,
				AssignedBy: assignedBy,
				DueDate:    dueDate,
				Status:     model.AssignmentStatusPending,
			})
		}
	}

	var created []model.Assignment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		created, err = s.assignments.CreateAssignmentsInTx(ctx, tx, assignments)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("assignments created",
		"count", len(created),
		"plant_id", plantID,
		"assigned_by", assignedBy,
	)

	return created, nil
}

// SubmitAssignment fills an assignment exactly once: the assignment flips
// PENDING to FILLED and a submission is created against a freshly captured
// flow snapshot. A second call on the same assignment fails with
// InvalidState and leaves the first submission untouched.
func (s *AssignmentService) SubmitAssignment(
	ctx context.Context,
	assignmentID uuid.UUID,
	actorID string,
	data model.FieldValues,
	files []model.FileRef,
) (*model.Submission, error) {
	var sub *model.Submission

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		assignment, err := s.assignments.GetAssignmentInTx(ctx, tx, assignmentID)
		if err != nil {
			return err
		}
		if assignment.AssignedTo != actorID {
			return apperr.NotAuthorized("user %s is not the assignee of assignment %s", actorID, assignmentID)
		}
		if assignment.Status == model.AssignmentStatusFilled {
			return apperr.InvalidState("assignment %s has already been filled", assignmentID)
		}

		tmpl, err := s.templates.GetTemplate(ctx, assignment.TemplateID)
		if err != nil {
			return err
		}

		sub, err = s.buildSubmission(tmpl, actorID, assignment.PlantID, data, files)
		if err != nil {
			return err
		}
		if err := s.submissions.CreateSubmissionInTx(ctx, tx, sub); err != nil {
			return fmt.Errorf("failed to create submission for assignment %s: %w", assignmentID, err)
		}

		filled, err := s.assignments.MarkAssignmentFilledInTx(ctx, tx, assignmentID, sub.ID)
		if err != nil {
			return fmt.Errorf("failed to mark assignment %s filled: %w", assignmentID, err)
		}
		if !filled {
			// A concurrent submission won the guarded flip; rolling back
			// discards the submission created above.
			return apperr.InvalidState("assignment %s has already been filled", assignmentID)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("assignment submitted",
		"assignment_id", assignmentID,
		"submission_id", sub.ID,
		"status", sub.Status,
	)

	return sub, nil
}

// SubmitDirect creates a submission without an assignment.
func (s *AssignmentService) SubmitDirect(
	ctx context.Context,
	templateID uuid.UUID,
	actorID string,
	plantID string,
	data model.FieldValues,
	files []model.FileRef,
) (*model.Submission, error) {
	tmpl, err := s.templates.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}

	var sub *model.Submission
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		sub, err = s.buildSubmission(tmpl, actorID, plantID, data, files)
		if err != nil {
			return err
		}
		return s.submissions.CreateSubmissionInTx(ctx, tx, sub)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("direct submission created",
		"template_id", templateID,
		"submission_id", sub.ID,
		"status", sub.Status,
	)

	return sub, nil
}

// ListForEmployee returns the assignments addressed to one employee.
func (s *AssignmentService) ListForEmployee(ctx context.Context, employeeID string, offset, limit *int) ([]model.Assignment, error) {
	if employeeID == "" {
		return nil, apperr.Validation("employee ID cannot be empty")
	}
	finalOffset, finalLimit := utils.GetPaginationParams(offset, limit)
	return s.assignments.ListAssignmentsByEmployee(ctx, employeeID, finalOffset, finalLimit)
}

// ListForPlant returns the assignments scoped to one plant.
func (s *AssignmentService) ListForPlant(ctx context.Context, plantID string, offset, limit *int) ([]model.Assignment, error) {
	if plantID == "" {
		return nil, apperr.Validation("plant ID cannot be empty")
	}
	finalOffset, finalLimit := utils.GetPaginationParams(offset, limit)
	return s.assignments.ListAssignmentsByPlant(ctx, plantID, finalOffset, finalLimit)
}

// buildSubmission captures the template's flow snapshot and constructs the
// submission in its entry state: PENDING_APPROVAL at level 1 when the
// template carries a flow, SUBMITTED otherwise.
func (s *AssignmentService) buildSubmission(
	tmpl *templatemodel.FormTemplate,
	actorID string,
	plantID string,
	data model.FieldValues,
	files []model.FileRef,
) (*model.Submission, error) {
	if tmpl.Archived {
		return nil, apperr.InvalidState("template %s is archived and no longer accepts submissions", tmpl.ID)
	}
	if err := checkRequiredFields(tmpl.RequiredFields, data, files); err != nil {
		return nil, err
	}

	sub := &model.Submission{
		TemplateID:  tmpl.ID,
		PlantID:     plantID,
		SubmittedBy: actorID,
		Data:        data,
		Files:       files,
		Flow: model.FlowSnapshot{
			SnapshotAt: time.Now().UTC(),
			Levels:     tmpl.Flow,
		},
	}

	if tmpl.HasFlow() {
		sub.Status = model.SubmissionStatusPendingApproval
		sub.CurrentLevel = 1
		sub.CurrentApproverID = tmpl.Flow[0].ApproverID
	} else {
		sub.Status = model.SubmissionStatusSubmitted
	}

	return sub, nil
}

// checkRequiredFields is the defense-in-depth boundary check: the form
// renderer owns field validation, but a payload missing a required field is
// still rejected here. A field is satisfied by a non-empty value or by an
// attached file referencing it.
func checkRequiredFields(required templatemodel.RequiredFields, data model.FieldValues, files []model.FileRef) error {
	for _, fieldID := range required {
		if value, ok := data[fieldID]; ok && !isEmptyValue(value) {
			continue
		}
		if hasFileFor(files, fieldID) {
			continue
		}
		return apperr.Validation("required field %q is missing", fieldID)
	}
	return nil
}

func isEmptyValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	default:
		return false
	}
}

func hasFileFor(files []model.FileRef, fieldID string) bool {
	for _, f := range files {
		if f.FieldID == fieldID {
			return true
		}
	}
	return false
}
