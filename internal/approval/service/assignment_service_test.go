package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/OpenMFG/formflow/internal/apperr"
	"github.com/OpenMFG/formflow/internal/approval/model"
	templatemodel "github.com/OpenMFG/formflow/internal/template/model"
)

func testTemplate(withFlow bool) *templatemodel.FormTemplate {
	tmpl := &templatemodel.FormTemplate{
		BaseModel: templatemodel.BaseModel{ID: uuid.New()},
		Name:      "Shift Handover",
		PlantID:   "plant-7",
	}
	if withFlow {
		tmpl.Flow = templatemodel.ApprovalFlow{
			{LevelIndex: 1, Name: "Supervisor", ApproverID: "supervisor1", ApproverName: "Sam Supervisor"},
			{LevelIndex: 2, Name: "Plant Manager", ApproverID: "manager1", ApproverName: "Mel Manager"},
		}
	}
	return tmpl
}

func TestAssignmentService_AssignTemplates(t *testing.T) {
	ctx := context.Background()

	t.Run("Validation Errors", func(t *testing.T) {
		db, _ := setupTestDB(t)
		service := NewAssignmentService(db, new(MockAssignmentRepository), new(MockSubmissionRepository), new(MockTemplateProvider))

		_, err := service.AssignTemplates(ctx, nil, []string{"emp1"}, "plant-7", "hr1", nil)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

		_, err = service.AssignTemplates(ctx, []uuid.UUID{uuid.New()}, nil, "plant-7", "hr1", nil)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

		_, err = service.AssignTemplates(ctx, []uuid.UUID{uuid.New()}, []string{"emp1"}, "", "hr1", nil)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	t.Run("Archived Template Fails The Batch", func(t *testing.T) {
		db, _ := setupTestDB(t)
		mockAssignments := new(MockAssignmentRepository)
		mockTemplates := new(MockTemplateProvider)
		service := NewAssignmentService(db, mockAssignments, new(MockSubmissionRepository), mockTemplates)

		tmpl := testTemplate(true)
		tmpl.Archived = true
		mockTemplates.On("GetTemplate", ctx, tmpl.ID).Return(tmpl, nil).Once()

		_, err := service.AssignTemplates(ctx, []uuid.UUID{tmpl.ID}, []string{"emp1"}, "plant-7", "hr1", nil)
		assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
		mockAssignments.AssertNotCalled(t, "CreateAssignmentsInTx")
	})

	t.Run("Cartesian Fan-Out", func(t *testing.T) {
		db, sqlMock := setupTestDB(t)
		mockAssignments := new(MockAssignmentRepository)
		mockTemplates := new(MockTemplateProvider)
		service := NewAssignmentService(db, mockAssignments, new(MockSubmissionRepository), mockTemplates)

		tmpl1 := testTemplate(true)
		tmpl2 := testTemplate(false)
		mockTemplates.On("GetTemplate", ctx, tmpl1.ID).Return(tmpl1, nil).Once()
		mockTemplates.On("GetTemplate", ctx, tmpl2.ID).Return(tmpl2, nil).Once()

		mockAssignments.On("CreateAssignmentsInTx", ctx, mock.Anything, mock.MatchedBy(func(assignments []model.Assignment) bool {
			if len(assignments) != 6 {
				return false
			}
			for _, a := range assignments {
				if a.Status != model.AssignmentStatusPending || a.PlantID != "plant-7" {
					return false
				}
			}
			return true
		})).Return(make([]model.Assignment, 6), nil).Once()

		sqlMock.ExpectBegin()
		sqlMock.ExpectCommit()

		created, err := service.AssignTemplates(ctx,
			[]uuid.UUID{tmpl1.ID, tmpl2.ID},
			[]string{"emp1", "emp2", "emp3"},
			"plant-7", "hr1", nil)
		assert.NoError(t, err)
		assert.Len(t, created, 6)
		mockAssignments.AssertExpectations(t)
	})
}

func TestAssignmentService_SubmitAssignment(t *testing.T) {
	ctx := context.Background()

	t.Run("Not The Assignee", func(t *testing.T) {
		db, sqlMock := setupTestDB(t)
		mockAssignments := new(MockAssignmentRepository)
		service := NewAssignmentService(db, mockAssignments, new(MockSubmissionRepository), new(MockTemplateProvider))

		assignmentID := uuid.New()
		assignment := &model.Assignment{
			BaseModel:  model.BaseModel{ID: assignmentID},
			AssignedTo: "emp1",
			Status:     model.AssignmentStatusPending,
		}
		mockAssignments.On("GetAssignmentInTx", ctx, mock.Anything, assignmentID).Return(assignment, nil).Once()

		sqlMock.ExpectBegin()
		sqlMock.ExpectRollback()

		_, err := service.SubmitAssignment(ctx, assignmentID, "intruder", nil, nil)
		assert.Equal(t, apperr.KindNotAuthorized, apperr.KindOf(err))
	})

	t.Run("Already Filled", func(t *testing.T) {
		db, sqlMock := setupTestDB(t)
		mockAssignments := new(MockAssignmentRepository)
		service := NewAssignmentService(db, mockAssignments, new(MockSubmissionRepository), new(MockTemplateProvider))

		assignmentID := uuid.New()
		assignment := &model.Assignment{
			BaseModel:  model.BaseModel{ID: assignmentID},
			AssignedTo: "emp1",
			Status:     model.AssignmentStatusFilled,
		}
		mockAssignments.On("GetAssignmentInTx", ctx, mock.Anything, assignmentID).Return(assignment, nil).Once()

		sqlMock.ExpectBegin()
		sqlMock.ExpectRollback()

		_, err := service.SubmitAssignment(ctx, assignmentID, "emp1", nil, nil)
		assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
	})

	t.Run("Fill Creates Pending Submission", func(t *testing.T) {
		db, sqlMock := setupTestDB(t)
		mockAssignments := new(MockAssignmentRepository)
		mockSubmissions := new(MockSubmissionRepository)
		mockTemplates := new(MockTemplateProvider)
		service := NewAssignmentService(db, mockAssignments, mockSubmissions, mockTemplates)

		tmpl := testTemplate(true)
		assignmentID := uuid.New()
		assignment := &model.Assignment{
			BaseModel:  model.BaseModel{ID: assignmentID},
			TemplateID: tmpl.ID,
			PlantID:    "plant-7",
			AssignedTo: "emp1",
			Status:     model.AssignmentStatusPending,
		}

		mockAssignments.On("GetAssignmentInTx", ctx, mock.Anything, assignmentID).Return(assignment, nil).Once()
		mockTemplates.On("GetTemplate", ctx, tmpl.ID).Return(tmpl, nil).Once()
		mockSubmissions.On("CreateSubmissionInTx", ctx, mock.Anything, mock.MatchedBy(func(sub *model.Submission) bool {
			return sub.Status == model.SubmissionStatusPendingApproval &&
				sub.CurrentLevel == 1 &&
				sub.CurrentApproverID == "supervisor1" &&
				len(sub.Flow.Levels) == 2 &&
				!sub.Flow.SnapshotAt.IsZero()
		})).Return(nil).Once()
		mockAssignments.On("MarkAssignmentFilledInTx", ctx, mock.Anything, assignmentID, mock.Anything).Return(true, nil).Once()

		sqlMock.ExpectBegin()
		sqlMock.ExpectCommit()

		sub, err := service.SubmitAssignment(ctx, assignmentID, "emp1", model.FieldValues{"shift": "night"}, nil)
		assert.NoError(t, err)
		assert.Equal(t, model.SubmissionStatusPendingApproval, sub.Status)
		mockAssignments.AssertExpectations(t)
		mockSubmissions.AssertExpectations(t)
	})

	t.Run("Concurrent Fill Rolls Back", func(t *testing.T) {
		db, sqlMock := setupTestDB(t)
		mockAssignments := new(MockAssignmentRepository)
		mockSubmissions := new(MockSubmissionRepository)
		mockTemplates := new(MockTemplateProvider)
		service := NewAssignmentService(db, mockAssignments, mockSubmissions, mockTemplates)

		tmpl := testTemplate(true)
		assignmentID := uuid.New()
		assignment := &model.Assignment{
			BaseModel:  model.BaseModel{ID: assignmentID},
			TemplateID: tmpl.ID,
			PlantID:    "plant-7",
			AssignedTo: "emp1",
			Status:     model.AssignmentStatusPending,
		}

		mockAssignments.On("GetAssignmentInTx", ctx, mock.Anything, assignmentID).Return(assignment, nil).Once()
		mockTemplates.On("GetTemplate", ctx, tmpl.ID).Return(tmpl, nil).Once()
		mockSubmissions.On("CreateSubmissionInTx", ctx, mock.Anything, mock.Anything).Return(nil).Once()
		// The guarded flip fails: another request already filled the assignment.
		mockAssignments.On("MarkAssignmentFilledInTx", ctx, mock.Anything, assignmentID, mock.Anything).Return(false, nil).Once()

		sqlMock.ExpectBegin()
		sqlMock.ExpectRollback()

		_, err := service.SubmitAssignment(ctx, assignmentID, "emp1", nil, nil)
		assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
	})
}

func TestAssignmentService_SubmitDirect(t *testing.T) {
	ctx := context.Background()

	t.Run("No Flow Lands As SUBMITTED", func(t *testing.T) {
		db, sqlMock := setupTestDB(t)
		mockSubmissions := new(MockSubmissionRepository)
		mockTemplates := new(MockTemplateProvider)
		service := NewAssignmentService(db, new(MockAssignmentRepository), mockSubmissions, mockTemplates)

		tmpl := testTemplate(false)
		mockTemplates.On("GetTemplate", ctx, tmpl.ID).Return(tmpl, nil).Once()
		mockSubmissions.On("CreateSubmissionInTx", ctx, mock.Anything, mock.MatchedBy(func(sub *model.Submission) bool {
			return sub.Status == model.SubmissionStatusSubmitted &&
				sub.CurrentLevel == 0 &&
				sub.CurrentApproverID == ""
		})).Return(nil).Once()

		sqlMock.ExpectBegin()
		sqlMock.ExpectCommit()

		sub, err := service.SubmitDirect(ctx, tmpl.ID, "emp1", "plant-7", nil, nil)
		assert.NoError(t, err)
		assert.Equal(t, model.SubmissionStatusSubmitted, sub.Status)
	})

	t.Run("Archived Template Refused", func(t *testing.T) {
		db, sqlMock := setupTestDB(t)
		mockTemplates := new(MockTemplateProvider)
		service := NewAssignmentService(db, new(MockAssignmentRepository), new(MockSubmissionRepository), mockTemplates)

		tmpl := testTemplate(true)
		tmpl.Archived = true
		mockTemplates.On("GetTemplate", ctx, tmpl.ID).Return(tmpl, nil).Once()

		sqlMock.ExpectBegin()
		sqlMock.ExpectRollback()

		_, err := service.SubmitDirect(ctx, tmpl.ID, "emp1", "plant-7", nil, nil)
		assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
	})

	t.Run("Missing Required Field", func(t *testing.T) {
		db, sqlMock := setupTestDB(t)
		mockTemplates := new(MockTemplateProvider)
		service := NewAssignmentService(db, new(MockAssignmentRepository), new(MockSubmissionRepository), mockTemplates)

		tmpl := testTemplate(true)
		tmpl.RequiredFields = templatemodel.RequiredFields{"shift", "photo"}
		mockTemplates.On("GetTemplate", ctx, tmpl.ID).Return(tmpl, nil).Once()

		sqlMock.ExpectBegin()
		sqlMock.ExpectRollback()

		_, err := service.SubmitDirect(ctx, tmpl.ID, "emp1", "plant-7",
			model.FieldValues{"shift": "night"}, nil)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		assert.Contains(t, err.Error(), "photo")
	})

	t.Run("Required Field Satisfied By File", func(t *testing.T) {
		db, sqlMock := setupTestDB(t)
		mockSubmissions := new(MockSubmissionRepository)
		mockTemplates := new(MockTemplateProvider)
		service := NewAssignmentService(db, new(MockAssignmentRepository), mockSubmissions, mockTemplates)

		tmpl := testTemplate(true)
		tmpl.RequiredFields = templatemodel.RequiredFields{"photo"}
		mockTemplates.On("GetTemplate", ctx, tmpl.ID).Return(tmpl, nil).Once()
		mockSubmissions.On("CreateSubmissionInTx", ctx, mock.Anything, mock.Anything).Return(nil).Once()

		sqlMock.ExpectBegin()
		sqlMock.ExpectCommit()

		_, err := service.SubmitDirect(ctx, tmpl.ID, "emp1", "plant-7", nil,
			[]model.FileRef{{FieldID: "photo", Name: "line3.jpg", Key: "uploads/line3.jpg"}})
		assert.NoError(t, err)
	})
}

func TestCheckRequiredFields(t *testing.T) {
	required := templatemodel.RequiredFields{"shift"}

	assert.NoError(t, checkRequiredFields(nil, nil, nil))
	assert.NoError(t, checkRequiredFields(required, model.FieldValues{"shift": "night"}, nil))
	assert.Error(t, checkRequiredFields(required, model.FieldValues{"shift": ""}, nil))
	assert.Error(t, checkRequiredFields(required, model.FieldValues{"shift": nil}, nil))
	assert.Error(t, checkRequiredFields(required, model.FieldValues{"shift": []any{}}, nil))
	assert.NoError(t, checkRequiredFields(required, model.FieldValues{"shift": 0}, nil))
}
