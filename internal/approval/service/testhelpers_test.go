package service

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/OpenMFG/formflow/internal/approval/model"
	templatemodel "github.com/OpenMFG/formflow/internal/template/model"
)

// setupTestDB returns a gorm handle backed by sqlmock.
func setupTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, sqlMock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:               logger.Default.LogMode(logger.Silent),
		DisableAutomaticPing: true,
	})
	if err != nil {
		t.Fatalf("failed to open gorm with sqlmock: %v", err)
	}

	return db, sqlMock
}

// twoLevelFlow returns a snapshot with supervisor and plant manager levels.
func twoLevelFlow(supervisorID, managerID string) model.FlowSnapshot {
	return model.FlowSnapshot{
		Levels: []templatemodel.ApprovalLevel{
			{LevelIndex: 1, Name: "Supervisor", ApproverID: supervisorID, ApproverName: "Sam Supervisor"},
			{LevelIndex: 2, Name: "Plant Manager", ApproverID: managerID, ApproverName: "Mel Manager"},
		},
	}
}

// MockSubmissionRepository is a mock implementation of SubmissionRepository
type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) GetSubmissionInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Submission, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) CreateSubmissionInTx(ctx context.Context, tx *gorm.DB, sub *model.Submission) error {
	args := m.Called(ctx, tx, sub)
	return args.Error(0)
}

func (m *MockSubmissionRepository) AdvanceSubmissionInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, fromLevel int, next SubmissionTransition) (bool, error) {
	args := m.Called(ctx, tx, id, fromLevel, next)
	return args.Bool(0), args.Error(1)
}

func (m *MockSubmissionRepository) AppendActionInTx(ctx context.Context, tx *gorm.DB, action *model.ApprovalAction) error {
	args := m.Called(ctx, tx, action)
	return args.Error(0)
}

func (m *MockSubmissionRepository) GetSubmissionsByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Submission, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) ListByCurrentApprover(ctx context.Context, approverID string, offset, limit int) ([]model.Submission, error) {
	args := m.Called(ctx, approverID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) ListBySubmitter(ctx context.Context, userID string, offset, limit int) ([]model.Submission, error) {
	args := m.Called(ctx, userID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Submission), args.Error(1)
}

// MockAssignmentRepository is a mock implementation of AssignmentRepository
type MockAssignmentRepository struct {
	mock.Mock
}

func (m *MockAssignmentRepository) GetAssignmentInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Assignment, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) CreateAssignmentsInTx(ctx context.Context, tx *gorm.DB, assignments []model.Assignment) ([]model.Assignment, error) {
	args := m.Called(ctx, tx, assignments)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) MarkAssignmentFilledInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, submissionID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tx, id, submissionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAssignmentRepository) ListAssignmentsByEmployee(ctx context.Context, employeeID string, offset, limit int) ([]model.Assignment, error) {
	args := m.Called(ctx, employeeID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) ListAssignmentsByPlant(ctx context.Context, plantID string, offset, limit int) ([]model.Assignment, error) {
	args := m.Called(ctx, plantID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Assignment), args.Error(1)
}

// MockBundleRepository is a mock implementation of BundleRepository
type MockBundleRepository struct {
	mock.Mock
}

func (m *MockBundleRepository) GetBundle(ctx context.Context, id uuid.UUID) (*model.Bundle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Bundle), args.Error(1)
}

func (m *MockBundleRepository) CreateBundle(ctx context.Context, bundle *model.Bundle) error {
	args := m.Called(ctx, bundle)
	return args.Error(0)
}

func (m *MockBundleRepository) MarkBundleProcessed(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockTemplateProvider is a mock implementation of TemplateProvider
type MockTemplateProvider struct {
	mock.Mock
}

func (m *MockTemplateProvider) GetTemplate(ctx context.Context, id uuid.UUID) (*templatemodel.FormTemplate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*templatemodel.FormTemplate), args.Error(1)
}
