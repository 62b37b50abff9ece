package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/OpenMFG/formflow/internal/apperr"
	"github.com/OpenMFG/formflow/internal/template/model"
	"github.com/OpenMFG/formflow/utils"
)

// TemplateService manages form templates and their approval flows.
// Templates are archived, never deleted; running submissions are bound to
// flow snapshots, so attaching or replacing a flow never touches them.
type TemplateService struct {
	db *gorm.DB
}

// NewTemplateService creates a new TemplateService.
func NewTemplateService(db *gorm.DB) *TemplateService {
	return &TemplateService{db: db}
}

// CreateTemplate creates a form template. An approval flow is optional at
// creation; when present it must pass the flow-attachment invariants.
func (s *TemplateService) CreateTemplate(ctx context.Context, createReq *model.CreateTemplateDTO) (*model.FormTemplate, error) {
	if createReq == nil {
		return nil, apperr.Validation("create request cannot be nil")
	}
	if createReq.Name == "" {
		return nil, apperr.Validation("template name cannot be empty")
	}
	if createReq.PlantID == "" {
		return nil, apperr.Validation("plant ID cannot be empty")
	}
	if len(createReq.Flow) > 0 {
		if err := createReq.Flow.Validate(); err != nil {
			return nil, err
		}
	}

	tmpl := &model.FormTemplate{
		Name:           createReq.Name,
		Description:    createReq.Description,
		PlantID:        createReq.PlantID,
		Schema:         createReq.Schema,
		RequiredFields: createReq.RequiredFields,
		Flow:           createReq.Flow,
	}
	if err := s.db.WithContext(ctx).Create(tmpl).Error; err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}

	slog.Info("template created",
		"template_id", tmpl.ID,
		"plant_id", tmpl.PlantID,
		"levels", len(tmpl.Flow),
	)

	return tmpl, nil
}

// AttachFlow attaches or replaces a template's approval flow. The flow must
// have at least one level, contiguous indexes from 1 and an approver per
// level; a zero-level flow is rejected here, never at decision time.
func (s *TemplateService) AttachFlow(ctx context.Context, templateID uuid.UUID, flow model.ApprovalFlow) (*model.FormTemplate, error) {
	if err := flow.Validate(); err != nil {
		return nil, err
	}

	tmpl, err := s.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if tmpl.Archived {
		return nil, apperr.InvalidState("template %s is archived", templateID)
	}

	tmpl.Flow = flow
	if err := s.db.WithContext(ctx).Model(tmpl).Update("flow", flow).Error; err != nil {
		return nil, fmt.Errorf("failed to attach flow to template %s: %w", templateID, err)
	}

	slog.Info("approval flow attached",
		"template_id", templateID,
		"levels", len(flow),
	)

	return tmpl, nil
}

// ArchiveTemplate retires a template. Archived templates refuse new
// assignments and submissions; existing submissions are immutable history
// and are never deleted.
func (s *TemplateService) ArchiveTemplate(ctx context.Context, templateID uuid.UUID) error {
	result := s.db.WithContext(ctx).Model(&model.FormTemplate{}).
		Where("id = ? AND archived = ?", templateID, false).
		Update("archived", true)
	if result.Error != nil {
		return fmt.Errorf("failed to archive template %s: %w", templateID, result.Error)
	}
	if result.RowsAffected == 0 {
		// Either unknown or already archived; distinguish for the caller.
		if _, err := s.GetTemplate(ctx, templateID); err != nil {
			return err
		}
		return apperr.InvalidState("template %s is already archived", templateID)
	}

	slog.Info("template archived", "template_id", templateID)
	return nil
}

// GetTemplate returns one template by id.
func (s *TemplateService) GetTemplate(ctx context.Context, id uuid.UUID) (*model.FormTemplate, error) {
	var tmpl model.FormTemplate
	err := s.db.WithContext(ctx).First(&tmpl, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("template %s not found", id)
		}
		return nil, fmt.Errorf("failed to retrieve template %s: %w", id, err)
	}
	return &tmpl, nil
}

// ListTemplates returns templates, optionally filtered by plant. Archived
// templates are excluded unless includeArchived is set.
func (s *TemplateService) ListTemplates(ctx context.Context, plantID string, includeArchived bool, offset, limit *int) ([]model.FormTemplate, error) {
	finalOffset, finalLimit := utils.GetPaginationParams(offset, limit)

	query := s.db.WithContext(ctx).Model(&model.FormTemplate{})
	if plantID != "" {
		query = query.Where("plant_id = ?", plantID)
	}
	if !includeArchived {
		query = query.Where("archived = ?", false)
	}

	var templates []model.FormTemplate
	err := query.Order("created_at DESC").
		Offset(finalOffset).Limit(finalLimit).
		Find(&templates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}
