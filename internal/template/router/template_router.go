package router

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/OpenMFG/formflow/internal/apperr"
	"github.com/OpenMFG/formflow/internal/template/model"
	"github.com/OpenMFG/formflow/internal/template/service"
)

// TemplateRouter exposes form template management.
type TemplateRouter struct {
	templates *service.TemplateService
}

// NewTemplateRouter creates a new TemplateRouter.
func NewTemplateRouter(templates *service.TemplateService) *TemplateRouter {
	return &TemplateRouter{templates: templates}
}

// HandleCreateTemplate handles POST /api/templates requests.
func (tr *TemplateRouter) HandleCreateTemplate(c *gin.Context) {
	var req model.CreateTemplateDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_ERROR", "message": "invalid request body: " + err.Error()})
		return
	}

	tmpl, err := tr.templates.CreateTemplate(c.Request.Context(), &req)
	if err != nil {
		tr.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tmpl.ToResponseDTO())
}

// HandleGetTemplate handles GET /api/templates/{templateID} requests.
func (tr *TemplateRouter) HandleGetTemplate(c *gin.Context) {
	templateID, ok := tr.pathUUID(c, "templateID")
	if !ok {
		return
	}

	tmpl, err := tr.templates.GetTemplate(c.Request.Context(), templateID)
	if err != nil {
		tr.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tmpl.ToResponseDTO())
}

// HandleListTemplates handles GET /api/templates requests.
// Optional query filters: plantId, includeArchived, offset, limit.
func (tr *TemplateRouter) HandleListTemplates(c *gin.Context) {
	var offset, limit *int
	if offsetStr := c.Query("offset"); offsetStr != "" {
		value, err := strconv.Atoi(offsetStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_ERROR", "message": "invalid 'offset' query parameter, must be an integer"})
			return
		}
		offset = &value
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		value, err := strconv.Atoi(limitStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_ERROR", "message": "invalid 'limit' query parameter, must be an integer"})
			return
		}
		limit = &value
	}

	includeArchived := c.Query("includeArchived") == "true"
	templates, err := tr.templates.ListTemplates(c.Request.Context(), c.Query("plantId"), includeArchived, offset, limit)
	if err != nil {
		tr.respondError(c, err)
		return
	}

	dtos := make([]model.TemplateResponseDTO, 0, len(templates))
	for i := range templates {
		dtos = append(dtos, templates[i].ToResponseDTO())
	}
	c.JSON(http.StatusOK, dtos)
}

// HandleAttachFlow handles POST /api/templates/{templateID}/flow requests.
func (tr *TemplateRouter) HandleAttachFlow(c *gin.Context) {
	templateID, ok := tr.pathUUID(c, "templateID")
	if !ok {
		return
	}

	var req model.AttachFlowDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_ERROR", "message": "invalid request body: " + err.Error()})
		return
	}

	tmpl, err := tr.templates.AttachFlow(c.Request.Context(), templateID, req.Flow)
	if err != nil {
		tr.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tmpl.ToResponseDTO())
}

// HandleArchiveTemplate handles POST /api/templates/{templateID}/archive requests.
func (tr *TemplateRouter) HandleArchiveTemplate(c *gin.Context) {
	templateID, ok := tr.pathUUID(c, "templateID")
	if !ok {
		return
	}

	if err := tr.templates.ArchiveTemplate(c.Request.Context(), templateID); err != nil {
		tr.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"archived": true})
}

func (tr *TemplateRouter) pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	raw := c.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_ERROR", "message": "invalid " + name + ": " + raw})
		return uuid.Nil, false
	}
	return id, true
}

func (tr *TemplateRouter) respondError(c *gin.Context, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": string(apperr.KindInternal), "message": "internal error"})
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Kind {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindNotAuthorized:
		status = http.StatusForbidden
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindInvalidState:
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": string(appErr.Kind), "message": appErr.Message})
}
