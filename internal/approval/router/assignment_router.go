package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OpenMFG/formflow/internal/apperr"
	"github.com/OpenMFG/formflow/internal/approval/model"
	"github.com/OpenMFG/formflow/internal/approval/service"
	"github.com/OpenMFG/formflow/internal/auth"
)

// AssignmentRouter exposes assignment creation, listing and filling.
type AssignmentRouter struct {
	assignments *service.AssignmentService
}

// NewAssignmentRouter creates a new AssignmentRouter.
func NewAssignmentRouter(assignments *service.AssignmentService) *AssignmentRouter {
	return &AssignmentRouter{assignments: assignments}
}

// HandleCreateAssignments handles POST /api/assignments requests. One
// assignment is created per (template, employee) pair.
func (ar *AssignmentRouter) HandleCreateAssignments(c *gin.Context) {
	var req model.CreateAssignmentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_ERROR", "message": "invalid request body: " + err.Error()})
		return
	}

	assignedBy := auth.ActorID(c.Request.Context())
	created, err := ar.assignments.AssignTemplates(c.Request.Context(), req.TemplateIDs, req.EmployeeIDs, req.PlantID, assignedBy, req.DueDate)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// HandleSubmitAssignment handles POST /api/assignments/{assignmentID}/submit requests.
func (ar *AssignmentRouter) HandleSubmitAssignment(c *gin.Context) {
	assignmentID, ok := pathUUID(c, "assignmentID")
	if !ok {
		return
	}

	var req model.SubmitAssignmentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_ERROR", "message": "invalid request body: " + err.Error()})
		return
	}

	actorID := auth.ActorID(c.Request.Context())
	sub, err := ar.assignments.SubmitAssignment(c.Request.Context(), assignmentID, actorID, req.Data, req.Files)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, service.ToResponseDTO(sub, actorID))
}

// HandleListAssignments handles GET /api/assignments requests filtered by
// employeeId or plantId.
func (ar *AssignmentRouter) HandleListAssignments(c *gin.Context) {
	offset, limit, ok := paginationParams(c)
	if !ok {
		return
	}

	employeeID := c.Query("employeeId")
	plantID := c.Query("plantId")

	var (
		assignments []model.Assignment
		err         error
	)
	switch {
	case employeeID != "":
		assignments, err = ar.assignments.ListForEmployee(c.Request.Context(), employeeID, offset, limit)
	case plantID != "":
		assignments, err = ar.assignments.ListForPlant(c.Request.Context(), plantID, offset, limit)
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   string(apperr.KindValidation),
			"message": "missing required query parameter: employeeId or plantId",
		})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, assignments)
}
