package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OpenMFG/formflow/internal/approval/model"
	"github.com/OpenMFG/formflow/internal/approval/service"
	"github.com/OpenMFG/formflow/internal/auth"
)

// SubmissionRouter exposes direct submission, approval task reads and
// approval decisions.
type SubmissionRouter struct {
	assignments *service.AssignmentService
	approvals   *service.ApprovalService
	queries     *service.SubmissionQueryService
}

// NewSubmissionRouter creates a new SubmissionRouter.
func NewSubmissionRouter(assignments *service.AssignmentService, approvals *service.ApprovalService, queries *service.SubmissionQueryService) *SubmissionRouter {
	return &SubmissionRouter{
		assignments: assignments,
		approvals:   approvals,
		queries:     queries,
	}
}

// HandleSubmitDirect handles POST /api/submissions requests.
func (sr *SubmissionRouter) HandleSubmitDirect(c *gin.Context) {
	var req model.SubmitDirectDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_ERROR", "message": "invalid request body: " + err.Error()})
		return
	}

	actorID := auth.ActorID(c.Request.Context())
	sub, err := sr.assignments.SubmitDirect(c.Request.Context(), req.TemplateID, actorID, req.PlantID, req.Data, req.Files)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, service.ToResponseDTO(sub, actorID))
}

// HandleGetSubmission handles GET /api/submissions/{submissionID} requests.
// The response carries the resolved turn fields for the requesting user.
func (sr *SubmissionRouter) HandleGetSubmission(c *gin.Context) {
	submissionID, ok := pathUUID(c, "submissionID")
	if !ok {
		return
	}

	viewerID := auth.ActorID(c.Request.Context())
	dto, err := sr.queries.GetApprovalTask(c.Request.Context(), submissionID, viewerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto)
}

// HandleListSubmissions handles GET /api/submissions?submittedBy= requests.
func (sr *SubmissionRouter) HandleListSubmissions(c *gin.Context) {
	offset, limit, ok := paginationParams(c)
	if !ok {
		return
	}

	submittedBy := c.Query("submittedBy")
	if submittedBy == "" {
		submittedBy = auth.ActorID(c.Request.Context())
	}

	dtos, err := sr.queries.ListSubmittedBy(c.Request.Context(), submittedBy, offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dtos)
}

// HandleListApprovalTasks handles GET /api/approvals/tasks requests: the
// submissions currently awaiting the authenticated approver.
func (sr *SubmissionRouter) HandleListApprovalTasks(c *gin.Context) {
	offset, limit, ok := paginationParams(c)
	if !ok {
		return
	}

	approverID := auth.ActorID(c.Request.Context())
	dtos, err := sr.queries.ListApprovalTasks(c.Request.Context(), approverID, offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dtos)
}

// HandleProcessApproval handles POST /api/submissions/{submissionID}/decision requests.
func (sr *SubmissionRouter) HandleProcessApproval(c *gin.Context) {
	submissionID, ok := pathUUID(c, "submissionID")
	if !ok {
		return
	}

	var req model.DecisionDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_ERROR", "message": "invalid request body: " + err.Error()})
		return
	}

	actorID := auth.ActorID(c.Request.Context())
	sub, err := sr.approvals.ProcessApproval(c.Request.Context(), submissionID, actorID, req.Decision, req.Comments)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, service.ToResponseDTO(sub, actorID))
}
