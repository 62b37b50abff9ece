package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OpenMFG/formflow/internal/approval/model"
	"github.com/OpenMFG/formflow/internal/approval/service"
	"github.com/OpenMFG/formflow/internal/auth"
)

// BundleRouter exposes bundle creation and combined decisions.
type BundleRouter struct {
	bundles *service.BundleService
}

// NewBundleRouter creates a new BundleRouter.
func NewBundleRouter(bundles *service.BundleService) *BundleRouter {
	return &BundleRouter{bundles: bundles}
}

// HandleCreateBundle handles POST /api/bundles requests.
func (br *BundleRouter) HandleCreateBundle(c *gin.Context) {
	var req model.CreateBundleDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_ERROR", "message": "invalid request body: " + err.Error()})
		return
	}

	submittedBy := auth.ActorID(c.Request.Context())
	bundle, err := br.bundles.CreateBundle(c.Request.Context(), req.SubmissionIDs, submittedBy)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bundle)
}

// HandleGetBundle handles GET /api/bundles/{bundleID} requests.
func (br *BundleRouter) HandleGetBundle(c *gin.Context) {
	bundleID, ok := pathUUID(c, "bundleID")
	if !ok {
		return
	}

	bundle, err := br.bundles.GetBundle(c.Request.Context(), bundleID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, bundle)
}

// HandleDecideBundle handles POST /api/bundles/{bundleID}/decision requests.
// Partial outcomes are a success path: the 200 body reports transitioned
// members and per-member failures side by side.
func (br *BundleRouter) HandleDecideBundle(c *gin.Context) {
	bundleID, ok := pathUUID(c, "bundleID")
	if !ok {
		return
	}

	var req model.DecisionDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_ERROR", "message": "invalid request body: " + err.Error()})
		return
	}

	actorID := auth.ActorID(c.Request.Context())
	outcome, err := br.bundles.DecideBundle(c.Request.Context(), bundleID, actorID, req.Decision, req.Comments)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}
