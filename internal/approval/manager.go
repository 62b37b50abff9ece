package approval

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/OpenMFG/formflow/internal/approval/router"
	"github.com/OpenMFG/formflow/internal/approval/service"
	templateRouter "github.com/OpenMFG/formflow/internal/template/router"
	templateService "github.com/OpenMFG/formflow/internal/template/service"
)

// Manager coordinates the approval domain: it wires stores, services and
// routers over a shared gorm handle and exposes route registration.
type Manager struct {
	templateService   *templateService.TemplateService
	approvalService   *service.ApprovalService
	assignmentService *service.AssignmentService
	bundleService     *service.BundleService
	queryService      *service.SubmissionQueryService

	templateRouter   *templateRouter.TemplateRouter
	submissionRouter *router.SubmissionRouter
	assignmentRouter *router.AssignmentRouter
	bundleRouter     *router.BundleRouter
}

// NewManager creates a new Manager with all services and routers wired.
func NewManager(db *gorm.DB) *Manager {
	// Initialize stores
	submissionStore := service.NewSubmissionStore(db)
	assignmentStore := service.NewAssignmentStore(db)
	bundleStore := service.NewBundleStore(db)

	// Initialize services
	templates := templateService.NewTemplateService(db)
	approvals := service.NewApprovalService(db, submissionStore)
	assignments := service.NewAssignmentService(db, assignmentStore, submissionStore, templates)
	bundles := service.NewBundleService(db, bundleStore, submissionStore, approvals)
	queries := service.NewSubmissionQueryService(db, submissionStore)

	m := &Manager{
		templateService:   templates,
		approvalService:   approvals,
		assignmentService: assignments,
		bundleService:     bundles,
		queryService:      queries,
	}

	// Initialize routers
	m.templateRouter = templateRouter.NewTemplateRouter(templates)
	m.submissionRouter = router.NewSubmissionRouter(assignments, approvals, queries)
	m.assignmentRouter = router.NewAssignmentRouter(assignments)
	m.bundleRouter = router.NewBundleRouter(bundles)

	return m
}

// RegisterRoutes mounts the whole HTTP surface under the given router group.
func (m *Manager) RegisterRoutes(api *gin.RouterGroup) {
	templates := api.Group("/templates")
	{
		templates.POST("", m.templateRouter.HandleCreateTemplate)
		templates.GET("", m.templateRouter.HandleListTemplates)
		templates.GET("/:templateID", m.templateRouter.HandleGetTemplate)
		templates.POST("/:templateID/flow", m.templateRouter.HandleAttachFlow)
		templates.POST("/:templateID/archive", m.templateRouter.HandleArchiveTemplate)
	}

	submissions := api.Group("/submissions")
	{
		submissions.POST("", m.submissionRouter.HandleSubmitDirect)
		submissions.GET("", m.submissionRouter.HandleListSubmissions)
		submissions.GET("/:submissionID", m.submissionRouter.HandleGetSubmission)
		submissions.POST("/:submissionID/decision", m.submissionRouter.HandleProcessApproval)
	}

	api.GET("/approvals/tasks", m.submissionRouter.HandleListApprovalTasks)

	assignments := api.Group("/assignments")
	{
		assignments.POST("", m.assignmentRouter.HandleCreateAssignments)
		assignments.GET("", m.assignmentRouter.HandleListAssignments)
		assignments.POST("/:assignmentID/submit", m.assignmentRouter.HandleSubmitAssignment)
	}

	bundles := api.Group("/bundles")
	{
		bundles.POST("", m.bundleRouter.HandleCreateBundle)
		bundles.GET("/:bundleID", m.bundleRouter.HandleGetBundle)
		bundles.POST("/:bundleID/decision", m.bundleRouter.HandleDecideBundle)
	}
}
