package v1

import (
	"net/http"
	"strconv"

	"go-jobboard-backend/internal/delivery/http/response"
	"go-jobboard-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

// statusLabels maps each status to its display label. Pure presentation
// data; the state machine itself never sees these strings.
var statusLabels = map[domain.ApplicationStatus]string{
	domain.StatusPending:      "Pending review",
	domain.StatusReviewed:     "Reviewed",
	domain.StatusInterviewing: "Interviewing",
	domain.StatusOffer:        "Offer extended",
	domain.StatusRejected:     "Not selected",
	domain.StatusHired:        "Hired",
}

// applicationDTO decorates an application with its display label.
type applicationDTO struct {
	domain.JobApplication
	StatusLabel string `json:"statusLabel"`
}

func toDTO(app domain.JobApplication) applicationDTO {
	return applicationDTO{JobApplication: app, StatusLabel: statusLabels[app.Status]}
}

type ApplicationHandler struct {
	applicationUC domain.ApplicationUsecase
}

func NewApplicationHandler(r *gin.RouterGroup, applicationUC domain.ApplicationUsecase, writeLimit gin.HandlerFunc) {
	handler := &ApplicationHandler{applicationUC: applicationUC}

	apps := r.Group("/applications")
	{
		apps.POST("", writeLimit, handler.Apply)
		apps.GET("/me", handler.MyApplications)
		apps.GET("/eligibility", handler.Eligibility)
		apps.PUT("/:id/status", writeLimit, handler.UpdateStatus)
	}
	r.GET("/jobs/:id/applications", handler.ListByJob)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

// Eligibility godoc
// @Summary      Check application eligibility
// @Description  Runs the profile-completion and CV gate without side effects
// @Tags         applications
// @Produce      json
// @Param        resumeUrl  query  string  false  "ad-hoc CV selected for this application"
// @Success      200  {object}  response.Response{data=domain.Eligibility}
// @Router       /applications/eligibility [get]
// @Security     BearerAuth
func (h *ApplicationHandler) Eligibility(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	eligibility, err := h.applicationUC.CheckEligibility(c.Request.Context(), userID, c.Query("resumeUrl"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Eligibility", eligibility)
}

// Apply godoc
// @Summary      Submit a job application
// @Description  Gated submission: profile must be at least half complete and a CV must be available
// @Tags         applications
// @Accept       json
// @Produce      json
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /applications [post]
// @Security     BearerAuth
func (h *ApplicationHandler) Apply(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	var in domain.ApplyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	app, err := h.applicationUC.ApplyToJob(c.Request.Context(), userID, in)
	if err != nil {
		c.Error(err)
		return
	}
	response.Created(c, "Application submitted", toDTO(*app))
}

// MyApplications godoc
// @Summary      List my applications
// @Tags         applications
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /applications/me [get]
// @Security     BearerAuth
func (h *ApplicationHandler) MyApplications(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	apps, err := h.applicationUC.GetMyApplications(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "My applications", decorate(apps))
}

// ListByJob godoc
// @Summary      List a job's applications (employer review)
// @Tags         applications
// @Produce      json
// @Param        id  path  int  true  "job id"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /jobs/{id}/applications [get]
// @Security     BearerAuth
func (h *ApplicationHandler) ListByJob(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	jobID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid job id", nil)
		return
	}

	apps, err := h.applicationUC.ListByJobID(c.Request.Context(), userID, jobID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Applications", decorate(apps))
}

// UpdateStatus godoc
// @Summary      Move an application through the review pipeline
// @Description  Validates the transition, stamps lastStatusUpdate and stores the optional note
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        id  path  int  true  "application id"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /applications/{id}/status [put]
// @Security     BearerAuth
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	appID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid application id", nil)
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "status is required", nil)
		return
	}

	app, err := h.applicationUC.UpdateApplicationStatus(c.Request.Context(), userID, appID, req.Status, req.Note)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Application status updated", toDTO(*app))
}

func decorate(apps []domain.JobApplication) []applicationDTO {
	out := make([]applicationDTO, 0, len(apps))
	for _, app := range apps {
		out = append(out, toDTO(app))
	}
	return out
}
