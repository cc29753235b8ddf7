package v1

import (
	"net/http"

	"go-jobboard-backend/internal/delivery/http/response"
	"go-jobboard-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type CandidateHandler struct {
	candidateUC domain.CandidateUsecase
}

func NewCandidateHandler(r *gin.RouterGroup, candidateUC domain.CandidateUsecase, writeLimit gin.HandlerFunc) {
	handler := &CandidateHandler{candidateUC: candidateUC}

	profile := r.Group("/candidate/profile")
	{
		profile.GET("", handler.GetProfile)
		profile.PUT("", writeLimit, handler.PatchProfile)
		profile.POST("/flush", writeLimit, handler.FlushProfile)
		profile.DELETE("/session", writeLimit, handler.EndSession)
	}
}

// GetProfile godoc
// @Summary      Get candidate profile
// @Description  Profile of the logged-in candidate with its completion percentage (recomputed on every read)
// @Tags         candidate
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.ProfileView}
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /candidate/profile [get]
// @Security     BearerAuth
func (h *CandidateHandler) GetProfile(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	view, err := h.candidateUC.GetProfile(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Candidate profile", view)
}

// PatchProfile godoc
// @Summary      Autosave profile fields
// @Description  Applies a partial edit optimistically and schedules the debounced persist. Responds before the save lands.
// @Tags         candidate
// @Accept       json
// @Produce      json
// @Success      202  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /candidate/profile [put]
// @Security     BearerAuth
func (h *CandidateHandler) PatchProfile(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	// The authenticated subject decides whose profile is patched.
	delete(fields, "userId")

	snapshot, err := h.candidateUC.PatchProfile(c.Request.Context(), userID, fields)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusAccepted, "Profile changes queued", snapshot)
}

// FlushProfile godoc
// @Summary      Flush pending profile edits
// @Description  Persists queued edits immediately instead of waiting for the debounce window
// @Tags         candidate
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /candidate/profile/flush [post]
// @Security     BearerAuth
func (h *CandidateHandler) FlushProfile(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	if err := h.candidateUC.FlushProfile(c.Request.Context(), userID); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile saved", nil)
}

// EndSession godoc
// @Summary      End the profile edit session
// @Description  Cancels any pending autosave timer and releases session state. Call on logout or editor unmount.
// @Tags         candidate
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /candidate/profile/session [delete]
// @Security     BearerAuth
func (h *CandidateHandler) EndSession(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))
	h.candidateUC.EndProfileSession(c.Request.Context(), userID)
	response.Success(c, http.StatusOK, "Edit session closed", nil)
}
