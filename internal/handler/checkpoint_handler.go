package handler

import (
	"net/http"

	"exeat-backend/internal/middleware"
	"exeat-backend/internal/model"
	"exeat-backend/internal/service"
	"exeat-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type CheckpointHandler struct {
	checkpointService service.CheckpointService
}

func NewCheckpointHandler(checkpointService service.CheckpointService) *CheckpointHandler {
	return &CheckpointHandler{checkpointService: checkpointService}
}

// RegisterRoutes binds the verification endpoint to the gin RouterGroup
func (h *CheckpointHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/verify/:code", middleware.RequireRole(
		model.RoleSecurity, model.RoleAdmin, model.RoleSuperAdmin,
	), h.Verify)
}

// Verify classifies a scanned or typed exeat code
// @Summary      Verify exeat code
// @Description  Looks up the request by its QR token and classifies it as valid, expired or invalid
// @Tags         checkpoint
// @Produce      json
// @Security     BearerAuth
// @Param        code  path  string  true  "Exeat QR code"
// @Success      200  {object}  response.Response{data=service.VerificationResult}
// @Failure      404  {object}  response.Response
// @Router       /api/verify/{code} [get]
func (h *CheckpointHandler) Verify(c *gin.Context) {
	result, err := h.checkpointService.VerifyByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Invalid or expired exeat code"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
