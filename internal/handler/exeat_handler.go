package handler

import (
	"errors"
	"net/http"
	"time"

	"exeat-backend/internal/middleware"
	"exeat-backend/internal/model"
	"exeat-backend/internal/service"
	"exeat-backend/internal/store"
	"exeat-backend/pkg/pagination"
	"exeat-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ExeatHandler struct {
	exeatService service.ExeatService
}

func NewExeatHandler(exeatService service.ExeatService) *ExeatHandler {
	return &ExeatHandler{exeatService: exeatService}
}

// RegisterRoutes binds the exeat endpoints to the gin RouterGroup
func (h *ExeatHandler) RegisterRoutes(router *gin.RouterGroup) {
	exeats := router.Group("/api/exeats")
	{
		exeats.POST("", middleware.RequireRole(model.RoleStudent), h.Submit)
		exeats.GET("", middleware.RequireRole(model.RoleAdmin, model.RoleSuperAdmin), h.List)
		exeats.GET("/mine", middleware.RequireRole(model.RoleStudent), h.ListMine)
		exeats.GET("/:id", middleware.RequireRole(model.RoleStudent, model.RoleAdmin, model.RoleSuperAdmin, model.RoleSecurity), h.Get)
		exeats.PUT("/:id/approve", middleware.RequireRole(model.RoleAdmin, model.RoleSuperAdmin), h.Approve)
		exeats.PUT("/:id/reject", middleware.RequireRole(model.RoleAdmin, model.RoleSuperAdmin), h.Reject)
		exeats.PUT("/:id/reopen", middleware.RequireRole(model.RoleAdmin, model.RoleSuperAdmin), h.Reopen)
		exeats.DELETE("/:id", middleware.RequireRole(model.RoleStudent, model.RoleAdmin, model.RoleSuperAdmin), h.Delete)
	}
}

// statusForError maps service/store errors onto HTTP status codes.
func statusForError(err error) int {
	var ve *service.ValidationError
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrAlreadyReviewed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Submit creates a new exeat request for the signed-in student
// @Summary      Submit exeat request
// @Description  Creates a pending exeat request for the authenticated student
// @Tags         exeats
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.SubmitExeatRequest  true  "Exeat Request"
// @Success      201      {object}  response.Response{data=model.ExeatRequest}
// @Failure      400      {object}  response.Response
// @Router       /api/exeats [post]
func (h *ExeatHandler) Submit(c *gin.Context) {
	var req service.SubmitExeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	// Subject comes from the session, not the payload.
	req.StudentID = c.GetString("studentID")
	req.StudentName = c.GetString("userName")

	rec, err := h.exeatService.Submit(c.Request.Context(), req)
	if err != nil {
		c.JSON(statusForError(err), response.Error(statusForError(err), err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, rec))
}

// List returns exeat requests matching the query filters
// @Summary      List exeat requests
// @Description  Admin listing with conjunctive filters, newest first
// @Tags         exeats
// @Produce      json
// @Security     BearerAuth
// @Param        status      query  string  false  "Status filter (pending|approved|rejected)"
// @Param        student_id  query  string  false  "Student id filter"
// @Param        department  query  string  false  "Department filter"
// @Param        from        query  string  false  "Departure lower bound (RFC3339)"
// @Param        to          query  string  false  "Departure upper bound (RFC3339)"
// @Param        search      query  string  false  "Free-text search"
// @Param        page        query  int     false  "Page number"
// @Param        limit       query  int     false  "Page size"
// @Success      200  {object}  response.ListResponse
// @Failure      400  {object}  response.Response
// @Router       /api/exeats [get]
func (h *ExeatHandler) List(c *gin.Context) {
	if s := c.Query("status"); s != "" && !model.ValidStatus(s) {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Unknown status: "+s))
		return
	}

	page := pagination.Parse(c)
	filter := service.ExeatFilter{
		Status:     c.Query("status"),
		StudentID:  c.Query("student_id"),
		Department: c.Query("department"),
		Page:       page.Page,
		Limit:      page.Limit,
	}

	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid 'from' timestamp"))
			return
		}
		filter.DepartureFrom = t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid 'to' timestamp"))
			return
		}
		filter.DepartureTo = t
	}

	// Free-text search runs as a second pass over the filtered set, so
	// pagination must happen after it; disable service-side paging.
	search := c.Query("search")
	if search != "" {
		filter.Page, filter.Limit = 0, 0
	}

	records, total, err := h.exeatService.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	if search != "" {
		records = service.Search(records, search)
		total = int64(len(records))
		start := (page.Page - 1) * page.Limit
		if start >= len(records) {
			records = []model.ExeatRequest{}
		} else {
			end := start + page.Limit
			if end > len(records) {
				end = len(records)
			}
			records = records[start:end]
		}
	}

	c.JSON(http.StatusOK, response.List(http.StatusOK, records, total, page.Page, page.Limit))
}

// ListMine returns the signed-in student's own requests
// @Summary      List own exeat requests
// @Tags         exeats
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.ExeatRequest}
// @Router       /api/exeats/mine [get]
func (h *ExeatHandler) ListMine(c *gin.Context) {
	records, err := h.exeatService.ListForStudent(c.Request.Context(), c.GetString("studentID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, records))
}

// Get returns a single exeat request by id
// @Summary      Get exeat request
// @Tags         exeats
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Exeat id"
// @Success      200  {object}  response.Response{data=model.ExeatRequest}
// @Failure      404  {object}  response.Response
// @Router       /api/exeats/{id} [get]
func (h *ExeatHandler) Get(c *gin.Context) {
	rec, err := h.exeatService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(statusForError(err), response.Error(statusForError(err), err.Error()))
		return
	}

	// Students may only read their own requests.
	if c.GetString("userRole") == model.RoleStudent && rec.StudentID != c.GetString("studentID") {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rec))
}

// Approve approves a request and issues its QR token
// @Summary      Approve exeat request
// @Tags         exeats
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string                      true   "Exeat id"
// @Param        payload  body  service.ReviewExeatRequest  false  "Review comment"
// @Success      200  {object}  response.Response{data=model.ExeatRequest}
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/exeats/{id}/approve [put]
func (h *ExeatHandler) Approve(c *gin.Context) {
	var req service.ReviewExeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Empty body allowed — comment is optional
		req.Comment = ""
	}

	rec, err := h.exeatService.Approve(c.Request.Context(), c.Param("id"), c.GetString("userName"), req.Comment)
	if err != nil {
		c.JSON(statusForError(err), response.Error(statusForError(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rec))
}

// Reject rejects a request and clears any issued QR token
// @Summary      Reject exeat request
// @Tags         exeats
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string                      true   "Exeat id"
// @Param        payload  body  service.ReviewExeatRequest  false  "Review comment"
// @Success      200  {object}  response.Response{data=model.ExeatRequest}
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/exeats/{id}/reject [put]
func (h *ExeatHandler) Reject(c *gin.Context) {
	var req service.ReviewExeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req.Comment = ""
	}

	rec, err := h.exeatService.Reject(c.Request.Context(), c.Param("id"), c.GetString("userName"), req.Comment)
	if err != nil {
		c.JSON(statusForError(err), response.Error(statusForError(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rec))
}

// Reopen puts a reviewed request back into the pending queue
// @Summary      Reopen exeat request
// @Tags         exeats
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string                      true   "Exeat id"
// @Param        payload  body  service.ReopenExeatRequest  false  "Reopen note"
// @Success      200  {object}  response.Response{data=model.ExeatRequest}
// @Failure      404  {object}  response.Response
// @Router       /api/exeats/{id}/reopen [put]
func (h *ExeatHandler) Reopen(c *gin.Context) {
	var req service.ReopenExeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req.Note = "Reopened for re-review"
	}

	rec, err := h.exeatService.Reopen(c.Request.Context(), c.Param("id"), c.GetString("userName"), req.Note)
	if err != nil {
		c.JSON(statusForError(err), response.Error(statusForError(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rec))
}

// Delete permanently removes an exeat request
// @Summary      Delete exeat request
// @Tags         exeats
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Exeat id"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/exeats/{id} [delete]
func (h *ExeatHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	// Students may only delete their own requests.
	if c.GetString("userRole") == model.RoleStudent {
		rec, err := h.exeatService.Get(c.Request.Context(), id)
		if err != nil {
			c.JSON(statusForError(err), response.Error(statusForError(err), err.Error()))
			return
		}
		if rec.StudentID != c.GetString("studentID") {
			c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied"))
			return
		}
	}

	if err := h.exeatService.Delete(c.Request.Context(), id); err != nil {
		c.JSON(statusForError(err), response.Error(statusForError(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"id": id}))
}
