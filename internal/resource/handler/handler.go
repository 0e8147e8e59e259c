package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"flipper-backend/internal/resource"
	"flipper-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Handler exposes one resource Manager over HTTP
type Handler struct {
	manager *resource.Manager
}

// NewHandler creates a handler for manager
func NewHandler(manager *resource.Manager) *Handler {
	return &Handler{manager: manager}
}

// Register mounts the routes the kind allows under /<kind>.
// writeGuard runs in front of POST/PATCH/DELETE when given.
func (h *Handler) Register(r gin.IRouter, writeGuard ...gin.HandlerFunc) {
	schema := h.manager.Schema()
	group := r.Group("/" + schema.Kind)

	write := func(fn gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, writeGuard...), fn)
	}

	if schema.Allows(resource.OpList) {
		group.GET("", h.List)
	}
	if schema.Allows(resource.OpCreate) {
		group.POST("", write(h.Create)...)
	}
	if schema.Allows(resource.OpUpdate) {
		group.PATCH("/:id", write(h.Update)...)
	}
	if schema.Allows(resource.OpDelete) {
		group.DELETE("/:id", write(h.Delete)...)
	}
}

// List handles GET /<kind>
func (h *Handler) List(c *gin.Context) {
	records, err := h.manager.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records)
}

// Create handles POST /<kind>
func (h *Handler) Create(c *gin.Context) {
	input, ok := bindInput(c)
	if !ok {
		return
	}

	rec, err := h.manager.Create(c.Request.Context(), input)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, rec)
}

// Update handles PATCH /<kind>/:id
func (h *Handler) Update(c *gin.Context) {
	input, ok := bindInput(c)
	if !ok {
		return
	}

	rec, err := h.manager.PartialUpdate(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rec)
}

// Delete handles DELETE /<kind>/:id
func (h *Handler) Delete(c *gin.Context) {
	if err := h.manager.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, fmt.Sprintf("%s deleted", h.manager.Schema().Singular))
}

// bindInput decodes the request body as a JSON object; an empty body is an empty object
func bindInput(c *gin.Context) (map[string]any, bool) {
	input := map[string]any{}
	err := c.ShouldBindJSON(&input)
	if err == nil || errors.Is(err, io.EOF) {
		return input, true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.ErrorResponse(c, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request entity too large")
		return nil, false
	}
	response.BadRequest(c, "Invalid request payload")
	return nil, false
}

func (h *Handler) fail(c *gin.Context, err error) {
	statusCode, message, code := resource.MapErrorToHTTP(err)
	if statusCode >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("request_id", c.GetString("request_id")).
			Str("kind", h.manager.Schema().Kind).
			Msg("resource operation failed")
	}
	response.ErrorResponse(c, statusCode, code, message)
}
