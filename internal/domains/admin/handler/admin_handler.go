package handler

import (
	"errors"
	"fmt"
	"net/http"

	"flipper-backend/internal/domains/admin"
	"flipper-backend/internal/domains/admin/service"
	"flipper-backend/internal/resource"
	"flipper-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminHandler handles admin HTTP requests
type AdminHandler struct {
	service *service.AdminService
}

// NewAdminHandler creates a new admin handler instance
func NewAdminHandler(service *service.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

// LoginRequest is the body of POST /admin/login
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// Login handles POST /admin/login
func (h *AdminHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "password is required")
		return
	}

	result, err := h.service.Login(req.Password)
	if err != nil {
		if errors.Is(err, admin.ErrInvalidCredentials) {
			log.Warn().Str("ip", c.ClientIP()).Msg("admin login failed")
			response.Unauthorized(c, "Invalid credentials")
			return
		}
		response.InternalServerError(c, err.Error())
		return
	}

	response.JSON(c, http.StatusOK, result)
}

// Export handles GET /admin/export/:kind
func (h *AdminHandler) Export(c *gin.Context) {
	kind := c.Param("kind")

	f, err := h.service.Export(c.Request.Context(), kind)
	if err != nil {
		if errors.Is(err, admin.ErrUnknownKind) {
			response.NotFound(c, "Route not found")
			return
		}
		statusCode, message, code := resource.MapErrorToHTTP(err)
		response.ErrorResponse(c, statusCode, code, message)
		return
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		response.InternalServerError(c, "failed to write spreadsheet")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, kind))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
