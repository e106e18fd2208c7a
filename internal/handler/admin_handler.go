package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/shareit-platform/service-booking/internal/application"
	"github.com/shareit-platform/service-booking/internal/platform/auth"
	"github.com/shareit-platform/service-booking/internal/platform/domain"
	"github.com/shareit-platform/service-booking/internal/platform/middleware"
	"github.com/shareit-platform/service-booking/internal/platform/response"
)

// AdminBookingHandler exposes the operator view of the booking ledger: every
// booking regardless of who booked or owns the item, and per-status counts.
type AdminBookingHandler struct {
	service *application.BookingService
}

func NewAdminBookingHandler(service *application.BookingService) *AdminBookingHandler {
	return &AdminBookingHandler{service: service}
}

// RegisterRoutes mounts /api/v1/admin behind the admin role. Only JWT callers
// carry a role, so X-Sharer-User-Id identities are always refused with 403.
func (h *AdminBookingHandler) RegisterRoutes(r *gin.RouterGroup, authMW gin.HandlerFunc) {
	admin := r.Group("/api/v1/admin")
	admin.Use(authMW, middleware.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/bookings", h.ListLedger)
		admin.GET("/stats/bookings", h.StatusCounts)
	}
}

// ListLedger pages through all bookings, newest first, with page/limit
// paging and a total for operator dashboards.
func (h *AdminBookingHandler) ListLedger(c *gin.Context) {
	page, limit := parsePagination(c)

	ledger, total, err := h.service.ListAllBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, domain.NewPaginatedResult(ledger, total, page, limit))
}

// StatusCounts reports the number of bookings in each status.
func (h *AdminBookingHandler) StatusCounts(c *gin.Context) {
	counts, err := h.service.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, counts)
}
