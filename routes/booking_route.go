package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/innkeep/enquiry/controllers/enquiry_controller"
	"github.com/innkeep/enquiry/middlewares"
)

// RegisterBookingRoutes wires the intake endpoint. The IP limiter in front
// of it is an abuse guard; the per-tenant business limiter lives inside the
// controller.
func RegisterBookingRoutes(r *gin.Engine, ec *enquiry_controller.EnquiryController, rdb *redis.Client) {
	r.POST("/bookings", middlewares.IPRateLimiter(rdb, "30-1m", "bookings"), ec.Submit)
}
