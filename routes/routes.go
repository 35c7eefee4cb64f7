package routes

import (
	"net/http"

	"tattootime/admin"
	"tattootime/auth"
	"tattootime/booking"
	"tattootime/confirmations"
	"tattootime/designs"
	"tattootime/history"
	"tattootime/materials"
	"tattootime/middleware"
	"tattootime/notifications"
	"tattootime/payments"
	"tattootime/ratelim"
	"tattootime/reviews"
	"tattootime/slots"

	"github.com/julienschmidt/httprouter"
)

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/uploads/designs/*filepath", http.Dir("static/uploads/designs"))
}

func AddAuthRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/auth/register", rl.Limit(auth.Register))
	router.POST("/api/auth/login", rl.Limit(auth.Login))
}

func AddSlotRoutes(router *httprouter.Router, rl *ratelim.RateLimiter, h *slots.SlotHandlers) {
	admin := middleware.Chain(middleware.Authenticate, middleware.RequireRoles("admin"))

	router.GET("/api/slots", rl.Limit(h.ListSlots))
	router.GET("/api/slots/:id", rl.Limit(h.GetSlot))
	router.POST("/api/slots", rl.Limit(admin(h.CreateSlot)))
	router.DELETE("/api/slots/:id", rl.Limit(admin(h.DeleteSlot)))

	router.GET("/ws/slots", booking.HandleSlotWS)
}

func AddBookingRoutes(router *httprouter.Router, rl *ratelim.RateLimiter, svc *booking.BookingService) {
	admin := middleware.Chain(middleware.Authenticate, middleware.RequireRoles("admin"))

	router.POST("/api/bookings", rl.Limit(middleware.Authenticate(svc.BookSlot)))
	router.GET("/api/bookings/mine", middleware.Authenticate(booking.GetMyAppointments))
	router.GET("/api/bookings", admin(booking.GetAllAppointments))
	router.GET("/api/confirmations/:id", middleware.Authenticate(confirmations.PrintConfirmation))
	router.POST("/api/appointments/:id/designs", rl.Limit(middleware.Authenticate(designs.UploadReferenceImage)))
}

func AddPaymentRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/payments", rl.Limit(middleware.Authenticate(payments.ProcessPayment)))
	router.GET("/api/payments/mine", middleware.Authenticate(payments.ListMyPayments))
}

func AddMaterialRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	admin := middleware.Chain(middleware.Authenticate, middleware.RequireRoles("admin"))

	router.GET("/api/materials", admin(materials.ListMaterials))
	router.POST("/api/materials", rl.Limit(admin(materials.CreateMaterial)))
	router.PUT("/api/materials/:id", rl.Limit(admin(materials.UpdateMaterial)))
	router.POST("/api/materials/usage", rl.Limit(admin(materials.RecordUsage)))
}

func AddReviewRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.GET("/api/reviews", rl.Limit(reviews.ListReviews))
	router.POST("/api/reviews", rl.Limit(middleware.Authenticate(reviews.CreateReview)))
}

func AddHistoryRoutes(router *httprouter.Router, _ *ratelim.RateLimiter) {
	admin := middleware.Chain(middleware.Authenticate, middleware.RequireRoles("admin"))

	router.GET("/api/history/mine", middleware.Authenticate(history.ListMyHistory))
	router.GET("/api/history/user/:userId", admin(history.ListUserHistory))
}

func AddNotificationRoutes(router *httprouter.Router, _ *ratelim.RateLimiter) {
	router.GET("/api/notifications/mine", middleware.Authenticate(notifications.ListMyNotifications))
}

func AddAdminRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	adminOnly := middleware.Chain(middleware.Authenticate, middleware.RequireRoles("admin"))

	router.POST("/api/admin/roles", rl.Limit(adminOnly(admin.AddAdminRole)))
	router.POST("/api/admin/initialize", rl.Limit(adminOnly(admin.InitializeDefaultData)))
}
