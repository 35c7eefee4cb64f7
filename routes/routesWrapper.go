package routes

import (
	"tattootime/booking"
	"tattootime/ratelim"
	"tattootime/slots"

	"github.com/julienschmidt/httprouter"
)

func RoutesWrapper(router *httprouter.Router, rl *ratelim.RateLimiter, svc *booking.BookingService, slotHandlers *slots.SlotHandlers) {
	AddStaticRoutes(router)
	AddAuthRoutes(router, rl)
	AddSlotRoutes(router, rl, slotHandlers)
	AddBookingRoutes(router, rl, svc)
	AddPaymentRoutes(router, rl)
	AddMaterialRoutes(router, rl)
	AddReviewRoutes(router, rl)
	AddHistoryRoutes(router, rl)
	AddNotificationRoutes(router, rl)
	AddAdminRoutes(router, rl)
}
