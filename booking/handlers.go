package booking

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"tattootime/apperr"
	"tattootime/db"
	"tattootime/middleware"
	"tattootime/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BookSlot handles POST /api/bookings. Identity comes from the JWT, never
// from the payload.
func (s *BookingService) BookSlot(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		apperr.Respond(w, apperr.E(apperr.Unauthenticated, "You must be signed in to book a slot"))
		return
	}

	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Respond(w, apperr.E(apperr.InvalidArgument, "Invalid request body"))
		return
	}

	userEmail := ""
	if claims, err := middleware.ValidateJWT(r.Header.Get("Authorization")); err == nil {
		userEmail = claims.Username
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	appt, err := s.Book(ctx, userID, userEmail, req)
	if err != nil {
		apperr.Respond(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"message":       "Appointment booked successfully!",
		"appointmentId": appt.ID,
	})
}

// GetMyAppointments lists the caller's appointments, newest first.
func GetMyAppointments(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		apperr.Respond(w, apperr.E(apperr.Unauthenticated, "Sign in required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	skip, limit := utils.ParsePagination(r, 20, 100)
	opts := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "createdAt", Value: -1}})

	appts, err := utils.FindAndDecode[map[string]any](ctx, db.AppointmentsCollection, bson.M{"userId": userID}, opts)
	if err != nil {
		apperr.Respond(w, apperr.Wrap(apperr.Internal, "Failed to retrieve appointments", err))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"appointments": appts})
}

// GetAllAppointments is the admin view, with optional date filter.
func GetAllAppointments(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	filter := bson.M{}
	if date := r.URL.Query().Get("date"); date != "" {
		filter["date"] = date
	}

	skip, limit := utils.ParsePagination(r, 50, 200)
	opts := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}})

	appts, err := utils.FindAndDecode[map[string]any](ctx, db.AppointmentsCollection, filter, opts)
	if err != nil {
		apperr.Respond(w, apperr.Wrap(apperr.Internal, "Failed to retrieve appointments", err))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"appointments": appts})
}
