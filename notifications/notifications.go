package notifications

import (
	"context"
	"net/http"
	"time"

	"tattootime/apperr"
	"tattootime/db"
	"tattootime/models"
	"tattootime/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListMyNotifications returns the caller's notifications, soonest scheduled
// first. Status filtering covers the "what is still coming" view.
func ListMyNotifications(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		apperr.Respond(w, apperr.E(apperr.Unauthenticated, "Sign in required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	filter := bson.M{"userId": userID}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}

	skip, limit := utils.ParsePagination(r, 50, 200)
	opts := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "scheduledFor", Value: -1}})

	list, err := utils.FindAndDecode[models.Notification](ctx, db.NotificationsCollection, filter, opts)
	if err != nil {
		apperr.Respond(w, apperr.Wrap(apperr.Internal, "Failed to retrieve notifications", err))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"notifications": list})
}
