package history

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

// ListMyHistory returns the caller's activity trail, newest first. History
// rows are append-only so there is nothing else to do with them.
func ListMyHistory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		apperr.Respond(w, apperr.E(apperr.Unauthenticated, "Sign in required"))
		return
	}
	respondWithHistory(w, r, userID)
}

// ListUserHistory is the admin view over any customer's trail.
func ListUserHistory(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	respondWithHistory(w, r, ps.ByName("userId"))
}

func respondWithHistory(w http.ResponseWriter, r *http.Request, userID string) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	filter := bson.M{"userId": userID}
	if typ := r.URL.Query().Get("type"); typ != "" {
		filter["type"] = typ
	}

	skip, limit := utils.ParsePagination(r, 50, 200)
	opts := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "createdAt", Value: -1}})

	entries, err := utils.FindAndDecode[models.CustomerHistory](ctx, db.CustomerHistoryCollection, filter, opts)
	if err != nil {
		apperr.Respond(w, apperr.Wrap(apperr.Internal, "Failed to retrieve history", err))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"history": entries})
}
