package reviews

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"tattootime/apperr"
	"tattootime/db"
	"tattootime/models"
	"tattootime/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type reviewRequest struct {
	AppointmentID string `json:"appointmentId"`
	Rating        int    `json:"rating"`
	Comment       string `json:"comment"`
	IsAnonymous   bool   `json:"isAnonymous"`
}

// Store is the document surface review creation runs against. Tests inject
// a memory implementation.
type Store interface {
	AppointmentByID(ctx context.Context, id string) (*models.Appointment, error)
	ReviewExists(ctx context.Context, appointmentID string) (bool, error)
	InsertReview(ctx context.Context, review *models.Review) error
	InsertHistory(ctx context.Context, entry *models.CustomerHistory) error
}

type mongoStore struct{}

func NewMongoStore() Store { return &mongoStore{} }

func (s *mongoStore) AppointmentByID(ctx context.Context, id string) (*models.Appointment, error) {
	var appt models.Appointment
	err := db.AppointmentsCollection.FindOne(ctx, bson.M{"id": id}).Decode(&appt)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.E(apperr.NotFound, "The requested appointment does not exist")
	}
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

func (s *mongoStore) ReviewExists(ctx context.Context, appointmentID string) (bool, error) {
	err := db.ReviewsCollection.FindOne(ctx, bson.M{"appointmentId": appointmentID}).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	return false, err
}

func (s *mongoStore) InsertReview(ctx context.Context, review *models.Review) error {
	_, err := db.ReviewsCollection.InsertOne(ctx, review)
	return err
}

func (s *mongoStore) InsertHistory(ctx context.Context, entry *models.CustomerHistory) error {
	entry.CreatedAt = time.Now()
	_, err := db.CustomerHistoryCollection.InsertOne(ctx, entry)
	return err
}

// eligible reports whether an appointment at date+startTime may be reviewed at
// now. Reviews open 24 hours after the appointment started.
func eligible(date, startTime string, now time.Time) (bool, error) {
	start, err := time.ParseInLocation("2006-01-02 15:04", date+" "+startTime, time.Local)
	if err != nil {
		return false, err
	}
	return now.Sub(start) >= 24*time.Hour, nil
}

// createReview enforces the review rules: only the appointment owner, only
// 24 hours after the session, and only once per appointment.
func createReview(ctx context.Context, store Store, userID string, req reviewRequest, now time.Time) (*models.Review, error) {
	if req.AppointmentID == "" {
		return nil, apperr.E(apperr.InvalidArgument, "appointmentId is required")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperr.E(apperr.InvalidArgument, "rating must be between 1 and 5")
	}

	appt, err := store.AppointmentByID(ctx, req.AppointmentID)
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return nil, ae
		}
		return nil, apperr.Wrap(apperr.Internal, "Failed to load appointment", err)
	}
	if appt.UserID != userID {
		return nil, apperr.E(apperr.PermissionDenied, "You can only review your own appointments")
	}

	ok, err := eligible(appt.Date, appt.Time, now)
	if err != nil || !ok {
		return nil, apperr.E(apperr.FailedPrecondition, "Reviews open 24 hours after the appointment")
	}

	exists, err := store.ReviewExists(ctx, req.AppointmentID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Failed to check existing reviews", err)
	}
	if exists {
		return nil, apperr.E(apperr.AlreadyExists, "This appointment has already been reviewed")
	}

	review := &models.Review{
		ID:            utils.GenerateRandomDigitString(22),
		AppointmentID: req.AppointmentID,
		UserID:        userID,
		Rating:        req.Rating,
		Comment:       req.Comment,
		IsAnonymous:   req.IsAnonymous,
		IsVerified:    true, // tied to a real appointment by construction
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := store.InsertReview(ctx, review); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Failed to save review", err)
	}

	if err := store.InsertHistory(ctx, &models.CustomerHistory{
		ID:          utils.GenerateRandomDigitString(22),
		UserID:      userID,
		Type:        "review",
		ReferenceID: review.ID,
		Description: "Review submitted",
		Metadata:    map[string]any{"appointmentId": req.AppointmentID, "rating": req.Rating},
		CreatedAt:   now,
	}); err != nil {
		log.Printf("history entry for review %s failed: %v", review.ID, err)
	}

	return review, nil
}

// CreateReview lets the appointment owner rate their session once, at least
// a day after it took place.
func CreateReview(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		apperr.Respond(w, apperr.E(apperr.Unauthenticated, "Sign in required"))
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Respond(w, apperr.E(apperr.InvalidArgument, "Invalid request body"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	review, err := createReview(ctx, NewMongoStore(), userID, req, time.Now())
	if err != nil {
		apperr.Respond(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"success":  true,
		"reviewId": review.ID,
		"message":  "Thank you for your review!",
	})
}

// ListReviews is public. Anonymous reviews are served without the user id.
func ListReviews(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	skip, limit := utils.ParsePagination(r, 20, 100)
	sort := utils.ParseSort(r.URL.Query().Get("sort"),
		bson.D{{Key: "createdAt", Value: -1}},
		map[string]bson.D{
			"rating": {{Key: "rating", Value: -1}},
			"oldest": {{Key: "createdAt", Value: 1}},
			"newest": {{Key: "createdAt", Value: -1}},
		})
	opts := options.Find().SetSkip(skip).SetLimit(limit).SetSort(sort)

	list, err := utils.FindAndDecode[models.Review](ctx, db.ReviewsCollection, bson.M{}, opts)
	if err != nil {
		apperr.Respond(w, apperr.Wrap(apperr.Internal, "Failed to retrieve reviews", err))
		return
	}
	for i := range list {
		if list[i].IsAnonymous {
			list[i].UserID = ""
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"reviews": list})
}
