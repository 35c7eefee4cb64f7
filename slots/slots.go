package slots

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"tattootime/apperr"
	"tattootime/db"
	"tattootime/models"
	"tattootime/mq"
	"tattootime/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SlotHandlers carries the event emitter for live calendar updates.
type SlotHandlers struct {
	Events mq.Emitter
}

func NewSlotHandlers(events mq.Emitter) *SlotHandlers {
	return &SlotHandlers{Events: events}
}

// CreateSlot is admin-only: operators open bookable time windows.
func (h *SlotHandlers) CreateSlot(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var s models.Slot
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		apperr.Respond(w, apperr.E(apperr.InvalidArgument, "Invalid request body"))
		return
	}
	if s.Date == "" || s.StartTime == "" || s.EndTime == "" || s.ServiceType == "" {
		apperr.Respond(w, apperr.E(apperr.InvalidArgument, "Required fields missing: date, startTime, endTime, serviceType"))
		return
	}
	if _, err := time.Parse("2006-01-02", s.Date); err != nil {
		apperr.Respond(w, apperr.E(apperr.InvalidArgument, "date must be YYYY-MM-DD"))
		return
	}

	s.ID = utils.GenerateRandomDigitString(22)
	s.IsBooked = false
	s.BookedByUserID = ""
	s.BookedByUserName = ""
	s.BookedByEmail = ""
	s.CreatedAt = time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if _, err := db.SlotsCollection.InsertOne(ctx, s); err != nil {
		apperr.Respond(w, apperr.Wrap(apperr.Internal, "Failed to create slot", err))
		return
	}

	if h.Events != nil {
		h.Events.Emit(ctx, mq.SlotEvent{
			Type:        "slot_created",
			SlotID:      s.ID,
			Date:        s.Date,
			StartTime:   s.StartTime,
			ServiceType: s.ServiceType,
		})
	}

	utils.RespondWithJSON(w, http.StatusCreated, map[string]any{"slot": s})
}

// ListSlots supports the calendar: filter by date range, service type and
// availability.
func (h *SlotHandlers) ListSlots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	filter := bson.M{}
	if from, to := q.Get("from"), q.Get("to"); from != "" || to != "" {
		dateRange := bson.M{}
		if from != "" {
			dateRange["$gte"] = from
		}
		if to != "" {
			dateRange["$lte"] = to
		}
		filter["date"] = dateRange
	}
	if serviceType := q.Get("serviceType"); serviceType != "" {
		filter["serviceType"] = serviceType
	}
	if q.Get("available") == "true" {
		filter["isBooked"] = false
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	skip, limit := utils.ParsePagination(r, 100, 500)
	opts := options.Find().SetSkip(skip).SetLimit(limit).
		SetSort(bson.D{{Key: "date", Value: 1}, {Key: "startTime", Value: 1}})

	slots, err := utils.FindAndDecode[models.Slot](ctx, db.SlotsCollection, filter, opts)
	if err != nil {
		apperr.Respond(w, apperr.Wrap(apperr.Internal, "Failed to retrieve slots", err))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"slots": slots})
}

func (h *SlotHandlers) GetSlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var slot models.Slot
	if err := db.SlotsCollection.FindOne(ctx, bson.M{"id": ps.ByName("id")}).Decode(&slot); err != nil {
		apperr.Respond(w, apperr.E(apperr.NotFound, "The requested slot does not exist"))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"slot": slot})
}

// DeleteSlot removes an open slot. Booked slots are kept for their
// appointment's sake.
func (h *SlotHandlers) DeleteSlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	slotID := ps.ByName("id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := db.SlotsCollection.DeleteOne(ctx, bson.M{"id": slotID, "isBooked": false})
	if err != nil {
		apperr.Respond(w, apperr.Wrap(apperr.Internal, "Failed to delete slot", err))
		return
	}
	if res.DeletedCount == 0 {
		var slot models.Slot
		if err := db.SlotsCollection.FindOne(ctx, bson.M{"id": slotID}).Decode(&slot); err != nil {
			apperr.Respond(w, apperr.E(apperr.NotFound, "The requested slot does not exist"))
			return
		}
		apperr.Respond(w, apperr.E(apperr.FailedPrecondition, "A booked slot cannot be deleted"))
		return
	}

	if h.Events != nil {
		h.Events.Emit(ctx, mq.SlotEvent{Type: "slot_deleted", SlotID: slotID})
	}
	w.WriteHeader(http.StatusNoContent)
}
