package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
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

type paymentRequest struct {
	AppointmentID string  `json:"appointmentId"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"paymentMethod"`
	PaymentType   string  `json:"paymentType"`
}

func (p paymentRequest) validate() error {
	if p.AppointmentID == "" {
		return apperr.E(apperr.InvalidArgument, "appointmentId is required")
	}
	if p.Amount <= 0 {
		return apperr.E(apperr.InvalidArgument, "amount must be greater than zero")
	}
	switch p.PaymentType {
	case "deposit", "remaining", "full":
	default:
		return apperr.E(apperr.InvalidArgument, "paymentType must be deposit, remaining or full")
	}
	switch p.PaymentMethod {
	case "stripe", "paypal", "cash", "bank_transfer":
	default:
		return apperr.E(apperr.InvalidArgument, "unsupported payment method")
	}
	return nil
}

// ProcessPayment records a payment against an appointment. The payment row,
// the appointment's payment state and the history entry commit together.
func ProcessPayment(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		apperr.Respond(w, apperr.E(apperr.Unauthenticated, "Sign in required"))
		return
	}

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Respond(w, apperr.E(apperr.InvalidArgument, "Invalid request body"))
		return
	}
	if err := req.validate(); err != nil {
		apperr.Respond(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var appt models.Appointment
	err := db.AppointmentsCollection.FindOne(ctx, bson.M{"id": req.AppointmentID}).Decode(&appt)
	if errors.Is(err, mongo.ErrNoDocuments) {
		apperr.Respond(w, apperr.E(apperr.NotFound, "The requested appointment does not exist"))
		return
	}
	if err != nil {
		apperr.Respond(w, apperr.Wrap(apperr.Internal, "Failed to load appointment", err))
		return
	}

	now := time.Now()
	payment := models.Payment{
		ID:            utils.GenerateRandomDigitString(22),
		AppointmentID: req.AppointmentID,
		UserID:        appt.UserID,
		Amount:        req.Amount,
		Currency:      "EUR",
		PaymentMethod: req.PaymentMethod,
		PaymentType:   req.PaymentType,
		Status:        "completed",
		ProcessedAt:   now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	session, err := db.Client.StartSession()
	if err != nil {
		apperr.Respond(w, apperr.Wrap(apperr.Internal, "Failed to process payment", err))
		return
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		if _, err := db.PaymentsCollection.InsertOne(sc, payment); err != nil {
			return nil, err
		}
		if _, err := db.AppointmentsCollection.UpdateOne(sc,
			bson.M{"id": req.AppointmentID},
			bson.M{"$set": appointmentPaymentUpdate(req.PaymentType, now)},
		); err != nil {
			return nil, err
		}
		history := models.CustomerHistory{
			ID:          utils.GenerateRandomDigitString(22),
			UserID:      appt.UserID,
			Type:        "payment",
			ReferenceID: payment.ID,
			Description: fmt.Sprintf("%s payment of %.2f€ via %s", req.PaymentType, req.Amount, req.PaymentMethod),
			Metadata: map[string]any{
				"appointmentId": req.AppointmentID,
				"amount":        req.Amount,
				"paymentType":   req.PaymentType,
			},
			CreatedAt: now,
		}
		_, err := db.CustomerHistoryCollection.InsertOne(sc, history)
		return nil, err
	})
	if err != nil {
		apperr.Respond(w, apperr.Wrap(apperr.Internal, "Failed to process payment", err))
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"paymentId": payment.ID,
		"message":   "Payment processed successfully",
	})
}

// appointmentPaymentUpdate maps the payment type onto the appointment's
// pricing and payment state.
func appointmentPaymentUpdate(paymentType string, at time.Time) bson.M {
	set := bson.M{"updatedAt": at}
	switch paymentType {
	case "deposit":
		set["pricing.depositPaid"] = true
		set["pricing.depositPaidAt"] = at
		set["payment.status"] = "deposit_paid"
	case "remaining", "full":
		set["payment.status"] = "fully_paid"
		set["payment.paidAt"] = at
	}
	return set
}

// ListMyPayments returns the caller's payment history, newest first.
func ListMyPayments(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		apperr.Respond(w, apperr.E(apperr.Unauthenticated, "Sign in required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	skip, limit := utils.ParsePagination(r, 20, 100)
	opts := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "createdAt", Value: -1}})

	list, err := utils.FindAndDecode[models.Payment](ctx, db.PaymentsCollection, bson.M{"userId": userID}, opts)
	if err != nil {
		apperr.Respond(w, apperr.Wrap(apperr.Internal, "Failed to retrieve payments", err))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"payments": list})
}
