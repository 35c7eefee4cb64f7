package booking

import (
	"context"
	"errors"
	"log"
	"time"

	"tattootime/apperr"
	"tattootime/mailer"
	"tattootime/models"
	"tattootime/mq"
	"tattootime/pricing"
	"tattootime/utils"
)

const ServiceTypeTattoo = "Tattoo"

// BookRequest is the validated booking payload. Tattoo bookings additionally
// carry the full set of pricing inputs; anything less books without pricing.
type BookRequest struct {
	SlotID            string       `json:"slotId"`
	ServiceType       string       `json:"serviceType"`
	ClientName        string       `json:"clientName"`
	ClientEmail       string       `json:"clientEmail"`
	BodyPart          string       `json:"bodyPart,omitempty"`
	TattooStyle       string       `json:"tattooStyle,omitempty"`
	Size              *models.Size `json:"size,omitempty"`
	Complexity        string       `json:"complexity,omitempty"`
	EstimatedDuration int          `json:"estimatedDuration,omitempty"`
	Colors            []string     `json:"colors,omitempty"`
	Notes             string       `json:"notes,omitempty"`
}

func (r *BookRequest) Validate() error {
	if r.SlotID == "" || r.ServiceType == "" || r.ClientName == "" {
		return apperr.E(apperr.InvalidArgument, "Required fields missing: slotId, serviceType, clientName")
	}
	return nil
}

// tattooComplete reports whether every pricing input is present. Incomplete
// tattoo requests still book, just without a pricing record.
func (r *BookRequest) tattooComplete() bool {
	return r.ServiceType == ServiceTypeTattoo &&
		r.BodyPart != "" && r.TattooStyle != "" && r.Size != nil &&
		r.Complexity != "" && r.EstimatedDuration > 0
}

type BookingService struct {
	Store  Store
	Outbox mailer.Outbox
	Events mq.Emitter

	AdminEmail string
	StudioName string
}

func NewBookingService(store Store, outbox mailer.Outbox, events mq.Emitter, adminEmail, studioName string) *BookingService {
	return &BookingService{
		Store:      store,
		Outbox:     outbox,
		Events:     events,
		AdminEmail: adminEmail,
		StudioName: studioName,
	}
}

// Book runs the booking transaction: atomically claim the slot and create
// the appointment (plus a best-effort history row) inside one store
// transaction, then fire the non-critical side effects. The slot is never
// marked booked unless the appointment write commits with it.
func (s *BookingService) Book(ctx context.Context, userID, userEmail string, req BookRequest) (*models.Appointment, error) {
	if userID == "" {
		return nil, apperr.E(apperr.Unauthenticated, "You must be signed in to book a slot")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if userEmail == "" {
		userEmail = req.ClientEmail
	}

	var appt *models.Appointment
	var slot *models.Slot

	err := s.Store.WithTxn(ctx, func(ctx context.Context) error {
		var err error
		slot, err = s.Store.SlotByID(ctx, req.SlotID)
		if err != nil {
			return err
		}
		if slot.IsBooked {
			return apperr.E(apperr.AlreadyExists, "This slot is already booked")
		}

		// Pricing is best-effort: a missing rule or a store error degrades
		// to an appointment without a pricing record.
		var price *models.Pricing
		if req.tattooComplete() {
			if rule, err := s.Store.ActivePricingRule(ctx); err != nil {
				log.Printf("[booking] pricing lookup failed, booking without pricing: %v", err)
			} else if rule != nil {
				p := pricing.Calculate(rule, pricing.Input{
					BodyPart:          req.BodyPart,
					Size:              *req.Size,
					Style:             req.TattooStyle,
					Complexity:        req.Complexity,
					EstimatedDuration: req.EstimatedDuration,
				})
				price = &p
			}
		}

		if err := s.Store.MarkSlotBooked(ctx, slot.ID, models.BookedBy{
			UserID:   userID,
			UserName: req.ClientName,
			Email:    userEmail,
		}); err != nil {
			return err
		}

		appt = buildAppointment(slot, userID, userEmail, req, price)
		if err := s.Store.InsertAppointment(ctx, appt); err != nil {
			return err
		}

		history := &models.CustomerHistory{
			ID:          utils.GetUUID(),
			UserID:      userID,
			Type:        "appointment",
			ReferenceID: appt.ID,
			Description: "Appointment on " + slot.Date + " at " + slot.StartTime + " for " + req.ServiceType,
			Metadata: map[string]any{
				"serviceType": req.ServiceType,
				"bodyPart":    req.BodyPart,
				"tattooStyle": req.TattooStyle,
			},
		}
		if err := s.Store.InsertHistory(ctx, history); err != nil {
			log.Printf("[booking] history write failed (non-critical): %v", err)
		}
		return nil
	})
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperr.Wrap(apperr.Internal, "Booking failed", err)
	}

	// Side effects outside the transaction. None of these may fail the
	// booking; outcomes land in the log.
	s.scheduleReminders(ctx, appt, slot)
	s.sendConfirmationMail(ctx, appt, slot)
	if s.Events != nil {
		s.Events.Emit(ctx, mq.SlotEvent{
			Type:        "slot_booked",
			SlotID:      slot.ID,
			Date:        slot.Date,
			StartTime:   slot.StartTime,
			ServiceType: slot.ServiceType,
		})
	}

	return appt, nil
}

// buildAppointment copies date and time from the slot document, never from
// client input.
func buildAppointment(slot *models.Slot, userID, userEmail string, req BookRequest, price *models.Pricing) *models.Appointment {
	appt := &models.Appointment{
		ID:          utils.GenerateRandomDigitString(22),
		Date:        slot.Date,
		Time:        slot.StartTime,
		ClientName:  req.ClientName,
		Service:     req.ServiceType,
		ServiceType: req.ServiceType,
		UserID:      userID,
		ClientEmail: userEmail,
		BodyPart:    req.BodyPart,
		TattooStyle: req.TattooStyle,
		Notes:       req.Notes,
		Pricing:     price,
	}
	if req.Size != nil && req.EstimatedDuration > 0 && req.Complexity != "" {
		colors := req.Colors
		if colors == nil {
			colors = []string{}
		}
		appt.TattooDetails = &models.TattooDetails{
			Size:              *req.Size,
			EstimatedDuration: req.EstimatedDuration,
			Complexity:        req.Complexity,
			Colors:            colors,
		}
	}
	return appt
}

// appointmentStart parses the slot's date and start time in local time.
func appointmentStart(date, startTime string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", date+" "+startTime, time.Local)
}

func (s *BookingService) scheduleReminders(ctx context.Context, appt *models.Appointment, slot *models.Slot) {
	start, err := appointmentStart(slot.Date, slot.StartTime)
	if err != nil {
		log.Printf("[booking] cannot parse slot time %q %q, skipping reminders: %v", slot.Date, slot.StartTime, err)
		return
	}

	reminder := &models.Notification{
		ID:           utils.GetUUID(),
		UserID:       appt.UserID,
		Type:         models.NotificationReminder,
		Title:        "Appointment reminder",
		Message:      "Hello " + appt.ClientName + ", please remember your appointment on " + slot.Date + " at " + slot.StartTime + ". Please arrive well rested and not on an empty stomach.",
		Channel:      "email",
		Status:       models.NotificationPending,
		ScheduledFor: start.Add(-24 * time.Hour),
	}
	if err := s.Store.InsertNotification(ctx, reminder); err != nil {
		log.Printf("[booking] reminder notification failed (non-critical): %v", err)
	}

	aftercare := &models.Notification{
		ID:           utils.GetUUID(),
		UserID:       appt.UserID,
		Type:         models.NotificationAftercare,
		Title:        "Aftercare instructions",
		Message:      "Your tattoo from " + slot.Date + " now needs special care. Please follow the aftercare instructions for optimal healing.",
		Channel:      "email",
		Status:       models.NotificationPending,
		ScheduledFor: start.Add(24 * time.Hour),
	}
	if err := s.Store.InsertNotification(ctx, aftercare); err != nil {
		log.Printf("[booking] aftercare notification failed (non-critical): %v", err)
	}
}

func (s *BookingService) sendConfirmationMail(ctx context.Context, appt *models.Appointment, slot *models.Slot) {
	if s.Outbox == nil {
		return
	}
	if err := s.Outbox.Enqueue(ctx, appt.ClientEmail,
		"Your booking confirmation - "+s.StudioName,
		customerConfirmationHTML(appt, slot, s.StudioName)); err != nil {
		log.Printf("[booking] customer mail enqueue failed (non-critical): %v", err)
	}
	if err := s.Outbox.Enqueue(ctx, s.AdminEmail,
		"New booking at "+s.StudioName,
		adminNotificationHTML(appt, slot)); err != nil {
		log.Printf("[booking] admin mail enqueue failed (non-critical): %v", err)
	}
}
