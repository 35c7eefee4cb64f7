package booking

import (
	"context"
	"errors"
	"time"

	"tattootime/apperr"
	"tattootime/db"
	"tattootime/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store is the document-store surface the booking transaction runs against.
// The Mongo implementation wraps the primary writes in a session transaction;
// tests inject a memory implementation.
type Store interface {
	// WithTxn runs fn inside one atomic unit. Writes made through the ctx
	// passed to fn commit together or not at all.
	WithTxn(ctx context.Context, fn func(ctx context.Context) error) error

	SlotByID(ctx context.Context, id string) (*models.Slot, error)
	// MarkSlotBooked flips isBooked false->true, conditionally. Returns
	// apperr.AlreadyExists when the slot was already taken.
	MarkSlotBooked(ctx context.Context, id string, by models.BookedBy) error
	ActivePricingRule(ctx context.Context) (*models.PricingRule, error)
	InsertAppointment(ctx context.Context, appt *models.Appointment) error
	InsertHistory(ctx context.Context, entry *models.CustomerHistory) error
	InsertNotification(ctx context.Context, n *models.Notification) error
}

type mongoStore struct {
	client *mongo.Client
}

func NewMongoStore() Store {
	return &mongoStore{client: db.Client}
}

func (s *mongoStore) WithTxn(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	return err
}

func (s *mongoStore) SlotByID(ctx context.Context, id string) (*models.Slot, error) {
	var slot models.Slot
	err := db.SlotsCollection.FindOne(ctx, bson.M{"id": id}).Decode(&slot)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.E(apperr.NotFound, "The requested slot does not exist")
	}
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (s *mongoStore) MarkSlotBooked(ctx context.Context, id string, by models.BookedBy) error {
	res, err := db.SlotsCollection.UpdateOne(ctx,
		bson.M{"id": id, "isBooked": false}, // first writer wins
		bson.M{"$set": bson.M{
			"isBooked":         true,
			"bookedByUserId":   by.UserID,
			"bookedByUserName": by.UserName,
			"bookedByEmail":    by.Email,
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.E(apperr.AlreadyExists, "This slot is already booked")
	}
	return nil
}

func (s *mongoStore) ActivePricingRule(ctx context.Context) (*models.PricingRule, error) {
	var rule models.PricingRule
	opts := options.FindOne().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	err := db.PricingRulesCollection.FindOne(ctx, bson.M{"isActive": true}, opts).Decode(&rule)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (s *mongoStore) InsertAppointment(ctx context.Context, appt *models.Appointment) error {
	appt.CreatedAt = time.Now()
	_, err := db.AppointmentsCollection.InsertOne(ctx, appt)
	return err
}

func (s *mongoStore) InsertHistory(ctx context.Context, entry *models.CustomerHistory) error {
	entry.CreatedAt = time.Now()
	_, err := db.CustomerHistoryCollection.InsertOne(ctx, entry)
	return err
}

func (s *mongoStore) InsertNotification(ctx context.Context, n *models.Notification) error {
	n.CreatedAt = time.Now()
	_, err := db.NotificationsCollection.InsertOne(ctx, n)
	return err
}
