package materials

import (
	"context"
	"errors"
	"time"

	"tattootime/apperr"
	"tattootime/db"
	"tattootime/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store is the document-store surface the usage recording runs against.
// Tests inject a memory implementation.
type Store interface {
	// WithTxn runs fn inside one atomic unit.
	WithTxn(ctx context.Context, fn func(ctx context.Context) error) error

	AppointmentByID(ctx context.Context, id string) (*models.Appointment, error)
	MaterialByID(ctx context.Context, id string) (*models.Material, error)
	// DecrementStock subtracts qty conditionally. Returns
	// apperr.FailedPrecondition when the decrement would drive the stock
	// negative; the stock is left unchanged in that case.
	DecrementStock(ctx context.Context, id string, qty float64) error
	SetAppointmentMaterials(ctx context.Context, appointmentID string, usage models.MaterialsUsed) error
	InsertHistory(ctx context.Context, entry *models.CustomerHistory) error
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

func (s *mongoStore) MaterialByID(ctx context.Context, id string) (*models.Material, error) {
	var mat models.Material
	err := db.MaterialsCollection.FindOne(ctx, bson.M{"id": id}).Decode(&mat)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.E(apperr.NotFound, "Material "+id+" does not exist")
	}
	if err != nil {
		return nil, err
	}
	return &mat, nil
}

func (s *mongoStore) DecrementStock(ctx context.Context, id string, qty float64) error {
	// Guarded decrement: only fires while enough stock remains.
	res, err := db.MaterialsCollection.UpdateOne(ctx,
		bson.M{"id": id, "currentStock": bson.M{"$gte": qty}},
		bson.M{
			"$inc": bson.M{"currentStock": -qty},
			"$set": bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.E(apperr.FailedPrecondition, "Not enough stock")
	}
	return nil
}

func (s *mongoStore) SetAppointmentMaterials(ctx context.Context, appointmentID string, usage models.MaterialsUsed) error {
	_, err := db.AppointmentsCollection.UpdateOne(ctx,
		bson.M{"id": appointmentID},
		bson.M{"$set": bson.M{"materials": usage, "updatedAt": time.Now()}},
	)
	return err
}

func (s *mongoStore) InsertHistory(ctx context.Context, entry *models.CustomerHistory) error {
	entry.CreatedAt = time.Now()
	_, err := db.CustomerHistoryCollection.InsertOne(ctx, entry)
	return err
}
