package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"tattootime/mailer"
	"tattootime/models"

	"go.mongodb.org/mongo-driver/bson"
)

const (
	defaultBatchSize = 50
	defaultInterval  = time.Hour
	claimTTL         = 5 * time.Minute
)

// Store is the notification surface the sweep runs against.
type Store interface {
	DueNotifications(ctx context.Context, now time.Time, limit int64) ([]models.Notification, error)
	// MarkSent transitions pending->sent. Returns false when the record was
	// no longer pending, which makes double processing a no-op.
	MarkSent(ctx context.Context, id string, at time.Time) (bool, error)
	MarkFailed(ctx context.Context, id string) (bool, error)
	UserEmail(ctx context.Context, userID string) (string, error)
}

// Locker claims a notification for one sweep run. Claims are advisory: the
// conditional status transition stays the source of truth.
type Locker interface {
	Claim(key string, ttl time.Duration) bool
	Release(key string)
}

type Sweeper struct {
	Store     Store
	Outbox    mailer.Outbox
	Locks     Locker
	BatchSize int64
	Interval  time.Duration
}

func NewSweeper(store Store, outbox mailer.Outbox, locks Locker) *Sweeper {
	return &Sweeper{
		Store:     store,
		Outbox:    outbox,
		Locks:     locks,
		BatchSize: defaultBatchSize,
		Interval:  defaultInterval,
	}
}

// Run sweeps on a fixed interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := s.Sweep(ctx)
			if err != nil {
				log.Printf("[sweep] error: %v", err)
				continue
			}
			if count > 0 {
				log.Printf("[sweep] processed %d notifications", count)
			}
		}
	}
}

// Sweep promotes due pending notifications to sent or failed and returns the
// number of records it transitioned. Notifications are delivered at least
// once: a record claimed by two overlapping sweeps is only transitioned by
// the first conditional update, the second one skips it.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	now := time.Now()
	due, err := s.Store.DueNotifications(ctx, now, s.BatchSize)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, n := range due {
		if s.Locks != nil && !s.Locks.Claim("notify_lock:"+n.ID, claimTTL) {
			continue
		}

		dispatchErr := s.dispatch(ctx, n)

		var transitioned bool
		var err error
		if dispatchErr != nil {
			log.Printf("[sweep] dispatch of %s failed: %v", n.ID, dispatchErr)
			transitioned, err = s.Store.MarkFailed(ctx, n.ID)
		} else {
			transitioned, err = s.Store.MarkSent(ctx, n.ID, now)
		}
		if err != nil {
			log.Printf("[sweep] status update for %s failed: %v", n.ID, err)
		} else if transitioned {
			processed++
		}

		if s.Locks != nil {
			s.Locks.Release("notify_lock:" + n.ID)
		}
	}
	return processed, nil
}

func (s *Sweeper) dispatch(ctx context.Context, n models.Notification) error {
	switch n.Channel {
	case "email":
		to, err := s.Store.UserEmail(ctx, n.UserID)
		if err != nil || to == "" {
			// Fall back to whatever the record carries.
			to = n.UserID
		}
		return s.Outbox.Enqueue(ctx, to, n.Title, n.Message)
	case "whatsapp":
		log.Printf("[sweep] whatsapp message to %s: %s", n.UserID, n.Message)
		return nil
	case "telegram":
		log.Printf("[sweep] telegram message to %s: %s", n.UserID, n.Message)
		return nil
	default:
		return fmt.Errorf("unknown channel %q", n.Channel)
	}
}

// mongo / redis implementations

type mongoNotificationStore struct{}

func NewMongoStore() Store { return &mongoNotificationStore{} }

func (m *mongoNotificationStore) DueNotifications(ctx context.Context, now time.Time, limit int64) ([]models.Notification, error) {
	return dueFromMongo(ctx, now, limit)
}

func (m *mongoNotificationStore) MarkSent(ctx context.Context, id string, at time.Time) (bool, error) {
	return transition(ctx, id, bson.M{"$set": bson.M{
		"status":    models.NotificationSent,
		"sentAt":    at,
		"updatedAt": time.Now(),
	}})
}

func (m *mongoNotificationStore) MarkFailed(ctx context.Context, id string) (bool, error) {
	return transition(ctx, id, bson.M{"$set": bson.M{
		"status":    models.NotificationFailed,
		"updatedAt": time.Now(),
	}})
}
