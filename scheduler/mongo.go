package scheduler

import (
	"context"
	"time"

	"tattootime/db"
	"tattootime/models"
	"tattootime/rdx"
	"tattootime/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func dueFromMongo(ctx context.Context, now time.Time, limit int64) ([]models.Notification, error) {
	filter := bson.M{
		"status":       models.NotificationPending,
		"scheduledFor": bson.M{"$lte": now},
	}
	opts := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "scheduledFor", Value: 1}})
	return utils.FindAndDecode[models.Notification](ctx, db.NotificationsCollection, filter, opts)
}

// transition only fires while the record is still pending, so repeated
// sweeps over the same record are harmless.
func transition(ctx context.Context, id string, update bson.M) (bool, error) {
	res, err := db.NotificationsCollection.UpdateOne(ctx,
		bson.M{"id": id, "status": models.NotificationPending}, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (m *mongoNotificationStore) UserEmail(ctx context.Context, userID string) (string, error) {
	var user models.User
	if err := db.UserCollection.FindOne(ctx, bson.M{"id": userID}).Decode(&user); err != nil {
		return "", err
	}
	return user.Email, nil
}

// RedisLocker uses SET NX so only one replica processes a given record per
// sweep window.
type RedisLocker struct{}

func (RedisLocker) Claim(key string, ttl time.Duration) bool {
	ok, err := rdx.RdxSetNX(key, "1", ttl)
	if err != nil {
		// Redis being down must not stop reminders going out.
		return true
	}
	return ok
}

func (RedisLocker) Release(key string) {
	_ = rdx.RdxDel(key)
}
