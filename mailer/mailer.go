package mailer

import (
	"context"

	"tattootime/db"
	"tattootime/models"
	"tattootime/utils"
)

// Outbox enqueues mail documents for the external dispatcher. The dispatcher
// consumes {to, message:{subject, html}} from the mail collection.
type Outbox interface {
	Enqueue(ctx context.Context, to, subject, html string) error
}

type MongoOutbox struct{}

func NewOutbox() *MongoOutbox { return &MongoOutbox{} }

func (o *MongoOutbox) Enqueue(ctx context.Context, to, subject, html string) error {
	mail := models.Mail{
		ID: utils.GetUUID(),
		To: to,
		Message: models.MailMessage{
			Subject: subject,
			HTML:    html,
		},
	}
	_, err := db.MailCollection.InsertOne(ctx, mail)
	return err
}
