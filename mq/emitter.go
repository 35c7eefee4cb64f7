package mq

import (
	"context"
	"encoding/json"
	"log"

	"tattootime/rdx"

	"github.com/redis/go-redis/v9"
)

const slotEventsChannel = "slot-events"

// SlotEvent tells calendar clients that a slot changed availability.
type SlotEvent struct {
	Type        string `json:"type"` // slot_created, slot_booked, slot_deleted
	SlotID      string `json:"slotId"`
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	ServiceType string `json:"serviceType"`
}

// Emitter publishes slot events for live subscribers.
type Emitter interface {
	Emit(ctx context.Context, event SlotEvent)
}

// publisher is the slice of the redis client Emit needs.
type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

type RedisEmitter struct {
	pub publisher
}

func NewEmitter() *RedisEmitter { return &RedisEmitter{pub: rdx.Conn} }

// Emit publishes the event to Redis. Best-effort: failures are logged only.
func (e *RedisEmitter) Emit(ctx context.Context, event SlotEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[Emit] Failed to marshal event: %v", err)
		return
	}
	if err := e.pub.Publish(ctx, slotEventsChannel, data).Err(); err != nil {
		log.Printf("[Emit] Failed to publish slot event: %v", err)
	}
}

// StartSlotEventsWorker forwards published slot events to broadcast until
// ctx is cancelled.
func StartSlotEventsWorker(ctx context.Context, broadcast func([]byte)) {
	sub := rdx.Conn.Subscribe(ctx, slotEventsChannel)
	defer sub.Close()
	ch := sub.Channel()

	log.Println("[SlotEventsWorker] Listening for slot events...")
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			broadcast([]byte(msg.Payload))
		}
	}
}
