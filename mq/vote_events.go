package mq

import (
	"context"
	"encoding/json"
	"log"

	"pollboard-backend/cache"
	"pollboard-backend/websocket"
)

// tallyChannel is the Redis pub/sub channel carrying tally updates
// between instances.
const tallyChannel = "pollboard:tally_updates"

// Bridge fans vote events out to WebSocket subscribers. With Redis
// configured, events go through pub/sub so every instance's hub
// broadcasts them; without it, events go straight to the local hub.
type Bridge struct {
	hub *websocket.Hub
}

func NewBridge(hub *websocket.Hub) *Bridge {
	return &Bridge{hub: hub}
}

// Start subscribes to the tally channel and relays messages to the local
// hub until ctx is cancelled. It is a no-op when Redis is unavailable.
func (b *Bridge) Start(ctx context.Context) {
	client, err := cache.GetClient()
	if err != nil {
		log.Println("vote event bridge running in local-only mode")
		return
	}

	sub := client.Subscribe(ctx, tallyChannel)
	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var update websocket.TallyUpdate
				if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
					log.Printf("dropping malformed tally update: %v", err)
					continue
				}
				b.hub.BroadcastToPoll(update.PollID, &update)
			}
		}
	}()
	log.Println("vote event bridge subscribed")
}

// PublishTally announces a poll's fresh tally. Published through Redis
// when available so all instances see it; otherwise broadcast locally.
func (b *Bridge) PublishTally(ctx context.Context, pollID string, payload interface{}) {
	update := &websocket.TallyUpdate{
		Type:    "TALLY_UPDATE",
		PollID:  pollID,
		Payload: payload,
	}

	client, err := cache.GetClient()
	if err != nil {
		b.hub.BroadcastToPoll(pollID, update)
		return
	}

	data, err := json.Marshal(update)
	if err != nil {
		log.Printf("failed to encode tally update: %v", err)
		return
	}
	if err := client.Publish(ctx, tallyChannel, data).Err(); err != nil {
		log.Printf("failed to publish tally update, broadcasting locally: %v", err)
		b.hub.BroadcastToPoll(pollID, update)
	}
}
