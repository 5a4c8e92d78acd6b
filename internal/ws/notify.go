package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type FeedUpdatedEvent struct {
	Type      string    `json:"type"`
	Event     string    `json:"event"`
	PostID    uuid.UUID `json:"post_id"`
	Timestamp string    `json:"timestamp"`
}

// FeedNotifier broadcasts feed events to every subscriber. It satisfies
// the notifier interface the application flow expects.
type FeedNotifier struct {
	hub *Hub
}

func NewFeedNotifier(hub *Hub) *FeedNotifier {
	return &FeedNotifier{hub: hub}
}

func (n *FeedNotifier) NotifyFeedUpdated(event string, postID uuid.UUID) {
	if n == nil || n.hub == nil || event == "" {
		return
	}

	evt := FeedUpdatedEvent{
		Type:      "feed_updated",
		Event:     event,
		PostID:    postID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}
	n.hub.Broadcast(b)
}
