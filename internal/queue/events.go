package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types for the activity stream
const (
	EventArtworkCreated   = "artwork_created"
	EventArtworkLiked     = "artwork_liked"
	EventArtworkCommented = "artwork_commented"
	EventUserFollowed     = "user_followed"
)

// Stream name
const (
	StreamActivity = "stream:activity"
)

// Consumer group name for fan-out workers
const (
	ConsumerGroupFanout = "fanout_workers"
)

// ActivityEvent represents a committed primary write published to the
// activity stream. The fan-out worker turns each event into zero or more
// notification ledger entries plus real-time deliveries.
type ActivityEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"` // Unix timestamp when event occurred

	// Who performed the action
	ActorID int64 `json:"actor_id"`

	// Artwork events
	ArtworkID int64 `json:"artwork_id,omitempty"`
	CommentID int64 `json:"comment_id,omitempty"`

	// Like/comment events: the artwork's artist
	RecipientID int64 `json:"recipient_id,omitempty"`

	// ArtworkCreated only: the artist's follower set snapshotted at creation
	// time. Followers gained after the artwork was created are not in here
	// and never receive a NEW_POST notification for it.
	RecipientIDs []int64 `json:"recipient_ids,omitempty"`
}

// NewArtworkCreatedEvent records a new artwork along with the follower
// snapshot taken right after the insert committed.
func NewArtworkCreatedEvent(artworkID, artistID int64, followerIDs []int64) ActivityEvent {
	return ActivityEvent{
		Type:         EventArtworkCreated,
		Timestamp:    time.Now().Unix(),
		ActorID:      artistID,
		ArtworkID:    artworkID,
		RecipientIDs: followerIDs,
	}
}

// NewArtworkLikedEvent records a like action. Unlike actions publish nothing.
func NewArtworkLikedEvent(artworkID, likerID, artistID int64) ActivityEvent {
	return ActivityEvent{
		Type:        EventArtworkLiked,
		Timestamp:   time.Now().Unix(),
		ActorID:     likerID,
		ArtworkID:   artworkID,
		RecipientID: artistID,
	}
}

// NewArtworkCommentedEvent records a new comment on an artwork.
func NewArtworkCommentedEvent(artworkID, commentID, commenterID, artistID int64) ActivityEvent {
	return ActivityEvent{
		Type:        EventArtworkCommented,
		Timestamp:   time.Now().Unix(),
		ActorID:     commenterID,
		ArtworkID:   artworkID,
		CommentID:   commentID,
		RecipientID: artistID,
	}
}

// NewUserFollowedEvent records a new follow edge.
func NewUserFollowedEvent(followerID, followeeID int64) ActivityEvent {
	return ActivityEvent{
		Type:        EventUserFollowed,
		Timestamp:   time.Now().Unix(),
		ActorID:     followerID,
		RecipientID: followeeID,
	}
}

// ToMap converts the event to a map for Redis XADD.
// Redis Streams store field-value pairs, so the event is serialized to JSON
// in a "data" field.
func (e ActivityEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseActivityEvent parses an ActivityEvent from Redis stream message values.
func ParseActivityEvent(values map[string]interface{}) (ActivityEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return ActivityEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event ActivityEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return ActivityEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
