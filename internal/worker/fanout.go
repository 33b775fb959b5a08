package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"artspace/internal/model"
	"artspace/internal/queue"
)

// NotificationRecorder writes notifications to the persistent ledger.
// Returns (nil, nil) when the notification is suppressed, e.g. an actor
// acting on their own content.
type NotificationRecorder interface {
	Record(ctx context.Context, receiverID, senderID int64, notifType string, artworkID *int64) (*model.Notification, error)
	UnreadCount(ctx context.Context, receiverID int64) (int, error)
}

// Deliverer pushes a notification message to a receiver's live sessions.
// Delivery is best-effort; the ledger is the durable record.
type Deliverer interface {
	Deliver(receiverID int64, msg model.NotificationMessage) (int, error)
}

// Handler turns activity events into notification ledger entries and
// real-time deliveries.
type Handler struct {
	recorder  NotificationRecorder
	deliverer Deliverer
}

// NewHandler creates a new event handler.
func NewHandler(recorder NotificationRecorder, deliverer Deliverer) *Handler {
	return &Handler{
		recorder:  recorder,
		deliverer: deliverer,
	}
}

// HandleEvent routes an event to the appropriate handler based on type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.ActivityEvent) error {
	startTime := time.Now()
	var err error

	switch event.Type {
	case queue.EventArtworkCreated:
		err = h.handleArtworkCreated(ctx, event)
	case queue.EventArtworkLiked:
		err = h.handleArtworkLiked(ctx, event)
	case queue.EventArtworkCommented:
		err = h.handleArtworkCommented(ctx, event)
	case queue.EventUserFollowed:
		err = h.handleUserFollowed(ctx, event)
	default:
		log.Printf("[Worker] Unknown event type: %s", event.Type)
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	if err != nil {
		log.Printf("[Worker] HandleEvent FAILED: type=%s duration=%v err=%v",
			event.Type, time.Since(startTime), err)
		return err
	}

	log.Printf("[Worker] HandleEvent OK: type=%s duration=%v", event.Type, time.Since(startTime))
	return nil
}

// handleArtworkCreated fans a NEW_POST notification out to the artist's
// followers. The event carries the follower set snapshotted when the
// artwork was created, so followers gained since then get nothing.
func (h *Handler) handleArtworkCreated(ctx context.Context, event queue.ActivityEvent) error {
	log.Printf("[Worker] ArtworkCreated: artwork=%d artist=%d followers=%d",
		event.ArtworkID, event.ActorID, len(event.RecipientIDs))

	var failCount int
	for _, followerID := range event.RecipientIDs {
		err := h.notify(ctx, followerID, event.ActorID, model.NotificationTypeNewPost, &event.ArtworkID)
		if err != nil {
			log.Printf("[Worker] ArtworkCreated: failed for receiver=%d err=%v", followerID, err)
			failCount++
			// Continue with other followers - don't fail entire fan-out
		}
	}

	log.Printf("[Worker] ArtworkCreated DONE: artwork=%d fanout=%d failed=%d",
		event.ArtworkID, len(event.RecipientIDs), failCount)
	return nil
}

// handleArtworkLiked notifies the artwork's artist of a like.
func (h *Handler) handleArtworkLiked(ctx context.Context, event queue.ActivityEvent) error {
	log.Printf("[Worker] ArtworkLiked: artwork=%d liker=%d artist=%d",
		event.ArtworkID, event.ActorID, event.RecipientID)

	return h.notify(ctx, event.RecipientID, event.ActorID, model.NotificationTypeLike, &event.ArtworkID)
}

// handleArtworkCommented notifies the artwork's artist of a comment.
func (h *Handler) handleArtworkCommented(ctx context.Context, event queue.ActivityEvent) error {
	log.Printf("[Worker] ArtworkCommented: artwork=%d comment=%d commenter=%d artist=%d",
		event.ArtworkID, event.CommentID, event.ActorID, event.RecipientID)

	return h.notify(ctx, event.RecipientID, event.ActorID, model.NotificationTypeComment, &event.ArtworkID)
}

// handleUserFollowed notifies the followee of the new follower.
func (h *Handler) handleUserFollowed(ctx context.Context, event queue.ActivityEvent) error {
	log.Printf("[Worker] UserFollowed: follower=%d followee=%d", event.ActorID, event.RecipientID)

	return h.notify(ctx, event.RecipientID, event.ActorID, model.NotificationTypeFollow, nil)
}

// notify records one notification and pushes it to the receiver's live
// sessions. A failed push is logged but not returned; the ledger entry
// already exists and the receiver will see it on their next fetch.
func (h *Handler) notify(ctx context.Context, receiverID, senderID int64, notifType string, artworkID *int64) error {
	notif, err := h.recorder.Record(ctx, receiverID, senderID, notifType, artworkID)
	if err != nil {
		return fmt.Errorf("record notification: %w", err)
	}
	if notif == nil {
		// Suppressed (self-notification)
		return nil
	}

	unread, err := h.recorder.UnreadCount(ctx, receiverID)
	if err != nil {
		log.Printf("[Worker] notify: unread count failed for receiver=%d err=%v", receiverID, err)
		return nil
	}

	msg := model.NotificationMessage{
		Notification: notif,
		UnreadCount:  unread,
	}
	if _, err := h.deliverer.Deliver(receiverID, msg); err != nil {
		log.Printf("[Worker] notify: deliver failed for receiver=%d err=%v", receiverID, err)
	}

	return nil
}
