package service

import (
	"context"
	"log"

	"artspace/internal/model"
	"artspace/internal/repository"
)

type NotificationService struct {
	notifRepo repository.NotificationRepository
	userRepo  repository.UserRepository
}

func NewNotificationService(
	notifRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
) *NotificationService {
	return &NotificationService{
		notifRepo: notifRepo,
		userRepo:  userRepo,
	}
}

// Record persists a notification and returns it annotated with the
// sender's summary. Self-notifications (receiver == sender) are
// suppressed and return (nil, nil); this is the single enforcement
// point, callers don't need their own check.
func (s *NotificationService) Record(ctx context.Context, receiverID, senderID int64, notifType string, artworkID *int64) (*model.Notification, error) {
	if receiverID == senderID {
		return nil, nil
	}

	notif := &model.Notification{
		ReceiverID: receiverID,
		SenderID:   senderID,
		Type:       notifType,
		ArtworkID:  artworkID,
	}

	if err := s.notifRepo.Create(ctx, notif); err != nil {
		return nil, err
	}

	sender, err := s.userRepo.GetSummary(ctx, senderID)
	if err != nil {
		// The ledger entry exists; deliver without the sender summary
		// rather than failing the whole record.
		log.Printf("[NotificationService] Record: sender summary failed sender=%d err=%v", senderID, err)
	} else {
		notif.Sender = sender
	}

	return notif, nil
}

// List returns the receiver's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, receiverID int64, limit int) ([]model.Notification, error) {
	if limit <= 0 {
		limit = model.DefaultNotificationLimit
	}
	return s.notifRepo.ListForReceiver(ctx, receiverID, limit)
}

// MarkRead marks one of the receiver's notifications as read. Marking a
// notification that doesn't exist, belongs to someone else, or is
// already read succeeds silently.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, receiverID int64) error {
	return s.notifRepo.MarkRead(ctx, notificationID, receiverID)
}

// UnreadCount returns the number of unread notifications for a user.
func (s *NotificationService) UnreadCount(ctx context.Context, receiverID int64) (int, error) {
	return s.notifRepo.UnreadCount(ctx, receiverID)
}
