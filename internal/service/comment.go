package service

import (
	"context"
	"log"
	"strings"

	"artspace/internal/model"
	"artspace/internal/queue"
	"artspace/internal/repository"
)

// CommentService handles business logic for artwork comments.
type CommentService struct {
	commentRepo repository.CommentRepository
	artworkRepo repository.ArtworkRepository
	publisher   queue.Publisher
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	artworkRepo repository.ArtworkRepository,
	publisher queue.Publisher,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		artworkRepo: artworkRepo,
		publisher:   publisher,
	}
}

// Create adds a comment and publishes the activity event for the
// artwork's artist.
func (s *CommentService) Create(ctx context.Context, artworkID, userID int64, text string) (*model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, model.ErrTextRequired
	}
	if len(text) > model.MaxCommentLength {
		return nil, model.ErrTextTooLong
	}

	authorID, err := s.artworkRepo.GetAuthorID(ctx, artworkID)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		ArtworkID: artworkID,
		UserID:    userID,
		Text:      text,
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		event := queue.NewArtworkCommentedEvent(artworkID, comment.ID, userID, authorID)
		if _, err := s.publisher.Publish(ctx, queue.StreamActivity, event); err != nil {
			log.Printf("[CommentService] Create: failed to publish ArtworkCommented artwork=%d err=%v", artworkID, err)
		}
	}

	return comment, nil
}

// ListByArtwork returns an artwork's comments oldest first.
func (s *CommentService) ListByArtwork(ctx context.Context, artworkID int64) ([]model.Comment, error) {
	if _, err := s.artworkRepo.GetAuthorID(ctx, artworkID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByArtwork(ctx, artworkID)
}

// Delete removes a comment. Only its author may delete it.
func (s *CommentService) Delete(ctx context.Context, commentID, userID int64) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return model.ErrNotCommentOwner
	}
	return s.commentRepo.Delete(ctx, commentID)
}
