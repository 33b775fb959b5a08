package service

import (
	"context"
	"log"
	"mime/multipart"
	"strings"

	"artspace/internal/model"
	"artspace/internal/queue"
	"artspace/internal/repository"
)

// ArtworkUploader abstracts artwork image uploads for testability.
type ArtworkUploader interface {
	UploadArtwork(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*model.UploadResult, error)
	DeleteObject(ctx context.Context, key string) error
}

// ArtworkService handles business logic for artworks and likes.
type ArtworkService struct {
	artworkRepo repository.ArtworkRepository
	followRepo  repository.FollowRepository
	uploader    ArtworkUploader
	publisher   queue.Publisher
}

func NewArtworkService(
	artworkRepo repository.ArtworkRepository,
	followRepo repository.FollowRepository,
	uploader ArtworkUploader,
	publisher queue.Publisher,
) *ArtworkService {
	return &ArtworkService{
		artworkRepo: artworkRepo,
		followRepo:  followRepo,
		uploader:    uploader,
		publisher:   publisher,
	}
}

// Create uploads the image, inserts the artwork, then snapshots the
// artist's follower set and publishes the activity event. The snapshot
// is taken here, not in the worker, so followers gained after creation
// never receive a notification for it.
func (s *ArtworkService) Create(ctx context.Context, userID int64, title string, description *string, file multipart.File, header *multipart.FileHeader) (*model.Artwork, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, model.ErrTitleRequired
	}
	if len(title) > model.MaxTitleLength {
		return nil, model.ErrTitleTooLong
	}
	if description != nil && len(*description) > model.MaxDescriptionLength {
		return nil, model.ErrDescriptionTooLong
	}
	if file == nil || header == nil {
		return nil, model.ErrImageRequired
	}

	upload, err := s.uploader.UploadArtwork(ctx, file, header)
	if err != nil {
		return nil, err
	}

	artwork := &model.Artwork{
		UserID:      userID,
		Title:       title,
		Description: description,
		ImageURL:    upload.URL,
		ImageKey:    upload.Key,
	}

	if err := s.artworkRepo.Create(ctx, artwork); err != nil {
		// The row never existed; don't leave the uploaded object behind.
		if delErr := s.uploader.DeleteObject(ctx, upload.Key); delErr != nil {
			log.Printf("[ArtworkService] Create: failed to clean up upload key=%s err=%v", upload.Key, delErr)
		}
		return nil, err
	}

	if s.publisher != nil {
		followerIDs, err := s.followRepo.GetFollowerIDs(ctx, userID)
		if err != nil {
			log.Printf("[ArtworkService] Create: failed to snapshot followers artist=%d err=%v", userID, err)
			followerIDs = nil
		}

		event := queue.NewArtworkCreatedEvent(artwork.ID, userID, followerIDs)
		msgID, err := s.publisher.Publish(ctx, queue.StreamActivity, event)
		if err != nil {
			log.Printf("[ArtworkService] Create: failed to publish ArtworkCreated artwork=%d err=%v", artwork.ID, err)
		} else {
			log.Printf("[ArtworkService] Create: published ArtworkCreated artwork=%d followers=%d msgID=%s",
				artwork.ID, len(followerIDs), msgID)
		}
	}

	return artwork, nil
}

// Get returns one artwork with artist, like count and viewer like state.
func (s *ArtworkService) Get(ctx context.Context, artworkID int64, viewerID *int64) (*model.Artwork, error) {
	return s.artworkRepo.GetByID(ctx, artworkID)
}

// Explore lists all artworks newest first.
func (s *ArtworkService) Explore(ctx context.Context, viewerID *int64) ([]model.Artwork, error) {
	return s.artworkRepo.ListAll(ctx, viewerID)
}

// ListByUser lists one artist's artworks newest first.
func (s *ArtworkService) ListByUser(ctx context.Context, userID int64, viewerID *int64) ([]model.Artwork, error) {
	return s.artworkRepo.ListByUser(ctx, userID, viewerID)
}

// Edit updates title, description and optionally the image. Only the owner
// may edit. A replacement image arrives already uploaded; the previous
// object is deleted after the row update, and the new one is cleaned up if
// the edit never lands.
func (s *ArtworkService) Edit(ctx context.Context, artworkID, userID int64, req *model.EditArtworkRequest) (*model.Artwork, error) {
	artwork, err := s.applyEdit(ctx, artworkID, userID, req)
	if err != nil && req.ImageKey != nil {
		if delErr := s.uploader.DeleteObject(ctx, *req.ImageKey); delErr != nil {
			log.Printf("[ArtworkService] Edit: failed to clean up upload key=%s err=%v", *req.ImageKey, delErr)
		}
		return nil, err
	}
	return artwork, err
}

func (s *ArtworkService) applyEdit(ctx context.Context, artworkID, userID int64, req *model.EditArtworkRequest) (*model.Artwork, error) {
	artwork, err := s.artworkRepo.GetByID(ctx, artworkID)
	if err != nil {
		return nil, err
	}
	if artwork.UserID != userID {
		return nil, model.ErrNotArtworkOwner
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, model.ErrTitleRequired
		}
		if len(title) > model.MaxTitleLength {
			return nil, model.ErrTitleTooLong
		}
		artwork.Title = title
	}
	if req.Description != nil {
		if len(*req.Description) > model.MaxDescriptionLength {
			return nil, model.ErrDescriptionTooLong
		}
		artwork.Description = req.Description
	}

	oldImageKey := ""
	if req.ImageKey != nil && *req.ImageKey != artwork.ImageKey {
		oldImageKey = artwork.ImageKey
		artwork.ImageKey = *req.ImageKey
		if req.ImageURL != nil {
			artwork.ImageURL = *req.ImageURL
		}
	}

	if err := s.artworkRepo.Update(ctx, artwork); err != nil {
		return nil, err
	}

	if oldImageKey != "" {
		if err := s.uploader.DeleteObject(ctx, oldImageKey); err != nil {
			log.Printf("[ArtworkService] Edit: failed to delete old image key=%s err=%v", oldImageKey, err)
		}
	}

	return artwork, nil
}

// Delete removes an artwork and its stored image. Only the owner may
// delete. Dependent rows (comments, likes, notification references) go
// with the row.
func (s *ArtworkService) Delete(ctx context.Context, artworkID, userID int64) error {
	artwork, err := s.artworkRepo.GetByID(ctx, artworkID)
	if err != nil {
		return err
	}
	if artwork.UserID != userID {
		return model.ErrNotArtworkOwner
	}

	if err := s.artworkRepo.Delete(ctx, artworkID); err != nil {
		return err
	}

	if err := s.uploader.DeleteObject(ctx, artwork.ImageKey); err != nil {
		log.Printf("[ArtworkService] Delete: failed to delete image key=%s err=%v", artwork.ImageKey, err)
	}

	return nil
}

// ToggleLike flips the viewer's like on an artwork. A transition to
// liked publishes an activity event; unliking publishes nothing and the
// earlier notification stays in the ledger.
func (s *ArtworkService) ToggleLike(ctx context.Context, artworkID, userID int64) (*model.LikeResult, error) {
	authorID, err := s.artworkRepo.GetAuthorID(ctx, artworkID)
	if err != nil {
		return nil, err
	}

	liked, likesCount, err := s.artworkRepo.ToggleLike(ctx, artworkID, userID)
	if err != nil {
		return nil, err
	}

	if liked && s.publisher != nil {
		event := queue.NewArtworkLikedEvent(artworkID, userID, authorID)
		if _, err := s.publisher.Publish(ctx, queue.StreamActivity, event); err != nil {
			log.Printf("[ArtworkService] ToggleLike: failed to publish ArtworkLiked artwork=%d err=%v", artworkID, err)
		}
	}

	return &model.LikeResult{Liked: liked, LikesCount: likesCount}, nil
}
