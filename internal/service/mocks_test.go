package service

import (
	"context"
	"mime/multipart"

	"github.com/jmoiron/sqlx"

	"artspace/internal/model"
	"artspace/internal/queue"
)

// =============================================================================
// MOCK REPOSITORIES
// =============================================================================
//
// Services depend on repository INTERFACES, so tests swap in mocks with
// per-test behavior defined through function fields. Nil fields fall back
// to a harmless default.

type mockUserRepository struct {
	createFn           func(ctx context.Context, user *model.User) error
	getByIDFn          func(ctx context.Context, id int64) (*model.User, error)
	getByEmailFn       func(ctx context.Context, email string) (*model.User, error)
	getSummaryFn       func(ctx context.Context, id int64) (*model.UserSummary, error)
	existsByEmailFn    func(ctx context.Context, email string) (bool, error)
	existsByUsernameFn func(ctx context.Context, username string) (bool, error)
	searchFn           func(ctx context.Context, query string, limit int) ([]model.UserSummary, error)
	clearAvatarFn      func(ctx context.Context, userID int64) error
	updateUsernameFn   func(ctx context.Context, userID int64, username string) error
	incFollowerFn      func(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error
	incFollowingFn     func(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error
	deleteFn           func(ctx context.Context, tx *sqlx.Tx, userID int64) error

	createCalls      []*model.User
	clearAvatarCalls []int64
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	m.createCalls = append(m.createCalls, user)
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetSummary(ctx context.Context, id int64) (*model.UserSummary, error) {
	if m.getSummaryFn != nil {
		return m.getSummaryFn(ctx, id)
	}
	return &model.UserSummary{ID: id, Username: "someone"}, nil
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailFn != nil {
		return m.existsByEmailFn(ctx, email)
	}
	return false, nil
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsByUsernameFn != nil {
		return m.existsByUsernameFn(ctx, username)
	}
	return false, nil
}

func (m *mockUserRepository) Search(ctx context.Context, query string, limit int) ([]model.UserSummary, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query, limit)
	}
	return nil, nil
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, userID int64, bio *string, avatarURL, avatarKey *string) error {
	return nil
}

func (m *mockUserRepository) ClearAvatar(ctx context.Context, userID int64) error {
	m.clearAvatarCalls = append(m.clearAvatarCalls, userID)
	if m.clearAvatarFn != nil {
		return m.clearAvatarFn(ctx, userID)
	}
	return nil
}

func (m *mockUserRepository) UpdateUsername(ctx context.Context, userID int64, username string) error {
	if m.updateUsernameFn != nil {
		return m.updateUsernameFn(ctx, userID, username)
	}
	return nil
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, userID int64, passwordHashed string) error {
	return nil
}

func (m *mockUserRepository) IncrementFollowerCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
	if m.incFollowerFn != nil {
		return m.incFollowerFn(ctx, tx, userID, delta)
	}
	return nil
}

func (m *mockUserRepository) IncrementFollowingCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
	if m.incFollowingFn != nil {
		return m.incFollowingFn(ctx, tx, userID, delta)
	}
	return nil
}

func (m *mockUserRepository) Delete(ctx context.Context, tx *sqlx.Tx, userID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, tx, userID)
	}
	return nil
}

type mockFollowRepository struct {
	createFn           func(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64) (bool, error)
	deleteFn           func(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64) error
	existsFn           func(ctx context.Context, followerID, followeeID int64) (bool, error)
	getFollowerIDsFn   func(ctx context.Context, userID int64) ([]int64, error)
	deleteAllForUserFn func(ctx context.Context, tx *sqlx.Tx, userID int64) error
}

func (m *mockFollowRepository) Create(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64) (bool, error) {
	if m.createFn != nil {
		return m.createFn(ctx, tx, followerID, followeeID)
	}
	return true, nil
}

func (m *mockFollowRepository) Delete(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, tx, followerID, followeeID)
	}
	return nil
}

func (m *mockFollowRepository) Exists(ctx context.Context, followerID, followeeID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, followerID, followeeID)
	}
	return false, nil
}

func (m *mockFollowRepository) GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	if m.getFollowerIDsFn != nil {
		return m.getFollowerIDsFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockFollowRepository) DeleteAllForUser(ctx context.Context, tx *sqlx.Tx, userID int64) error {
	if m.deleteAllForUserFn != nil {
		return m.deleteAllForUserFn(ctx, tx, userID)
	}
	return nil
}

type mockArtworkRepository struct {
	createFn             func(ctx context.Context, artwork *model.Artwork) error
	getByIDFn            func(ctx context.Context, artworkID int64) (*model.Artwork, error)
	getAuthorIDFn        func(ctx context.Context, artworkID int64) (int64, error)
	listAllFn            func(ctx context.Context, viewerID *int64) ([]model.Artwork, error)
	listByUserFn         func(ctx context.Context, userID int64, viewerID *int64) ([]model.Artwork, error)
	updateFn             func(ctx context.Context, artwork *model.Artwork) error
	deleteFn             func(ctx context.Context, artworkID int64) error
	toggleLikeFn         func(ctx context.Context, artworkID, userID int64) (bool, int, error)
	getImageKeysByUserFn func(ctx context.Context, userID int64) ([]string, error)
	deleteAllForUserFn   func(ctx context.Context, tx *sqlx.Tx, userID int64) error
}

func (m *mockArtworkRepository) Create(ctx context.Context, artwork *model.Artwork) error {
	if m.createFn != nil {
		return m.createFn(ctx, artwork)
	}
	artwork.ID = 1
	return nil
}

func (m *mockArtworkRepository) GetByID(ctx context.Context, artworkID int64) (*model.Artwork, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, artworkID)
	}
	return nil, model.ErrArtworkNotFound
}

func (m *mockArtworkRepository) GetAuthorID(ctx context.Context, artworkID int64) (int64, error) {
	if m.getAuthorIDFn != nil {
		return m.getAuthorIDFn(ctx, artworkID)
	}
	return 0, model.ErrArtworkNotFound
}

func (m *mockArtworkRepository) ListAll(ctx context.Context, viewerID *int64) ([]model.Artwork, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx, viewerID)
	}
	return nil, nil
}

func (m *mockArtworkRepository) ListByUser(ctx context.Context, userID int64, viewerID *int64) ([]model.Artwork, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID, viewerID)
	}
	return nil, nil
}

func (m *mockArtworkRepository) Update(ctx context.Context, artwork *model.Artwork) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, artwork)
	}
	return nil
}

func (m *mockArtworkRepository) Delete(ctx context.Context, artworkID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, artworkID)
	}
	return nil
}

func (m *mockArtworkRepository) ToggleLike(ctx context.Context, artworkID, userID int64) (bool, int, error) {
	if m.toggleLikeFn != nil {
		return m.toggleLikeFn(ctx, artworkID, userID)
	}
	return true, 1, nil
}

func (m *mockArtworkRepository) GetImageKeysByUser(ctx context.Context, userID int64) ([]string, error) {
	if m.getImageKeysByUserFn != nil {
		return m.getImageKeysByUserFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockArtworkRepository) DeleteAllForUser(ctx context.Context, tx *sqlx.Tx, userID int64) error {
	if m.deleteAllForUserFn != nil {
		return m.deleteAllForUserFn(ctx, tx, userID)
	}
	return nil
}

type mockCommentRepository struct {
	createFn           func(ctx context.Context, comment *model.Comment) error
	getByIDFn          func(ctx context.Context, commentID int64) (*model.Comment, error)
	listByArtworkFn    func(ctx context.Context, artworkID int64) ([]model.Comment, error)
	deleteFn           func(ctx context.Context, commentID int64) error
	deleteAllForUserFn func(ctx context.Context, tx *sqlx.Tx, userID int64) error
}

func (m *mockCommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	if m.createFn != nil {
		return m.createFn(ctx, comment)
	}
	comment.ID = 1
	return nil
}

func (m *mockCommentRepository) GetByID(ctx context.Context, commentID int64) (*model.Comment, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, commentID)
	}
	return nil, model.ErrCommentNotFound
}

func (m *mockCommentRepository) ListByArtwork(ctx context.Context, artworkID int64) ([]model.Comment, error) {
	if m.listByArtworkFn != nil {
		return m.listByArtworkFn(ctx, artworkID)
	}
	return nil, nil
}

func (m *mockCommentRepository) Delete(ctx context.Context, commentID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, commentID)
	}
	return nil
}

func (m *mockCommentRepository) DeleteAllForUser(ctx context.Context, tx *sqlx.Tx, userID int64) error {
	if m.deleteAllForUserFn != nil {
		return m.deleteAllForUserFn(ctx, tx, userID)
	}
	return nil
}

type mockNotificationRepository struct {
	createFn          func(ctx context.Context, n *model.Notification) error
	listForReceiverFn func(ctx context.Context, receiverID int64, limit int) ([]model.Notification, error)
	markReadFn        func(ctx context.Context, notificationID, receiverID int64) error
	unreadCountFn     func(ctx context.Context, receiverID int64) (int, error)

	created []*model.Notification
}

func (m *mockNotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	m.created = append(m.created, n)
	if m.createFn != nil {
		return m.createFn(ctx, n)
	}
	n.ID = int64(len(m.created))
	return nil
}

func (m *mockNotificationRepository) ListForReceiver(ctx context.Context, receiverID int64, limit int) ([]model.Notification, error) {
	if m.listForReceiverFn != nil {
		return m.listForReceiverFn(ctx, receiverID, limit)
	}
	return nil, nil
}

func (m *mockNotificationRepository) MarkRead(ctx context.Context, notificationID, receiverID int64) error {
	if m.markReadFn != nil {
		return m.markReadFn(ctx, notificationID, receiverID)
	}
	return nil
}

func (m *mockNotificationRepository) UnreadCount(ctx context.Context, receiverID int64) (int, error) {
	if m.unreadCountFn != nil {
		return m.unreadCountFn(ctx, receiverID)
	}
	return 0, nil
}

func (m *mockNotificationRepository) DeleteAllForUser(ctx context.Context, tx *sqlx.Tx, userID int64) error {
	return nil
}

// =============================================================================
// MOCK QUEUE PUBLISHER AND UPLOADER
// =============================================================================

type mockPublisher struct {
	publishFn func(ctx context.Context, stream string, event queue.ActivityEvent) (string, error)

	published []queue.ActivityEvent
}

func (m *mockPublisher) Publish(ctx context.Context, stream string, event queue.ActivityEvent) (string, error) {
	m.published = append(m.published, event)
	if m.publishFn != nil {
		return m.publishFn(ctx, stream, event)
	}
	return "1-0", nil
}

type mockUploader struct {
	uploadArtworkFn func(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*model.UploadResult, error)

	deletedKeys []string
}

func (m *mockUploader) UploadArtwork(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*model.UploadResult, error) {
	if m.uploadArtworkFn != nil {
		return m.uploadArtworkFn(ctx, file, header)
	}
	return &model.UploadResult{URL: "https://cdn.example.com/artworks/x.jpg", Key: "artworks/x.jpg"}, nil
}

func (m *mockUploader) DeleteObject(ctx context.Context, key string) error {
	m.deletedKeys = append(m.deletedKeys, key)
	return nil
}
