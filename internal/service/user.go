package service

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"artspace/internal/model"
	"artspace/internal/repository"
)

// ImageStore abstracts object deletion so account removal can clean up
// uploaded images without depending on the R2 client directly.
type ImageStore interface {
	DeleteObject(ctx context.Context, key string) error
}

// UserService handles business logic for user accounts and profiles.
type UserService struct {
	repo        repository.UserRepository
	followRepo  repository.FollowRepository
	artworkRepo repository.ArtworkRepository
	commentRepo repository.CommentRepository
	notifRepo   repository.NotificationRepository
	db          *sqlx.DB
	images      ImageStore
}

func NewUserService(
	repo repository.UserRepository,
	followRepo repository.FollowRepository,
	artworkRepo repository.ArtworkRepository,
	commentRepo repository.CommentRepository,
	notifRepo repository.NotificationRepository,
	db *sqlx.DB,
	images ImageStore,
) *UserService {
	return &UserService{
		repo:        repo,
		followRepo:  followRepo,
		artworkRepo: artworkRepo,
		commentRepo: commentRepo,
		notifRepo:   notifRepo,
		db:          db,
		images:      images,
	}
}

// Register creates a new account. The username is generated from the
// email local part; collisions get a numeric suffix.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if name == "" {
		return nil, model.ErrNameRequired
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, model.ErrEmailInvalid
	}
	if len(req.Password) < model.MinPasswordLength {
		return nil, model.ErrPasswordTooShort
	}

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, model.ErrEmailExists
	}

	username, err := s.generateUsername(ctx, email)
	if err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Name:           name,
		Email:          email,
		Username:       username,
		PasswordHashed: string(hashedPassword),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// generateUsername derives a username from the email local part and
// appends random digits until it is free.
func (s *UserService) generateUsername(ctx context.Context, email string) (string, error) {
	base := sanitizeUsername(strings.SplitN(email, "@", 2)[0])
	if len(base) < model.MinUsernameLength {
		base = "artist"
	}

	candidate := base
	for attempt := 0; attempt < 10; attempt++ {
		exists, err := s.repo.ExistsByUsername(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check username: %w", err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%04d", base, rand.Intn(10000))
	}

	return "", fmt.Errorf("could not generate a free username for %q", base)
}

func sanitizeUsername(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Login authenticates a user with email and password.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		// Don't reveal whether the email exists
		return nil, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetProfile retrieves a user's profile with follow status and artworks.
func (s *UserService) GetProfile(ctx context.Context, userID int64, viewerID *int64) (*model.ProfileResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &model.ProfileResponse{
		User: user,
	}

	if viewerID != nil {
		profile.IsMe = *viewerID == userID
		if !profile.IsMe {
			isFollowing, err := s.followRepo.Exists(ctx, *viewerID, userID)
			if err == nil {
				profile.IsFollowing = isFollowing
			}
		}
	}

	artworks, err := s.artworkRepo.ListByUser(ctx, userID, viewerID)
	if err != nil {
		return nil, err
	}
	profile.Artworks = artworks

	return profile, nil
}

// Search finds users by username or name prefix.
func (s *UserService) Search(ctx context.Context, query string, limit int) ([]model.UserSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.UserSummary{}, nil
	}
	return s.repo.Search(ctx, query, limit)
}

// UpdateProfile changes the user's display name, bio, and avatar.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req *model.UpdateProfileRequest) (*model.User, error) {
	if req.Bio != nil && len(*req.Bio) > model.MaxBioLength {
		return nil, model.ErrBioTooLong
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Replacing the avatar orphans the previous object; delete it after
	// the profile row is updated.
	oldAvatarKey := ""
	if req.AvatarKey != nil && user.AvatarKey != nil && *req.AvatarKey != *user.AvatarKey {
		oldAvatarKey = *user.AvatarKey
	}

	if err := s.repo.UpdateProfile(ctx, userID, req.Bio, req.AvatarURL, req.AvatarKey); err != nil {
		return nil, err
	}

	if oldAvatarKey != "" && s.images != nil {
		if err := s.images.DeleteObject(ctx, oldAvatarKey); err != nil {
			log.Printf("[UserService] UpdateProfile: failed to delete old avatar key=%s err=%v", oldAvatarKey, err)
		}
	}

	return s.repo.GetByID(ctx, userID)
}

// RemoveAvatar clears the profile picture and deletes the stored object.
// Having no avatar to remove is not an error.
func (s *UserService) RemoveAvatar(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.AvatarKey == nil {
		return user, nil
	}
	oldKey := *user.AvatarKey

	if err := s.repo.ClearAvatar(ctx, userID); err != nil {
		return nil, err
	}

	if s.images != nil {
		if err := s.images.DeleteObject(ctx, oldKey); err != nil {
			log.Printf("[UserService] RemoveAvatar: failed to delete avatar key=%s err=%v", oldKey, err)
		}
	}

	return s.repo.GetByID(ctx, userID)
}

// ChangeUsername renames the account. Usernames have a minimum length
// and can only change once per cooldown window.
func (s *UserService) ChangeUsername(ctx context.Context, userID int64, newUsername string) (*model.User, error) {
	newUsername = sanitizeUsername(strings.TrimSpace(newUsername))
	if len(newUsername) < model.MinUsernameLength {
		return nil, model.ErrUsernameTooShort
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.Username == newUsername {
		return user, nil
	}

	if user.UsernameChangedAt != nil {
		nextAllowed := user.UsernameChangedAt.Add(model.UsernameCooldown)
		if time.Now().Before(nextAllowed) {
			return nil, model.ErrUsernameCooldown
		}
	}

	exists, err := s.repo.ExistsByUsername(ctx, newUsername)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, model.ErrUsernameTaken
	}

	if err := s.repo.UpdateUsername(ctx, userID, newUsername); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, userID)
}

// ChangePassword verifies the current password and sets a new one.
func (s *UserService) ChangePassword(ctx context.Context, userID int64, req *model.ChangePasswordRequest) error {
	if len(req.NewPassword) < model.MinPasswordLength {
		return model.ErrPasswordTooShort
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.CurrentPassword)); err != nil {
		return model.ErrInvalidCredentials
	}

	if req.CurrentPassword == req.NewPassword {
		return model.ErrSamePassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.repo.UpdatePassword(ctx, userID, string(hashed))
}

// DeleteAccount verifies the password, then removes the user and
// everything they own. Uploaded images are deleted from object storage
// first (best effort), then all rows go in a single transaction so a
// mid-cascade failure leaves no half-deleted account.
func (s *UserService) DeleteAccount(ctx context.Context, userID int64, password string) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(password)); err != nil {
		return model.ErrInvalidCredentials
	}

	if s.images != nil {
		keys, err := s.artworkRepo.GetImageKeysByUser(ctx, userID)
		if err != nil {
			log.Printf("[UserService] DeleteAccount: failed to list artwork keys user=%d err=%v", userID, err)
		}
		if user.AvatarKey != nil {
			keys = append(keys, *user.AvatarKey)
		}
		for _, key := range keys {
			if err := s.images.DeleteObject(ctx, key); err != nil {
				log.Printf("[UserService] DeleteAccount: failed to delete object key=%s err=%v", key, err)
			}
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Comments the user left on others' artworks; their own artworks'
	// comments go with the artwork rows via FK cascade.
	if err := s.commentRepo.DeleteAllForUser(ctx, tx, userID); err != nil {
		return err
	}

	if err := s.notifRepo.DeleteAllForUser(ctx, tx, userID); err != nil {
		return err
	}

	if err := s.followRepo.DeleteAllForUser(ctx, tx, userID); err != nil {
		return err
	}

	if err := s.artworkRepo.DeleteAllForUser(ctx, tx, userID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, tx, userID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	log.Printf("[UserService] DeleteAccount: user=%d removed", userID)
	return nil
}
