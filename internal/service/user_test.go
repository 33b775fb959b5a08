package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"artspace/internal/model"
)

func newUserService(userRepo *mockUserRepository, followRepo *mockFollowRepository, db *sqlx.DB, images ImageStore) *UserService {
	return NewUserService(userRepo, followRepo, &mockArtworkRepository{}, &mockCommentRepository{}, &mockNotificationRepository{}, db, images)
}

func TestUserService_Register_GeneratesUsernameFromEmail(t *testing.T) {
	userRepo := &mockUserRepository{
		createFn: func(ctx context.Context, user *model.User) error {
			user.ID = 1
			user.CreatedAt = time.Now()
			return nil
		},
	}
	svc := newUserService(userRepo, &mockFollowRepository{}, nil, nil)

	user, err := svc.Register(context.Background(), &model.RegisterRequest{
		Name:     "Jane Doe",
		Email:    "Jane.Doe@Example.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if user.Username != "janedoe" {
		t.Errorf("expected username janedoe, got %s", user.Username)
	}
	if user.Email != "jane.doe@example.com" {
		t.Errorf("expected lowercased email, got %s", user.Email)
	}
	if user.PasswordHashed == "secret123" {
		t.Error("password must be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte("secret123")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}

func TestUserService_Register_UsernameCollisionGetsSuffix(t *testing.T) {
	userRepo := &mockUserRepository{
		existsByUsernameFn: func(ctx context.Context, username string) (bool, error) {
			return username == "janedoe", nil
		},
	}
	svc := newUserService(userRepo, &mockFollowRepository{}, nil, nil)

	user, err := svc.Register(context.Background(), &model.RegisterRequest{
		Name:     "Jane",
		Email:    "jane.doe@example.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if user.Username == "janedoe" {
		t.Error("expected a suffixed username on collision")
	}
	if !strings.HasPrefix(user.Username, "janedoe") {
		t.Errorf("expected janedoe prefix, got %s", user.Username)
	}
}

func TestUserService_Register_DuplicateEmail(t *testing.T) {
	userRepo := &mockUserRepository{
		existsByEmailFn: func(ctx context.Context, email string) (bool, error) {
			return true, nil
		},
	}
	svc := newUserService(userRepo, &mockFollowRepository{}, nil, nil)

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Name:     "Jane",
		Email:    "jane@example.com",
		Password: "secret123",
	})
	if !errors.Is(err, model.ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}
}

func TestUserService_Register_ValidationSentinels(t *testing.T) {
	svc := newUserService(&mockUserRepository{}, &mockFollowRepository{}, nil, nil)

	tests := []struct {
		name    string
		req     model.RegisterRequest
		wantErr error
	}{
		{"missing name", model.RegisterRequest{Email: "a@b.c", Password: "secret123"}, model.ErrNameRequired},
		{"bad email", model.RegisterRequest{Name: "Jane", Email: "not-an-email", Password: "secret123"}, model.ErrEmailInvalid},
		{"short password", model.RegisterRequest{Name: "Jane", Email: "a@b.c", Password: "12345"}, model.ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), &tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestUserService_Register_InfraErrorIsNotAValidationError(t *testing.T) {
	userRepo := &mockUserRepository{
		existsByEmailFn: func(ctx context.Context, email string) (bool, error) {
			return false, errors.New("connection refused")
		},
	}
	svc := newUserService(userRepo, &mockFollowRepository{}, nil, nil)

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Name:     "Jane",
		Email:    "jane@example.com",
		Password: "secret123",
	})
	if err == nil {
		t.Fatal("expected error")
	}

	// A failed email lookup is an internal failure, not bad input; it must
	// not be mistaken for any of the caller-facing sentinels.
	for _, sentinel := range []error{model.ErrNameRequired, model.ErrEmailInvalid, model.ErrPasswordTooShort, model.ErrEmailExists} {
		if errors.Is(err, sentinel) {
			t.Errorf("infra failure must not map to %v", sentinel)
		}
	}
}

func TestUserService_Login_WrongPassword(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.DefaultCost)
	userRepo := &mockUserRepository{
		getByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 1, Email: email, PasswordHashed: string(hashed)}, nil
		},
	}
	svc := newUserService(userRepo, &mockFollowRepository{}, nil, nil)

	_, err := svc.Login(context.Background(), &model.LoginRequest{Email: "a@b.c", Password: "wrong"})
	if !errors.Is(err, model.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestUserService_Login_UnknownEmailHidden(t *testing.T) {
	svc := newUserService(&mockUserRepository{}, &mockFollowRepository{}, nil, nil)

	_, err := svc.Login(context.Background(), &model.LoginRequest{Email: "nobody@b.c", Password: "x"})
	if !errors.Is(err, model.ErrInvalidCredentials) {
		t.Errorf("unknown email must look like bad credentials, got %v", err)
	}
}

func TestUserService_ChangeUsername_Cooldown(t *testing.T) {
	recently := time.Now().Add(-24 * time.Hour)
	userRepo := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Username: "old", UsernameChangedAt: &recently}, nil
		},
	}
	svc := newUserService(userRepo, &mockFollowRepository{}, nil, nil)

	_, err := svc.ChangeUsername(context.Background(), 1, "newname")
	if !errors.Is(err, model.ErrUsernameCooldown) {
		t.Errorf("expected ErrUsernameCooldown, got %v", err)
	}
}

func TestUserService_ChangeUsername_AfterCooldown(t *testing.T) {
	longAgo := time.Now().Add(-model.UsernameCooldown - time.Hour)
	var updated string
	userRepo := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Username: "old", UsernameChangedAt: &longAgo}, nil
		},
		updateUsernameFn: func(ctx context.Context, userID int64, username string) error {
			updated = username
			return nil
		},
	}
	svc := newUserService(userRepo, &mockFollowRepository{}, nil, nil)

	if _, err := svc.ChangeUsername(context.Background(), 1, "newname"); err != nil {
		t.Fatalf("ChangeUsername failed: %v", err)
	}
	if updated != "newname" {
		t.Errorf("expected update to newname, got %q", updated)
	}
}

func TestUserService_ChangeUsername_TooShort(t *testing.T) {
	svc := newUserService(&mockUserRepository{}, &mockFollowRepository{}, nil, nil)

	_, err := svc.ChangeUsername(context.Background(), 1, "ab")
	if !errors.Is(err, model.ErrUsernameTooShort) {
		t.Errorf("expected ErrUsernameTooShort, got %v", err)
	}
}

func TestUserService_UpdateProfile_BioTooLong(t *testing.T) {
	svc := newUserService(&mockUserRepository{}, &mockFollowRepository{}, nil, nil)

	bio := strings.Repeat("b", model.MaxBioLength+1)
	_, err := svc.UpdateProfile(context.Background(), 1, &model.UpdateProfileRequest{Bio: &bio})
	if !errors.Is(err, model.ErrBioTooLong) {
		t.Errorf("expected ErrBioTooLong, got %v", err)
	}
}

func TestUserService_RemoveAvatar_ClearsRowAndDeletesObject(t *testing.T) {
	avatarKey := "avatars/a.jpg"
	userRepo := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, AvatarKey: &avatarKey}, nil
		},
	}
	images := &mockUploader{}
	svc := newUserService(userRepo, &mockFollowRepository{}, nil, images)

	if _, err := svc.RemoveAvatar(context.Background(), 1); err != nil {
		t.Fatalf("RemoveAvatar failed: %v", err)
	}
	if len(userRepo.clearAvatarCalls) != 1 || userRepo.clearAvatarCalls[0] != 1 {
		t.Errorf("expected avatar cleared for user 1, got %v", userRepo.clearAvatarCalls)
	}
	if len(images.deletedKeys) != 1 || images.deletedKeys[0] != avatarKey {
		t.Errorf("expected stored object deleted, got %v", images.deletedKeys)
	}
}

func TestUserService_RemoveAvatar_NoAvatarIsNoOp(t *testing.T) {
	userRepo := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id}, nil
		},
	}
	images := &mockUploader{}
	svc := newUserService(userRepo, &mockFollowRepository{}, nil, images)

	if _, err := svc.RemoveAvatar(context.Background(), 1); err != nil {
		t.Fatalf("RemoveAvatar failed: %v", err)
	}
	if len(userRepo.clearAvatarCalls) != 0 {
		t.Errorf("expected no row update without an avatar, got %v", userRepo.clearAvatarCalls)
	}
	if len(images.deletedKeys) != 0 {
		t.Errorf("expected no object deletes, got %v", images.deletedKeys)
	}
}

func TestUserService_DeleteAccount_CascadeInOneTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	hashed, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	avatarKey := "avatars/a.jpg"
	userRepo := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, PasswordHashed: string(hashed), AvatarKey: &avatarKey}, nil
		},
	}

	var order []string
	userRepo.deleteFn = func(ctx context.Context, tx *sqlx.Tx, userID int64) error {
		order = append(order, "user")
		return nil
	}
	followRepo := &mockFollowRepository{
		deleteAllForUserFn: func(ctx context.Context, tx *sqlx.Tx, userID int64) error {
			order = append(order, "follows")
			return nil
		},
	}
	artworkRepo := &mockArtworkRepository{
		getImageKeysByUserFn: func(ctx context.Context, userID int64) ([]string, error) {
			return []string{"artworks/1.jpg", "artworks/2.jpg"}, nil
		},
		deleteAllForUserFn: func(ctx context.Context, tx *sqlx.Tx, userID int64) error {
			order = append(order, "artworks")
			return nil
		},
	}
	commentRepo := &mockCommentRepository{
		deleteAllForUserFn: func(ctx context.Context, tx *sqlx.Tx, userID int64) error {
			order = append(order, "comments")
			return nil
		},
	}
	images := &mockUploader{}

	svc := NewUserService(userRepo, followRepo, artworkRepo, commentRepo, &mockNotificationRepository{}, db, images)

	if err := svc.DeleteAccount(context.Background(), 1, "secret123"); err != nil {
		t.Fatalf("DeleteAccount failed: %v", err)
	}

	// Artwork images and avatar cleaned up before the row cascade.
	if len(images.deletedKeys) != 3 {
		t.Errorf("expected 3 deleted objects, got %v", images.deletedKeys)
	}

	// The user row goes last, after everything it owns.
	if len(order) == 0 || order[len(order)-1] != "user" {
		t.Errorf("expected user row deleted last, got order %v", order)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("transaction expectations: %v", err)
	}
}

func TestUserService_DeleteAccount_WrongPassword(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	userRepo := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, PasswordHashed: string(hashed)}, nil
		},
	}
	svc := newUserService(userRepo, &mockFollowRepository{}, nil, nil)

	err := svc.DeleteAccount(context.Background(), 1, "wrong")
	if !errors.Is(err, model.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}
