package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	sqlmock "gopkg.in/DATA-DOG/go-sqlmock.v1"

	"artspace/internal/model"
	"artspace/internal/queue"
)

// newMockDB returns an sqlx handle backed by sqlmock so the service's
// transaction lifecycle (Begin/Commit/Rollback) can be asserted while
// the repositories stay mocked at the interface level.
func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New failed: %v", err)
	}
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestFollowService_Follow_CommitsEdgeAndCounters(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	var edgeCreated bool
	var followerBumped, followingBumped bool
	followRepo := &mockFollowRepository{
		createFn: func(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64) (bool, error) {
			if tx == nil {
				t.Error("expected edge insert inside the transaction")
			}
			edgeCreated = true
			return true, nil
		},
	}
	userRepo := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id}, nil
		},
		incFollowerFn: func(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
			if userID != 2 || delta != 1 {
				t.Errorf("expected follower_count +1 for user 2, got %+d for user %d", delta, userID)
			}
			followerBumped = true
			return nil
		},
		incFollowingFn: func(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
			if userID != 1 || delta != 1 {
				t.Errorf("expected following_count +1 for user 1, got %+d for user %d", delta, userID)
			}
			followingBumped = true
			return nil
		},
	}
	publisher := &mockPublisher{}
	svc := NewFollowService(followRepo, userRepo, db, publisher)

	if err := svc.Follow(context.Background(), 1, 2); err != nil {
		t.Fatalf("Follow failed: %v", err)
	}

	if !edgeCreated || !followerBumped || !followingBumped {
		t.Error("expected edge insert and both counter updates")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("transaction expectations: %v", err)
	}

	// Event goes out only after commit.
	if len(publisher.published) != 1 {
		t.Fatalf("expected 1 event, got %d", len(publisher.published))
	}
	ev := publisher.published[0]
	if ev.Type != queue.EventUserFollowed || ev.ActorID != 1 || ev.RecipientID != 2 {
		t.Errorf("unexpected event: %+v", ev)
	}
}

func TestFollowService_Follow_Self(t *testing.T) {
	db, _ := newMockDB(t)
	defer db.Close()
	svc := NewFollowService(&mockFollowRepository{}, &mockUserRepository{}, db, &mockPublisher{})

	err := svc.Follow(context.Background(), 1, 1)
	if !errors.Is(err, model.ErrCannotFollowSelf) {
		t.Errorf("expected ErrCannotFollowSelf, got %v", err)
	}
}

func TestFollowService_Follow_Duplicate_RollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	followRepo := &mockFollowRepository{
		createFn: func(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64) (bool, error) {
			return false, nil // edge already existed
		},
	}
	userRepo := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id}, nil
		},
		incFollowerFn: func(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
			t.Error("counters must not change on a duplicate follow")
			return nil
		},
	}
	publisher := &mockPublisher{}
	svc := NewFollowService(followRepo, userRepo, db, publisher)

	err := svc.Follow(context.Background(), 1, 2)
	if !errors.Is(err, model.ErrAlreadyFollowing) {
		t.Fatalf("expected ErrAlreadyFollowing, got %v", err)
	}
	if len(publisher.published) != 0 {
		t.Errorf("expected no events, got %d", len(publisher.published))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("transaction expectations: %v", err)
	}
}

func TestFollowService_Follow_UnknownFollowee(t *testing.T) {
	db, _ := newMockDB(t)
	defer db.Close()
	svc := NewFollowService(&mockFollowRepository{}, &mockUserRepository{}, db, &mockPublisher{})

	err := svc.Follow(context.Background(), 1, 99)
	if !errors.Is(err, model.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestFollowService_Follow_CounterFailureRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	userRepo := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id}, nil
		},
		incFollowerFn: func(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
			return errors.New("counter update failed")
		},
	}
	publisher := &mockPublisher{}
	svc := NewFollowService(&mockFollowRepository{}, userRepo, db, publisher)

	if err := svc.Follow(context.Background(), 1, 2); err == nil {
		t.Fatal("expected error when a counter update fails")
	}
	if len(publisher.published) != 0 {
		t.Errorf("expected no events after rollback, got %d", len(publisher.published))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("transaction expectations: %v", err)
	}
}

func TestFollowService_Unfollow_Success(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	var followerDelta, followingDelta int
	userRepo := &mockUserRepository{
		incFollowerFn: func(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
			followerDelta = delta
			return nil
		},
		incFollowingFn: func(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
			followingDelta = delta
			return nil
		},
	}
	publisher := &mockPublisher{}
	svc := NewFollowService(&mockFollowRepository{}, userRepo, db, publisher)

	if err := svc.Unfollow(context.Background(), 1, 2); err != nil {
		t.Fatalf("Unfollow failed: %v", err)
	}
	if followerDelta != -1 || followingDelta != -1 {
		t.Errorf("expected both counters -1, got follower=%d following=%d", followerDelta, followingDelta)
	}
	if len(publisher.published) != 0 {
		t.Errorf("unfollow must not publish events, got %d", len(publisher.published))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("transaction expectations: %v", err)
	}
}

func TestFollowService_Unfollow_MissingEdge(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	followRepo := &mockFollowRepository{
		deleteFn: func(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64) error {
			return model.ErrNotFollowing
		},
	}
	userRepo := &mockUserRepository{
		incFollowerFn: func(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
			t.Error("counters must not change when the edge is missing")
			return nil
		},
	}
	svc := NewFollowService(followRepo, userRepo, db, &mockPublisher{})

	err := svc.Unfollow(context.Background(), 1, 2)
	if !errors.Is(err, model.ErrNotFollowing) {
		t.Fatalf("expected ErrNotFollowing, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("transaction expectations: %v", err)
	}
}
