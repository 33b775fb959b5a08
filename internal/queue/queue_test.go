package queue_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"artspace/internal/queue"
)

// =============================================================================
// Test Helpers
// =============================================================================

func setupTestRedis(t *testing.T) *redis.Client {
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("Failed to parse Redis URL: %v", err)
	}

	// Use DB 1 for testing to avoid conflicts with dev data
	opts.DB = 1

	client := redis.NewClient(opts)

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available, skipping test: %v", err)
	}

	client.FlushDB(ctx)
	return client
}

func cleanupTestRedis(client *redis.Client) {
	ctx := context.Background()
	client.FlushDB(ctx)
	client.Close()
}

// =============================================================================
// Integration Tests
// =============================================================================

func TestPublishReadAck(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	ctx := context.Background()
	publisher := queue.NewPublisher(client)
	consumer := queue.NewConsumer(client)

	if err := consumer.EnsureGroup(ctx, queue.StreamActivity, queue.ConsumerGroupFanout); err != nil {
		t.Fatalf("EnsureGroup failed: %v", err)
	}
	// Creating the same group twice must be a no-op.
	if err := consumer.EnsureGroup(ctx, queue.StreamActivity, queue.ConsumerGroupFanout); err != nil {
		t.Fatalf("EnsureGroup second call failed: %v", err)
	}

	event := queue.NewArtworkCreatedEvent(42, 1, []int64{2, 3})
	msgID, err := publisher.Publish(ctx, queue.StreamActivity, event)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if msgID == "" {
		t.Fatal("expected a message ID")
	}

	messages, err := consumer.Read(ctx, queue.StreamActivity, queue.ConsumerGroupFanout, "test-consumer", 10, time.Second)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}

	got := messages[0].Event
	if got.Type != queue.EventArtworkCreated || got.ArtworkID != 42 || got.ActorID != 1 {
		t.Errorf("unexpected event: %+v", got)
	}
	if len(got.RecipientIDs) != 2 {
		t.Errorf("expected follower snapshot to survive the roundtrip, got %v", got.RecipientIDs)
	}

	if err := consumer.Ack(ctx, queue.StreamActivity, queue.ConsumerGroupFanout, messages[0].ID); err != nil {
		t.Fatalf("Ack failed: %v", err)
	}

	// After ack there is nothing pending for this consumer.
	pending, err := consumer.ReadPending(ctx, queue.StreamActivity, queue.ConsumerGroupFanout, "test-consumer", 10)
	if err != nil {
		t.Fatalf("ReadPending failed: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("expected no pending messages after ack, got %d", len(pending))
	}
}

func TestUnackedMessageStaysPending(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	ctx := context.Background()
	publisher := queue.NewPublisher(client)
	consumer := queue.NewConsumer(client)

	if err := consumer.EnsureGroup(ctx, queue.StreamActivity, queue.ConsumerGroupFanout); err != nil {
		t.Fatalf("EnsureGroup failed: %v", err)
	}

	event := queue.NewUserFollowedEvent(1, 2)
	if _, err := publisher.Publish(ctx, queue.StreamActivity, event); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	messages, err := consumer.Read(ctx, queue.StreamActivity, queue.ConsumerGroupFanout, "test-consumer", 10, time.Second)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}

	// Without an ack, a restarted consumer recovers the message.
	pending, err := consumer.ReadPending(ctx, queue.StreamActivity, queue.ConsumerGroupFanout, "test-consumer", 10)
	if err != nil {
		t.Fatalf("ReadPending failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending message, got %d", len(pending))
	}
	if pending[0].Event.Type != queue.EventUserFollowed {
		t.Errorf("unexpected pending event: %+v", pending[0].Event)
	}
}
