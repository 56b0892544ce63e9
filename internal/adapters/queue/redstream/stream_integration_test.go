//go:build integration_redis
// +build integration_redis

package redstream

import (
	"context"
	"fmt"
	"testing"
	"time"

	"murmur/internal/platform/store/rds"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) (addr string, stop func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)

	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("6379/tcp"),
			wait.ForLog("Ready to accept connections"),
		).WithDeadline(2 * time.Minute),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		cancel()
		t.Fatalf("failed to start redis container: %v", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get container host: %v", err)
	}
	mapped, err := c.MappedPort(ctx, "6379/tcp")
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get mapped port: %v", err)
	}

	addr = fmt.Sprintf("%s:%s", host, mapped.Port())
	stop = func() {
		_ = c.Terminate(context.Background())
		cancel()
	}
	return addr, stop
}

func openQueue(t *testing.T, addr string) (*Queue, func()) {
	t.Helper()
	r, err := rds.Open(context.Background(), rds.Config{Addr: addr, AppName: "murmur-test"})
	if err != nil {
		t.Fatalf("rds.Open: %v", err)
	}
	return New(r), func() { _ = r.Close() }
}

func TestQueue_PublishReadAck_Integration(t *testing.T) {
	addr, stop := startRedis(t)
	defer stop()

	q, closeQ := openQueue(t, addr)
	defer closeQ()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	const stream = "it:segments"
	const group = "it-group"

	if err := q.EnsureGroup(ctx, stream, group); err != nil {
		t.Fatalf("EnsureGroup: %v", err)
	}
	// second call hits BUSYGROUP and must be swallowed
	if err := q.EnsureGroup(ctx, stream, group); err != nil {
		t.Fatalf("EnsureGroup repeat: %v", err)
	}

	id, err := q.Publish(ctx, stream, map[string]any{"payload": `{"k":"v"}`})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if id == "" {
		t.Fatal("expected a stream entry id")
	}

	msgs, err := q.ReadBatch(ctx, stream, group, "c1", 10, time.Second)
	if err != nil {
		t.Fatalf("ReadBatch: %v", err)
	}
	if len(msgs) != 1 || msgs[0].ID != id {
		t.Fatalf("expected the published entry, got %+v", msgs)
	}
	if msgs[0].Values["payload"] != `{"k":"v"}` {
		t.Fatalf("unexpected payload %v", msgs[0].Values)
	}

	if err := q.Ack(ctx, stream, group, msgs[0].ID); err != nil {
		t.Fatalf("Ack: %v", err)
	}

	// acked entries never come back, not even via claim
	claimed, err := q.ClaimStale(ctx, stream, group, "c2", 0, 10)
	if err != nil {
		t.Fatalf("ClaimStale: %v", err)
	}
	if len(claimed) != 0 {
		t.Fatalf("expected nothing claimable after ack, got %+v", claimed)
	}
}

func TestQueue_EmptyReadIsNotAnError_Integration(t *testing.T) {
	addr, stop := startRedis(t)
	defer stop()

	q, closeQ := openQueue(t, addr)
	defer closeQ()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	const stream = "it:empty"
	const group = "it-group"
	if err := q.EnsureGroup(ctx, stream, group); err != nil {
		t.Fatalf("EnsureGroup: %v", err)
	}

	msgs, err := q.ReadBatch(ctx, stream, group, "c1", 10, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("expected timeout to be silent, got %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected empty batch, got %+v", msgs)
	}
}

func TestQueue_StaleEntriesAreReclaimed_Integration(t *testing.T) {
	addr, stop := startRedis(t)
	defer stop()

	q, closeQ := openQueue(t, addr)
	defer closeQ()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	const stream = "it:reclaim"
	const group = "it-group"
	if err := q.EnsureGroup(ctx, stream, group); err != nil {
		t.Fatalf("EnsureGroup: %v", err)
	}

	if _, err := q.Publish(ctx, stream, map[string]any{"payload": "pending"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	// consumer c1 reads but crashes before acking
	msgs, err := q.ReadBatch(ctx, stream, group, "c1", 10, time.Second)
	if err != nil || len(msgs) != 1 {
		t.Fatalf("ReadBatch: msgs=%v err=%v", msgs, err)
	}

	// a new read by c2 sees nothing: the entry is pending for c1
	fresh, err := q.ReadBatch(ctx, stream, group, "c2", 10, 100*time.Millisecond)
	if err != nil || len(fresh) != 0 {
		t.Fatalf("expected no fresh entries, got msgs=%v err=%v", fresh, err)
	}

	time.Sleep(50 * time.Millisecond)

	// c2 claims the stale pending entry and finishes the work
	claimed, err := q.ClaimStale(ctx, stream, group, "c2", 10*time.Millisecond, 10)
	if err != nil {
		t.Fatalf("ClaimStale: %v", err)
	}
	if len(claimed) != 1 || claimed[0].ID != msgs[0].ID {
		t.Fatalf("expected the pending entry reclaimed, got %+v", claimed)
	}
	if err := q.Ack(ctx, stream, group, claimed[0].ID); err != nil {
		t.Fatalf("Ack after claim: %v", err)
	}

	again, err := q.ClaimStale(ctx, stream, group, "c1", 0, 10)
	if err != nil {
		t.Fatalf("ClaimStale after ack: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected nothing pending after ack, got %+v", again)
	}
}
