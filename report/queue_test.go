package report

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestQueueOrder(t *testing.T) {
	q := NewQueue(0)
	ctx := context.Background()
	if err := q.PutAll(ctx, "one", "two", "three"); err != nil {
		t.Fatal(err)
	}
	if v := q.Len(); v != 3 {
		t.Fatalf("expected 3 pending, got %d", v)
	}
	for _, want := range []string{"one", "two", "three"} {
		v, ok := q.TryGet()
		if !ok || v != want {
			t.Fatalf("expected %q, got %q (%t)", want, v, ok)
		}
	}
	if _, ok := q.TryGet(); ok {
		t.Fatal("expected empty queue")
	}
}

func TestQueueFull(t *testing.T) {
	q := NewQueue(1)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := q.Put(ctx, "one"); err != nil {
		t.Fatal(err)
	}
	if err := q.Put(ctx, "two"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline, got %v", err)
	}
}

func TestQueueGet(t *testing.T) {
	q := NewQueue(1)
	go func() {
		_ = q.Put(context.Background(), "late")
	}()
	v, err := q.Get(context.Background())
	if err != nil || v != "late" {
		t.Fatalf("expected late, got %q, %v", v, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err = q.Get(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}
