package httpapi

import (
	"context"
	"testing"
	"time"
)

func waitDone(t *testing.T, ctx context.Context) {
	t.Helper()
	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("context never canceled")
	}
}

func TestJoinContextsCancelsOnFirstParent(t *testing.T) {
	a, cancelA := context.WithCancel(context.Background())
	joined, cancel := joinContexts(a, context.Background())
	defer cancel()
	cancelA()
	waitDone(t, joined)
}

func TestJoinContextsCancelsOnSecondParent(t *testing.T) {
	b, cancelB := context.WithCancel(context.Background())
	joined, cancel := joinContexts(context.Background(), b)
	defer cancel()
	cancelB()
	waitDone(t, joined)
}

func TestJoinContextsPreservesValues(t *testing.T) {
	type key struct{}
	a := context.WithValue(context.Background(), key{}, "v")
	joined, cancel := joinContexts(a, context.Background())
	defer cancel()
	if joined.Value(key{}) != "v" {
		t.Fatalf("value from the first parent not visible")
	}
}
