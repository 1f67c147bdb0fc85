package save

import (
	"context"
	"errors"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.Get(ctx, KeySave); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Put(ctx, KeySave, []byte(`{"version":1}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := store.Get(ctx, KeySave)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `{"version":1}` {
		t.Fatalf("got %q", got)
	}
}

func TestStoreLastWriterWins(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	store.Put(ctx, KeyLastOnline, []byte("100"))
	store.Put(ctx, KeyLastOnline, []byte("200"))
	got, err := store.Get(ctx, KeyLastOnline)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "200" {
		t.Fatalf("got %q, want the later write", got)
	}
}

func TestStoreDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	store.Put(ctx, KeySave, []byte("x"))
	if err := store.Delete(ctx, KeySave); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, KeySave); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, KeySave); err != nil {
		t.Fatalf("deleting a missing key should be a no-op, got %v", err)
	}
}
