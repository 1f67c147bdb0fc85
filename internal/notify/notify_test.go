package notify

import "testing"

func TestSubscribeAndPublish(t *testing.T) {
	hub := NewHub[int]()
	ch, cancel := hub.Subscribe()
	defer cancel()

	hub.Publish(1)
	if got := <-ch; got != 1 {
		t.Fatalf("got %d, want 1", got)
	}
}

func TestSlowSubscriberKeepsNewest(t *testing.T) {
	hub := NewHub[int]()
	ch, cancel := hub.Subscribe()
	defer cancel()

	hub.Publish(1)
	hub.Publish(2)
	hub.Publish(3)
	if got := <-ch; got != 3 {
		t.Fatalf("got %d, want newest value 3", got)
	}
}

func TestCancelReleasesSubscription(t *testing.T) {
	hub := NewHub[int]()
	ch, cancel := hub.Subscribe()
	cancel()
	cancel()

	if hub.Len() != 0 {
		t.Fatalf("subscriber count = %d, want 0", hub.Len())
	}
	if _, open := <-ch; open {
		t.Fatalf("channel should be closed after cancel")
	}
	hub.Publish(9)
}
