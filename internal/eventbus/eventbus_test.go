package eventbus

import (
	"testing"
	"time"
)

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return nil
	}
}

func TestBus_FanOut(t *testing.T) {
	b := New()
	defer b.Close()
	a := b.Subscribe()
	c := b.Subscribe()

	b.Publish("snapshot")
	if got := receive(t, a); got != "snapshot" {
		t.Fatalf("subscriber a got %v", got)
	}
	if got := receive(t, c); got != "snapshot" {
		t.Fatalf("subscriber c got %v", got)
	}
}

func TestBus_UnsubscribeClosesChannel(t *testing.T) {
	b := New()
	defer b.Close()
	sub := b.Subscribe()
	b.Unsubscribe(sub)

	if _, ok := <-sub; ok {
		t.Fatal("channel should be closed after unsubscribe")
	}
	// Publishing afterwards must not panic on the removed channel.
	b.Publish("late")
}

func TestBus_FullSubscriberDropsInsteadOfBlocking(t *testing.T) {
	b := New()
	defer b.Close()
	sub := b.Subscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer+5; i++ {
			b.Publish(i)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher blocked on a full subscriber")
	}
	if got := len(sub); got != subscriberBuffer {
		t.Fatalf("expected %d buffered events, got %d", subscriberBuffer, got)
	}
}

func TestBus_CloseClosesSubscribers(t *testing.T) {
	b := New()
	sub := b.Subscribe()
	b.Close()

	if _, ok := <-sub; ok {
		t.Fatal("channel should be closed after bus close")
	}
	if late := b.Subscribe(); late == nil {
		t.Fatal("subscribe on closed bus should return a closed channel")
	} else if _, ok := <-late; ok {
		t.Fatal("late subscription should be closed immediately")
	}
	// Idempotent.
	b.Close()
}
