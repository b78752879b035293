package playback

import (
	"testing"
	"time"
)

func drain(sub *Subscription) []Event {
	var out []Event
	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				return out
			}
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestBroadcast_DropsOldestForSlowObserver(t *testing.T) {
	b := NewBroadcaster()
	sub := b.Subscribe()

	for i := 1; i <= 50; i++ {
		b.Publish(PositionEvent{Clock: time.Duration(i)})
	}

	got := drain(sub)
	if len(got) != eventBufferSize {
		t.Fatalf("got %d events, want %d", len(got), eventBufferSize)
	}
	first := got[0].(PositionEvent)
	last := got[len(got)-1].(PositionEvent)
	if last.Clock != 50 {
		t.Errorf("newest = %d, want 50", last.Clock)
	}
	if first.Clock != time.Duration(50-eventBufferSize+1) {
		t.Errorf("oldest survivor = %d, want %d", first.Clock, 50-eventBufferSize+1)
	}
}

func TestBroadcast_SlowObserverDoesNotAffectFast(t *testing.T) {
	b := NewBroadcaster()
	fast := b.Subscribe()
	slow := b.Subscribe() // never read until the end

	// The fast observer reads in lockstep; it must see every event even
	// though the slow one overflows.
	for i := 1; i <= 50; i++ {
		b.Publish(PositionEvent{Clock: time.Duration(i)})
		ev := <-fast.Events()
		if ev.(PositionEvent).Clock != time.Duration(i) {
			t.Fatalf("fast observer got %v at step %d", ev, i)
		}
	}

	got := drain(slow)
	if len(got) != eventBufferSize {
		t.Errorf("slow observer got %d events, want %d", len(got), eventBufferSize)
	}
}

func TestBroadcast_PublishAfterSubscriptionClose(t *testing.T) {
	b := NewBroadcaster()
	a := b.Subscribe()
	c := b.Subscribe()
	a.Close()

	b.Publish(StatusEvent{})
	if _, ok := <-a.Events(); ok {
		t.Error("closed subscription still delivers")
	}
	select {
	case <-c.Events():
	default:
		t.Error("surviving subscription missed the event")
	}
}

func TestBroadcast_CloseShutsAllSubscribers(t *testing.T) {
	b := NewBroadcaster()
	sub := b.Subscribe()
	b.Close()

	if _, ok := <-sub.Events(); ok {
		t.Error("channel open after bus close")
	}
	// Publish and a late subscribe are harmless.
	b.Publish(StatusEvent{})
	late := b.Subscribe()
	if _, ok := <-late.Events(); ok {
		t.Error("late subscription delivers after close")
	}
	b.Close()
}
