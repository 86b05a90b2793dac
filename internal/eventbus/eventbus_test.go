package eventbus

import (
	"testing"

	"github.com/procuro/rfqmatch/core/model"
)

func TestBus_PublishSubscribe(t *testing.T) {
	b := New[model.DomainEvent]()
	sub := b.Subscribe()
	b.Publish(model.NewEvent(model.EventNewQuote, map[string]any{"quoteId": "q1"}, "u1"))
	ev := <-sub
	if ev.Kind != model.EventNewQuote {
		t.Fatalf("unexpected event kind %s", ev.Kind)
	}
	if len(ev.UserIDs) != 1 || ev.UserIDs[0] != "u1" {
		t.Fatalf("unexpected targets %v", ev.UserIDs)
	}
}

func TestBus_NonBlockingPublish(t *testing.T) {
	b := New[int]()
	b.Subscribe() // never drained
	for i := 0; i < 100; i++ {
		b.Publish(i) // must not block once the buffer fills
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	b := New[int]()
	sub := b.Subscribe()
	b.Unsubscribe(sub)
	if _, ok := <-sub; ok {
		t.Fatalf("channel should be closed after unsubscribe")
	}
	b.Publish(1) // no subscribers left, must not panic
}

func TestBus_CloseIdempotent(t *testing.T) {
	b := New[int]()
	sub := b.Subscribe()
	b.Close()
	b.Close()
	if _, ok := <-sub; ok {
		t.Fatalf("channel should be closed after bus close")
	}
	b.Publish(1) // closed bus swallows publishes
}
