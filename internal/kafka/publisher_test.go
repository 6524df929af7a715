package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"

	"expenses/internal/events"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &Publisher{writer: w, topic: "expense_events"}

	ev := events.Deleted("exp-42")
	if err := p.Publish(context.Background(), ev); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if len(w.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.msgs))
	}
	msg := w.msgs[0]
	if string(msg.Key) != "exp-42" {
		t.Errorf("Key = %q, want exp-42", msg.Key)
	}
	got, err := events.FromJSON(msg.Value)
	if err != nil {
		t.Fatalf("value does not decode: %v", err)
	}
	if got.ID != ev.ID || got.Type != events.TypeDeleted {
		t.Errorf("decoded = %+v", got)
	}
}

func TestPublisher_PublishError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker unavailable")}
	p := &Publisher{writer: w, topic: "expense_events"}

	if err := p.Publish(context.Background(), events.Deleted("x")); err == nil {
		t.Fatal("Publish() should surface writer errors")
	}
}

func TestPublisher_Close(t *testing.T) {
	w := &fakeWriter{}
	p := &Publisher{writer: w}
	if err := p.Close(); err != nil || !w.closed {
		t.Fatalf("Close() = %v, closed = %v", err, w.closed)
	}
}
