package pubsub

import (
	"context"
	"testing"
)

func TestNewEvent(t *testing.T) {
	evt, err := NewEvent(EventClaimCreated, "c-1", ClaimCreatedPayload{ClaimID: "c-1", PolicyReference: "POL-1", UserID: "u"})
	if err != nil {
		t.Fatal(err)
	}
	if evt.Type != EventClaimCreated || evt.Key != "c-1" || evt.Timestamp.IsZero() {
		t.Errorf("unexpected event %+v", evt)
	}

	var p ClaimCreatedPayload
	if err := evt.UnmarshalPayload(&p); err != nil {
		t.Fatal(err)
	}
	if p.PolicyReference != "POL-1" {
		t.Errorf("unexpected payload %+v", p)
	}
}

func TestNewPublisher(t *testing.T) {
	for _, driver := range []string{"", "none"} {
		p, err := NewPublisher(Config{Driver: driver})
		if err != nil {
			t.Fatalf("driver %q: %v", driver, err)
		}
		if err := p.Publish(context.Background(), ChannelClaimEvents, &Event{}); err != nil {
			t.Errorf("noop publish: %v", err)
		}
		p.Close()
	}

	if _, err := NewPublisher(Config{Driver: "carrier-pigeon"}); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestChannelToTopic(t *testing.T) {
	if got := channelToTopic(ChannelClaimEvents); got != "claims-events" {
		t.Errorf("expected claims-events, got %q", got)
	}
}
