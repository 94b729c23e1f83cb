package amqp

import (
	"testing"
)

func TestMovementSyncMessageRoundTrip(t *testing.T) {
	msg := NewMovementSyncMessage(42, "ana", ActionUpsert)
	if msg.Timestamp.IsZero() {
		t.Fatal("message created without timestamp")
	}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	got, err := MovementSyncMessageFromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if got.ID != 42 || got.Owner != "ana" || got.Action != ActionUpsert {
		t.Fatalf("round trip changed message: %+v", got)
	}
}

func TestMovementSyncMessageFromJSONRejectsGarbage(t *testing.T) {
	if _, err := MovementSyncMessageFromJSON([]byte("{not json")); err == nil {
		t.Fatal("garbage payload accepted")
	}
}
