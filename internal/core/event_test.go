package core

import "testing"

func TestEventTokens(t *testing.T) {
	tokens := map[Event]string{
		EventStatusChanged: "status",
		EventNewMessage:    "new_message",
		EventMessageRead:   "read",
		EventKicked:        "kick",
		EventBanned:        "ban",
		EventDisconnected:  "offline",
	}

	for event, token := range tokens {
		if got := event.Token(); got != token {
			t.Errorf("%v.Token() = %q, want %q", event, got, token)
		}
		parsed, err := ParseEvent(token)
		if err != nil {
			t.Errorf("ParseEvent(%q): %v", token, err)
		}
		if parsed != event {
			t.Errorf("ParseEvent(%q) = %v, want %v", token, parsed, event)
		}
	}
}

func TestParseEventUnknownToken(t *testing.T) {
	if _, err := ParseEvent("ping"); err == nil {
		t.Fatal("expected error for unknown token")
	}
}
