package main

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestHandleUtteranceReadsAsProse(t *testing.T) {
	gen, server := newFakeBackendGenerator(t, "The Lahore to Islamabad bus departs at eight A M, eleven A M, two P M, five P M and nine P M. A ticket costs three thousand five hundred rupees.")
	defer server.Close()

	controller := NewConversationTurnController(newTestBusProvider("", time.Minute), gen)
	reply := controller.HandleUtterance(context.Background(), "CA123", "What time is the Lahore to Islamabad bus?")

	if reply == "" {
		t.Fatal("HandleUtterance() returned empty reply")
	}
	if strings.ContainsAny(reply, "{}[]") {
		t.Errorf("reply contains JSON structuring characters: %q", reply)
	}
	if strings.Contains(reply, "departureTimes") || strings.Contains(reply, "ticketPrice") {
		t.Errorf("reply echoes field names: %q", reply)
	}
}

func TestHandleUtteranceFallsBackWithoutCredential(t *testing.T) {
	controller := NewConversationTurnController(
		newTestBusProvider("", time.Minute),
		NewReplyGenerator("", defaultOpenAIModel),
	)

	reply := controller.HandleUtterance(context.Background(), "CA123", "What time is the bus?")
	if reply != fallbackReply {
		t.Errorf("HandleUtterance() = %q, want fixed fallback", reply)
	}
}

func TestHandleUtteranceFallsBackOnBackendFailure(t *testing.T) {
	gen, server := newFakeBackendGenerator(t, "unused")
	server.Close() // backend unreachable

	controller := NewConversationTurnController(newTestBusProvider("", time.Minute), gen)
	reply := controller.HandleUtterance(context.Background(), "CA123", "What time is the bus?")
	if reply != fallbackReply {
		t.Errorf("HandleUtterance() = %q, want fixed fallback", reply)
	}
}
