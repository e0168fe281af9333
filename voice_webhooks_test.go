package main

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func TestIncomingWebhookParksCallerOnHold(t *testing.T) {
	agent := newTestAgent("", false)
	rec := postWebhookForm(t, agent.routes(), "/voice/incoming", url.Values{
		"CallSid": {"CA123"},
		"From":    {"+923001112222"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	twiml := rec.Body.String()
	if !strings.Contains(twiml, holdAnnouncement) {
		t.Errorf("missing hold announcement: %s", twiml)
	}
	if !strings.Contains(twiml, "https://agent.example.com/voice/hold") {
		t.Errorf("missing hold redirect: %s", twiml)
	}

	call, ok := agent.pending.Get("CA123")
	if !ok {
		t.Fatal("call not registered as pending")
	}
	if call.From != "+923001112222" {
		t.Errorf("From = %q", call.From)
	}
}

func TestIncomingWebhookFallsBackToCallerField(t *testing.T) {
	agent := newTestAgent("", false)
	postWebhookForm(t, agent.routes(), "/voice/incoming", url.Values{
		"CallSid": {"CA123"},
		"Caller":  {"+923007776666"},
	})

	call, ok := agent.pending.Get("CA123")
	if !ok {
		t.Fatal("call not registered as pending")
	}
	if call.From != "+923007776666" {
		t.Errorf("From = %q, want Caller field value", call.From)
	}
}

func TestIncomingWebhookWithoutCallSidRegistersNothing(t *testing.T) {
	agent := newTestAgent("", false)
	rec := postWebhookForm(t, agent.routes(), "/voice/incoming", url.Values{
		"From": {"+923001112222"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := agent.pending.Len(); got != 0 {
		t.Errorf("registry size = %d, want 0", got)
	}
}

func TestHoldWebhookLoops(t *testing.T) {
	agent := newTestAgent("", false)
	rec := postWebhookForm(t, agent.routes(), "/voice/hold", url.Values{})

	twiml := rec.Body.String()
	if !strings.Contains(twiml, `<Pause length="5"`) {
		t.Errorf("missing pause: %s", twiml)
	}
	if !strings.Contains(twiml, "https://agent.example.com/voice/hold") {
		t.Errorf("hold does not redirect to itself: %s", twiml)
	}
}

func TestVoiceWebhookGreetsWithoutSpeech(t *testing.T) {
	agent := newTestAgent("", false)
	rec := postWebhookForm(t, agent.routes(), "/voice", url.Values{
		"CallSid": {"CA123"},
	})

	twiml := rec.Body.String()
	if !strings.Contains(twiml, greeting) {
		t.Errorf("missing greeting: %s", twiml)
	}
	if !strings.Contains(twiml, `input="speech"`) {
		t.Errorf("missing speech gather: %s", twiml)
	}
	// No speech within the window: the trailing redirect re-enters /voice
	if !strings.Contains(twiml, "<Redirect") {
		t.Errorf("missing no-speech redirect: %s", twiml)
	}
}

func TestVoiceWebhookSpeaksReplyAndLoops(t *testing.T) {
	// No OpenAI credential: the turn degrades to the fixed fallback but the
	// call must keep going
	agent := newTestAgent("", false)
	rec := postWebhookForm(t, agent.routes(), "/voice", url.Values{
		"CallSid":      {"CA123"},
		"SpeechResult": {"What time is the Lahore to Islamabad bus?"},
	})

	twiml := rec.Body.String()
	if !strings.Contains(twiml, "unable to access the bus information system") {
		t.Errorf("missing spoken fallback: %s", twiml)
	}
	if !strings.Contains(twiml, "<Redirect") {
		t.Errorf("conversation does not loop back: %s", twiml)
	}
	if strings.Contains(twiml, "<Gather") {
		t.Errorf("reply turn should redirect, not gather directly: %s", twiml)
	}
}
