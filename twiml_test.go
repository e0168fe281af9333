package main

import (
	"strings"
	"testing"
)

func TestVoiceResponseVerbOrder(t *testing.T) {
	resp := NewVoiceResponse().
		Say("Please hold. Your call is important to us.").
		Redirect("https://agent.example.com/voice/hold")

	body, err := resp.Render()
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	xml := string(body)

	if !strings.HasPrefix(xml, "<?xml") {
		t.Errorf("missing XML declaration: %s", xml)
	}
	sayIdx := strings.Index(xml, "<Say")
	redirectIdx := strings.Index(xml, "<Redirect")
	if sayIdx == -1 || redirectIdx == -1 {
		t.Fatalf("missing verbs in %s", xml)
	}
	if sayIdx > redirectIdx {
		t.Errorf("Say rendered after Redirect: %s", xml)
	}
	if !strings.Contains(xml, `voice="Polly.Joanna"`) {
		t.Errorf("missing voice attribute: %s", xml)
	}
	if !strings.Contains(xml, `method="POST"`) {
		t.Errorf("missing redirect method: %s", xml)
	}
}

func TestVoiceResponsePause(t *testing.T) {
	resp := NewVoiceResponse().Pause(5).Redirect("/voice/hold")
	body, err := resp.Render()
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(string(body), `<Pause length="5">`) {
		t.Errorf("missing pause verb: %s", body)
	}
}

func TestGatherSpeechAttributes(t *testing.T) {
	resp := NewVoiceResponse().GatherSpeech("/voice", "How can I help you?")
	body, err := resp.Render()
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	xml := string(body)

	for _, want := range []string{
		`input="speech"`,
		`action="/voice"`,
		`method="POST"`,
		`timeout="5"`,
		`speechTimeout="auto"`,
		"How can I help you?",
	} {
		if !strings.Contains(xml, want) {
			t.Errorf("Gather missing %s in %s", want, xml)
		}
	}
	// Greeting must be spoken inside the capture window, not before it
	if strings.Index(xml, "<Gather") > strings.Index(xml, "<Say") {
		t.Errorf("Say rendered outside Gather: %s", xml)
	}
}
