package main

import (
	"encoding/xml"
	"log"
	"net/http"
)

// TwiML verb vocabulary used by the voice webhooks. Twilio replays each
// webhook response as a sequence of instructions, so verb order matters and
// the response is built as an ordered list.

const pollyVoice = "Polly.Joanna"

// Say speaks text to the caller
type Say struct {
	XMLName xml.Name `xml:"Say"`
	Voice   string   `xml:"voice,attr,omitempty"`
	Text    string   `xml:",chardata"`
}

// Pause waits silently for the given number of seconds
type Pause struct {
	XMLName xml.Name `xml:"Pause"`
	Length  int      `xml:"length,attr"`
}

// Redirect transfers signaling control of the call to another webhook URL
type Redirect struct {
	XMLName xml.Name `xml:"Redirect"`
	Method  string   `xml:"method,attr,omitempty"`
	URL     string   `xml:",chardata"`
}

// Gather opens a speech-capture window. Twilio posts the transcribed speech
// to Action as SpeechResult; if the caller says nothing within Timeout the
// verbs after the Gather run instead.
type Gather struct {
	XMLName       xml.Name `xml:"Gather"`
	Input         string   `xml:"input,attr"`
	Action        string   `xml:"action,attr"`
	Method        string   `xml:"method,attr"`
	Timeout       int      `xml:"timeout,attr"`
	SpeechTimeout string   `xml:"speechTimeout,attr"`
	Say           *Say     `xml:"Say,omitempty"`
}

// VoiceResponse is a TwiML document
type VoiceResponse struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any
}

// NewVoiceResponse creates an empty TwiML document
func NewVoiceResponse() *VoiceResponse {
	return &VoiceResponse{}
}

// Say appends a spoken announcement
func (v *VoiceResponse) Say(text string) *VoiceResponse {
	v.Verbs = append(v.Verbs, Say{Voice: pollyVoice, Text: text})
	return v
}

// Pause appends a silent pause of length seconds
func (v *VoiceResponse) Pause(length int) *VoiceResponse {
	v.Verbs = append(v.Verbs, Pause{Length: length})
	return v
}

// Redirect appends a POST redirect to url
func (v *VoiceResponse) Redirect(url string) *VoiceResponse {
	v.Verbs = append(v.Verbs, Redirect{Method: "POST", URL: url})
	return v
}

// GatherSpeech appends a speech-capture window that greets the caller and
// posts the transcription back to action
func (v *VoiceResponse) GatherSpeech(action, prompt string) *VoiceResponse {
	v.Verbs = append(v.Verbs, Gather{
		Input:         "speech",
		Action:        action,
		Method:        "POST",
		Timeout:       5,
		SpeechTimeout: "auto",
		Say:           &Say{Voice: pollyVoice, Text: prompt},
	})
	return v
}

// Render serializes the document with the XML declaration Twilio expects
func (v *VoiceResponse) Render() ([]byte, error) {
	body, err := xml.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

// writeTwiML sends a TwiML document as the webhook response
func writeTwiML(w http.ResponseWriter, v *VoiceResponse) {
	body, err := v.Render()
	if err != nil {
		log.Printf("❌ Failed to render TwiML: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/xml")
	w.Write(body)
}
