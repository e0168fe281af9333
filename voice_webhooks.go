package main

import (
	"log"
	"net/http"
)

const (
	holdAnnouncement = "Please hold. Your call is important to us."
	greeting         = "Thank you for calling Daewoo Express Pakistan. I can help you with bus schedules, ticket prices, route durations, bookings, and terminal information. Please tell me how I can assist you."
)

// handleIncomingCall is the Twilio "A call comes in" webhook. The caller is
// parked on hold and the call shows up on the dashboard for accept/decline.
func (a *VoiceAgent) handleIncomingCall(w http.ResponseWriter, r *http.Request) {
	callSid := r.PostFormValue("CallSid")
	from := r.PostFormValue("From")
	if from == "" {
		from = r.PostFormValue("Caller")
	}

	if callSid != "" {
		a.pending.Register(callSid, from)
		log.Printf("📞 Incoming call %s from %s, awaiting operator decision", callSid, from)
	}

	resp := NewVoiceResponse().
		Say(holdAnnouncement).
		Redirect(a.cfg.VoiceURL("/voice/hold"))
	writeTwiML(w, resp)
}

// handleHold keeps the caller waiting. Twilio re-polls this endpoint every
// pause interval until an accept redirects the call or a decline ends it.
func (a *VoiceAgent) handleHold(w http.ResponseWriter, r *http.Request) {
	resp := NewVoiceResponse().
		Pause(5).
		Redirect(a.cfg.VoiceURL("/voice/hold"))
	writeTwiML(w, resp)
}

// handleVoice is the conversation entry point, reached after an accept (or
// directly for outbound calls). With no SpeechResult attached it greets the
// caller and opens a speech-capture window; with one it runs a conversation
// turn and reopens the window by redirecting back to itself.
func (a *VoiceAgent) handleVoice(w http.ResponseWriter, r *http.Request) {
	speech := r.PostFormValue("SpeechResult")

	if speech == "" {
		resp := NewVoiceResponse().
			GatherSpeech("/voice", greeting)
		// No speech within the capture window: loop back and re-greet
		resp.Redirect("/voice")
		writeTwiML(w, resp)
		return
	}

	callSid := r.PostFormValue("CallSid")
	reply := a.conversation.HandleUtterance(r.Context(), callSid, speech)

	resp := NewVoiceResponse().
		Say(reply).
		Redirect("/voice")
	writeTwiML(w, resp)
}
