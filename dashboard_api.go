package main

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// writeJSON sends a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeAPIError sends the structured error envelope all dashboard handlers use
func writeAPIError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// bodyOrQueryValue reads a parameter from a JSON request body, falling back
// to the query string (handy for REST clients that send neither)
func bodyOrQueryValue(r *http.Request, key string) string {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
		if s, ok := body[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return strings.TrimSpace(r.URL.Query().Get(key))
}

// handleHealth confirms the service is reachable
func (a *VoiceAgent) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "service": "daewoo-voice-agent"})
}

// handleIncomingCallPoll reports the oldest pending incoming call, if any.
// The dashboard surfaces a single call at a time.
func (a *VoiceAgent) handleIncomingCallPoll(w http.ResponseWriter, r *http.Request) {
	call, ok := a.pending.Oldest()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"pending": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pending": true,
		"callSid": call.CallSid,
		"from":    call.From,
	})
}

// handleCallAccept connects a pending call to the AI conversation loop
func (a *VoiceAgent) handleCallAccept(w http.ResponseWriter, r *http.Request) {
	if a.twilio == nil {
		writeAPIError(w, http.StatusServiceUnavailable, "Twilio not configured")
		return
	}
	callSid := bodyOrQueryValue(r, "callSid")
	if callSid == "" {
		writeAPIError(w, http.StatusBadRequest, "Missing callSid")
		return
	}
	if _, ok := a.pending.Get(callSid); !ok {
		writeAPIError(w, http.StatusNotFound, "Call no longer pending")
		return
	}

	if err := a.twilio.RedirectCall(r.Context(), callSid, a.cfg.VoiceURL("/voice")); err != nil {
		log.Printf("❌ Error accepting call %s: %v", callSid, err)
		writeAPIError(w, http.StatusInternalServerError, "Failed to accept call")
		return
	}
	a.pending.Remove(callSid)
	log.Printf("✅ Call %s accepted and connected to AI", callSid)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "message": "Call connected to AI"})
}

// handleCallDecline hangs up a pending call
func (a *VoiceAgent) handleCallDecline(w http.ResponseWriter, r *http.Request) {
	if a.twilio == nil {
		writeAPIError(w, http.StatusServiceUnavailable, "Twilio not configured")
		return
	}
	callSid := bodyOrQueryValue(r, "callSid")
	if callSid == "" {
		writeAPIError(w, http.StatusBadRequest, "Missing callSid")
		return
	}
	if _, ok := a.pending.Get(callSid); !ok {
		writeAPIError(w, http.StatusNotFound, "Call no longer pending")
		return
	}

	if err := a.twilio.CompleteCall(r.Context(), callSid); err != nil {
		log.Printf("❌ Error declining call %s: %v", callSid, err)
		writeAPIError(w, http.StatusInternalServerError, "Failed to decline call")
		return
	}
	a.pending.Remove(callSid)
	log.Printf("☎️ Call %s declined", callSid)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "message": "Call declined"})
}

// handleCallOut places an outbound call that connects straight to the agent
func (a *VoiceAgent) handleCallOut(w http.ResponseWriter, r *http.Request) {
	if a.twilio == nil {
		writeAPIError(w, http.StatusServiceUnavailable, "Twilio credentials not configured")
		return
	}
	if a.cfg.TwilioPhoneNumber == "" {
		writeAPIError(w, http.StatusServiceUnavailable, "TWILIO_PHONE_NUMBER not set in environment")
		return
	}

	to := bodyOrQueryValue(r, "to")
	if to == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Missing 'to' phone number",
			"hint":  `Send JSON body with header Content-Type: application/json. Example: {"to": "+923001234567"}`,
		})
		return
	}
	if !validE164(to) {
		writeAPIError(w, http.StatusBadRequest, "Invalid 'to' phone number, expected E.164 format like +923001234567")
		return
	}

	call, err := a.twilio.CreateCall(r.Context(), to, a.cfg.TwilioPhoneNumber, a.cfg.VoiceURL("/voice"))
	if err != nil {
		log.Printf("❌ Error creating outbound call to %s: %v", to, err)
		writeAPIError(w, http.StatusInternalServerError, "Failed to place call")
		return
	}
	log.Printf("📤 Outbound call %s to %s initiated", call.Sid, to)
	writeJSON(w, http.StatusOK, map[string]any{
		"sid":     call.Sid,
		"status":  call.Status,
		"message": "Outbound call initiated",
	})
}

// validE164 checks a dial target with libphonenumber
func validE164(number string) bool {
	if !strings.HasPrefix(number, "+") {
		return false
	}
	num, err := phonenumbers.Parse(number, "")
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(num)
}

// callSummary is the dashboard's view of one call
type callSummary struct {
	Sid       string `json:"sid"`
	Direction string `json:"direction"`
	From      string `json:"from"`
	To        string `json:"to"`
	Status    string `json:"status"`
	Duration  *int   `json:"duration"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// handleListCalls returns recent call history (incoming and outgoing)
func (a *VoiceAgent) handleListCalls(w http.ResponseWriter, r *http.Request) {
	if a.twilio == nil {
		writeAPIError(w, http.StatusServiceUnavailable, "Twilio credentials not configured")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 100 {
		limit = 100
	}

	calls, err := a.twilio.ListCalls(r.Context(), limit)
	if err != nil {
		log.Printf("❌ Error listing calls: %v", err)
		writeAPIError(w, http.StatusInternalServerError, "Failed to list calls")
		return
	}

	list := make([]callSummary, 0, len(calls))
	for _, c := range calls {
		summary := callSummary{
			Sid:       c.Sid,
			Direction: c.Direction,
			From:      c.From,
			To:        c.To,
			Status:    c.Status,
			StartTime: c.StartTime,
			EndTime:   c.EndTime,
		}
		if seconds, err := strconv.Atoi(c.Duration); err == nil {
			summary.Duration = &seconds
		}
		list = append(list, summary)
	}
	writeJSON(w, http.StatusOK, map[string]any{"calls": list})
}
