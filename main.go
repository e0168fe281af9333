package main

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

// VoiceAgent mediates phone calls between callers and the AI assistant via
// Twilio webhooks. All mutable call state lives in the pending-call registry;
// everything else is reconstructed per request from the signaling payload.
type VoiceAgent struct {
	cfg          *Config
	pending      *PendingCallRegistry
	twilio       *TwilioClient // nil when credentials are absent
	busData      *BusDataProvider
	conversation *ConversationTurnController
}

// NewVoiceAgent wires the agent from configuration
func NewVoiceAgent(cfg *Config) *VoiceAgent {
	var twilio *TwilioClient
	if cfg.TwilioConfigured() {
		twilio = NewTwilioClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioAPIBase)
	} else {
		log.Println("⚠️ Twilio credentials not set - dashboard call control will be unavailable")
	}
	if cfg.OpenAIAPIKey == "" {
		log.Println("⚠️ OPENAI_API_KEY not set - callers will hear the fallback reply")
	}

	busData := NewBusDataProvider(cfg)
	replies := NewReplyGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel)

	return &VoiceAgent{
		cfg:          cfg,
		pending:      NewPendingCallRegistry(cfg.PendingCallMaxAge),
		twilio:       twilio,
		busData:      busData,
		conversation: NewConversationTurnController(busData, replies),
	}
}

// routes builds the HTTP router for webhook and dashboard endpoints
func (a *VoiceAgent) routes() *mux.Router {
	router := mux.NewRouter()
	router.Use(a.loggingMiddleware)

	// Twilio signaling webhooks
	router.HandleFunc("/voice/incoming", a.handleIncomingCall).Methods("POST")
	router.HandleFunc("/voice/hold", a.handleHold).Methods("POST")
	router.HandleFunc("/voice", a.handleVoice).Methods("POST")

	// Dashboard API
	router.HandleFunc("/api/health", a.handleHealth).Methods("GET")
	router.HandleFunc("/api/calls", a.handleListCalls).Methods("GET")
	router.HandleFunc("/api/incoming-call", a.handleIncomingCallPoll).Methods("GET")
	router.HandleFunc("/api/call-accept", a.handleCallAccept).Methods("POST")
	router.HandleFunc("/api/call-decline", a.handleCallDecline).Methods("POST")
	router.HandleFunc("/api/call-out", a.handleCallOut).Methods("POST")

	return router
}

// loggingMiddleware tags each request with a short ID and logs it
func (a *VoiceAgent) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()[:8]
		log.Printf("🌐 [%s] %s %s from %s", reqID, r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
	})
}

// Start begins serving webhooks and the dashboard API
func (a *VoiceAgent) Start() {
	log.Printf("🚀 Daewoo voice agent starting on port %s", a.cfg.Port)
	log.Printf("📡 Voice webhook: %s", a.cfg.VoiceURL("/voice/incoming"))
	log.Printf("🔑 Twilio configured: %v", a.twilio != nil)
	log.Printf("🤖 OpenAI model: %s (key configured: %v)", a.cfg.OpenAIModel, a.cfg.OpenAIAPIKey != "")
	log.Printf("🚌 External bus data API configured: %v", a.cfg.BusAPIURL != "")

	if err := http.ListenAndServe(":"+a.cfg.Port, a.routes()); err != nil {
		log.Fatal(err)
	}
}

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("📄 Loaded environment from .env")
	}

	agent := NewVoiceAgent(LoadConfig())
	agent.Start()
}
