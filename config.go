package main

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPort           = "5000"
	defaultOpenAIModel    = "gpt-4o-mini"
	defaultBusCacheWindow = 5 * time.Minute
	maxBusCacheWindow     = 30 * time.Minute
	defaultPendingMaxAge  = 90 * time.Second
)

// Config holds all environment-derived settings for the voice agent
type Config struct {
	Port    string
	BaseURL string

	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioPhoneNumber string
	TwilioAPIBase     string // overridable for tests; defaults to the public Twilio API

	OpenAIAPIKey string
	OpenAIModel  string

	BusAPIURL        string
	BusAPIMethod     string
	BusAPIBody       string
	BookmeAppVersion string
	BookmeAuth       string
	BusCacheWindow   time.Duration

	PendingCallMaxAge time.Duration
}

// LoadConfig creates a Config from environment variables with defaults
func LoadConfig() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:" + port
	}

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = defaultOpenAIModel
	}

	busAPIURL := os.Getenv("BUS_DATA_API_URL")
	if busAPIURL == "" {
		busAPIURL = os.Getenv("BOOKME_BUS_API_URL")
	}

	busAPIMethod := strings.ToUpper(os.Getenv("BUS_DATA_API_METHOD"))
	if busAPIMethod == "" {
		busAPIMethod = "GET"
	}

	cacheWindow := durationFromMillisEnv("BUS_DATA_CACHE_MS", defaultBusCacheWindow)
	if cacheWindow > maxBusCacheWindow {
		cacheWindow = maxBusCacheWindow
	}

	return &Config{
		Port:              port,
		BaseURL:           baseURL,
		TwilioAccountSID:  os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:   os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioPhoneNumber: os.Getenv("TWILIO_PHONE_NUMBER"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:       model,
		BusAPIURL:         busAPIURL,
		BusAPIMethod:      busAPIMethod,
		BusAPIBody:        os.Getenv("BUS_DATA_API_BODY"),
		BookmeAppVersion:  os.Getenv("BOOKME_APP_VERSION"),
		BookmeAuth:        os.Getenv("BOOKME_AUTH"),
		BusCacheWindow:    cacheWindow,
		PendingCallMaxAge: durationFromMillisEnv("PENDING_CALL_MAX_AGE_MS", defaultPendingMaxAge),
	}
}

// TwilioConfigured reports whether REST credentials are present
func (c *Config) TwilioConfigured() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != ""
}

// VoiceURL builds an absolute signaling callback URL under BASE_URL
func (c *Config) VoiceURL(path string) string {
	return strings.TrimRight(c.BaseURL, "/") + path
}

func durationFromMillisEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}
