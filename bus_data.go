package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"
)

// BusRoute holds the schedule facts for one origin-destination pair
type BusRoute struct {
	DepartureTimes []string `json:"departureTimes"`
	TicketPrice    string   `json:"ticketPrice"`
	Duration       string   `json:"duration"`
}

// BusData is the structured knowledge injected into every generation request
type BusData struct {
	Routes                   map[string]BusRoute `json:"routes"`
	BookingInstructions      string              `json:"bookingInstructions"`
	ConfirmationInstructions string              `json:"confirmationInstructions"`
	TerminalInfo             string              `json:"terminalInfo"`
}

// staticBusData is the built-in Daewoo Express knowledge base. The agent
// always has this available; the external API only supplements it.
var staticBusData = BusData{
	Routes: map[string]BusRoute{
		"Lahore-Islamabad": {
			DepartureTimes: []string{"08:00 AM", "11:00 AM", "02:00 PM", "05:00 PM", "09:00 PM"},
			TicketPrice:    "3,500 PKR",
			Duration:       "4.5 hours",
		},
		"Lahore-Multan": {
			DepartureTimes: []string{"07:00 AM", "10:00 AM", "01:00 PM", "04:00 PM", "08:00 PM"},
			TicketPrice:    "2,800 PKR",
			Duration:       "4 hours",
		},
		"Karachi-Lahore": {
			DepartureTimes: []string{"06:00 AM", "12:00 PM", "06:00 PM", "11:00 PM"},
			TicketPrice:    "7,500 PKR",
			Duration:       "18 hours (overnight options available)",
		},
		"Islamabad-Peshawar": {
			DepartureTimes: []string{"09:00 AM", "12:00 PM", "03:00 PM", "06:00 PM", "09:00 PM"},
			TicketPrice:    "2,200 PKR",
			Duration:       "2.5 hours",
		},
	},
	BookingInstructions: "You can book Daewoo Express tickets through the official website, mobile app, call center, or by visiting any Daewoo terminal ticket counter. For online booking, select your origin, destination, travel date, and preferred departure time, then provide passenger details. Complete payment using available digital methods to confirm your booking.",
	ConfirmationInstructions: "After successful booking, you will receive an SMS and, if applicable, an email with your ticket details and booking reference number. Please arrive at the terminal at least 30 minutes before departure with your CNIC and reference number. At the counter or gate, show your reference so the staff can verify and issue your boarding pass.",
	TerminalInfo: "Major Daewoo Express terminals include Lahore Kalma Chowk, Lahore Thokar, Islamabad Faizabad, Rawalpindi Pirwadahi, Multan General Bus Stand, Karachi Sohrab Goth, and Peshawar terminal near Motorway Interchange. Exact terminal addresses and contact numbers are available on the official Daewoo Express website and can also be confirmed at your nearest terminal.",
}

// BusDataProvider supplies the knowledge base for the agent: the static data,
// optionally merged with a bookme.pk-style external API. The merged result is
// cached for the configured window and rebuilt wholesale on refresh.
type BusDataProvider struct {
	cfg        *Config
	httpClient *http.Client

	mu       sync.Mutex
	cached   *BusData
	cachedAt time.Time
	now      func() time.Time
}

// NewBusDataProvider creates a provider for the configured external source
func NewBusDataProvider(cfg *Config) *BusDataProvider {
	return &BusDataProvider{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
	}
}

// GetBusData returns the current knowledge base. It never fails: any fetch,
// timeout, or malformed-response problem falls back to the static data.
func (p *BusDataProvider) GetBusData(ctx context.Context) BusData {
	base := copyStaticBusData()

	if !strings.HasPrefix(p.cfg.BusAPIURL, "http") {
		return base
	}

	p.mu.Lock()
	if p.cached != nil && p.now().Sub(p.cachedAt) < p.cfg.BusCacheWindow {
		cached := *p.cached
		p.mu.Unlock()
		return cached
	}
	p.mu.Unlock()

	external, err := p.fetchExternalRoutes(ctx)
	if err != nil {
		log.Printf("⚠️ Bus data API fetch failed, using static data only: %v", err)
		return base
	}

	// External entries win over static ones for the same route key
	for key, route := range external {
		base.Routes[key] = route
	}

	p.mu.Lock()
	p.cached = &base
	p.cachedAt = p.now()
	p.mu.Unlock()

	return base
}

// fetchExternalRoutes queries the configured bus API and normalizes the body
func (p *BusDataProvider) fetchExternalRoutes(ctx context.Context) (map[string]BusRoute, error) {
	var body io.Reader
	if p.cfg.BusAPIMethod == http.MethodPost && p.cfg.BusAPIBody != "" {
		if json.Valid([]byte(p.cfg.BusAPIBody)) {
			body = bytes.NewReader([]byte(p.cfg.BusAPIBody))
		}
	}

	req, err := http.NewRequestWithContext(ctx, p.cfg.BusAPIMethod, p.cfg.BusAPIURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if p.cfg.BookmeAppVersion != "" {
		req.Header.Set("app-version", p.cfg.BookmeAppVersion)
	}
	if p.cfg.BookmeAuth != "" {
		req.Header.Set("authorization", p.cfg.BookmeAuth)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	routes := normalizeExternalRoutes(raw)
	if routes == nil {
		return nil, fmt.Errorf("no usable routes in response")
	}
	return routes, nil
}

// normalizeExternalRoutes converts an external API body into the route map.
// It accepts three shapes: {routes:{...}}, a nested {data:{routes|buses}},
// or a bookme-style {buses:[{departure_time, price, origin, destination}]}.
// Records without an identifiable origin and destination are dropped.
func normalizeExternalRoutes(raw []byte) map[string]BusRoute {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil
	}

	routes := body["routes"]
	if data, ok := body["data"].(map[string]any); ok && routes == nil {
		routes = data["routes"]
		if routes == nil {
			routes = data["buses"]
		}
	}
	if routes == nil {
		routes = body["buses"]
	}
	if routes == nil {
		return nil
	}

	out := make(map[string]BusRoute)

	switch v := routes.(type) {
	case []any:
		for _, item := range v {
			record, ok := item.(map[string]any)
			if !ok {
				continue
			}
			from := firstString(record, "from", "origin", "origin_name", "from_city")
			to := firstString(record, "to", "destination", "destination_name", "to_city")
			if from == "" && to == "" {
				continue
			}
			key := strings.Join(nonEmpty(from, to), "-")

			route := out[key]
			if route.TicketPrice == "" {
				route.TicketPrice = firstString(record, "ticketPrice", "price", "fare")
				if route.TicketPrice == "" {
					route.TicketPrice = "—"
				}
			}
			if route.Duration == "" {
				route.Duration = firstString(record, "duration")
				if route.Duration == "" {
					if minutes, ok := record["duration_minutes"].(float64); ok {
						route.Duration = fmt.Sprintf("%.0f minutes", minutes)
					} else {
						route.Duration = "—"
					}
				}
			}
			route.DepartureTimes = append(route.DepartureTimes, recordTimes(record)...)
			out[key] = route
		}
	case map[string]any:
		for key, item := range v {
			record, ok := item.(map[string]any)
			if !ok {
				continue
			}
			out[key] = BusRoute{
				DepartureTimes: stringSlice(record["departureTimes"]),
				TicketPrice:    firstString(record, "ticketPrice"),
				Duration:       firstString(record, "duration"),
			}
		}
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

// recordTimes extracts departure times under any of the known field names
func recordTimes(record map[string]any) []string {
	if times := stringSlice(record["departureTimes"]); times != nil {
		return times
	}
	if times := stringSlice(record["times"]); times != nil {
		return times
	}
	if t, ok := record["departure_time"].(string); ok && t != "" {
		return []string{t}
	}
	return nil
}

func firstString(record map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := record[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func stringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// copyStaticBusData clones the static data so callers can merge into it
// without mutating the package-level value
func copyStaticBusData() BusData {
	data := staticBusData
	data.Routes = make(map[string]BusRoute, len(staticBusData.Routes))
	for key, route := range staticBusData.Routes {
		data.Routes[key] = route
	}
	return data
}
