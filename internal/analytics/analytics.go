package analytics

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const (
	eventStartup       = "MCP_STARTUP"
	eventToolUsed      = "TOOL_USED"
	eventClaimIngested = "CLAIM_INGESTED"
	eventFraudCheck    = "FRAUD_CHECK"
	eventPatternScan   = "PATTERN_SCAN"
)

// TrackEvent is one usage event as posted to the collector.
type TrackEvent struct {
	Event      string         `json:"event"`
	Properties map[string]any `json:"properties"`
}

// StartupEventInfo describes the server at startup.
type StartupEventInfo struct {
	ReadOnly     bool
	ToolCount    int
	Database     string
	LLMAvailable bool
}

// Analytics posts events to an HTTP collector. Events are dropped when
// disabled or when no endpoint is configured.
type Analytics struct {
	client     HTTPClient
	endpoint   string
	distinctID string
	enabled    atomic.Bool
}

// NewAnalytics returns an Analytics that posts to endpoint. It starts disabled when endpoint is empty.
func NewAnalytics(endpoint string, client HTTPClient) *Analytics {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	a := &Analytics{
		client:     client,
		endpoint:   endpoint,
		distinctID: uuid.NewString(),
	}
	a.enabled.Store(endpoint != "")
	return a
}

func (a *Analytics) Disable() {
	slog.Info("disabling usage analytics")
	a.enabled.Store(false)
}

func (a *Analytics) Enable() {
	if a.endpoint == "" {
		slog.Warn("usage analytics cannot be enabled without an endpoint")
		return
	}
	a.enabled.Store(true)
}

func (a *Analytics) EmitEvent(event TrackEvent) {
	if !a.enabled.Load() {
		return
	}

	body, err := json.Marshal([]TrackEvent{event})
	if err != nil {
		slog.Warn("failed to encode analytics event", "event", event.Event, "error", err)
		return
	}

	resp, err := a.client.Post(a.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		slog.Warn("failed to send analytics event", "event", event.Event, "error", err)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		slog.Warn("analytics collector rejected event", "event", event.Event, "status", resp.StatusCode)
	}
}

func (a *Analytics) NewStartupEvent(info StartupEventInfo) TrackEvent {
	props := a.baseProperties()
	props["read_only"] = info.ReadOnly
	props["tool_count"] = info.ToolCount
	props["database"] = info.Database
	props["llm_available"] = info.LLMAvailable
	return TrackEvent{Event: eventStartup, Properties: props}
}

func (a *Analytics) NewToolsEvent(toolsUsed string) TrackEvent {
	props := a.baseProperties()
	props["tools_used"] = toolsUsed
	return TrackEvent{Event: eventToolUsed, Properties: props}
}

func (a *Analytics) NewClaimIngestedEvent(insuranceType string) TrackEvent {
	props := a.baseProperties()
	props["insurance_type"] = insuranceType
	return TrackEvent{Event: eventClaimIngested, Properties: props}
}

func (a *Analytics) NewFraudCheckEvent(recommendation string, score int) TrackEvent {
	props := a.baseProperties()
	props["recommendation"] = recommendation
	props["fraud_score"] = score
	return TrackEvent{Event: eventFraudCheck, Properties: props}
}

func (a *Analytics) NewPatternScanEvent(patterns, failed int) TrackEvent {
	props := a.baseProperties()
	props["patterns_detected"] = patterns
	props["patterns_failed"] = failed
	return TrackEvent{Event: eventPatternScan, Properties: props}
}

func (a *Analytics) baseProperties() map[string]any {
	return map[string]any{
		"time":        time.Now().Unix(),
		"distinct_id": a.distinctID,
		"$insert_id":  uuid.NewString(),
		"os":          runtime.GOOS,
		"arch":        runtime.GOARCH,
	}
}
