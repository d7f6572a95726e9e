package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"

	"github.com/wonny/breakwatch/internal/contracts"
	"github.com/wonny/breakwatch/pkg/logger"
)

// DefaultBaseURL is the Telegram Bot API host
const DefaultBaseURL = "https://api.telegram.org"

// ReasonMissingTarget is reported when token or chat id is empty
const ReasonMissingTarget = "missing token/chat_id"

// Poster is the HTTP capability the dispatcher needs
type Poster interface {
	PostJSON(ctx context.Context, url string, data interface{}) (*http.Response, error)
}

// Target is an opaque delivery destination
type Target struct {
	ChatID string
	Token  string
}

// Valid reports whether both fields are set
func (t Target) Valid() bool {
	return strings.TrimSpace(t.ChatID) != "" && strings.TrimSpace(t.Token) != ""
}

// Dispatcher sends text messages through the Bot API.
// It keeps no state: calling Send twice sends twice.
type Dispatcher struct {
	client  Poster
	baseURL string
	logger  *logger.Logger
}

// NewDispatcher creates a dispatcher. client should have retry disabled.
func NewDispatcher(client Poster, baseURL string, log *logger.Logger) *Dispatcher {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Dispatcher{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  log.Component("notifier"),
	}
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send attempts exactly one delivery. Failures come back as (false, reason), never as an error.
func (d *Dispatcher) Send(ctx context.Context, target Target, text string) (bool, string) {
	if !target.Valid() {
		return false, ReasonMissingTarget
	}

	apiURL := fmt.Sprintf("%s/bot%s/sendMessage", d.baseURL, target.Token)
	payload := map[string]string{
		"chat_id":    target.ChatID,
		"text":       text,
		"parse_mode": "HTML",
	}

	resp, err := d.client.PostJSON(ctx, apiURL, payload)
	if err != nil {
		// the URL embeds the token; keep it out of the reason
		reason := strings.ReplaceAll(err.Error(), target.Token, "***")
		d.logger.WithField("reason", reason).Warn("Telegram send failed")
		return false, reason
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var parsed sendMessageResponse
	_ = json.Unmarshal(body, &parsed)

	if resp.StatusCode != http.StatusOK {
		reason := fmt.Sprintf("status %d", resp.StatusCode)
		if parsed.Description != "" {
			reason = fmt.Sprintf("%s: %s", reason, parsed.Description)
		}
		d.logger.WithField("reason", reason).Warn("Telegram send rejected")
		return false, reason
	}

	if len(body) > 0 && json.Valid(body) && !parsed.OK {
		reason := "telegram returned ok=false"
		if parsed.Description != "" {
			reason = parsed.Description
		}
		return false, reason
	}

	return true, "sent"
}

// FormatBreakout renders the alert text for one plan
func FormatBreakout(plan contracts.TradePlan, result contracts.BreakoutResult) string {
	r := plan.Rounded()

	var b strings.Builder
	fmt.Fprintf(&b, "🚀 <b>BREAKOUT</b>: %s\n", html.EscapeString(r.Symbol))
	fmt.Fprintf(&b, "Entry %.2f | Stop %.2f | Target %.2f | RR %.2f", r.Entry, r.Stop, r.Target, r.RiskReward)
	if result.Evaluated {
		fmt.Fprintf(&b, "\nHigh %.2f | Vol %.1fx avg", result.RecentHigh, result.VolumeRatio())
	}
	return b.String()
}
