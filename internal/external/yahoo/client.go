package yahoo

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/wonny/breakwatch/pkg/logger"
)

// DefaultBaseURL is the public chart endpoint host
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Session is the per-batch HTTP resource every fetch runs on
type Session interface {
	Get(ctx context.Context, url string) (*http.Response, error)
}

// Client fetches daily bars from the Yahoo chart API
// ⭐ SSOT: quote requests are built here only
type Client struct {
	baseURL string
	timeout time.Duration
	logger  *logger.Logger
}

// NewClient creates a new quote client. timeout bounds each Fetch call.
func NewClient(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		logger:  log.Component("yahoo"),
	}
}

// RangeFor picks the smallest chart range expected to cover n daily bars.
// Thresholds leave headroom for exchange holidays.
func RangeFor(n int) string {
	switch {
	case n <= 5:
		return "5d"
	case n <= 18:
		return "1mo"
	case n <= 55:
		return "3mo"
	case n <= 115:
		return "6mo"
	case n <= 240:
		return "1y"
	default:
		return "2y"
	}
}
