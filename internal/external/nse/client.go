package nse

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wonny/breakwatch/pkg/logger"
	"github.com/wonny/breakwatch/pkg/redis"
)

// DefaultBaseURL is the exchange site that issues session cookies
const DefaultBaseURL = "https://www.nseindia.com"

// SymbolSuffix maps exchange symbols to quote-source tickers
const SymbolSuffix = ".NS"

// ErrUnknownGroup is returned for a group name with no definition
var ErrUnknownGroup = errors.New("unknown instrument group")

// Getter is the HTTP capability a session needs
type Getter interface {
	Get(ctx context.Context, url string) (*http.Response, error)
}

// Group describes how to resolve one instrument group.
// Static Symbols win over Index; HTMLURL is consulted when the index API yields nothing.
type Group struct {
	Name    string   `json:"name"`
	Index   string   `json:"index,omitempty"`
	HTMLURL string   `json:"html_url,omitempty"`
	Symbols []string `json:"symbols,omitempty"`
}

// DefaultGroups are the index groups offered out of the box
func DefaultGroups() map[string]Group {
	return map[string]Group{
		"NIFTY50": {
			Name:    "NIFTY50",
			Index:   "NIFTY 50",
			HTMLURL: "https://en.wikipedia.org/wiki/NIFTY_50",
		},
		"BANKNIFTY": {Name: "BANKNIFTY", Index: "NIFTY BANK"},
		"FINNIFTY":  {Name: "FINNIFTY", Index: "NIFTY FINANCIAL SERVICES"},
		"FNO":       {Name: "FNO", Index: "SECURITIES IN F&O"},
	}
}

// Client resolves instrument groups to quote-source symbols
// ⭐ SSOT: symbol-list requests are built here only
type Client struct {
	baseURL  string
	groups   map[string]Group
	cache    *redis.Cache
	cacheTTL time.Duration
	logger   *logger.Logger
}

// NewClient creates a new symbol-list client. cache may be nil.
func NewClient(baseURL string, groups map[string]Group, cache *redis.Cache, cacheTTL time.Duration, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if len(groups) == 0 {
		groups = DefaultGroups()
	}

	normalized := make(map[string]Group, len(groups))
	for name, g := range groups {
		key := strings.ToUpper(strings.TrimSpace(name))
		g.Name = key
		normalized[key] = g
	}

	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		groups:   normalized,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   log.Component("nse"),
	}
}

// Groups returns the configured group names, sorted
func (c *Client) Groups() []string {
	names := make([]string, 0, len(c.groups))
	for name := range c.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Group returns the definition of name
func (c *Client) Group(name string) (Group, bool) {
	g, ok := c.groups[strings.ToUpper(strings.TrimSpace(name))]
	return g, ok
}

// Session is a short-lived resource owned by one batch.
// The cookie warm-up runs at most once per Session.
type Session struct {
	http   Getter
	once   sync.Once
	warmed atomic.Bool
}

// NewSession wraps a per-batch HTTP client
func (c *Client) NewSession(g Getter) *Session {
	return &Session{http: g}
}

// Warmed reports whether the warm-up request succeeded
func (s *Session) Warmed() bool {
	return s.warmed.Load()
}

// warmUp requests the landing page so the API accepts the session's cookies
func (c *Client) warmUp(ctx context.Context, s *Session) {
	s.once.Do(func() {
		resp, err := s.http.Get(ctx, c.baseURL)
		if err != nil {
			c.logger.WithError(err).Debug("Session warm-up failed")
			return
		}
		resp.Body.Close()
		s.warmed.Store(resp.StatusCode == http.StatusOK)
	})
}

// normalizeSymbols upper-cases, suffixes and dedupes raw exchange symbols, skipping the index row
func normalizeSymbols(raw []string, index string) []string {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || strings.EqualFold(s, index) {
			continue
		}
		if !strings.HasSuffix(s, SymbolSuffix) {
			s += SymbolSuffix
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
