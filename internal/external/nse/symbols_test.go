package nse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/breakwatch/pkg/httputil"
	"github.com/wonny/breakwatch/pkg/logger"
	"github.com/wonny/breakwatch/pkg/redis"
)

const indexPayload = `{"data":[
  {"symbol":"NIFTY 50"},
  {"symbol":"RELIANCE"},
  {"symbol":"TCS"},
  {"symbol":"tcs"},
  {"symbol":" INFY "}
]}`

const constituentsPage = `<html><body>
<table class="infobox"><tr><th>Operator</th><td>NSE</td></tr></table>
<table class="wikitable">
  <tr><th>Company name</th><th>Symbol</th><th>Sector</th></tr>
  <tr><td>Reliance Industries</td><td>RELIANCE</td><td>Energy</td></tr>
  <tr><td>HDFC Bank</td><td>HDFCBANK</td><td>Financials</td></tr>
</table>
</body></html>`

type upstream struct {
	server   *httptest.Server
	warmUps  int32
	apiCalls int32
	apiFails bool
}

func newUpstream(t *testing.T, apiFails bool) *upstream {
	u := &upstream{apiFails: apiFails}
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&u.warmUps, 1)
		http.SetCookie(w, &http.Cookie{Name: "nsit", Value: "token", Path: "/"})
	})
	mux.HandleFunc("/api/equity-stockIndices", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&u.apiCalls, 1)
		if u.apiFails {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if _, err := r.Cookie("nsit"); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "NIFTY 50", r.URL.Query().Get("index"))
		_, _ = w.Write([]byte(indexPayload))
	})
	mux.HandleFunc("/wiki/NIFTY_50", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(constituentsPage))
	})
	u.server = httptest.NewServer(mux)
	t.Cleanup(u.server.Close)
	return u
}

func newSessionClient() *httputil.Client {
	return httputil.New(logger.NewNop()).DisableRetry().Session()
}

func TestSymbols_IndexAPI(t *testing.T) {
	up := newUpstream(t, false)
	client := NewClient(up.server.URL, map[string]Group{
		"nifty50": {Index: "NIFTY 50"},
	}, nil, time.Hour, logger.NewNop())

	session := client.NewSession(newSessionClient())
	symbols, err := client.Symbols(context.Background(), session, "NIFTY50")
	require.NoError(t, err)

	assert.Equal(t, []string{"RELIANCE.NS", "TCS.NS", "INFY.NS"}, symbols)
	assert.True(t, session.Warmed())

	// second lookup on the same session does not warm up again
	_, err = client.Symbols(context.Background(), session, "nifty50")
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&up.warmUps))
	assert.EqualValues(t, 2, atomic.LoadInt32(&up.apiCalls))
}

func TestSession_ConcurrentUseWarmsOnce(t *testing.T) {
	up := newUpstream(t, false)
	client := NewClient(up.server.URL, map[string]Group{
		"NIFTY50": {Index: "NIFTY 50"},
	}, nil, time.Hour, logger.NewNop())

	session := client.NewSession(newSessionClient())

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := client.Symbols(context.Background(), session, "NIFTY50")
			assert.NoError(t, err)
		}()
		// Warmed may be polled while the warm-up is still in flight
		go func() {
			defer wg.Done()
			_ = session.Warmed()
		}()
	}
	wg.Wait()

	assert.True(t, session.Warmed())
	assert.EqualValues(t, 1, atomic.LoadInt32(&up.warmUps))
}

func TestSymbols_HTMLFallback(t *testing.T) {
	up := newUpstream(t, true)
	client := NewClient(up.server.URL, map[string]Group{
		"NIFTY50": {Index: "NIFTY 50", HTMLURL: up.server.URL + "/wiki/NIFTY_50"},
	}, nil, time.Hour, logger.NewNop())

	symbols, err := client.Symbols(context.Background(), client.NewSession(newSessionClient()), "NIFTY50")
	require.NoError(t, err)
	assert.Equal(t, []string{"RELIANCE.NS", "HDFCBANK.NS"}, symbols)
}

func TestSymbols_UpstreamDownYieldsEmpty(t *testing.T) {
	up := newUpstream(t, true)
	client := NewClient(up.server.URL, map[string]Group{
		"BANKNIFTY": {Index: "NIFTY BANK"},
	}, nil, time.Hour, logger.NewNop())

	symbols, err := client.Symbols(context.Background(), client.NewSession(newSessionClient()), "BANKNIFTY")
	require.NoError(t, err)
	assert.Empty(t, symbols)
}

func TestSymbols_UnknownGroup(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", nil, nil, time.Hour, logger.NewNop())

	_, err := client.Symbols(context.Background(), client.NewSession(newSessionClient()), "SENSEX")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownGroup)
}

func TestSymbols_StaticGroup(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", map[string]Group{
		"watch": {Symbols: []string{"sbin", "SBIN.NS", "ITC"}},
	}, nil, time.Hour, logger.NewNop())

	symbols, err := client.Symbols(context.Background(), client.NewSession(newSessionClient()), "WATCH")
	require.NoError(t, err)
	assert.Equal(t, []string{"SBIN.NS", "ITC.NS"}, symbols)
}

func TestSymbols_CacheHit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := redis.NewCache(redis.Wrap(db), "breakwatch")
	mock.ExpectGet("breakwatch:cache:group:symbols:FNO").SetVal(`["SBIN.NS"]`)

	client := NewClient("http://127.0.0.1:1", nil, cache, time.Hour, logger.NewNop())

	symbols, err := client.Symbols(context.Background(), client.NewSession(newSessionClient()), "FNO")
	require.NoError(t, err)
	assert.Equal(t, []string{"SBIN.NS"}, symbols)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroups(t *testing.T) {
	client := NewClient("", nil, nil, time.Hour, logger.NewNop())
	assert.Equal(t, []string{"BANKNIFTY", "FINNIFTY", "FNO", "NIFTY50"}, client.Groups())

	g, ok := client.Group("nifty50")
	require.True(t, ok)
	assert.Equal(t, "NIFTY 50", g.Index)
}

func TestNormalizeSymbols(t *testing.T) {
	got := normalizeSymbols([]string{"NIFTY BANK", "hdfcbank", "", "AXISBANK.NS", "HDFCBANK"}, "NIFTY BANK")
	assert.Equal(t, []string{"HDFCBANK.NS", "AXISBANK.NS"}, got)
	assert.False(t, strings.Contains(strings.Join(got, ","), " "))
}
