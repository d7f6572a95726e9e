package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/wonny/breakwatch/internal/contracts"
)

// chartResponse is the v8 chart payload. Quote entries are null on holidays.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

var errNoData = errors.New("no data returned")

// Fetch returns the daily history of symbol covering at least lookbackBars+1 bars when available.
// It never fails: any error is logged and an empty series is returned.
// ⭐ SSOT: exactly one upstream request per call
func (c *Client) Fetch(ctx context.Context, session Session, symbol string, lookbackBars int) contracts.InstrumentSeries {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	bars, err := c.fetchChart(ctx, session, symbol, RangeFor(lookbackBars+1))
	if err != nil {
		c.logger.WithFields(map[string]interface{}{
			"symbol": symbol,
			"error":  err.Error(),
		}).Debug("Quote unavailable")
		return contracts.InstrumentSeries{Symbol: symbol}
	}

	return contracts.NewInstrumentSeries(symbol, bars)
}

func (c *Client) fetchChart(ctx context.Context, session Session, symbol, rng string) ([]contracts.Bar, error) {
	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s",
		c.baseURL, url.PathEscape(symbol), rng)

	resp, err := session.Get(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}

	return parseChart(body)
}

// parseChart decodes a chart payload, dropping bars whose close or volume is null
func parseChart(body []byte) ([]contracts.Bar, error) {
	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("chart error %s: %s", chart.Chart.Error.Code, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, errNoData
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	bars := make([]contracts.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || i >= len(quote.Volume) {
			break
		}
		if quote.Close[i] == nil || quote.Volume[i] == nil {
			continue
		}
		bars = append(bars, contracts.Bar{
			Time:   time.Unix(ts, 0).UTC(),
			Close:  *quote.Close[i],
			Volume: *quote.Volume[i],
		})
	}

	if len(bars) == 0 {
		return nil, errNoData
	}
	return bars, nil
}
