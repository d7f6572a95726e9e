package nse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/breakwatch/pkg/redis"
)

type indexResponse struct {
	Data []struct {
		Symbol string `json:"symbol"`
	} `json:"data"`
}

// Symbols resolves group to quote-source symbols.
// Only an unknown group is an error; upstream failures degrade to an empty list.
func (c *Client) Symbols(ctx context.Context, s *Session, group string) ([]string, error) {
	g, ok := c.Group(group)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGroup, group)
	}

	if len(g.Symbols) > 0 {
		return normalizeSymbols(g.Symbols, g.Index), nil
	}

	var cached []string
	if found, err := c.cache.Get(ctx, redis.GroupSymbolsKey(g.Name), &cached); err != nil {
		c.logger.WithError(err).Warn("Symbol cache read failed")
	} else if found && len(cached) > 0 {
		return cached, nil
	}

	log := c.logger.WithField("group", g.Name)

	symbols, err := c.fetchIndex(ctx, s, g.Index)
	if err != nil {
		log.WithError(err).Warn("Index API unavailable")
	}

	if len(symbols) == 0 && g.HTMLURL != "" {
		symbols, err = c.fetchHTMLTable(ctx, s, g.HTMLURL)
		if err != nil {
			log.WithError(err).Warn("HTML constituents unavailable")
		}
	}

	symbols = normalizeSymbols(symbols, g.Index)
	if len(symbols) == 0 {
		return []string{}, nil
	}

	if err := c.cache.Set(ctx, redis.GroupSymbolsKey(g.Name), symbols, c.cacheTTL); err != nil {
		log.WithError(err).Warn("Symbol cache write failed")
	}

	log.WithField("count", len(symbols)).Info("Resolved group symbols")
	return symbols, nil
}

// fetchIndex calls the exchange index API after the session warm-up
func (c *Client) fetchIndex(ctx context.Context, s *Session, index string) ([]string, error) {
	if index == "" {
		return nil, nil
	}

	c.warmUp(ctx, s)

	apiURL := fmt.Sprintf("%s/api/equity-stockIndices?index=%s", c.baseURL, url.QueryEscape(index))
	resp, err := s.http.Get(ctx, apiURL)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var payload indexResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	symbols := make([]string, 0, len(payload.Data))
	for _, d := range payload.Data {
		symbols = append(symbols, d.Symbol)
	}
	return symbols, nil
}

// fetchHTMLTable reads the "Symbol" column of the first table that has one
func (c *Client) fetchHTMLTable(ctx context.Context, s *Session, pageURL string) ([]string, error) {
	resp, err := s.http.Get(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	return parseSymbolTable(doc), nil
}

func parseSymbolTable(doc *goquery.Document) []string {
	var symbols []string

	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		column := -1
		table.Find("tr").First().Find("th, td").Each(func(i int, cell *goquery.Selection) {
			if column < 0 && strings.EqualFold(strings.TrimSpace(cell.Text()), "symbol") {
				column = i
			}
		})
		if column < 0 {
			return true
		}

		table.Find("tr").Slice(1, goquery.ToEnd).Each(func(_ int, row *goquery.Selection) {
			cell := row.Find("th, td").Eq(column)
			if text := strings.TrimSpace(cell.Text()); text != "" {
				symbols = append(symbols, text)
			}
		})
		return false
	})

	return symbols
}
