// Package sanctions screens extracted names against the OpenSanctions match
// API. See https://www.opensanctions.org/docs/api/ for the wire format.
package sanctions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"
)

// Match is one candidate entity returned by the screening service.
type Match struct {
	ID      string  `json:"id,omitempty"`
	Name    string  `json:"name,omitempty"`
	Country string  `json:"country,omitempty"`
	Dataset string  `json:"dataset,omitempty"`
	Schema  string  `json:"schema,omitempty"`
	Score   float64 `json:"score"`
	Link    string  `json:"link,omitempty"`
}

// Client calls the OpenSanctions match endpoint.
type Client struct {
	httpClient *http.Client
	url        string
	apiKey     string
}

// NewClient builds a screening client. An empty apiKey sends unauthenticated
// requests, which the public API rate limits but accepts.
func NewClient(url, apiKey string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
		apiKey:     apiKey,
	}
}

type matchQuery struct {
	Name      string `json:"name"`
	BirthDate string `json:"birthDate,omitempty"`
}

type matchPayload struct {
	Query matchQuery `json:"query"`
	Size  int        `json:"size"`
}

type matchEntity struct {
	Name    string `json:"name"`
	Country string `json:"country"`
	Schema  string `json:"schema"`
}

type matchTarget struct {
	URL string `json:"url"`
}

type matchResult struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Dataset string       `json:"dataset"`
	Score   float64      `json:"score"`
	Entity  *matchEntity `json:"entity"`
	Target  *matchTarget `json:"target"`
}

type matchResponse struct {
	Results []matchResult `json:"results"`
}

// Query screens a name (optionally narrowed by birth date) and returns up to
// topK matches sorted by score descending.
func (c *Client) Query(ctx context.Context, name, birthDate string, topK int) ([]Match, error) {
	payload := matchPayload{Query: matchQuery{Name: name, BirthDate: birthDate}, Size: topK}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "ApiKey "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("sanctions: match API returned %d: %s", resp.StatusCode, string(snippet))
	}

	var decoded matchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("sanctions: decoding match response: %w", err)
	}

	matches := make([]Match, 0, len(decoded.Results))
	for _, res := range decoded.Results {
		m := Match{
			ID:      res.ID,
			Name:    res.Name,
			Dataset: res.Dataset,
			Score:   res.Score,
		}
		if res.Entity != nil {
			if m.Name == "" {
				m.Name = res.Entity.Name
			}
			m.Country = res.Entity.Country
			m.Schema = res.Entity.Schema
		}
		if res.Target != nil {
			m.Link = res.Target.URL
		}
		matches = append(matches, m)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches, nil
}
