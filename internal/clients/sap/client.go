package sap

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// Client talks to the SAP PS cost extract service.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     zerolog.Logger
}

// NewClient creates a new SAP client
func NewClient(baseURL, apiKey string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log.With().Str("client", "sap").Logger(),
	}
}

// GetCostMappings returns the posid mappings and booked actuals for one
// project, keyed by P6 WBS code.
func (c *Client) GetCostMappings(projectCode string) ([]CostMapping, error) {
	u := c.baseURL + "/extract/costs?" + url.Values{"project": {projectCode}}.Encode()

	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from SAP extract", resp.StatusCode)
	}

	var payload struct {
		Mappings []CostMapping `json:"mappings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode SAP extract: %w", err)
	}

	c.log.Debug().Str("project", projectCode).Int("mappings", len(payload.Mappings)).
		Msg("Fetched SAP cost mappings")
	return payload.Mappings, nil
}
