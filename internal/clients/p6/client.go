package p6

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// Client talks to the Primavera P6 EPPM REST export API.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     zerolog.Logger
}

// NewClient creates a new P6 client
func NewClient(baseURL, apiKey string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log.With().Str("client", "p6").Logger(),
	}
}

// GetProjects returns the project headers visible to the integration user.
func (c *Client) GetProjects() ([]ProjectInfo, error) {
	var resp struct {
		Projects []ProjectInfo `json:"projects"`
	}
	if err := c.get("/export/projects", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch P6 projects: %w", err)
	}
	return resp.Projects, nil
}

// GetProjectWBS returns the flat WBS export for one project, in P6's own
// element order. The mirror preserves this order; it becomes the tree's
// child ordering.
func (c *Client) GetProjectWBS(projectCode string) ([]WBSElement, error) {
	params := url.Values{"project": {projectCode}}

	var resp struct {
		Elements []WBSElement `json:"wbsElements"`
	}
	if err := c.get("/export/wbs", params, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch P6 WBS for %s: %w", projectCode, err)
	}

	c.log.Debug().Str("project", projectCode).Int("elements", len(resp.Elements)).
		Msg("Fetched P6 WBS export")
	return resp.Elements, nil
}

func (c *Client) get(path string, params url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
