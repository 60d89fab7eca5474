// Optional hosted-model advisor. Same interface as the canned one; any
// failure falls back to the canned response so gameplay never depends
// on the network.
package advisor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const (
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"
	model      = "claude-haiku-4-5-20251001"
)

// Client wraps the Anthropic Messages API with a per-minute call cap.
type Client struct {
	apiKey     string
	httpClient *http.Client

	mu        sync.Mutex
	callCount int
	resetAt   time.Time
	maxPerMin int
}

// NewClient creates an API client. Returns nil if apiKey is empty.
func NewClient(apiKey string) *Client {
	if apiKey == "" {
		return nil
	}
	return &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxPerMin:  20,
	}
}

// Enabled returns true if the client has a valid API key.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type response struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// complete sends a prompt and returns the response text.
func (c *Client) complete(system, userPrompt string, maxTokens int) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("advisor client not configured")
	}

	c.mu.Lock()
	now := time.Now()
	if now.After(c.resetAt) {
		c.callCount = 0
		c.resetAt = now.Add(time.Minute)
	}
	if c.callCount >= c.maxPerMin {
		c.mu.Unlock()
		return "", fmt.Errorf("rate limit exceeded (%d calls/min)", c.maxPerMin)
	}
	c.callCount++
	c.mu.Unlock()

	req := request{
		Model:     model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  []message{{Role: "user", Content: userPrompt}},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequest("POST", apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("API call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error %d: %s", resp.StatusCode, string(respBody))
	}

	var apiResp response
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(apiResp.Content) == 0 {
		return "", fmt.Errorf("empty response")
	}

	slog.Debug("advisor model call",
		"input_tokens", apiResp.Usage.InputTokens,
		"output_tokens", apiResp.Usage.OutputTokens,
	)
	return apiResp.Content[0].Text, nil
}

// Hosted is the model-backed advisor with a canned fallback.
type Hosted struct {
	Client   *Client
	Fallback Canned
}

// Ask queries the hosted model, falling back to canned text on any error.
func (h Hosted) Ask(question string, snap Snapshot) string {
	if !h.Client.Enabled() {
		return h.Fallback.Ask(question, snap)
	}

	system := "You are the economic advisor in a turn-based MMT-flavored economy game. " +
		"Answer the player's question in at most three sentences, grounded in the indicators given. " +
		"Never invent numbers that are not in the briefing."

	user := fmt.Sprintf(
		"Day %d of %d. Employment %.1f%%, inflation %.1f%%, capacity utilization %.1f%%, demand gap %.1f, "+
			"deficit %.1f, private credit %.1f, net exports %.1f, tax rate %.0f%%, policy rate %.1f%%, job guarantee enabled: %t.\n\nQuestion: %s",
		snap.Day, snap.TotalDays, snap.Employment, snap.Inflation, snap.CapacityUsed, snap.DemandGap,
		snap.Deficit, snap.PrivateCredit, snap.NetExports, snap.TaxRate, snap.PolicyRate, snap.JGEnabled, question,
	)

	answer, err := h.Client.complete(system, user, 300)
	if err != nil {
		slog.Debug("hosted advisor failed, using canned response", "error", err)
		return h.Fallback.Ask(question, snap)
	}
	return answer
}
