// Optional random.org-backed source for hosted games that want shock
// rolls nobody can re-seed. Falls back to crypto/rand when the API is
// unavailable, so gameplay never blocks on the network.
package entropy

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"sync"
	"time"
)

// Pool draws uniform floats from random.org, keeping a local buffer so
// each game turn costs at most a fraction of an API call.
type Pool struct {
	apiKey string
	client *http.Client

	mu   sync.Mutex
	pool []float64
}

// NewPool creates a random.org-backed source. Returns nil if apiKey is
// empty; callers should then use Crypto or Seeded instead.
func NewPool(apiKey string) *Pool {
	if apiKey == "" {
		return nil
	}
	return &Pool{
		apiKey: apiKey,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Float64 returns a value from the pool, refilling when low. Falls back
// to crypto/rand on API failure.
func (p *Pool) Float64() float64 {
	if p == nil {
		return cryptoFloat()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.pool) < 10 {
		p.refill()
	}
	if len(p.pool) == 0 {
		return cryptoFloat()
	}

	v := p.pool[0]
	p.pool = p.pool[1:]
	return v
}

// IntN returns a uniform value in [0, n).
func (p *Pool) IntN(n int) int {
	v := int(math.Floor(p.Float64() * float64(n)))
	if v >= n {
		v = n - 1
	}
	return v
}

func (p *Pool) refill() {
	req := map[string]any{
		"jsonrpc": "2.0",
		"method":  "generateDecimalFractions",
		"params": map[string]any{
			"apiKey":        p.apiKey,
			"n":             100,
			"decimalPlaces": 6,
		},
		"id": 1,
	}

	body, err := json.Marshal(req)
	if err != nil {
		slog.Debug("random.org marshal failed", "error", err)
		return
	}

	resp, err := p.client.Post("https://api.random.org/json-rpc/4/invoke", "application/json", bytes.NewReader(body))
	if err != nil {
		slog.Debug("random.org fetch failed", "error", err)
		return
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Debug("random.org read failed", "error", err)
		return
	}

	var result struct {
		Result struct {
			Random struct {
				Data []float64 `json:"data"`
			} `json:"random"`
		} `json:"result"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		slog.Debug("random.org parse failed", "error", err)
		return
	}
	if result.Error != nil {
		slog.Debug("random.org API error", "error", result.Error.Message)
		return
	}

	p.pool = append(p.pool, result.Result.Random.Data...)
	slog.Debug("random.org pool refilled", "count", len(result.Result.Random.Data))
}
