package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/talgya/keystroke-kingdom/internal/advisor"
	"github.com/talgya/keystroke-kingdom/internal/persistence"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := persistence.Open(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	srv := &Server{DB: db, Advisor: advisor.Canned{}}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
	return out
}

func getJSON(t *testing.T, url string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
	return resp.StatusCode, out
}

func createGame(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	seed := int64(7)
	out := postJSON(t, ts.URL+"/api/v1/games", map[string]any{
		"player": "ada", "difficulty": "normal", "mode": "classic", "seed": seed,
	})
	if out["success"] != true {
		t.Fatalf("create failed: %v", out)
	}
	id, _ := out["id"].(string)
	if id == "" {
		t.Fatal("create must return a game id")
	}
	return id
}

func TestCreateAndFetchGame(t *testing.T) {
	ts := newTestServer(t)
	id := createGame(t, ts)

	code, out := getJSON(t, ts.URL+"/api/v1/games/"+id)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	state := out["state"].(map[string]any)
	if state["current_day"].(float64) != 1 {
		t.Fatalf("fresh game must start on day 1, got %v", state["current_day"])
	}
	if state["actions_remaining"].(float64) != 3 {
		t.Fatalf("normal difficulty grants 3 actions, got %v", state["actions_remaining"])
	}
}

func TestUnknownGame404(t *testing.T) {
	ts := newTestServer(t)
	code, _ := getJSON(t, ts.URL+"/api/v1/games/not-a-game")
	if code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
}

func TestActionAndTurnFlow(t *testing.T) {
	ts := newTestServer(t)
	id := createGame(t, ts)
	base := ts.URL + "/api/v1/games/" + id

	out := postJSON(t, base+"/actions", map[string]any{
		"type": "spend", "sector": "healthcare", "amount": 10.0,
	})
	if out["applied"] != true {
		t.Fatalf("spend must apply: %v", out)
	}
	state := out["state"].(map[string]any)
	if state["public_spending"].(float64) != 50 {
		t.Fatalf("expected spending 50, got %v", state["public_spending"])
	}

	out = postJSON(t, base+"/turn", nil)
	if out["advanced"] != true {
		t.Fatalf("turn must advance: %v", out)
	}
	state = out["state"].(map[string]any)
	if state["current_day"].(float64) != 2 {
		t.Fatalf("expected day 2, got %v", state["current_day"])
	}
}

func TestUnknownActionRejected(t *testing.T) {
	ts := newTestServer(t)
	id := createGame(t, ts)

	raw, _ := json.Marshal(map[string]any{"type": "print-money"})
	resp, err := http.Post(ts.URL+"/api/v1/games/"+id+"/actions", "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestExhaustedBudgetReportsUnapplied(t *testing.T) {
	ts := newTestServer(t)
	id := createGame(t, ts)
	base := ts.URL + "/api/v1/games/" + id

	for i := 0; i < 3; i++ {
		postJSON(t, base+"/actions", map[string]any{"type": "spend", "sector": "wages", "amount": 1.0})
	}
	out := postJSON(t, base+"/actions", map[string]any{"type": "spend", "sector": "wages", "amount": 1.0})
	if out["applied"] != false {
		t.Fatalf("fourth action must be refused: %v", out)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	ts := newTestServer(t)
	id := createGame(t, ts)

	code, out := getJSON(t, ts.URL+"/api/v1/games/"+id+"/summary")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	for _, key := range []string{"day", "employment", "inflation", "total_capacity", "aggregate_demand", "deficit"} {
		if _, ok := out[key]; !ok {
			t.Fatalf("summary missing %q: %v", key, out)
		}
	}
}

func TestAdvisorEndpoint(t *testing.T) {
	ts := newTestServer(t)
	id := createGame(t, ts)

	out := postJSON(t, ts.URL+"/api/v1/games/"+id+"/advisor", map[string]any{
		"question": "should I worry about the deficit?",
	})
	answer, _ := out["answer"].(string)
	if answer == "" {
		t.Fatalf("advisor must answer: %v", out)
	}
}

func TestSaveLoadOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	id := createGame(t, ts)
	base := ts.URL + "/api/v1/games/" + id

	// Two actions drain the autosave burst so the later mutation stays
	// unsaved and the manual snapshot is the newest row.
	postJSON(t, base+"/actions", map[string]any{"type": "spend", "sector": "education", "amount": 1.0})
	postJSON(t, base+"/actions", map[string]any{"type": "spend", "sector": "education", "amount": 1.0})

	out := postJSON(t, base+"/save", nil)
	if out["success"] != true {
		t.Fatalf("save failed: %v", out)
	}

	postJSON(t, base+"/actions", map[string]any{"type": "spend", "sector": "education", "amount": 100.0})
	out = postJSON(t, base+"/load", nil)
	if out["success"] != true {
		t.Fatalf("load failed: %v", out)
	}
	state := out["state"].(map[string]any)
	if state["public_spending"].(float64) != 42 {
		t.Fatalf("load must restore the saved spending, got %v", state["public_spending"])
	}
}

func TestLoadRestoresSavedRules(t *testing.T) {
	ts := newTestServer(t)

	out := postJSON(t, ts.URL+"/api/v1/games", map[string]any{
		"player": "ada", "difficulty": "hard", "mode": "classic", "seed": 7,
	})
	hardID, _ := out["id"].(string)
	postJSON(t, ts.URL+"/api/v1/games/"+hardID+"/save", nil)

	out = postJSON(t, ts.URL+"/api/v1/games", map[string]any{
		"player": "ada", "difficulty": "casual", "mode": "classic", "seed": 7,
	})
	casualID, _ := out["id"].(string)
	base := ts.URL + "/api/v1/games/" + casualID

	out = postJSON(t, base+"/load", nil)
	if out["success"] != true {
		t.Fatalf("load failed: %v", out)
	}

	// The loaded game must run under the save's rules, not the handle's:
	// the next turn grants hard's two actions, not casual's four.
	out = postJSON(t, base+"/turn", nil)
	if out["advanced"] != true {
		t.Fatalf("turn must advance: %v", out)
	}
	state := out["state"].(map[string]any)
	if state["actions_remaining"].(float64) != 2 {
		t.Fatalf("expected hard's action budget after load, got %v", state["actions_remaining"])
	}
}

func TestFullRunSubmitsScore(t *testing.T) {
	ts := newTestServer(t)
	id := createGame(t, ts)
	base := ts.URL + "/api/v1/games/" + id

	deadline := time.Now().Add(30 * time.Second)
	for {
		if time.Now().After(deadline) {
			t.Fatal("run did not finish in time")
		}
		out := postJSON(t, base+"/turn", nil)
		state := out["state"].(map[string]any)
		if state["game_over"] == true {
			break
		}
		if out["advanced"] != true {
			// A pending event blocks the turn; take the free-est choice.
			resolveOverHTTP(t, base, state)
		}
	}

	code, out := getJSON(t, ts.URL+"/api/v1/leaderboard")
	if code != http.StatusOK {
		t.Fatalf("leaderboard: %d", code)
	}
	rows := out["data"].([]any)
	if len(rows) != 1 {
		t.Fatalf("expected one leaderboard entry, got %d", len(rows))
	}
	row := rows[0].(map[string]any)
	if row["player"] != "ada" {
		t.Fatalf("unexpected entry %v", row)
	}

	code, out = getJSON(t, ts.URL+"/api/v1/stats?player=ada")
	if code != http.StatusOK {
		t.Fatalf("stats: %d", code)
	}
	data := out["data"].(map[string]any)
	if data["total_runs"].(float64) != 1 {
		t.Fatalf("expected one run, got %v", data["total_runs"])
	}
}

// resolveOverHTTP walks the choice indices until one is affordable.
func resolveOverHTTP(t *testing.T, base string, state map[string]any) {
	t.Helper()
	if state["active_event"] == nil {
		t.Fatalf("turn refused without a pending event")
	}
	for i := 0; i < 4; i++ {
		out := postJSON(t, base+"/choice", map[string]any{"index": i})
		if out["resolved"] == true {
			return
		}
	}
	t.Fatal("no choice resolved the pending event")
}

func TestStatsRequiresPlayer(t *testing.T) {
	ts := newTestServer(t)
	code, _ := getJSON(t, ts.URL+"/api/v1/stats")
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/api/v1/games", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("preflight must return 204, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("unexpected allow-origin %q", got)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d must pass", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("fourth request must be limited")
	}
	if !rl.Allow("5.6.7.8") {
		t.Fatal("limits are per client")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	handler := RateLimitMiddleware(rl, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "9.9.9.9:1234"

	rec := httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first call must pass, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second call must be limited, got %d", rec.Code)
	}
}
