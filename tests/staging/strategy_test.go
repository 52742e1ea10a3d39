//go:build staging

package staging

import (
	"encoding/json"
	"net/http"
	"testing"
)

type StrategyResponse struct {
	Decisions []struct {
		Level  int     `json:"level"`
		Action string  `json:"action"`
		V      float64 `json:"v"`
	} `json:"decisions"`
}

func TestStrategyLadder(t *testing.T) {
	resp, body := makeRequest(t, "GET", "/api/v1/strategy")

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var strat StrategyResponse
	if err := json.Unmarshal(body, &strat); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if len(strat.Decisions) == 0 {
		t.Fatal("Expected at least one decision in strategy ladder")
	}

	// The top of the ladder has nothing left to enhance into.
	top := strat.Decisions[len(strat.Decisions)-1]
	if top.Action != "SELL" {
		t.Errorf("Expected SELL at the maximum level, got %s", top.Action)
	}
}

func TestStrategyRejectsBadParams(t *testing.T) {
	resp, _ := makeRequest(t, "GET", "/api/v1/strategy?tree_id=abc")

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.StatusCode)
	}
}

func TestLevelStats(t *testing.T) {
	resp, body := makeRequest(t, "GET", "/api/v1/stats/levels")

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var stats struct {
		Levels []struct {
			Level int `json:"level"`
		} `json:"levels"`
	}
	if err := json.Unmarshal(body, &stats); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
}
