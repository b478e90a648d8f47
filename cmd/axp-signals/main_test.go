package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeInput(t *testing.T, name string, v interface{}) string {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return path
}

func TestRun_NoArgsPrintsUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"axp-signals"}, &stdout, &stderr)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "Usage")
}

func TestRun_UnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"axp-signals", "bogus"}, &stdout, &stderr)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "Unknown command")
}

func TestRun_Score(t *testing.T) {
	input := writeInput(t, "product.json", map[string]interface{}{
		"size_chart_available": true,
		"size_guide_quality":   "detailed",
		"avg_rating":           4.5,
		"rating_count":         120,
	})

	var stdout, stderr bytes.Buffer
	code := Run([]string{"axp-signals", "score", "-input", input, "-category", "footwear"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var signals map[string]interface{}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &signals))
	assert.Contains(t, signals, "fit_hint_score")
	assert.Contains(t, signals, "reliability_score")
	assert.Contains(t, signals, "evidence")
}

func TestRun_Intent(t *testing.T) {
	input := writeInput(t, "sources.json", map[string]interface{}{
		"orders": []map[string]interface{}{
			{"created_at": "2025-09-01T10:00:00Z", "gift_wrap": true},
		},
	})

	var stdout, stderr bytes.Buffer
	code := Run([]string{"axp-signals", "intent", "-input", input, "-product", "sku_123"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var signals []map[string]interface{}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &signals))
	require.Len(t, signals, 12)

	sum := 0.0
	for _, s := range signals {
		sum += s["share"].(float64)
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
}

func TestRun_Enrich_Baseline(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"axp-signals", "enrich", "-entity", "brand", "-id", "runfaster.example"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var results map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &results))
	require.Contains(t, results, "trustpilot")
	assert.Equal(t, "trustpilot:domain:runfaster.example", results["trustpilot"]["source_id"])
}

func TestRun_Enrich_MissingID(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"axp-signals", "enrich"}, &stdout, &stderr)
	assert.Equal(t, 2, code)
}

func TestRun_Verify_MissingProof(t *testing.T) {
	input := writeInput(t, "vc.json", map[string]interface{}{
		"@context": []string{"https://www.w3.org/2018/credentials/v1"},
		"type":     []string{"VerifiableCredential"},
	})

	var stdout, stderr bytes.Buffer
	code := Run([]string{"axp-signals", "verify", "-input", input}, &stdout, &stderr)
	assert.Equal(t, 1, code)

	var res map[string]interface{}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &res))
	assert.Equal(t, 0.1, res["confidence"])
}
