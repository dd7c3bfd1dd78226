package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecogrid/internal/sims/trophic"
)

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := ExecuteArgs(append(args, "--env-file", ""), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func lines(s string) []string {
	return strings.Split(strings.TrimSpace(s), "\n")
}

func TestRunSummary(t *testing.T) {
	code, out, _ := execute(t, "run", "--generations", "2")
	require.Equal(t, 0, code)

	got := lines(out)
	require.Len(t, got, 3)
	assert.True(t, strings.HasPrefix(got[0], "generation 0: plants 550.00"))
	assert.True(t, strings.HasPrefix(got[2], "generation 2:"))
}

func TestRunGenerationsFromEnv(t *testing.T) {
	t.Setenv("ECOGRID_GENERATIONS", "1")
	code, out, _ := execute(t, "run")
	require.Equal(t, 0, code)
	assert.Len(t, lines(out), 2)
}

func TestRunJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evolution.json")
	code, out, _ := execute(t, "run", "--generations", "3", "--format", "json", "--output", path)
	require.Equal(t, 0, code)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var generations []trophic.Layout
	require.NoError(t, json.Unmarshal(data, &generations))
	assert.Len(t, generations, 4)
}

func TestRunJSONLegacyKinds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evolution.json")
	code, _, _ := execute(t, "run", "--generations", "1", "--format", "json-legacy", "--output", path)
	require.Equal(t, 0, code)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"VegeterianAnimal"`)
	assert.NotContains(t, string(data), "HerbivoreAnimal")
}

func TestRunRecordsToSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run")
	code, _, errOut := execute(t, "run", "--generations", "2", "--format", "none", "--record", path, "--log-level", "info")
	require.Equal(t, 0, code, errOut)

	_, err := os.Stat(path + ".sqlite3")
	assert.NoError(t, err)
	assert.Contains(t, errOut, "[INFO] recording to")
}

func TestRunParallelMatchesSequential(t *testing.T) {
	_, sequential, _ := execute(t, "run", "--generations", "10", "--layout", "random", "--seed", "5")
	_, parallel, _ := execute(t, "run", "--generations", "10", "--layout", "random", "--seed", "5", "--workers", "4")
	assert.Equal(t, sequential, parallel)
}

func TestRunRejectsBadInput(t *testing.T) {
	code, _, errOut := execute(t, "run", "--format", "xml")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "invalid configuration value")

	code, _, errOut = execute(t, "run", "--layout", "atlantis")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "atlantis")
}

func TestLayouts(t *testing.T) {
	code, out, _ := execute(t, "layouts")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "flat (35 units)")
	assert.Contains(t, out, "island (")
	assert.Contains(t, out, "random (")
}

func TestParamsJSON(t *testing.T) {
	code, out, _ := execute(t, "params", "--json", "--plant-growth-rate", "80")
	require.Equal(t, 0, code)
	assert.Contains(t, out, `"plant_growth_rate"`)
	assert.Contains(t, out, `"80"`)
}

func TestSweepTop(t *testing.T) {
	code, out, errOut := execute(t, "sweep", "--generations", "5", "--top", "2",
		"--axis", "predator_death_rate=1.8,2.2,1000")
	require.Equal(t, 0, code, errOut)

	got := lines(out)
	require.Len(t, got, 2)
	assert.True(t, strings.HasPrefix(got[0], "  1. score="))
	assert.NotContains(t, out, "pred_death=1000")
}
