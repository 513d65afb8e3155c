package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scoresCSV = "before,after,group\n12.1,13.0,a\n11.4,12.2,b\n13.3,13.1,a\n12.8,14.0,b\n10.9,11.8,a\n12.2,12.9,b\n"

func writeScores(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scores.csv")
	require.NoError(t, os.WriteFile(path, []byte(scoresCSV), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestAnalyzeJSON(t *testing.T) {
	path := writeScores(t)
	out, err := execute(t, "analyze", "--file", path, "--procedure", "descriptive", "--columns", "before", "--format", "json")
	require.NoError(t, err)

	var p map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Equal(t, "descriptive", p["procedure"])
	assert.NotNil(t, p["summary"])
}

func TestAnalyzeTextAndErrors(t *testing.T) {
	path := writeScores(t)
	out, err := execute(t, "analyze", "--file", path, "--procedure", "paired_ttest", "--columns", "before,after", "--format", "text")
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "T-statistic"), out)

	_, err = execute(t, "analyze", "--file", path, "--procedure", "paired_ttest", "--columns", "before,group", "--format", "text")
	assert.Error(t, err)
}

func TestReportWritesPDF(t *testing.T) {
	path := writeScores(t)
	pdf := filepath.Join(t.TempDir(), "out.pdf")
	_, err := execute(t, "report", "--file", path, "--columns", "before,group", "--out", pdf)
	require.NoError(t, err)

	b, err := os.ReadFile(pdf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")))
}

func TestReadOptionsDelimiter(t *testing.T) {
	require.NoError(t, loadConfig(rootCmd))

	delimiter = "tab"
	opts, err := readOptions()
	require.NoError(t, err)
	assert.Equal(t, '\t', opts.Delimiter)

	delimiter = ";;"
	_, err = readOptions()
	assert.Error(t, err)
	delimiter = ""
}

func TestLogLevelFlagOverridesConfig(t *testing.T) {
	out := filepath.Join(t.TempDir(), "statdash.yaml")
	_, err := execute(t, "config", "write", "--out", out, "--log-level", "debug")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(b), "log_level: debug")
}

func TestReportWriteFailureNamesPath(t *testing.T) {
	path := writeScores(t)
	dest := filepath.Join(t.TempDir(), "missing", "out.pdf")
	_, err := execute(t, "report", "--file", path, "--columns", "before", "--out", dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), dest)
}
