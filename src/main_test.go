package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const orders = "datetime,hour,workingday,holiday,season,weather,temp,humidity,windspeed,casual,registered,total_rent\n" +
	"2011-01-01 08:00:00,8,1,0,1,2,9.0,0.8,0.0,3,13,16\n" +
	"2011-01-02 09:00:00,9,0,0,1,1,9.8,0.6,12.0,2,5,7\n" +
	"2011-01-03 10:00:00,10,0,1,1,1,8.2,0.44,19.0,7,20,27\n"

func configDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	data := filepath.Join(dir, "orders.csv")
	require.NoError(t, os.WriteFile(data, []byte(orders), 0o644))

	cfg := fmt.Sprintf(`{"dataset": {"path": %q}, "log_name": %q}`, data, filepath.Join(dir, "app.log"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, jsonFile), []byte(cfg), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, dataJsonFile), []byte(`{"season_labels": {"1": "Spring"}}`), 0o644))
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSummaryCommand(t *testing.T) {
	dir := configDir(t)

	out, err := execute(t, "summary", "--config", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Date range: 2011-01-01 ~ 2011-01-03")
	assert.Contains(t, out, "total_rent: 50")
	assert.Contains(t, out, "Spring")

	out, err = execute(t, "summary", "--config", dir, "--start", "2011-01-02", "--end", "2011-01-02")
	require.NoError(t, err)
	assert.Contains(t, out, "total_rent: 7")
}

func TestSummaryCommandErrors(t *testing.T) {
	dir := configDir(t)

	_, err := execute(t, "summary", "--config", dir, "--start", "2011-01-03", "--end", "2011-01-01")
	assert.Error(t, err)

	t.Setenv("BIKESHARE_DATASET", filepath.Join(dir, "missing.csv"))
	_, err = execute(t, "summary", "--config", dir)
	assert.Error(t, err)
}

func TestLoadConfigFallsBackToDefaults(t *testing.T) {
	cfg, dcfg, err := loadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.NotNil(t, dcfg)
}
