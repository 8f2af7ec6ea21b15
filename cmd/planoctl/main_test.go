package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("STORE_DRIVER", "file")
	t.Setenv("DATA_DIR", dir)
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("RESEND_API_KEY", "")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "trainers.json"),
		[]byte(`{"ana":{"email":"ana@gym.com","password":"pw"},"carla":{"email":"","password":"pw"}}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ana_students.json"),
		[]byte(`{"last_id":2,"students":{"001":{"name":"Bruno Silva","weight":80,"height":180,"completed_workouts":7},
		"002":{"name":"Carla Dias","weight":60,"height":165}}}`), 0o644))
	return dir
}

func TestRunMigrate(t *testing.T) {
	dir := setupDataDir(t)
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"migrate"}, &out))
	assert.Equal(t, "migrated 2 ledgers\n", out.String())

	raw, err := os.ReadFile(filepath.Join(dir, "ana_students.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"login":"bruno_001"`)
	_, err = os.Stat(filepath.Join(dir, "carla_students.json"))
	assert.NoError(t, err)
}

func TestRunAdvisories(t *testing.T) {
	setupDataDir(t)
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"advisories"}, &out))
	assert.Equal(t, "ana\t001\tBruno Silva\t7\n", out.String())
}

func TestRunMetricsDoesNotWrite(t *testing.T) {
	dir := setupDataDir(t)
	before, err := os.ReadFile(filepath.Join(dir, "ana_students.json"))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"metrics"}, &out))
	assert.Contains(t, out.String(), "storage_unit_operations_total")
	assert.NotContains(t, out.String(), `op="write"`)

	after, err := os.ReadFile(filepath.Join(dir, "ana_students.json"))
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
	_, err = os.Stat(filepath.Join(dir, "carla_students.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	setupDataDir(t)
	var out bytes.Buffer
	err := run(context.Background(), []string{"serve"}, &out)
	assert.ErrorContains(t, err, "unknown command")
	assert.Contains(t, out.String(), "usage: planoctl")

	err = run(context.Background(), nil, &out)
	assert.Error(t, err)
}

func TestRunReport(t *testing.T) {
	setupDataDir(t)
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"report", "ana", "002"}, &out))
	assert.Equal(t, "date,weight_kg\n", out.String())

	out.Reset()
	require.NoError(t, run(context.Background(), []string{"report", "ana", "001", "pdf"}, &out))
	assert.True(t, bytes.HasPrefix(out.Bytes(), []byte("%PDF-")))

	err := run(context.Background(), []string{"report", "ana"}, &out)
	assert.Error(t, err)
}
