// ABOUTME: Tests for GA4 config loading, service-account email extraction, and the setup command.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadGA4Config(t *testing.T) {
	writeConfig := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "ga4_config.json")
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		return path
	}

	t.Run("valid", func(t *testing.T) {
		cfg, err := loadGA4Config(writeConfig(t, `{"property_id":"123456","measurement_id":"G-ABC123"}`))
		require.NoError(t, err)
		assert.Equal(t, "123456", cfg.PropertyID)
		assert.Equal(t, "G-ABC123", cfg.MeasurementID)
	})

	t.Run("missing property_id", func(t *testing.T) {
		_, err := loadGA4Config(writeConfig(t, `{"measurement_id":"G-ABC123"}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "property_id")
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := loadGA4Config(writeConfig(t, `{`))
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadGA4Config(filepath.Join(t.TempDir(), "nope.json"))
		require.Error(t, err)
		assert.True(t, os.IsNotExist(err))
	})
}

func TestServiceAccountEmail(t *testing.T) {
	t.Run("extracts client_email", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "credentials.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"type":"service_account","client_email":"bot@project.iam.gserviceaccount.com"}`), 0600))
		assert.Equal(t, "bot@project.iam.gserviceaccount.com", serviceAccountEmail(path))
	})

	t.Run("unknown on missing file", func(t *testing.T) {
		assert.Equal(t, "unknown", serviceAccountEmail(filepath.Join(t.TempDir(), "nope.json")))
	})

	t.Run("unknown on malformed key", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "credentials.json")
		require.NoError(t, os.WriteFile(path, []byte(`not json`), 0600))
		assert.Equal(t, "unknown", serviceAccountEmail(path))
	})
}

func TestRunSetup(t *testing.T) {
	origWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(origWD) })

	require.NoError(t, runSetup())

	for _, dir := range []string{"config", qrOutputDir, reportOutputDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir(), dir)
	}

	// Second run against existing directories must also pass.
	require.NoError(t, runSetup())
}
