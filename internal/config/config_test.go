package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bookcat/internal/catalog"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "bookcat.db", cfg.DB)
	assert.Equal(t, FormatText, cfg.Format)
	assert.Equal(t, catalog.PurchaseDate, cfg.Field)
	assert.Equal(t, catalog.DefaultSheet, cfg.Sheet)
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `db = "/var/lib/books.db"
format = "json"
field = "arrival"
sheet = "Books"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Config{
		DB:     "/var/lib/books.db",
		Format: FormatJSON,
		Field:  catalog.ArrivalDate,
		Sheet:  "Books",
	}, cfg)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `db = "file.db"
format = "json"
field = "arrival"
`)
	t.Setenv("BOOKCAT_DB", "env.db")
	t.Setenv("BOOKCAT_FORMAT", "text")
	t.Setenv("BOOKCAT_FIELD", "purchase_date")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env.db", cfg.DB)
	assert.Equal(t, FormatText, cfg.Format)
	assert.Equal(t, catalog.PurchaseDate, cfg.Field)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
		wantErr string
	}{
		{name: "bad format", content: `format = "yaml"`, wantErr: "invalid format"},
		{name: "bad field", content: `field = "shipped"`, wantErr: "unknown date field"},
		{name: "unknown key", content: `database = "x.db"`, wantErr: "parse config file"},
		{name: "malformed", content: `db = `, wantErr: "parse config file"},
		{name: "bad env format", env: map[string]string{"BOOKCAT_FORMAT": "xml"}, wantErr: "BOOKCAT_FORMAT"},
		{name: "bad env field", env: map[string]string{"BOOKCAT_FIELD": "sold"}, wantErr: "BOOKCAT_FIELD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Config{DB: "books.db", Format: FormatJSON, Field: catalog.ArrivalDate, Sheet: "Catalogue"}

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSave_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	assert.Error(t, Save(path, Config{Format: FormatText}), "db is required")
	assert.Error(t, Save(path, Config{DB: "x.db", Format: "yaml"}))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" JSON ")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("nope")
	assert.Error(t, err)
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	t.Setenv("HOME", "/tmp/home")

	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, "bookcat", filepath.Base(filepath.Dir(path)))
	assert.Equal(t, "config.toml", filepath.Base(path))
}
