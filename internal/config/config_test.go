package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `roster:
  path: "registration.xlsx"
fill:
  morning_weight: 0.5
  seed: 42
server:
  port: "9000"
database:
  path: "duty.db"
logging:
  level: "debug"
  format: "json"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"roster.path", cfg.Roster.Path, "registration.xlsx"},
		{"roster.source", cfg.Roster.Source, "xlsx"},
		{"fill.morning_weight", cfg.Fill.MorningWeight, 0.5},
		{"fill.seed", cfg.Fill.Seed, int64(42)},
		{"fill.fairness_ceiling", cfg.Fill.FairnessCeiling, 2},
		{"server.port", cfg.Server.Port, "9000"},
		{"database.path", cfg.Database.Path, "duty.db"},
		{"logging.level", cfg.Logging.Level, "debug"},
		{"logging.format", cfg.Logging.Format, "json"},
	}
	for _, c := range checks {
		assert.Equal(t, c.want, c.got, c.name)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 1.0, cfg.Fill.MorningWeight)
	assert.Equal(t, 2, cfg.Fill.FairnessCeiling)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DUTY_FILL__MORNING_WEIGHT", "2")
	t.Setenv("DUTY_ROSTER__SOURCE", "db")
	t.Setenv("JWT_SECRET", "shh")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2.0, cfg.Fill.MorningWeight)
	assert.Equal(t, "db", cfg.Roster.Source)
	assert.Equal(t, "shh", cfg.Auth.JWTSecret)
}

func TestLoadRejectsBadValues(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(bad, []byte(""), 0o644))
	_, err := Load(bad)
	assert.Error(t, err)

	neg := filepath.Join(dir, "neg.json")
	require.NoError(t, os.WriteFile(neg, []byte(`{"fill":{"morning_weight":-1}}`), 0o644))
	_, err = Load(neg)
	assert.Error(t, err)

	src := filepath.Join(dir, "src.json")
	require.NoError(t, os.WriteFile(src, []byte(`{"roster":{"source":"ldap"}}`), 0o644))
	_, err = Load(src)
	assert.Error(t, err)
}

func TestSourceFor(t *testing.T) {
	assert.Equal(t, "xlsx", SourceFor("a/b/Roster.XLSX"))
	assert.Equal(t, "csv", SourceFor("roster.csv"))
	assert.Equal(t, "csv", SourceFor("roster"))
}
