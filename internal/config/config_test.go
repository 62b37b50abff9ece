package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")

	cfg, err := Load("")
	assert.NoError(t, err)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.True(t, cfg.CORS.AllowCredentials)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "formflow_prod")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load("")
	assert.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "formflow_prod", cfg.Database.Name)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoadRequiresPassword(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database.password")
}

func TestDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		Username: "postgres",
		Password: "p@ss/word",
		Name:     "formflow_db",
		SSLMode:  "disable",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "localhost:5432")
	assert.Contains(t, dsn, "formflow_db")
	assert.Contains(t, dsn, "sslmode=disable")
	// Special characters in the password must be escaped.
	assert.NotContains(t, dsn, "p@ss/word")
}
