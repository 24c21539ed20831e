package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "FoodFindr", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "gpt-3.5-turbo", cfg.AI.OpenAIModel)
	assert.Equal(t, 30*time.Second, cfg.AI.RequestTimeout)
	assert.Equal(t, "filipino", cfg.Generation.CuisineDefault)
	assert.True(t, cfg.Monitoring.EnableMetrics)
	assert.Equal(t, "/metrics", cfg.Monitoring.MetricsPath)
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("FOODFINDR_SERVER_PORT", "9090")
	t.Setenv("FOODFINDR_GENERATION_CUISINE_DEFAULT", "thai")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "thai", cfg.Generation.CuisineDefault)
}

func TestValidate(t *testing.T) {
	t.Run("ProductionWithoutJWTSecret_ShouldFail", func(t *testing.T) {
		cfg := &Config{
			App:      AppConfig{Name: "FoodFindr", Environment: "production"},
			Server:   ServerConfig{Port: 8080},
			Database: DatabaseConfig{Database: "foodfindr.db"},
		}

		assert.Error(t, cfg.Validate())
	})

	t.Run("InvalidPort_ShouldFail", func(t *testing.T) {
		cfg := &Config{
			App:      AppConfig{Name: "FoodFindr"},
			Server:   ServerConfig{Port: 0},
			Database: DatabaseConfig{Database: "foodfindr.db"},
		}

		assert.Error(t, cfg.Validate())
	})

	t.Run("DevelopmentDefaults_ShouldPass", func(t *testing.T) {
		cfg := &Config{
			App:      AppConfig{Name: "FoodFindr", Environment: "development"},
			Server:   ServerConfig{Port: 8080},
			Database: DatabaseConfig{Database: "foodfindr.db"},
		}

		assert.NoError(t, cfg.Validate())
	})
}

func TestGetDSN(t *testing.T) {
	t.Run("SQLite_ShouldReturnPath", func(t *testing.T) {
		cfg := &Config{Database: DatabaseConfig{Driver: "sqlite", Database: "foodfindr.db"}}
		assert.Equal(t, "foodfindr.db", cfg.GetDSN())
	})

	t.Run("Postgres_ShouldBuildConnectionString", func(t *testing.T) {
		cfg := &Config{Database: DatabaseConfig{
			Driver: "postgres", Host: "db", Port: 5432,
			Username: "app", Password: "secret", Database: "foodfindr", SSLMode: "disable",
		}}

		dsn := cfg.GetDSN()
		assert.Contains(t, dsn, "host=db")
		assert.Contains(t, dsn, "dbname=foodfindr")
		assert.Contains(t, dsn, "sslmode=disable")
	})
}
