package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
[server]
http_port = 8085

[database]
host = "db"
port = 5433
user = "appointments"
password = "secret"
dbname = "appointments"

[logs]
level = "debug"

[rate_limit]
enabled = true
backend = "redis"
requests_per_minute = 30
trust_forwarded_for = true

[kafka]
enabled = true
brokers = ["kafka-1:9092"]
topic = "appointments.events"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	path := writeConfig(t, sampleConfig)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8085, cfg.Server.HTTPPort)
	assert.Equal(t, 10, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, "debug", cfg.Logs.Level)
	assert.Equal(t, RateLimitBackendRedis, cfg.RateLimit.Backend)
	assert.Equal(t, 20, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.TrustForwardedFor)
	assert.Equal(t, []string{"kafka-1:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 10, cfg.Pagination.DefaultLimit)
	assert.Equal(t, 100, cfg.Pagination.MaxLimit)
	assert.Equal(t, "host=db port=5433 user=appointments password=secret dbname=appointments sslmode=disable", cfg.Database.DSN())
}

func TestLoad_ForwardedForNotTrustedByDefault(t *testing.T) {
	path := writeConfig(t, `
[database]
host = "db"
user = "appointments"
dbname = "appointments"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.RateLimit.TrustForwardedFor)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	t.Setenv("DB_HOST", "postgres.internal")
	t.Setenv("DB_PORT", "6432")
	t.Setenv("DB_PASSWORD", "from-env")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres.internal", cfg.Database.Host)
	assert.Equal(t, 6432, cfg.Database.Port)
	assert.Equal(t, "from-env", cfg.Database.Password)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoad_DotEnv(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), ".env"), []byte("REDIS_ADDR=redis-from-dotenv:6379\n"), 0o600))
	// t.Setenv восстановит исходное значение после теста
	t.Setenv("REDIS_ADDR", "")
	require.NoError(t, os.Unsetenv("REDIS_ADDR"))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "redis-from-dotenv:6379", cfg.Redis.Addr)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	path := writeConfig(t, sampleConfig)
	t.Setenv("DB_PORT", "not-a-number")
	_, err = Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := defaults()
		cfg.Database.User = "u"
		cfg.Database.DBName = "d"
		return cfg
	}

	require.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Pagination.MaxLimit = 5
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.Backend = "memcached"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Kafka.Enabled = true
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Tracing.SampleRatio = 1.5
	assert.Error(t, cfg.Validate())
}
