package configuration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"MONGO_URI", "MONGO_DATABASE", "STORE_DRIVER", "SQLITE_PATH",
		"REDIS_URL", "JWT_SECRET", "APP_PORT", "SOCKET_PORT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_JSONWithDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "config.json", `{
		"server": {"app_port": 9000, "socket_port": 9001},
		"mongo": {"uri": "mongodb://localhost:27017", "database": "linkedin"}
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.AppPort)
	assert.Equal(t, 9001, cfg.Server.SocketPort)
	assert.Equal(t, "/ws", cfg.Server.SocketRoute)
	assert.Equal(t, StoreMongo, cfg.Store.Driver)
	assert.Equal(t, "messages", cfg.Mongo.MessagesCollection)
	assert.Equal(t, "calllogs", cfg.Mongo.CallLogsCollection)
	assert.Equal(t, "users", cfg.Mongo.UsersCollection)
	assert.Equal(t, "token", cfg.Auth.CookieName)
	require.Len(t, cfg.RTC.ICEServers, 1)
	assert.Equal(t, []string{"stun:stun.l.google.com:19302"}, cfg.RTC.ICEServers[0].URLs)
}

func TestLoadConfig_YAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "config.yaml", `
server:
  app_port: 7000
  socket_port: 7001
  allowedOrigins: ["https://app.example.com"]
store:
  driver: sqlite
sqlite:
  path: /tmp/relay.db
rtc:
  iceServers:
    - urls: ["turn:turn.example.com:3478"]
      username: relay
      credential: secret
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, StoreSQLite, cfg.Store.Driver)
	assert.Equal(t, "/tmp/relay.db", cfg.SQLite.Path)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Server.AllowedOrigins)
	require.Len(t, cfg.RTC.ICEServers, 1)
	assert.Equal(t, "relay", cfg.RTC.ICEServers[0].Username)
	assert.Equal(t, []string{"turn:turn.example.com:3478"}, cfg.RTC.ICEServers[0].URLs)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "config.json", `{"mongo": {"uri": "mongodb://file", "database": "file"}}`)

	t.Setenv("MONGO_URI", "mongodb://env")
	t.Setenv("APP_PORT", "8500")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "mongodb://env", cfg.Mongo.Uri)
	assert.Equal(t, "file", cfg.Mongo.Database)
	assert.Equal(t, 8500, cfg.Server.AppPort)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
}

func TestLoadConfig_EnvOnly(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "sqlite")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, StoreSQLite, cfg.Store.Driver)
	assert.Equal(t, filepath.Join("data", "relay.db"), cfg.SQLite.Path)
}

func TestLoadConfig_InvalidPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SOCKET_PORT", "not-a-port")

	_, err := LoadConfig("")
	assert.ErrorContains(t, err, "SOCKET_PORT")
}

func TestConfig_ValidateReportsEveryProblem(t *testing.T) {
	cfg := Config{}
	cfg.applyDefaults()
	cfg.Server.SocketPort = cfg.Server.AppPort
	cfg.Server.SocketRoute = "ws"

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "mongo.uri is required")
	assert.ErrorContains(t, err, "mongo.database is required")
	assert.ErrorContains(t, err, "must differ")
	assert.ErrorContains(t, err, "must start with /")
}

func TestConfig_ValidateUnknownDriver(t *testing.T) {
	cfg := Config{Store: StoreConfig{Driver: "cassandra"}}
	cfg.applyDefaults()

	assert.ErrorContains(t, cfg.Validate(), `unknown store.driver "cassandra"`)
}
