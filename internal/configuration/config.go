package configuration

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pion/webrtc/v4"
	"gopkg.in/yaml.v3"
)

// Store drivers
const (
	StoreMongo  = "mongo"
	StoreSQLite = "sqlite"
)

type ServerConfig struct {
	AppPort        int      `json:"app_port" yaml:"app_port"`
	SocketPort     int      `json:"socket_port" yaml:"socket_port"`
	SocketRoute    string   `json:"socketRoute" yaml:"socketRoute"`
	AllowedOrigins []string `json:"allowedOrigins" yaml:"allowedOrigins"`
	Workers        int      `json:"workers" yaml:"workers"`
}

type StoreConfig struct {
	Driver string `json:"driver" yaml:"driver"`
}

type MongoConfig struct {
	Uri                string `json:"uri" yaml:"uri"`
	Database           string `json:"database" yaml:"database"`
	MessagesCollection string `json:"messagesCollection" yaml:"messagesCollection"`
	CallLogsCollection string `json:"callLogsCollection" yaml:"callLogsCollection"`
	UsersCollection    string `json:"usersCollection" yaml:"usersCollection"`
}

type SQLiteConfig struct {
	Path string `json:"path" yaml:"path"`
}

type RedisConfig struct {
	URL string `json:"url" yaml:"url"` // empty disables the presence mirror
}

type AuthConfig struct {
	JWTSecret  string `json:"jwtSecret" yaml:"jwtSecret"` // empty disables upgrade verification
	CookieName string `json:"cookieName" yaml:"cookieName"`
}

type RTCConfig struct {
	ICEServers []webrtc.ICEServer `json:"iceServers" yaml:"iceServers"`
}

type LogConfig struct {
	Development bool `json:"development" yaml:"development"`
}

type Config struct {
	Server ServerConfig `json:"server" yaml:"server"`
	Store  StoreConfig  `json:"store" yaml:"store"`
	Mongo  MongoConfig  `json:"mongo" yaml:"mongo"`
	SQLite SQLiteConfig `json:"sqlite" yaml:"sqlite"`
	Redis  RedisConfig  `json:"redis" yaml:"redis"`
	Auth   AuthConfig   `json:"auth" yaml:"auth"`
	RTC    RTCConfig    `json:"rtc" yaml:"rtc"`
	Log    LogConfig    `json:"log" yaml:"log"`
}

// LoadConfig reads the config file at configPath (JSON, or YAML for .yaml/.yml),
// then applies .env and environment overrides and defaults. An empty path
// configures from the environment alone.
func LoadConfig(configPath string) (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	var config Config
	if configPath != "" {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}

		switch strings.ToLower(filepath.Ext(configPath)) {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(file, &config)
		default:
			err = json.Unmarshal(file, &config)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
		}
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) error {
		v := os.Getenv(key)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = n
		return nil
	}

	setString("MONGO_URI", &c.Mongo.Uri)
	setString("MONGO_DATABASE", &c.Mongo.Database)
	setString("STORE_DRIVER", &c.Store.Driver)
	setString("SQLITE_PATH", &c.SQLite.Path)
	setString("REDIS_URL", &c.Redis.URL)
	setString("JWT_SECRET", &c.Auth.JWTSecret)

	if err := setInt("APP_PORT", &c.Server.AppPort); err != nil {
		return err
	}
	return setInt("SOCKET_PORT", &c.Server.SocketPort)
}

func (c *Config) applyDefaults() {
	if c.Server.AppPort == 0 {
		c.Server.AppPort = 8080
	}
	if c.Server.SocketPort == 0 {
		c.Server.SocketPort = 8081
	}
	if c.Server.SocketRoute == "" {
		c.Server.SocketRoute = "/ws"
	}
	if c.Store.Driver == "" {
		c.Store.Driver = StoreMongo
	}
	if c.Mongo.MessagesCollection == "" {
		c.Mongo.MessagesCollection = "messages"
	}
	if c.Mongo.CallLogsCollection == "" {
		c.Mongo.CallLogsCollection = "calllogs"
	}
	if c.Mongo.UsersCollection == "" {
		c.Mongo.UsersCollection = "users"
	}
	if c.SQLite.Path == "" {
		c.SQLite.Path = filepath.Join("data", "relay.db")
	}
	if c.Auth.CookieName == "" {
		c.Auth.CookieName = "token"
	}
	if len(c.RTC.ICEServers) == 0 {
		c.RTC.ICEServers = []webrtc.ICEServer{
			{URLs: []string{"stun:stun.l.google.com:19302"}},
		}
	}
}

// Validate reports every missing or inconsistent setting at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Driver {
	case StoreMongo:
		if c.Mongo.Uri == "" {
			errs = append(errs, errors.New("mongo.uri is required"))
		}
		if c.Mongo.Database == "" {
			errs = append(errs, errors.New("mongo.database is required"))
		}
	case StoreSQLite:
		if c.SQLite.Path == "" {
			errs = append(errs, errors.New("sqlite.path is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store.driver %q", c.Store.Driver))
	}

	if c.Server.AppPort <= 0 || c.Server.SocketPort <= 0 {
		errs = append(errs, errors.New("server ports must be positive"))
	} else if c.Server.AppPort == c.Server.SocketPort {
		errs = append(errs, errors.New("server.app_port and server.socket_port must differ"))
	}
	if !strings.HasPrefix(c.Server.SocketRoute, "/") {
		errs = append(errs, fmt.Errorf("server.socketRoute %q must start with /", c.Server.SocketRoute))
	}
	for i, server := range c.RTC.ICEServers {
		if len(server.URLs) == 0 {
			errs = append(errs, fmt.Errorf("rtc.iceServers[%d] has no urls", i))
		}
	}

	return errors.Join(errs...)
}
