package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	pkgconfig "github.com/chernandez90/InsurancePortal/pkg/config"
	"github.com/chernandez90/InsurancePortal/pkg/database"
	"github.com/chernandez90/InsurancePortal/pkg/jwt"
	"github.com/chernandez90/InsurancePortal/pkg/log"
	"github.com/chernandez90/InsurancePortal/pkg/pubsub"
	"github.com/chernandez90/InsurancePortal/pkg/storage"

	"github.com/chernandez90/InsurancePortal/internal/idgen"
)

type Config struct {
	Server    ServerConfig
	Realtime  RealtimeConfig
	WebSocket WebSocketConfig
	Database  database.Config
	JWT       jwt.Config
	Storage   storage.Config
	PubSub    pubsub.Config `mapstructure:"pubsub"`
	Claims    ClaimsConfig
	CORS      CORSConfig `mapstructure:"cors"`
	Log       log.Config
}

type ServerConfig struct {
	Host            string
	Port            int
	Mode            string        // gin mode: debug, release, test
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxUploadSize   int64         `mapstructure:"max_upload_size"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type RealtimeConfig struct {
	Host string
	Port int
	Path string
}

// Addr returns host:port.
func (r RealtimeConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type WebSocketConfig struct {
	PingInterval   time.Duration `mapstructure:"ping_interval"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	WriteWait      time.Duration `mapstructure:"write_wait"`
	MaxMessageSize int64         `mapstructure:"max_message_size"`
	SendBuffer     int           `mapstructure:"send_buffer"`
	HubQueue       int           `mapstructure:"hub_queue"`
}

type ClaimsConfig struct {
	IDGen       idgen.Config  `mapstructure:",squash"`
	SubmitRate  float64       `mapstructure:"submit_rate"` // per user per second, 0 disables
	SubmitBurst int           `mapstructure:"submit_burst"`
	URLExpiry   time.Duration `mapstructure:"url_expiry"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads config from file (or ./config/config.yaml) and the environment.
// The returned viper instance can be passed to pkgconfig.Watch.
func Load(file string) (*Config, *viper.Viper, error) {
	v, err := pkgconfig.Load(file, "./config", "config")
	if err != nil {
		return nil, nil, err
	}

	setDefaults(v)
	bindEnv(v)

	cfg, err := Decode(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

// Decode unmarshals v and validates the result.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port == c.Realtime.Port {
		return fmt.Errorf("server.port and realtime.port must differ (both %d)", c.Server.Port)
	}
	if c.WebSocket.PingInterval >= c.WebSocket.PongWait {
		return fmt.Errorf("websocket.ping_interval (%s) must be shorter than pong_wait (%s)",
			c.WebSocket.PingInterval, c.WebSocket.PongWait)
	}
	if c.WebSocket.SendBuffer <= 0 || c.WebSocket.HubQueue <= 0 {
		return fmt.Errorf("websocket.send_buffer and websocket.hub_queue must be positive")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.max_upload_size", 10<<20)

	v.SetDefault("realtime.host", "0.0.0.0")
	v.SetDefault("realtime.port", 8081)
	v.SetDefault("realtime.path", "/claimHub")

	v.SetDefault("websocket.ping_interval", "30s")
	v.SetDefault("websocket.pong_wait", "60s")
	v.SetDefault("websocket.write_wait", "10s")
	v.SetDefault("websocket.max_message_size", 4096)
	v.SetDefault("websocket.send_buffer", 256)
	v.SetDefault("websocket.hub_queue", 1024)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.file_path", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "portal")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "insurance_portal")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.conn_max_lifetime", 30)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "insurance-portal")
	v.SetDefault("jwt.audience", "insurance-portal-ui")
	v.SetDefault("jwt.access_duration", "15m")
	v.SetDefault("jwt.refresh_duration", "168h")

	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.local.base_path", "./data/uploads")
	v.SetDefault("storage.local.base_url", "/files")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.bucket", "insurance-portal-docs")
	v.SetDefault("storage.s3.use_path_style", false)

	v.SetDefault("pubsub.driver", "none")
	v.SetDefault("pubsub.redis.address", "localhost:6379")
	v.SetDefault("pubsub.redis.pool_size", 10)
	v.SetDefault("pubsub.redis.read_timeout", "3s")
	v.SetDefault("pubsub.redis.write_timeout", "3s")
	v.SetDefault("pubsub.kafka.brokers", "localhost:9092")
	v.SetDefault("pubsub.kafka.partitions", 3)

	v.SetDefault("claims.id_scheme", idgen.SchemeSnowflake)
	v.SetDefault("claims.machine_id", 1)
	v.SetDefault("claims.epoch", idgen.DefaultEpoch)
	v.SetDefault("claims.nanoid_size", idgen.DefaultNanoIDSize)
	v.SetDefault("claims.nanoid_alphabet", idgen.DefaultNanoIDAlphabet)
	v.SetDefault("claims.cuid2_length", idgen.DefaultCUID2Length)
	v.SetDefault("claims.submit_rate", 1.0)
	v.SetDefault("claims.submit_burst", 10)
	v.SetDefault("claims.url_expiry", "15m")

	v.SetDefault("cors.allowed_origins", []string{
		"http://localhost:4200",
		"https://localhost:4200",
		"http://localhost:3000",
	})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("log.service_name", "insurance-portal")
}

func bindEnv(v *viper.Viper) {
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.mode", "GIN_MODE")
	v.BindEnv("realtime.port", "REALTIME_PORT")
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.dbname", "DB_NAME")
	v.BindEnv("database.file_path", "DB_FILE_PATH")
	v.BindEnv("jwt.secret", "JWT_SECRET")
	v.BindEnv("storage.driver", "STORAGE_DRIVER")
	v.BindEnv("storage.s3.endpoint", "S3_ENDPOINT")
	v.BindEnv("storage.s3.bucket", "S3_BUCKET")
	v.BindEnv("storage.s3.access_key_id", "S3_ACCESS_KEY_ID")
	v.BindEnv("storage.s3.secret_access_key", "S3_SECRET_ACCESS_KEY")
	v.BindEnv("pubsub.driver", "PUBSUB_DRIVER")
	v.BindEnv("pubsub.redis.address", "REDIS_ADDRESS")
	v.BindEnv("pubsub.redis.password", "REDIS_PASSWORD")
	v.BindEnv("pubsub.kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("claims.id_scheme", "CLAIM_ID_SCHEME")
	v.BindEnv("log.level", "LOG_LEVEL")
}
