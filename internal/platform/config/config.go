package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	strutil "zns/pkg/platform/strings"
)

// Config is the full process configuration.
type Config struct {
	Server    Server          `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Bootstrap BootstrapConfig `mapstructure:"bootstrap"`
}

// Server captures the ops HTTP server configuration.
type Server struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// StorageConfig selects the state backend.
type StorageConfig struct {
	Backend   string        `mapstructure:"backend"`
	TxTimeout time.Duration `mapstructure:"tx_timeout"`
	// DistributedLock serializes units of work across processes through Redis.
	DistributedLock bool `mapstructure:"distributed_lock"`
}

// PostgresConfig configures the Postgres connection pool.
type PostgresConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrateOnStart  bool          `mapstructure:"migrate_on_start"`
}

// RedisConfig configures the Redis client.
type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	LockKey      string        `mapstructure:"lock_key"`
	LockTTL      time.Duration `mapstructure:"lock_ttl"`
	EventStream  string        `mapstructure:"event_stream"`
}

// KafkaConfig configures event publishing. Empty Brokers disables Kafka.
type KafkaConfig struct {
	Brokers           []string      `mapstructure:"brokers"`
	Topic             string        `mapstructure:"topic"`
	Partitions        int32         `mapstructure:"partitions"`
	ReplicationFactor int16         `mapstructure:"replication_factor"`
	RelayInterval     time.Duration `mapstructure:"relay_interval"`
	RelayBatchSize    int           `mapstructure:"relay_batch_size"`
}

// TracingConfig configures OpenTelemetry.
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Exporter    string  `mapstructure:"exporter"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	ServiceName string  `mapstructure:"service_name"`
}

// RateLimitConfig throttles the public read endpoints per client IP.
// With a Redis URL configured the window is shared across processes.
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// BootstrapConfig seeds a fresh system: the privileged accounts, the
// payment asset and the root pricing curve. Amounts are decimal strings in
// the asset's base unit.
type BootstrapConfig struct {
	Governor     string          `mapstructure:"governor"`
	Admin        string          `mapstructure:"admin"`
	Vault        string          `mapstructure:"vault"`
	AssetSymbol  string          `mapstructure:"asset_symbol"`
	AssetDecimal uint8           `mapstructure:"asset_decimals"`
	RootCurve    RootCurveConfig `mapstructure:"root_curve"`
}

// RootCurveConfig is the curve used to price top-level domains.
type RootCurveConfig struct {
	MaxPrice            string `mapstructure:"max_price"`
	MinPrice            string `mapstructure:"min_price"`
	MaxLength           uint64 `mapstructure:"max_length"`
	BaseLength          uint64 `mapstructure:"base_length"`
	PrecisionMultiplier string `mapstructure:"precision_multiplier"`
	FeePercentage       uint64 `mapstructure:"fee_percentage"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("storage.backend", BackendMemory)
	v.SetDefault("storage.tx_timeout", 5*time.Second)
	v.SetDefault("storage.distributed_lock", false)

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("postgres.migrate_on_start", true)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)
	v.SetDefault("redis.lock_key", "zns:lock")
	v.SetDefault("redis.lock_ttl", 15*time.Second)
	v.SetDefault("redis.event_stream", "zns:events")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "zns.events")
	v.SetDefault("kafka.partitions", 1)
	v.SetDefault("kafka.replication_factor", 1)
	v.SetDefault("kafka.relay_interval", time.Second)
	v.SetDefault("kafka.relay_batch_size", 100)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.exporter", "stdout")
	v.SetDefault("tracing.sample_rate", 1.0)
	v.SetDefault("tracing.service_name", "znsd")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 120)
	v.SetDefault("rate_limit.window", time.Minute)

	v.SetDefault("bootstrap.governor", "")
	v.SetDefault("bootstrap.admin", "")
	v.SetDefault("bootstrap.vault", "")
	v.SetDefault("bootstrap.asset_symbol", "MEOW")
	v.SetDefault("bootstrap.asset_decimals", 18)
	v.SetDefault("bootstrap.root_curve.max_price", "25000000000000000000000")
	v.SetDefault("bootstrap.root_curve.min_price", "2000000000000000000000")
	v.SetDefault("bootstrap.root_curve.max_length", 50)
	v.SetDefault("bootstrap.root_curve.base_length", 4)
	v.SetDefault("bootstrap.root_curve.precision_multiplier", "10000000000000000")
	v.SetDefault("bootstrap.root_curve.fee_percentage", 222)
}

// Load reads configuration from defaults, an optional file, and ZNS_*
// environment variables (ZNS_POSTGRES_DSN overrides postgres.dsn).
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix("ZNS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Kafka.Brokers = strutil.DedupeAndTrim(cfg.Kafka.Brokers)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.Postgres.DSN == "" {
			return errors.New("postgres.dsn is required for the postgres backend")
		}
	case BackendRedis:
		if c.Redis.URL == "" {
			return errors.New("redis.url is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.DistributedLock && c.Redis.URL == "" {
		return errors.New("redis.url is required for storage.distributed_lock")
	}
	if c.Storage.DistributedLock && c.Redis.LockTTL <= c.Storage.TxTimeout {
		return errors.New("redis.lock_ttl must exceed storage.tx_timeout")
	}
	if c.RateLimit.Enabled && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0) {
		return errors.New("rate_limit.requests and rate_limit.window must be positive")
	}
	return nil
}
