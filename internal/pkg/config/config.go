package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (policy constants, timeouts), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server  ServerConfig
	DB      DBConfig
	CORS    CORSConfig
	Log     LogConfig
	JWT     JWTConfig
	Booking BookingConfig
	Worker  WorkerConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

type JWTConfig struct {
	Secret   string `envconfig:"JWT_SECRET" required:"true"`
	Duration string `envconfig:"JWT_DURATION" default:"24h"`
}

// BookingConfig carries the reservation policy constants. Defaults are the
// production policy; tests shrink them through NewTestConfig.
type BookingConfig struct {
	MinDuration          time.Duration `envconfig:"BOOKING_MIN_DURATION" default:"30m"`
	MaxDuration          time.Duration `envconfig:"BOOKING_MAX_DURATION" default:"8h"`
	MinLeadTime          time.Duration `envconfig:"BOOKING_MIN_LEAD_TIME" default:"15m"`
	HoldDuration         time.Duration `envconfig:"BOOKING_HOLD_DURATION" default:"3m"`
	CancellationDeadline time.Duration `envconfig:"BOOKING_CANCELLATION_DEADLINE" default:"1h"`
}

type WorkerConfig struct {
	SweepPeriod      time.Duration `envconfig:"WORKER_SWEEP_PERIOD" default:"60s"`
	ReapPeriod       time.Duration `envconfig:"WORKER_REAP_PERIOD" default:"30s"`
	DispatchPeriod   time.Duration `envconfig:"WORKER_DISPATCH_PERIOD" default:"5s"`
	DispatchBatch    int           `envconfig:"WORKER_DISPATCH_BATCH" default:"50"`
	DispatchAttempts int           `envconfig:"WORKER_DISPATCH_ATTEMPTS" default:"5"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
		},
		Log: LogConfig{
			Level: "error", // Error level only for tests
		},
		JWT: JWTConfig{
			Secret:   "test-secret",
			Duration: "1h",
		},
		CORS: CORSConfig{
			AllowOrigins: []string{"http://localhost:3000"},
			AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		},
		Booking: BookingConfig{
			MinDuration:          30 * time.Minute,
			MaxDuration:          8 * time.Hour,
			MinLeadTime:          15 * time.Minute,
			HoldDuration:         3 * time.Minute,
			CancellationDeadline: time.Hour,
		},
		Worker: WorkerConfig{
			SweepPeriod:      time.Second,
			ReapPeriod:       time.Second,
			DispatchPeriod:   100 * time.Millisecond,
			DispatchBatch:    10,
			DispatchAttempts: 3,
		},
	}
}
