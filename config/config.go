package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DefaultBackendURL is the clinic API the dashboard talks to when BACKEND_URL is unset.
const DefaultBackendURL = "https://medical-backend-16ms.onrender.com"

// Config holds the application's configuration values.
type Config struct {
	AppName string `json:"appname"`
	AppEnv  string `json:"appenv"`
	AppPort uint16 `json:"appport"`
	GinMode string `json:"ginmode"`
	DBHost  string `json:"dbhost"`
	DBPort  uint16 `json:"dbport"`
	DBName  string `json:"dbname"`
	DBUSER  string `json:"dbuser"`
	DBPass  string `json:"dbpass"`

	BackendURL     string        `json:"backend_url"`
	BackendTimeout time.Duration `json:"backend_timeout"`

	RepairWorkers   int           `json:"repair_workers"`
	RepairQueueSize int           `json:"repair_queue_size"`
	RepairTimeout   time.Duration `json:"repair_timeout"`

	// RosterAuditSchedule is a cron spec; empty disables the periodic sweep.
	RosterAuditSchedule string `json:"roster_audit_schedule"`
	AuditConcurrency    int    `json:"audit_concurrency"`

	SessionTTL  time.Duration `json:"session_ttl"`
	CORSOrigins []string      `json:"cors_origins"`
	LogLevel    string        `json:"log_level"`

	// Redis is optional; without it sessions, rate limits and the in-flight guard use the
	// database or in-process state.
	RedisEnabled  bool   `json:"redis_enabled"`
	RedisAddr     string `json:"redis_addr"`
	RedisPassword string `json:"-"`
	RedisDB       int    `json:"redis_db"`

	SMTPHost  string `json:"smtp_host"`
	SMTPPort  int    `json:"smtp_port"`
	EmailUser string `json:"email_user"`
	EmailPass string `json:"email_pass"`
}

var config *Config
var once sync.Once

// LoadConfig loads the environment variables from a .env file, and returns a singleton Config instance.
// A missing .env file is not an error: values already present in the environment are used as-is.
func LoadConfig() *Config {
	once.Do(func() {
		_ = godotenv.Load()
		config = fromEnv()
	})
	return config
}

// ResetConfigForTest drops the cached Config so the next LoadConfig call re-reads the environment.
func ResetConfigForTest() {
	config = nil
	once = sync.Once{}
}

func fromEnv() *Config {
	appPort, _ := strconv.ParseUint(os.Getenv("APPPORT"), 10, 16)
	if appPort == 0 {
		appPort = 8080
	}
	dbPort, _ := strconv.ParseUint(os.Getenv("DBPORT"), 10, 16)

	backendURL := strings.TrimRight(envOr("BACKEND_URL", DefaultBackendURL), "/")

	return &Config{
		AppName: envOr("APPNAME", "clinic-admin"),
		AppEnv:  os.Getenv("APPENV"),
		AppPort: uint16(appPort),
		GinMode: envOr("GINMODE", "debug"),
		DBHost:  os.Getenv("DBHOST"),
		DBPort:  uint16(dbPort),
		DBName:  os.Getenv("DBNAME"),
		DBUSER:  os.Getenv("DBUSER"),
		DBPass:  os.Getenv("DBPASS"),

		BackendURL:     backendURL,
		BackendTimeout: durationEnv("BACKEND_TIMEOUT", 10*time.Second),

		RepairWorkers:   intEnv("REPAIR_WORKERS", 4),
		RepairQueueSize: intEnv("REPAIR_QUEUE_SIZE", 256),
		RepairTimeout:   durationEnv("REPAIR_TIMEOUT", 10*time.Second),

		RosterAuditSchedule: os.Getenv("ROSTER_AUDIT_SCHEDULE"),
		AuditConcurrency:    intEnv("AUDIT_CONCURRENCY", 4),

		SessionTTL:  durationEnv("SESSION_TTL", 12*time.Hour),
		CORSOrigins: splitList(envOr("CORS_ORIGINS", "*")),
		LogLevel:    envOr("LOG_LEVEL", "info"),

		RedisEnabled:  os.Getenv("REDIS_ENABLED") == "true",
		RedisAddr:     envOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       intEnv("REDIS_DB", 0),

		SMTPHost:  os.Getenv("SMTP_HOST"),
		SMTPPort:  intEnv("SMTP_PORT", 587),
		EmailUser: os.Getenv("EMAIL_USER"),
		EmailPass: os.Getenv("EMAIL_PASS"),
	}
}

// IsTest reports whether the app runs with APPENV=test.
func (c *Config) IsTest() bool {
	return c != nil && c.AppEnv == "test"
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}

// durationEnv accepts Go durations ("15s") or a bare number of seconds.
func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ConnectMySQL establishes a connection to a MySQL database using the configuration values.
// In the test environment it opens a private in-memory SQLite database instead.
func ConnectMySQL() (*gorm.DB, error) {
	cfg := LoadConfig()
	if cfg.IsTest() || os.Getenv("APPENV") == "test" {
		dsn := fmt.Sprintf("file:clinic_admin_%d?mode=memory&cache=shared", time.Now().UnixNano())
		return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	}

	// Build the Data Source Name (DSN) using the configuration values.
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", cfg.DBUSER, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	return db, nil
}
