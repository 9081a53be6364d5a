package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type AppConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	RateLimit    int // requests per minute per IP
	CORSOrigins  []string
}

type DbConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
}

type LibraryAPIConfig struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
}

type JWTConfig struct {
	Secret    string
	AccessTTL time.Duration
	Issuer    string
	Audience  string
	KID       string
}

type LogConfig struct {
	Level  string
	Format string
}

type Config struct {
	AppConfig        *AppConfig
	DbConfig         *DbConfig
	LibraryAPIConfig *LibraryAPIConfig
	JWTConfig        *JWTConfig
	LogConfig        *LogConfig
}

var ErrMissingVariable = errors.New("required environment variable is not set")

// LoadConfig reads the environment, optionally seeded from the given .env
// files. A missing .env file is not an error; the process environment wins.
func LoadConfig(logger *zap.Logger, envFiles ...string) (*Config, error) {
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			logger.Warn("failed to load .env file", zap.Strings("files", envFiles), zap.Error(err))
		}
	}

	/** db config */
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		return nil, fmt.Errorf("%w: POSTGRES_DSN", ErrMissingVariable)
	}
	maxOpenConns, err := intEnv("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return nil, err
	}
	maxIdleConns, err := intEnv("DB_MAX_IDLE_CONNS", 5)
	if err != nil {
		return nil, err
	}
	maxConnLifetime, err := durationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	if err != nil {
		return nil, err
	}

	dbConfig := &DbConfig{
		DSN:             dsn,
		MaxOpenConns:    maxOpenConns,
		MaxIdleConns:    maxIdleConns,
		MaxConnLifetime: maxConnLifetime,
	}

	/** app config */
	readTimeout, err := durationEnv("APP_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	writeTimeout, err := durationEnv("APP_WRITE_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	idleTimeout, err := durationEnv("APP_IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}
	rateLimit, err := intEnv("APP_RATE_LIMIT", 120)
	if err != nil {
		return nil, err
	}

	appConfig := &AppConfig{
		Port:         stringEnv("APP_PORT", "8080"),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
		RateLimit:    rateLimit,
		CORSOrigins:  listEnv("APP_CORS_ORIGINS", []string{"*"}),
	}

	/** library api config */
	baseURL := os.Getenv("LIB_API_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("%w: LIB_API_URL", ErrMissingVariable)
	}
	apiTimeout, err := durationEnv("LIB_API_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	retryCount, err := intEnv("LIB_API_RETRY_COUNT", 2)
	if err != nil {
		return nil, err
	}

	libraryConfig := &LibraryAPIConfig{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Timeout:    apiTimeout,
		RetryCount: retryCount,
	}

	/** jwt config */
	accessTTL, err := durationEnv("ACCESS_TTL", 12*time.Hour)
	if err != nil {
		return nil, err
	}
	jwtConfig := &JWTConfig{
		Secret:    os.Getenv("JWT_SECRET"),
		AccessTTL: accessTTL,
		Issuer:    stringEnv("JWT_ISSUER", "libdesk"),
		Audience:  stringEnv("JWT_AUDIENCE", "libdesk-staff"),
		KID:       os.Getenv("JWT_KID"),
	}

	/** log config */
	logConfig := &LogConfig{
		Level:  stringEnv("LOG_LEVEL", "info"),
		Format: stringEnv("LOG_FORMAT", "json"),
	}

	return &Config{
		AppConfig:        appConfig,
		DbConfig:         dbConfig,
		LibraryAPIConfig: libraryConfig,
		JWTConfig:        jwtConfig,
		LogConfig:        logConfig,
	}, nil
}

func stringEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return d, nil
}

func listEnv(key string, def []string) []string {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
