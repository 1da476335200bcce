package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cast"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	DatabaseURL      string // 指定があればPOSTGRES_*より優先
	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5432）
	PostgresSSLMode  string

	JWTSecret      string // JWT署名シークレット
	AccessTokenTTL time.Duration

	GoEnv    string // dev/prod
	Timezone string // 集計の日付境界に使う

	LogLevel string // debug/info/warn/error
	LogFile  string // 空ならstdoutのみ

	LLMAPIURL  string // 空ならLLM連携なし
	LLMAPIKey  string
	LLMModel   string
	LLMTimeout time.Duration

	ForecastCron string // offなら定期予測なし

	AdminUsername string // 初回起動で作る管理者
	AdminPassword string
}

// Loadは環境変数
func Load() (Config, error) {
	cfg := Config{
		Port: os.Getenv("PORT"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		GoEnv:    os.Getenv("GO_ENV"),
		Timezone: getenv("TIMEZONE", "Asia/Shanghai"),

		LogLevel: getenv("LOG_LEVEL", "info"),
		LogFile:  os.Getenv("LOG_FILE"),

		LLMAPIURL: os.Getenv("LLM_API_URL"),
		LLMAPIKey: os.Getenv("LLM_API_KEY"),
		LLMModel:  getenv("LLM_MODEL", "moonshotai/Kimi-K2-Instruct-0905"),

		ForecastCron: getenv("FORECAST_CRON", "0 2 * * *"),

		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	var err error
	if cfg.AccessTokenTTL, err = durationEnv("ACCESS_TOKEN_TTL", 2*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.LLMTimeout, err = durationEnv("LLM_TIMEOUT", 30*time.Second); err != nil {
		return Config{}, err
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.DatabaseURL == "" {
		if cfg.PostgresPort, err = mustAtoi("POSTGRES_PORT"); err != nil {
			return Config{}, err
		}
		if cfg.PostgresUser == "" {
			return Config{}, fmt.Errorf("POSTGRES_USER is required")
		}
		if cfg.PostgresPassword == "" {
			return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
		}
		if cfg.PostgresDB == "" {
			return Config{}, fmt.Errorf("POSTGRES_DB is required")
		}
		if cfg.PostgresHost == "" {
			return Config{}, fmt.Errorf("POSTGRES_HOST is required")
		}
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return Config{}, fmt.Errorf("TIMEZONE is invalid: %w", err)
	}
	if cfg.LLMAPIURL != "" && cfg.LLMAPIKey == "" {
		return Config{}, fmt.Errorf("LLM_API_KEY is required when LLM_API_URL is set")
	}

	return cfg, nil
}

// 集計・表示で使うタイムゾーン（Loadで検証済み）
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c Config) LLMEnabled() bool {
	return c.LLMAPIURL != ""
}

func mustAtoi(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	i, err := cast.ToIntE(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := cast.ToDurationE(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration", key)
	}
	return d, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
