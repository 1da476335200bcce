package db

import (
	"fmt"
	"net/url"
	"strings"

	"salesapp/internal/config"
	"salesapp/internal/domain/model"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(cfg config.Config) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		// 一意制約違反を gorm.ErrDuplicatedKey で受け取る
		TranslateError: true,
		Logger:         logger.Default.LogMode(gormLogLevel(cfg.GoEnv)),
	}

	// DATABASE_URL があれば最優先で使う。月・日の集計がずれないようタイムゾーンは必ず付ける
	dsn := withTimeZone(cfg.DatabaseURL, cfg.Timezone)
	if dsn == "" {
		dsn = fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
			cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword,
			cfg.PostgresDB, cfg.PostgresSSLMode, cfg.Timezone,
		)
	}

	gdb, err := gorm.Open(postgres.Open(dsn), gcfg)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	return gdb, nil
}

// Migrate はテーブルを作成・更新する。
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Goods{},
		&model.Order{},
		&model.OrderDetail{},
		&model.Message{},
		&model.QueryLog{},
		&model.SalesPrediction{},
		&model.AuditLog{},
		&model.InventoryAdjustment{},
	)
}

// withTimeZone はDSNにセッションのタイムゾーンを足す。指定済みならそのまま返す。
// URL形式とキー・値形式の両方を受け付ける
func withTimeZone(dsn, tz string) string {
	if dsn == "" || tz == "" {
		return dsn
	}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return dsn
		}
		q := u.Query()
		for k := range q {
			if strings.EqualFold(k, "timezone") {
				return dsn
			}
		}
		q.Set("TimeZone", tz)
		u.RawQuery = q.Encode()
		return u.String()
	}

	for _, f := range strings.Fields(dsn) {
		if k, _, found := strings.Cut(f, "="); found && strings.EqualFold(k, "timezone") {
			return dsn
		}
	}
	return dsn + " TimeZone=" + tz
}

func gormLogLevel(env string) logger.LogLevel {
	if env == "dev" {
		return logger.Info
	}
	return logger.Warn
}
