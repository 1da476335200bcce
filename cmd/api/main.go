package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salesapp/internal/config"
	"salesapp/internal/domain/model"
	"salesapp/internal/handler"
	"salesapp/internal/infra/db"
	"salesapp/internal/infra/llm"
	"salesapp/internal/infra/logging"
	infraRepo "salesapp/internal/infra/repository"
	"salesapp/internal/job"
	"salesapp/internal/repository"
	"salesapp/internal/server"
	"salesapp/internal/usecase"
	auth "salesapp/internal/usecase/auth_usecase"
	"salesapp/internal/validator"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	// .envは無くてもよい（本番は環境変数）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.Init(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg); err != nil {
		zap.L().Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	loc := cfg.Location()

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	goodsRepo := infraRepo.NewGoodsGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	messageRepo := infraRepo.NewMessageGormRepository(gormDB)
	queryLogRepo := infraRepo.NewQueryLogGormRepository(gormDB)
	predictionRepo := infraRepo.NewPredictionGormRepository(gormDB)
	statsRepo := infraRepo.NewStatisticsGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}
	llmClient := llm.NewClient(cfg)
	if !llmClient.Enabled() {
		zap.L().Info("LLM_API_URL not set, text-completion fallback disabled")
	}

	//bcrypt（ユーザー追加：Hash / ログイン：Verify）
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()
	issuer := auth.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)

	//Usecase生成
	loginUC := auth.NewLoginUsecase(userRepo, verifier, issuer, clock)
	createUserUC := auth.NewCreateUserUsecase(userRepo, auditRepo, hasher, clock)
	userUC := usecase.NewUserUsecase(userRepo)
	categoryUC := usecase.NewCategoryUsecase(categoryRepo)
	goodsUC := usecase.NewGoodsUsecase(goodsRepo, categoryRepo, txm, clock)
	orderUC := usecase.NewOrderUsecase(txm, idGen, clock)
	adminOrderUC := usecase.NewAdminOrderUsecase(txm, clock)
	queryUC := usecase.NewQueryUsecase(categoryRepo, statsRepo, queryLogRepo, llmClient, clock, loc)
	forecastUC := usecase.NewForecastUsecase(statsRepo, predictionRepo, llmClient, clock, loc)
	statisticsUC := usecase.NewStatisticsUsecase(statsRepo, clock, loc)
	auditLogUC := usecase.NewAuditLogUsecase(auditRepo)
	messageUC := usecase.NewMessageUsecase(messageRepo, validator.NewMessageValidator(), clock, loc)

	if err := bootstrapAdmin(ctx, cfg, userRepo, createUserUC); err != nil {
		return err
	}

	//定期予測
	forecastJob := job.NewForecastJob(forecastUC, cfg.ForecastCron, loc)
	if err := forecastJob.Start(); err != nil {
		return err
	}
	defer forecastJob.Stop()

	//Handler生成
	e := server.New(cfg, userRepo, server.Handlers{
		Auth:       handler.NewAuthHandler(loginUC),
		AdminUser:  handler.NewAdminUserHandler(userUC, createUserUC),
		Catalog:    handler.NewCatalogHandler(categoryUC, goodsUC),
		Order:      handler.NewOrderHandler(orderUC),
		AdminOrder: handler.NewAdminOrderHandler(adminOrderUC, loc),
		Query:      handler.NewQueryHandler(queryUC),
		Forecast:   handler.NewForecastHandler(forecastUC, loc),
		Statistics: handler.NewStatisticsHandler(statisticsUC, loc),
		Message:    handler.NewMessageHandler(messageUC),
		AuditLog:   handler.NewAuditLogHandler(auditLogUC, loc),
	})

	//Server起動
	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}
	return server.Start(ctx, e, addr)
}

// ADMIN_USERNAME/ADMIN_PASSWORDがあり、まだ居なければ管理者を作る
func bootstrapAdmin(ctx context.Context, cfg config.Config, users repository.UserRepository, createUC *auth.CreateUserUsecase) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil
	}

	_, err := users.FindByUsername(ctx, cfg.AdminUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	u, err := createUC.Execute(ctx, 0, auth.CreateUserInput{
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
		Role:     string(model.RoleAdmin),
	})
	if err != nil {
		return err
	}
	zap.L().Info("admin user created", zap.Int64("user_id", u.ID), zap.String("username", u.Username))
	return nil
}
