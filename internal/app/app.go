// Package app はlecturehubの起動処理と依存関係のワイヤリングを行う。
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/lecturehub/internal/auth"
	"github.com/hitoshi/lecturehub/internal/config"
	"github.com/hitoshi/lecturehub/internal/database"
	"github.com/hitoshi/lecturehub/internal/enrollment"
	"github.com/hitoshi/lecturehub/internal/handler"
	"github.com/hitoshi/lecturehub/internal/lecture"
	"github.com/hitoshi/lecturehub/internal/logger"
	"github.com/hitoshi/lecturehub/internal/metrics"
	"github.com/hitoshi/lecturehub/internal/notify"
	"github.com/hitoshi/lecturehub/internal/repository"
	"github.com/hitoshi/lecturehub/internal/security"
	"github.com/hitoshi/lecturehub/internal/worker/status"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、設定されたレベルでJSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 設定読み込み前にログを使えるようにする
	logger.SetupDefault(w, slog.LevelInfo)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel))
	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runWorker(cfg)
	}
}

// Services はワイヤリング済みのドメインサービス群。
type Services struct {
	Lectures    *lecture.Service
	Enrollments *enrollment.Service
	Auth        *auth.Service
	Notifier    notify.Sender
	Metrics     *metrics.Collector
}

// NewServices はDB接続と設定からドメインサービス群を構築する。
// SENDGRID_API_KEYが未設定の場合、通知はログ出力のみ行う。
func NewServices(cfg *config.Config, db *sql.DB, reg prometheus.Registerer, log *slog.Logger) *Services {
	collector := metrics.NewCollector(reg)
	tx := repository.NewPostgresTransactor(db)
	repos := repository.NewPostgresRepositories(db)

	var sender notify.Sender
	if cfg.MailEnabled() {
		sender = notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:        cfg.SendGridAPIKey,
			FromAddress:   cfg.MailFromAddress,
			FromName:      cfg.MailFromName,
			RatePerSecond: cfg.MailRatePerSecond,
		}, security.NewContentSanitizer(), log)
	} else {
		log.Warn("SENDGRID_API_KEYが未設定のため、通知はログ出力のみ行います")
		sender = notify.NewLogSender(log)
	}

	oauth := auth.NewKakaoOAuthProvider(auth.KakaoOAuthConfig{
		ClientID:     cfg.KakaoClientID,
		ClientSecret: cfg.KakaoClientSecret,
	})
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiration)

	return &Services{
		Lectures:    lecture.NewService(tx, log, lecture.WithMetrics(collector)),
		Enrollments: enrollment.NewService(tx, sender, collector, log),
		Auth:        auth.NewService(oauth, repos.Users, tokens, collector, log),
		Notifier:    sender,
		Metrics:     collector,
	}
}

// runWorker はワーカーモードで起動する。
// 募集状態の再計算スケジューラと運用HTTPサーバーを起動し、
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runWorker(cfg *config.Config) error {
	db, err := database.Open(cfg.DatabaseURL, database.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	log := slog.Default()
	services := NewServices(cfg, db, reg, log)

	scheduler := status.NewScheduler(services.Lectures, log, cfg.StatusSweepSpec, cfg.StatusSweepTimeout)

	server := &http.Server{
		Addr: ":" + cfg.ServerPort,
		Handler: handler.NewRouter(&handler.RouterDeps{
			HealthChecker: db,
			Gatherer:      reg,
			Logger:        log,
		}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return serveUntilSignal(server, scheduler)
}

// serveUntilSignal はスケジューラとHTTPサーバーを起動し、シグナル受信で両方を停止する。
func serveUntilSignal(server *http.Server, scheduler *status.Scheduler) error {
	if err := scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start status scheduler: %w", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("ops server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var runErr error
	select {
	case <-stop:
		slog.Info("shutting down worker...")
	case err := <-serverErr:
		if err != nil {
			runErr = fmt.Errorf("ops server failed: %w", err)
		}
	}

	// 実行中の再計算が終わるまで待つ
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil && runErr == nil {
		runErr = fmt.Errorf("server shutdown failed: %w", err)
	}

	if runErr == nil {
		slog.Info("worker stopped gracefully")
	}
	return runErr
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	version, err := database.RunMigrations(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully",
		slog.Uint64("schema_version", uint64(version)),
	)
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// 運用サーバーの /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
