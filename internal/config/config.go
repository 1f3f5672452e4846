// Package config は環境変数からアプリケーション設定を読み込む。
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL       string        `env:"DATABASE_URL" env-required:"true" env-description:"PostgreSQL接続URL"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" env-default:"10"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"30m"`

	// Kakao OAuth
	KakaoClientID     string `env:"KAKAO_CLIENT_ID" env-required:"true" env-description:"KakaoアプリのRESTキー"`
	KakaoClientSecret string `env:"KAKAO_CLIENT_SECRET" env-description:"Kakaoクライアントシークレット（任意）"`
	KakaoRedirectURI  string `env:"KAKAO_REDIRECT_URI" env-description:"認可コードのリダイレクト先"`

	// Token
	JWTSecret     string        `env:"JWT_SECRET" env-required:"true" env-description:"トークン署名用シークレット"`
	JWTExpiration time.Duration `env:"JWT_EXPIRATION" env-default:"240h" env-description:"トークンの有効期間"`

	// Status sweep
	StatusSweepSpec    string        `env:"STATUS_SWEEP_SPEC" env-default:"*/30 * * * * *" env-description:"募集状態再計算のcron式（秒フィールド付き）"`
	StatusSweepTimeout time.Duration `env:"STATUS_SWEEP_TIMEOUT" env-default:"25s" env-description:"1回の再計算の上限時間"`

	// Mail
	SendGridAPIKey    string  `env:"SENDGRID_API_KEY" env-description:"未設定の場合は通知をログ出力のみ行う"`
	MailFromAddress   string  `env:"MAIL_FROM_ADDRESS" env-default:"no-reply@lecturehub.local"`
	MailFromName      string  `env:"MAIL_FROM_NAME" env-default:"LectureHub"`
	MailRatePerSecond float64 `env:"MAIL_RATE_PER_SECOND" env-default:"5"`

	// Server
	ServerPort string `env:"SERVER_PORT" env-default:"8080"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合は、設定可能な環境変数の説明を含むエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		desc, _ := cleanenv.GetDescription(cfg, nil)
		return nil, fmt.Errorf("config: %w; %s", err, desc)
	}
	return cfg, nil
}

// MailEnabled はSendGridによるメール送信が有効かどうかを返す。
func (c *Config) MailEnabled() bool {
	return c.SendGridAPIKey != ""
}
