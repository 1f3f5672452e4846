package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"golang.org/x/time/rate"

	"github.com/hitoshi/lecturehub/internal/security"
)

const (
	// DefaultSendGridHost はSendGrid APIのホスト。
	DefaultSendGridHost = "https://api.sendgrid.com"
	sendGridEndpoint    = "/v3/mail/send"
)

// SendGridConfig はSendGridSenderの設定。
type SendGridConfig struct {
	APIKey        string
	Host          string // 空の場合はDefaultSendGridHost
	FromAddress   string
	FromName      string
	RatePerSecond float64 // 0以下の場合は無制限
}

// SendGridSender はSendGrid Web APIで通知メールを送信する。
// 送信はレートリミッターで流量制限される。
type SendGridSender struct {
	apiKey    string
	host      string
	from      *mail.Email
	limiter   *rate.Limiter
	sanitizer security.ContentSanitizerService
	logger    *slog.Logger
}

// NewSendGridSender はSendGridSenderを生成する。
func NewSendGridSender(cfg SendGridConfig, sanitizer security.ContentSanitizerService, logger *slog.Logger) *SendGridSender {
	host := cfg.Host
	if host == "" {
		host = DefaultSendGridHost
	}

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}

	return &SendGridSender{
		apiKey:    cfg.APIKey,
		host:      host,
		from:      mail.NewEmail(cfg.FromName, cfg.FromAddress),
		limiter:   rate.NewLimiter(limit, 1),
		sanitizer: sanitizer,
		logger:    logger,
	}
}

// Send は通知メールを送信する。
// HTML本文はサニタイズしてから送信する。2xx以外の応答はエラーとして返す。
func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("送信待機が中断されました: %w", err)
	}

	html := ""
	if msg.HTML != "" {
		html = s.sanitizer.Sanitize(msg.HTML)
	}

	to := mail.NewEmail("", msg.To)
	message := mail.NewSingleEmail(s.from, msg.Subject, to, msg.Text, html)

	req := sendgrid.GetRequest(s.apiKey, sendGridEndpoint, s.host)
	req.Method = "POST"
	req.Body = mail.GetRequestBody(message)

	resp, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		s.logger.Error("SendGridへのリクエストに失敗しました",
			slog.String("to", msg.To),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("sendgrid request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Error("SendGridがエラーを返しました",
			slog.String("to", msg.To),
			slog.Int("status", resp.StatusCode),
			slog.String("body", resp.Body),
		)
		return fmt.Errorf("sendgrid error: status %d", resp.StatusCode)
	}

	s.logger.Info("通知メールを送信しました",
		slog.String("to", msg.To),
		slog.Int("status", resp.StatusCode),
	)
	return nil
}

// compile-time interface check
var _ Sender = (*SendGridSender)(nil)
