// Package notify はメンティーへの通知送信を提供する。
package notify

import (
	"context"
	"log/slog"
)

// Message は1通の通知メール。
// HTMLが空の場合はテキスト本文のみ送信する。
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender は通知の送信インターフェース。
// 配信保証は持たず、再送も行わない。
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender は送信せずにログ出力のみ行うSender。
// SendGridのAPIキーが未設定の環境で使用する。
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender はLogSenderを生成する。
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send は通知内容をログに出力する。
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.InfoContext(ctx, "通知を送信しました（ログ出力のみ）",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("body", msg.Text),
	)
	return nil
}

// compile-time interface check
var _ Sender = (*LogSender)(nil)
