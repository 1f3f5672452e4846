// Package handler は運用向けHTTPエンドポイント（ヘルスチェック、メトリクス）を提供する。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/lecturehub/internal/metrics"
	"github.com/hitoshi/lecturehub/internal/middleware"
	"github.com/hitoshi/lecturehub/internal/model"
)

// healthCheckTimeout はDB疎通確認の上限時間。
const healthCheckTimeout = 3 * time.Second

// Pinger はDB疎通確認のインターフェース。*sql.DB が満たす。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	HealthChecker Pinger
	Gatherer      prometheus.Gatherer
	Logger        *slog.Logger
}

// NewRouter は運用エンドポイントを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Logging → Recovery → SecurityHeaders
//
// 定期的なプローブでログが埋まらないよう、/health と /metrics の成功応答はDebugで記録する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.NewLoggingMiddleware(logger, "/health", "/metrics"))
	r.Use(middleware.NewRecoveryMiddleware(logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())

	r.Get("/health", healthHandler(deps.HealthChecker, logger))
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	return r
}

type healthResponse struct {
	Status string `json:"status"`
}

// healthHandler はDBに疎通できれば200、できなければ503を返す。
func healthHandler(pinger Pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pinger != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			defer cancel()

			if err := pinger.PingContext(ctx); err != nil {
				logger.Warn("ヘルスチェックでDB疎通に失敗しました",
					slog.String("error", err.Error()),
				)
				middleware.WriteErrorResponse(w, http.StatusServiceUnavailable, &model.APIError{
					Code:     "DB_UNAVAILABLE",
					Message:  "データベースに接続できません。",
					Category: "system",
					Action:   "しばらく待ってから再度お試しください。",
				})
				return
			}
		}

		middleware.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	}
}
