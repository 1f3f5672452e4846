// Package status は講義の募集状態を定期的に再計算するワーカーを提供する。
package status

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSpec は再計算の既定スケジュール（30秒ごと、秒フィールド付き）。
const DefaultSpec = "*/30 * * * * *"

// ErrSweepInProgress は再計算の実行中に重ねて実行しようとした場合のエラー。
var ErrSweepInProgress = errors.New("status sweep already in progress")

// Sweeper は全講義の募集状態を再計算するインターフェース。
type Sweeper interface {
	RecomputeAllStatuses(ctx context.Context) (int, error)
}

// Scheduler は再計算をcronスケジュールで実行する。
// 同時に実行される再計算は常に1つまで。
type Scheduler struct {
	sweeper Sweeper
	logger  *slog.Logger
	spec    string
	timeout time.Duration

	cronLogger cron.Logger
	running    atomic.Bool

	mu     sync.Mutex
	cron   *cron.Cron
	cancel context.CancelFunc
}

// NewScheduler はSchedulerを生成する。
// specが空の場合はDefaultSpecを使用する。timeoutは1回の再計算の上限時間で、0以下なら無制限。
func NewScheduler(sweeper Sweeper, logger *slog.Logger, spec string, timeout time.Duration) *Scheduler {
	if spec == "" {
		spec = DefaultSpec
	}

	return &Scheduler{
		sweeper:    sweeper,
		logger:     logger,
		spec:       spec,
		timeout:    timeout,
		cronLogger: cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo)),
	}
}

func (s *Scheduler) newCron() *cron.Cron {
	return cron.New(
		cron.WithSeconds(),
		cron.WithLocation(time.UTC),
		cron.WithChain(
			cron.Recover(s.cronLogger),
			cron.SkipIfStillRunning(s.cronLogger),
		),
	)
}

// Start はスケジュールを登録して実行を開始する。
// スケジュール式が不正な場合はエラーを返す。Stop後に再度呼び出すことができる。
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return errors.New("scheduler already started")
	}

	c := s.newCron()
	ctx, cancel := context.WithCancel(context.Background())
	if _, err := c.AddFunc(s.spec, func() { s.runJob(ctx) }); err != nil {
		cancel()
		return fmt.Errorf("invalid sweep schedule %q: %w", s.spec, err)
	}

	s.cron, s.cancel = c, cancel
	c.Start()

	s.logger.Info("募集状態スケジューラを開始しました", slog.String("spec", s.spec))
	return nil
}

// Stop はスケジューラを停止し、実行中の再計算の終了を待つ。
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c, cancel := s.cron, s.cancel
	s.cron, s.cancel = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-c.Stop().Done()

	s.logger.Info("募集状態スケジューラを停止しました")
}

func (s *Scheduler) runJob(ctx context.Context) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if _, err := s.RunOnce(ctx); err != nil {
		if errors.Is(err, ErrSweepInProgress) {
			s.logger.Warn("前回の再計算が実行中のためスキップしました")
			return
		}
		s.logger.Error("募集状態の再計算に失敗しました", slog.String("error", err.Error()))
	}
}

// RunOnce は募集状態の再計算を1回実行し、書き込んだ講義数を返す。
// 既に実行中の場合はErrSweepInProgressを返す。
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	if !s.running.CompareAndSwap(false, true) {
		return 0, ErrSweepInProgress
	}
	defer s.running.Store(false)

	start := time.Now()
	n, err := s.sweeper.RecomputeAllStatuses(ctx)
	if err != nil {
		return 0, err
	}

	s.logger.Info("募集状態の再計算が完了しました",
		slog.Int("lecture_count", n),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
	return n, nil
}
