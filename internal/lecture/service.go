// Package lecture は講義の作成と募集状態の管理を提供する。
package lecture

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/lecturehub/internal/metrics"
	"github.com/hitoshi/lecturehub/internal/model"
	"github.com/hitoshi/lecturehub/internal/repository"
)

// Service は講義ライフサイクルのサービス層。
// 講義の作成、一覧取得、募集状態の一括再計算を提供する。
type Service struct {
	tx      repository.Transactor
	metrics metrics.MetricsCollector
	logger  *slog.Logger
	now     func() time.Time
}

// Option はServiceの任意設定。
type Option func(*Service)

// WithClock は現在時刻の取得関数を差し替える。
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithMetrics はメトリクスコレクターを設定する。
func WithMetrics(m metrics.MetricsCollector) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(tx repository.Transactor, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		tx:      tx,
		metrics: metrics.Nop{},
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateLecture はメンターの講義を作成する。
// メンターが存在しない場合はMentorNotFoundエラーを返す。
// 入力値の範囲（日付の前後関係、定員、受講料）は検証しない。
func (s *Service) CreateLecture(ctx context.Context, mentorID string, spec model.LectureSpec) (*model.Lecture, error) {
	var created *model.Lecture

	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		mentor, err := repos.Mentors.FindByID(ctx, mentorID)
		if err != nil {
			return fmt.Errorf("メンターの取得に失敗しました: %w", err)
		}
		if mentor == nil {
			return model.NewMentorNotFoundError(mentorID)
		}

		lecture := &model.Lecture{
			ID:                   uuid.NewString(),
			Title:                spec.Title,
			RecruitmentStartDate: spec.RecruitmentStartDate,
			RecruitmentEndDate:   spec.RecruitmentEndDate,
			Capacity:             spec.Capacity,
			Fee:                  spec.Fee,
			LectureStartDate:     spec.LectureStartDate,
			LectureEndDate:       spec.LectureEndDate,
			MentorID:             mentor.ID,
			MentorName:           mentor.Name,
			Status:               model.LectureStatusNotStarted,
			TeamURL:              spec.TeamURL,
			CreatedAt:            s.now(),
		}
		if err := repos.Lectures.Create(ctx, lecture); err != nil {
			return err
		}
		created = lecture
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("講義を作成しました",
		slog.String("lecture_id", created.ID),
		slog.String("mentor_id", created.MentorID),
		slog.String("title", created.Title),
	)
	return created, nil
}

// FindAllLectures は全講義を返す。
// 募集状態は保存値ではなく現在時刻と申込数から導出し直した値を返す。
func (s *Service) FindAllLectures(ctx context.Context) ([]*model.Lecture, error) {
	var lectures []*model.Lecture

	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		rows, err := repos.Lectures.ListWithEnrollmentCount(ctx)
		if err != nil {
			return fmt.Errorf("講義一覧の取得に失敗しました: %w", err)
		}

		now := s.now()
		lectures = make([]*model.Lecture, len(rows))
		for i := range rows {
			l := rows[i].Lecture
			l.Status = l.StatusAt(now, rows[i].EnrolledCount)
			lectures[i] = &l
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lectures, nil
}

// RecomputeAllStatuses は全講義の募集状態を再計算して保存する。
// 状態が変化していない講義も含めてすべて書き込み、書き込んだ件数を返す。
// 1つのトランザクションで実行され、途中で失敗した場合は何も反映されない。
func (s *Service) RecomputeAllStatuses(ctx context.Context) (int, error) {
	start := time.Now()
	updated := 0

	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		rows, err := repos.Lectures.ListWithEnrollmentCount(ctx)
		if err != nil {
			return fmt.Errorf("講義一覧の取得に失敗しました: %w", err)
		}

		now := s.now()
		for _, row := range rows {
			status := row.StatusAt(now, row.EnrolledCount)
			if err := repos.Lectures.UpdateStatus(ctx, row.ID, status); err != nil {
				return err
			}
			if status != row.Status {
				s.logger.Debug("講義の募集状態が変化しました",
					slog.String("lecture_id", row.ID),
					slog.String("from", string(row.Status)),
					slog.String("to", string(status)),
					slog.Int("enrolled", row.EnrolledCount),
				)
			}
		}
		updated = len(rows)
		return nil
	})
	if err != nil {
		s.metrics.RecordSweepFailure()
		return 0, err
	}

	s.metrics.RecordSweep(updated, time.Since(start))
	return updated, nil
}
