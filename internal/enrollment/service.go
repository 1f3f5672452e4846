// Package enrollment はメンティーの講義申込と取消のトランザクションを提供する。
package enrollment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/lecturehub/internal/metrics"
	"github.com/hitoshi/lecturehub/internal/model"
	"github.com/hitoshi/lecturehub/internal/notify"
	"github.com/hitoshi/lecturehub/internal/repository"
)

// Service は講義申込のサービス層。
type Service struct {
	tx      repository.Transactor
	sender  notify.Sender
	metrics metrics.MetricsCollector
	logger  *slog.Logger
	now     func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
// collectorがnilの場合はメトリクスを記録しない。
func NewService(tx repository.Transactor, sender notify.Sender, collector metrics.MetricsCollector, logger *slog.Logger) *Service {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &Service{
		tx:      tx,
		sender:  sender,
		metrics: collector,
		logger:  logger,
		now:     time.Now,
	}
}

// EnrollInLecture はメンティーを講義に申し込ませ、受講料をポイントから差し引く。
//
// すべての検証は書き込み前に行い、申込の作成とポイントの減算は同一トランザクションで確定する。
// 講義行のロックにより、同一講義への同時申込は直列化され定員を超えない。
// 確定後に申込完了通知を送信する。通知の失敗はログに記録するのみで呼び出し元には返さない。
func (s *Service) EnrollInLecture(ctx context.Context, menteeID, lectureID string) (*model.Enrollment, error) {
	var (
		enrollment *model.Enrollment
		mentee     *model.Mentee
		lecture    *model.Lecture
	)

	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		lecture, err = repos.Lectures.FindByIDForUpdate(ctx, lectureID)
		if err != nil {
			return fmt.Errorf("講義の取得に失敗しました: %w", err)
		}
		if lecture == nil {
			return model.NewLectureNotFoundError(lectureID)
		}

		mentee, err = repos.Mentees.FindByIDForUpdate(ctx, menteeID)
		if err != nil {
			return fmt.Errorf("メンティーの取得に失敗しました: %w", err)
		}
		if mentee == nil {
			return model.NewMenteeNotFoundError(menteeID)
		}

		existing, err := repos.Enrollments.FindByMenteeAndLecture(ctx, menteeID, lectureID)
		if err != nil {
			return fmt.Errorf("申込の検索に失敗しました: %w", err)
		}
		if existing != nil {
			return model.NewAlreadyEnrolledError(mentee.Name, lecture.Title)
		}

		enrolled, err := repos.Lectures.CountEnrolledMentees(ctx, lectureID)
		if err != nil {
			return fmt.Errorf("申込数の取得に失敗しました: %w", err)
		}
		if enrolled >= lecture.Capacity {
			return model.NewLectureFullError(lecture.Title, lecture.Capacity)
		}

		if mentee.Point < lecture.Fee {
			return model.NewInsufficientFundsError(mentee.Name, lecture.Title)
		}

		e := &model.Enrollment{
			ID:        uuid.NewString(),
			MenteeID:  mentee.ID,
			LectureID: lecture.ID,
			MentorID:  lecture.MentorID,
			CreatedAt: s.now(),
		}
		if err := repos.Enrollments.Create(ctx, e); err != nil {
			return err
		}
		if err := repos.Mentees.UpdatePoint(ctx, mentee.ID, mentee.Point-lecture.Fee); err != nil {
			return err
		}
		mentee.Point -= lecture.Fee
		enrollment = e
		return nil
	})
	if err != nil {
		s.metrics.RecordEnrollment(metrics.OutcomeFailure)
		return nil, err
	}
	s.metrics.RecordEnrollment(metrics.OutcomeSuccess)

	s.logger.Info("講義に申し込みました",
		slog.String("enrollment_id", enrollment.ID),
		slog.String("mentee_id", mentee.ID),
		slog.String("lecture_id", lecture.ID),
		slog.Int("remaining_point", mentee.Point),
	)

	s.notifyEnrolled(ctx, mentee, lecture)
	return enrollment, nil
}

func (s *Service) notifyEnrolled(ctx context.Context, mentee *model.Mentee, lecture *model.Lecture) {
	msg, err := notify.RenderEnrollmentConfirmation(notify.EnrollmentConfirmation{
		To:               mentee.Email,
		MenteeName:       mentee.Name,
		LectureTitle:     lecture.Title,
		LectureStartDate: lecture.LectureStartDate,
		TeamURL:          lecture.TeamURL,
	})
	if err == nil {
		err = s.sender.Send(ctx, msg)
	}
	if err != nil {
		s.metrics.RecordNotification(metrics.OutcomeFailure)
		s.logger.Warn("申込完了通知の送信に失敗しました",
			slog.String("mentee_id", mentee.ID),
			slog.String("lecture_id", lecture.ID),
			slog.String("error", err.Error()),
		)
		return
	}
	s.metrics.RecordNotification(metrics.OutcomeSuccess)
}

// CancelLectureEnrollment はメンティーの講義申込を取り消し、削除した申込を返す。
// 支払済みのポイントは返還しない。
func (s *Service) CancelLectureEnrollment(ctx context.Context, menteeID, lectureID string) (*model.Enrollment, error) {
	var cancelled *model.Enrollment

	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		mentee, err := repos.Mentees.FindByID(ctx, menteeID)
		if err != nil {
			return fmt.Errorf("メンティーの取得に失敗しました: %w", err)
		}
		if mentee == nil {
			return model.NewMenteeNotFoundError(menteeID)
		}

		lecture, err := repos.Lectures.FindByID(ctx, lectureID)
		if err != nil {
			return fmt.Errorf("講義の取得に失敗しました: %w", err)
		}
		if lecture == nil {
			return model.NewLectureNotFoundError(lectureID)
		}

		e, err := repos.Enrollments.FindByMenteeAndLecture(ctx, menteeID, lectureID)
		if err != nil {
			return fmt.Errorf("申込の検索に失敗しました: %w", err)
		}
		if e == nil {
			return model.NewEnrollmentNotFoundError(menteeID, lectureID)
		}

		if err := repos.Enrollments.Delete(ctx, e.ID); err != nil {
			return err
		}
		cancelled = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordCancellation()
	s.logger.Info("講義の申込を取り消しました",
		slog.String("enrollment_id", cancelled.ID),
		slog.String("mentee_id", menteeID),
		slog.String("lecture_id", lectureID),
	)
	return cancelled, nil
}
