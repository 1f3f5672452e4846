package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/lecturehub/internal/model"
)

// PostgresEnrollmentRepo はPostgreSQLを使用した講義申込リポジトリ。
type PostgresEnrollmentRepo struct {
	db DBTX
}

// NewPostgresEnrollmentRepo はPostgresEnrollmentRepoを生成する。
func NewPostgresEnrollmentRepo(db DBTX) *PostgresEnrollmentRepo {
	return &PostgresEnrollmentRepo{db: db}
}

// Create は申込を作成する。
func (r *PostgresEnrollmentRepo) Create(ctx context.Context, e *model.Enrollment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO enrollments (id, mentee_id, lecture_id, mentor_id, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		e.ID, e.MenteeID, e.LectureID, e.MentorID, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("申込の作成に失敗しました: %w", err)
	}
	return nil
}

// FindByMenteeAndLecture はメンティーIDと講義IDで申込を検索する。見つからない場合はnilを返す。
func (r *PostgresEnrollmentRepo) FindByMenteeAndLecture(ctx context.Context, menteeID, lectureID string) (*model.Enrollment, error) {
	if !isUUID(menteeID) || !isUUID(lectureID) {
		return nil, nil
	}
	e := &model.Enrollment{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, mentee_id, lecture_id, mentor_id, created_at
		 FROM enrollments WHERE mentee_id = $1 AND lecture_id = $2`,
		menteeID, lectureID,
	).Scan(&e.ID, &e.MenteeID, &e.LectureID, &e.MentorID, &e.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("申込の検索に失敗しました: %w", err)
	}
	return e, nil
}

// Delete は指定IDの申込を削除する。
func (r *PostgresEnrollmentRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM enrollments WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("申込の削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("申込が見つかりません: %s", id)
	}
	return nil
}

// compile-time interface check
var _ EnrollmentRepository = (*PostgresEnrollmentRepo)(nil)
