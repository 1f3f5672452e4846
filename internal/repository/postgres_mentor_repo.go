package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/lecturehub/internal/model"
)

// PostgresMentorRepo はPostgreSQLを使用したメンターリポジトリ。
type PostgresMentorRepo struct {
	db DBTX
}

// NewPostgresMentorRepo はPostgresMentorRepoを生成する。
func NewPostgresMentorRepo(db DBTX) *PostgresMentorRepo {
	return &PostgresMentorRepo{db: db}
}

// Create はメンターを作成する。
func (r *PostgresMentorRepo) Create(ctx context.Context, mentor *model.Mentor) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO mentors (id, name, created_at) VALUES ($1, $2, $3)`,
		mentor.ID, mentor.Name, mentor.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("メンターの作成に失敗しました: %w", err)
	}
	return nil
}

// FindByID は指定IDのメンターを取得する。見つからない場合はnilを返す。
func (r *PostgresMentorRepo) FindByID(ctx context.Context, id string) (*model.Mentor, error) {
	if !isUUID(id) {
		return nil, nil
	}
	mentor := &model.Mentor{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM mentors WHERE id = $1`,
		id,
	).Scan(&mentor.ID, &mentor.Name, &mentor.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("メンターの取得に失敗しました: %w", err)
	}
	return mentor, nil
}

// compile-time interface check
var _ MentorRepository = (*PostgresMentorRepo)(nil)
