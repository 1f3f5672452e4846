package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/lecturehub/internal/model"
)

// PostgresMenteeRepo はPostgreSQLを使用したメンティーリポジトリ。
type PostgresMenteeRepo struct {
	db DBTX
}

// NewPostgresMenteeRepo はPostgresMenteeRepoを生成する。
func NewPostgresMenteeRepo(db DBTX) *PostgresMenteeRepo {
	return &PostgresMenteeRepo{db: db}
}

// Create はメンティーを作成する。
func (r *PostgresMenteeRepo) Create(ctx context.Context, mentee *model.Mentee) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO mentees (id, name, email, point, created_at) VALUES ($1, $2, $3, $4, $5)`,
		mentee.ID, mentee.Name, mentee.Email, mentee.Point, mentee.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("メンティーの作成に失敗しました: %w", err)
	}
	return nil
}

// FindByID は指定IDのメンティーを取得する。見つからない場合はnilを返す。
func (r *PostgresMenteeRepo) FindByID(ctx context.Context, id string) (*model.Mentee, error) {
	return r.find(ctx, `SELECT id, name, email, point, created_at FROM mentees WHERE id = $1`, id)
}

// FindByIDForUpdate は指定IDのメンティーを行ロック付きで取得する。
func (r *PostgresMenteeRepo) FindByIDForUpdate(ctx context.Context, id string) (*model.Mentee, error) {
	return r.find(ctx, `SELECT id, name, email, point, created_at FROM mentees WHERE id = $1 FOR UPDATE`, id)
}

func (r *PostgresMenteeRepo) find(ctx context.Context, query, id string) (*model.Mentee, error) {
	if !isUUID(id) {
		return nil, nil
	}
	mentee := &model.Mentee{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&mentee.ID, &mentee.Name, &mentee.Email, &mentee.Point, &mentee.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("メンティーの取得に失敗しました: %w", err)
	}
	return mentee, nil
}

// UpdatePoint はメンティーのポイント残高を更新する。
func (r *PostgresMenteeRepo) UpdatePoint(ctx context.Context, id string, point int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE mentees SET point = $2 WHERE id = $1`,
		id, point,
	)
	if err != nil {
		return fmt.Errorf("ポイントの更新に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("メンティーが見つかりません: %s", id)
	}
	return nil
}

// compile-time interface check
var _ MenteeRepository = (*PostgresMenteeRepo)(nil)
