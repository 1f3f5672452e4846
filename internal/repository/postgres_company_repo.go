package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/lecturehub/internal/model"
)

// PostgresCompanyRepo はPostgreSQLを使用した会社情報リポジトリ。
type PostgresCompanyRepo struct {
	db DBTX
}

// NewPostgresCompanyRepo はPostgresCompanyRepoを生成する。
func NewPostgresCompanyRepo(db DBTX) *PostgresCompanyRepo {
	return &PostgresCompanyRepo{db: db}
}

// Create は会社情報を作成する。
func (r *PostgresCompanyRepo) Create(ctx context.Context, c *model.Company) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO companies (id, company_name, work_type, position, start_date, end_date)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.CompanyName, c.WorkType, c.Position, c.StartDate, c.EndDate,
	)
	if err != nil {
		return fmt.Errorf("会社情報の作成に失敗しました: %w", err)
	}
	return nil
}

// FindByID は指定IDの会社情報を取得する。見つからない場合はnilを返す。
func (r *PostgresCompanyRepo) FindByID(ctx context.Context, id string) (*model.Company, error) {
	if !isUUID(id) {
		return nil, nil
	}
	c, err := scanCompany(r.db.QueryRowContext(ctx,
		`SELECT id, company_name, work_type, position, start_date, end_date
		 FROM companies WHERE id = $1`,
		id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("会社情報の取得に失敗しました: %w", err)
	}
	return c, nil
}

// List は全ての会社情報を返す。
func (r *PostgresCompanyRepo) List(ctx context.Context) ([]*model.Company, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, company_name, work_type, position, start_date, end_date
		 FROM companies ORDER BY start_date DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("会社情報一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var companies []*model.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("会社情報行の読み取りに失敗しました: %w", err)
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("会社情報一覧の走査に失敗しました: %w", err)
	}
	return companies, nil
}

// Delete は指定IDの会社情報を削除する。
func (r *PostgresCompanyRepo) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return fmt.Errorf("会社情報が見つかりません: %s", id)
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("会社情報の削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("会社情報が見つかりません: %s", id)
	}
	return nil
}

func scanCompany(s rowScanner) (*model.Company, error) {
	c := &model.Company{}
	var endDate sql.NullString
	if err := s.Scan(&c.ID, &c.CompanyName, &c.WorkType, &c.Position, &c.StartDate, &endDate); err != nil {
		return nil, err
	}
	if endDate.Valid {
		c.EndDate = &endDate.String
	}
	return c, nil
}

// compile-time interface check
var _ CompanyRepository = (*PostgresCompanyRepo)(nil)
