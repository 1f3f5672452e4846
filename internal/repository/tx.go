package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX は *sql.DB と *sql.Tx の共通インターフェース。
// リポジトリはこれを介してクエリを発行するため、同じ実装をトランザクション内外で使える。
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxBeginner はトランザクション開始用のインターフェース。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Repositories は同一のDBTXに束縛されたリポジトリ群。
type Repositories struct {
	Mentors     MentorRepository
	Mentees     MenteeRepository
	Lectures    LectureRepository
	Enrollments EnrollmentRepository
	Users       UserRepository
	Companies   CompanyRepository
}

// NewPostgresRepositories はdbに束縛されたPostgreSQLリポジトリ群を生成する。
func NewPostgresRepositories(db DBTX) *Repositories {
	return &Repositories{
		Mentors:     NewPostgresMentorRepo(db),
		Mentees:     NewPostgresMenteeRepo(db),
		Lectures:    NewPostgresLectureRepo(db),
		Enrollments: NewPostgresEnrollmentRepo(db),
		Users:       NewPostgresUserRepo(db),
		Companies:   NewPostgresCompanyRepo(db),
	}
}

// Transactor はサービス操作を1つのトランザクションで実行する。
type Transactor interface {
	// WithinTx はトランザクションに束縛されたリポジトリ群でfnを実行する。
	// fnがnilを返した場合はコミットし、エラーを返した場合はロールバックする。
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos *Repositories) error) error
}

// PostgresTransactor はdatabase/sqlのトランザクションを使用するTransactor。
type PostgresTransactor struct {
	db TxBeginner
}

// NewPostgresTransactor はPostgresTransactorを生成する。
func NewPostgresTransactor(db TxBeginner) *PostgresTransactor {
	return &PostgresTransactor{db: db}
}

// WithinTx はトランザクションに束縛されたリポジトリ群でfnを実行する。
func (t *PostgresTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, repos *Repositories) error) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// コミット後のRollbackはsql.ErrTxDoneを返すだけで無害
	defer tx.Rollback()

	if err := fn(ctx, NewPostgresRepositories(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// compile-time interface check
var _ Transactor = (*PostgresTransactor)(nil)
