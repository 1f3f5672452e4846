package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/hitoshi/lecturehub/internal/model"
)

const lectureColumns = `l.id, l.title, l.recruitment_start_date, l.recruitment_end_date,
	l.capacity, l.fee, l.lecture_start_date, l.lecture_end_date,
	l.mentor_id, l.mentor_name, l.status, l.team_url, l.created_at`

// rowScanner は *sql.Row と *sql.Rows の共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

// isUUID はidがUUIDとして解釈できるかを返す。
// id列はUUID型のため、解釈できない値は問い合わせずに該当行なしとして扱う。
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// PostgresLectureRepo はPostgreSQLを使用した講義リポジトリ。
type PostgresLectureRepo struct {
	db DBTX
}

// NewPostgresLectureRepo はPostgresLectureRepoを生成する。
func NewPostgresLectureRepo(db DBTX) *PostgresLectureRepo {
	return &PostgresLectureRepo{db: db}
}

// Create は講義を作成する。
func (r *PostgresLectureRepo) Create(ctx context.Context, l *model.Lecture) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO lectures (id, title, recruitment_start_date, recruitment_end_date,
		     capacity, fee, lecture_start_date, lecture_end_date,
		     mentor_id, mentor_name, status, team_url, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		l.ID, l.Title, l.RecruitmentStartDate, l.RecruitmentEndDate,
		l.Capacity, l.Fee, l.LectureStartDate, l.LectureEndDate,
		l.MentorID, l.MentorName, l.Status, l.TeamURL, l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("講義の作成に失敗しました: %w", err)
	}
	return nil
}

// FindByID は指定IDの講義を取得する。見つからない場合はnilを返す。
func (r *PostgresLectureRepo) FindByID(ctx context.Context, id string) (*model.Lecture, error) {
	return r.findOne(ctx, `SELECT `+lectureColumns+` FROM lectures l WHERE l.id = $1`, id)
}

// FindByIDForUpdate は指定IDの講義を行ロック付きで取得する。
func (r *PostgresLectureRepo) FindByIDForUpdate(ctx context.Context, id string) (*model.Lecture, error) {
	return r.findOne(ctx, `SELECT `+lectureColumns+` FROM lectures l WHERE l.id = $1 FOR UPDATE`, id)
}

func (r *PostgresLectureRepo) findOne(ctx context.Context, query, id string) (*model.Lecture, error) {
	if !isUUID(id) {
		return nil, nil
	}
	l, err := scanLecture(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("講義の取得に失敗しました: %w", err)
	}
	return l, nil
}

// ListAll は全講義を作成日時の昇順で返す。
func (r *PostgresLectureRepo) ListAll(ctx context.Context) ([]*model.Lecture, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+lectureColumns+` FROM lectures l ORDER BY l.created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("講義一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var lectures []*model.Lecture
	for rows.Next() {
		l, err := scanLecture(rows)
		if err != nil {
			return nil, fmt.Errorf("講義行の読み取りに失敗しました: %w", err)
		}
		lectures = append(lectures, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("講義一覧の走査に失敗しました: %w", err)
	}
	return lectures, nil
}

// ListWithEnrollmentCount は全講義を現在の申込数付きで返す。
func (r *PostgresLectureRepo) ListWithEnrollmentCount(ctx context.Context) ([]model.LectureWithCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+lectureColumns+`, COALESCE(cnt.n, 0)
		 FROM lectures l
		 LEFT JOIN (
		     SELECT lecture_id, COUNT(*) AS n FROM enrollments GROUP BY lecture_id
		 ) cnt ON cnt.lecture_id = l.id
		 ORDER BY l.created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("講義一覧（申込数付き）の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var results []model.LectureWithCount
	for rows.Next() {
		var lc model.LectureWithCount
		if err := rows.Scan(
			&lc.ID, &lc.Title, &lc.RecruitmentStartDate, &lc.RecruitmentEndDate,
			&lc.Capacity, &lc.Fee, &lc.LectureStartDate, &lc.LectureEndDate,
			&lc.MentorID, &lc.MentorName, &lc.Status, &lc.TeamURL, &lc.CreatedAt,
			&lc.EnrolledCount,
		); err != nil {
			return nil, fmt.Errorf("講義行（申込数付き）の読み取りに失敗しました: %w", err)
		}
		results = append(results, lc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("講義一覧（申込数付き）の走査に失敗しました: %w", err)
	}
	return results, nil
}

// CountEnrolledMentees は指定講義の申込数を返す。
func (r *PostgresLectureRepo) CountEnrolledMentees(ctx context.Context, lectureID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM enrollments WHERE lecture_id = $1`,
		lectureID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("申込数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// UpdateStatus は講義の募集状態を更新する。
func (r *PostgresLectureRepo) UpdateStatus(ctx context.Context, id string, status model.LectureStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE lectures SET status = $2 WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("募集状態の更新に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("講義が見つかりません: %s", id)
	}
	return nil
}

func scanLecture(s rowScanner) (*model.Lecture, error) {
	l := &model.Lecture{}
	err := s.Scan(
		&l.ID, &l.Title, &l.RecruitmentStartDate, &l.RecruitmentEndDate,
		&l.Capacity, &l.Fee, &l.LectureStartDate, &l.LectureEndDate,
		&l.MentorID, &l.MentorName, &l.Status, &l.TeamURL, &l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// compile-time interface check
var _ LectureRepository = (*PostgresLectureRepo)(nil)
