package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hitoshi/lecturehub/internal/model"
)

var lectureColumnNames = []string{
	"id", "title", "recruitment_start_date", "recruitment_end_date",
	"capacity", "fee", "lecture_start_date", "lecture_end_date",
	"mentor_id", "mentor_name", "status", "team_url", "created_at",
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestPostgresLectureRepo_FindByID_ReturnsLecture(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresLectureRepo(db)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .* FROM lectures l WHERE l.id = \$1$`).
		WithArgs(testLectureID).
		WillReturnRows(sqlmock.NewRows(lectureColumnNames).AddRow(
			testLectureID, "Go入門", start, end,
			10, 100, end, end.AddDate(0, 1, 0),
			testMentorID, "Kim", "RECRUITING", "https://teams.example.com/go", start,
		))

	got, err := repo.FindByID(context.Background(), testLectureID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Go入門", got.Title)
	assert.Equal(t, model.LectureStatusRecruiting, got.Status)
	assert.Equal(t, 10, got.Capacity)
	assert.Equal(t, testMentorID, got.MentorID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLectureRepo_FindByID_NotFoundReturnsNil(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresLectureRepo(db)

	mock.ExpectQuery(`SELECT .* FROM lectures l WHERE l.id = \$1`).
		WithArgs(testMissingID).
		WillReturnError(sql.ErrNoRows)

	got, err := repo.FindByID(context.Background(), testMissingID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPostgresLectureRepo_FindByIDForUpdate_LocksRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresLectureRepo(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT .* FROM lectures l WHERE l.id = \$1 FOR UPDATE`).
		WithArgs(testLectureID).
		WillReturnRows(sqlmock.NewRows(lectureColumnNames).AddRow(
			testLectureID, "Go入門", now, now, 10, 100, now, now,
			testMentorID, "Kim", "NOT_STARTED", "", now,
		))

	got, err := repo.FindByIDForUpdate(context.Background(), testLectureID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLectureRepo_ListWithEnrollmentCount(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresLectureRepo(db)

	now := time.Now()
	cols := append(append([]string{}, lectureColumnNames...), "count")
	mock.ExpectQuery(`SELECT .* FROM lectures l\s+LEFT JOIN`).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(testLectureID, "A", now, now, 10, 100, now, now, testMentorID, "Kim", "NOT_STARTED", "", now, 3).
			AddRow(testLecture2ID, "B", now, now, 5, 50, now, now, testMentorID, "Kim", "RECRUITING", "", now, 0))

	got, err := repo.ListWithEnrollmentCount(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 3, got[0].EnrolledCount)
	assert.Equal(t, testLecture2ID, got[1].ID)
	assert.Equal(t, 0, got[1].EnrolledCount)
}

func TestPostgresLectureRepo_CountEnrolledMentees(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresLectureRepo(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM enrollments WHERE lecture_id = \$1`).
		WithArgs(testLectureID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	n, err := repo.CountEnrolledMentees(context.Background(), testLectureID)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestPostgresLectureRepo_UpdateStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresLectureRepo(db)

	mock.ExpectExec(`UPDATE lectures SET status = \$2 WHERE id = \$1`).
		WithArgs(testLectureID, model.LectureStatusRecruitmentEnded).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), testLectureID, model.LectureStatusRecruitmentEnded)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLectureRepo_UpdateStatus_MissingLecture(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresLectureRepo(db)

	mock.ExpectExec(`UPDATE lectures SET status`).
		WithArgs(testMissingID, model.LectureStatusRecruiting).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), testMissingID, model.LectureStatusRecruiting)
	assert.Error(t, err)
}
