package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hitoshi/lecturehub/internal/model"
)

func TestPostgresMentorRepo_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresMentorRepo(db)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(`INSERT INTO mentors`).
		WithArgs(testMentorID, "Kim", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &model.Mentor{ID: testMentorID, Name: "Kim", CreatedAt: now})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMentorRepo_FindByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresMentorRepo(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT id, name, created_at FROM mentors WHERE id = \$1`).
		WithArgs(testMentorID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at"}).AddRow(testMentorID, "Kim", now))

	got, err := repo.FindByID(context.Background(), testMentorID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Kim", got.Name)
}

func TestPostgresMentorRepo_FindByID_NotFoundReturnsNil(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresMentorRepo(db)

	mock.ExpectQuery(`SELECT id, name, created_at FROM mentors`).
		WithArgs(testMissingID).
		WillReturnError(sql.ErrNoRows)

	got, err := repo.FindByID(context.Background(), testMissingID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPostgresMentorRepo_FindByID_WrapsDBError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresMentorRepo(db)

	dbErr := errors.New("connection reset")
	mock.ExpectQuery(`SELECT id, name, created_at FROM mentors`).
		WithArgs(testMentorID).
		WillReturnError(dbErr)

	_, err := repo.FindByID(context.Background(), testMentorID)
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
}
