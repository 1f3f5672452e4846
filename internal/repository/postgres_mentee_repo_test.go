package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresMenteeRepo_FindByIDForUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresMenteeRepo(db)

	mock.ExpectQuery(`SELECT .* FROM mentees WHERE id = \$1 FOR UPDATE`).
		WithArgs(testMenteeID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "point", "created_at"}).
			AddRow(testMenteeID, "Lee", "lee@example.com", 100, time.Now()))

	got, err := repo.FindByIDForUpdate(context.Background(), testMenteeID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 100, got.Point)
	assert.Equal(t, "lee@example.com", got.Email)
}

func TestPostgresMenteeRepo_FindByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresMenteeRepo(db)

	mock.ExpectQuery(`SELECT .* FROM mentees WHERE id = \$1$`).
		WithArgs(testMissingID).
		WillReturnError(sql.ErrNoRows)

	got, err := repo.FindByID(context.Background(), testMissingID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPostgresMenteeRepo_UpdatePoint(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresMenteeRepo(db)

	mock.ExpectExec(`UPDATE mentees SET point = \$2 WHERE id = \$1`).
		WithArgs(testMenteeID, 0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdatePoint(context.Background(), testMenteeID, 0))
	assert.NoError(t, mock.ExpectationsWereMet())
}
