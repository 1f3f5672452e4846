package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hitoshi/lecturehub/internal/model"
)

var companyColumnNames = []string{"id", "company_name", "work_type", "position", "start_date", "end_date"}

func TestPostgresCompanyRepo_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresCompanyRepo(db)

	end := "2024-12"
	mock.ExpectExec(`INSERT INTO companies`).
		WithArgs(testCompanyID, "Kakao", "FULL_TIME", "Backend", "2022-03", &end).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &model.Company{
		ID: testCompanyID, CompanyName: "Kakao", WorkType: "FULL_TIME",
		Position: "Backend", StartDate: "2022-03", EndDate: &end,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCompanyRepo_FindByID_NullEndDate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresCompanyRepo(db)

	mock.ExpectQuery(`SELECT .* FROM companies WHERE id = \$1`).
		WithArgs(testCompanyID).
		WillReturnRows(sqlmock.NewRows(companyColumnNames).
			AddRow(testCompanyID, "Kakao", "FULL_TIME", "Backend", "2022-03", nil))

	got, err := repo.FindByID(context.Background(), testCompanyID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Kakao", got.CompanyName)
	assert.Nil(t, got.EndDate, "在籍中の会社はEndDateがnil")
}

func TestPostgresCompanyRepo_FindByID_NotFoundReturnsNil(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresCompanyRepo(db)

	mock.ExpectQuery(`SELECT .* FROM companies WHERE id = \$1`).
		WithArgs(testMissingID).
		WillReturnError(sql.ErrNoRows)

	got, err := repo.FindByID(context.Background(), testMissingID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPostgresCompanyRepo_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresCompanyRepo(db)

	mock.ExpectQuery(`SELECT .* FROM companies ORDER BY start_date DESC`).
		WillReturnRows(sqlmock.NewRows(companyColumnNames).
			AddRow(testCompany2ID, "Naver", "FULL_TIME", "SRE", "2023-01", nil).
			AddRow(testCompanyID, "Kakao", "INTERN", "Backend", "2021-07", "2021-12"))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Naver", got[0].CompanyName)
	require.NotNil(t, got[1].EndDate)
	assert.Equal(t, "2021-12", *got[1].EndDate)
}

func TestPostgresCompanyRepo_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresCompanyRepo(db)

	mock.ExpectExec(`DELETE FROM companies WHERE id = \$1`).
		WithArgs(testCompanyID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), testCompanyID))
}

func TestPostgresCompanyRepo_Delete_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresCompanyRepo(db)

	mock.ExpectExec(`DELETE FROM companies WHERE id = \$1`).
		WithArgs(testMissingID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), testMissingID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), testMissingID)
}
