package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/campusworks/grievance-api/internal/models"
)

func newStatsRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestStatsRepositoryCountByCategory(t *testing.T) {
	db, mock, cleanup := newStatsRepoMock(t)
	defer cleanup()

	repo := NewStatsRepository(db)
	rows := sqlmock.NewRows([]string{"category", "count"}).
		AddRow("hostel", 3).
		AddRow("academic", 1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT category, COUNT(*) AS count FROM grievances GROUP BY category")).
		WillReturnRows(rows)

	counts, err := repo.CountByCategory(context.Background())
	require.NoError(t, err)
	require.Len(t, counts, 2)
	require.Equal(t, models.CategoryHostel, counts[0].Category)
	require.Equal(t, 3, counts[0].Count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsRepositoryCountByStatus(t *testing.T) {
	db, mock, cleanup := newStatsRepoMock(t)
	defer cleanup()

	repo := NewStatsRepository(db)
	rows := sqlmock.NewRows([]string{"status", "count"}).
		AddRow("submitted", 2).
		AddRow("resolved", 5)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status, COUNT(*) AS count FROM grievances GROUP BY status")).
		WillReturnRows(rows)

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	require.Len(t, counts, 2)
	require.Equal(t, models.StatusResolved, counts[1].Status)
	require.Equal(t, 5, counts[1].Count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsRepositoryCountCreatedBetween(t *testing.T) {
	db, mock, cleanup := newStatsRepoMock(t)
	defer cleanup()

	repo := NewStatsRepository(db)
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM grievances WHERE created_at >= $1 AND created_at < $2")).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.CountCreatedBetween(context.Background(), from, to)
	require.NoError(t, err)
	require.Equal(t, 7, count)
	require.NoError(t, mock.ExpectationsWereMet())
}
