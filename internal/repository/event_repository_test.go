package repository

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB, PreferSimpleProtocol: true}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestEventDeleteCascadesChildRows(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)

	// Children go first, the event row last, so a failure partway can
	// never leave orphan rows pointing at a missing event.
	mock.ExpectExec(`DELETE FROM "event_files" WHERE event_id = \$1`).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "attendance" WHERE event_id = \$1`).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM "event_notes" WHERE event_id = \$1`).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "events" WHERE "events"\."id" = \$1`).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Delete(context.Background(), 7)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventDeleteStopsOnChildError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)

	boom := errors.New("connection reset")
	mock.ExpectExec(`DELETE FROM "event_files" WHERE event_id = \$1`).
		WithArgs(7).
		WillReturnError(boom)

	err := repo.Delete(context.Background(), 7)

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet(), "no further statement may run after a child delete fails")
}
