package database

import (
	"context"
	"errors"
	"testing"

	"socialhub/internal/config"
	"socialhub/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, Migrate(db))
	return db
}

func TestConfigurePool(t *testing.T) {
	db := openSQLite(t)

	err := configurePool(db, &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestConfigurePool_Defaults(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, configurePool(db, &config.Config{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 25, sqlDB.Stats().MaxOpenConnections)
}

func TestWithinTransaction_RollsBackOnError(t *testing.T) {
	db := openSQLite(t)
	tr := NewTransactor(db)
	ctx := context.Background()

	err := tr.WithinTransaction(ctx, func(ctx context.Context) error {
		u := models.User{Username: "alice", Email: "a@example.com", Password: "x"}
		if err := Conn(ctx, db).Create(&u).Error; err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestWithinTransaction_NestedJoinsOuter(t *testing.T) {
	db := openSQLite(t)
	tr := NewTransactor(db)

	err := tr.WithinTransaction(context.Background(), func(ctx context.Context) error {
		outer, _ := TxFromContext(ctx)
		return tr.WithinTransaction(ctx, func(inner context.Context) error {
			tx, ok := TxFromContext(inner)
			assert.True(t, ok)
			assert.Same(t, outer, tx)
			return nil
		})
	})
	require.NoError(t, err)
}

func TestReader_UsesPrimaryWithoutReplica(t *testing.T) {
	db := openSQLite(t)
	assert.Nil(t, GetReadDB())
	assert.NotNil(t, Reader(context.Background(), db))
}

func TestWithinTransaction_PostgresCommit(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "groups"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = NewTransactor(db).WithinTransaction(context.Background(), func(ctx context.Context) error {
		return Conn(ctx, db).Model(&models.Group{}).Where("id = ?", 1).Update("name", "n").Error
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
