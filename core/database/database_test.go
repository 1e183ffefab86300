package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
)

func TestConfigDSN(t *testing.T) {
	cfg := Config{Host: "db", Port: 3306, User: "sync", Password: "p@ss:word", Name: "entity_sync", TimeoutSeconds: 5}
	assert.Equal(t,
		"sync:p%40ss%3Aword@tcp(db:3306)/entity_sync?charset=utf8mb4&parseTime=True&loc=UTC&timeout=5s&readTimeout=5s&writeTimeout=5s",
		cfg.DSN())

	assert.Contains(t, Config{}.DSN(), "timeout=30s")
}

func TestOpen(t *testing.T) {
	t.Run("Ping Succeeds", func(t *testing.T) {
		sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer sqlDB.Close()
		mock.ExpectPing()

		db, err := Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), Config{TimeoutSeconds: 1})
		require.NoError(t, err)
		assert.NotNil(t, db)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Ping Fails", func(t *testing.T) {
		sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer sqlDB.Close()
		mock.ExpectPing().WillReturnError(assert.AnError)

		db, err := Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), Config{TimeoutSeconds: 1})
		assert.ErrorIs(t, err, assert.AnError)
		assert.Nil(t, db)
	})
}

func TestConnectUnreachable(t *testing.T) {
	db, err := Connect(Config{Host: "localhost", Port: 9999, User: "root", Name: "entity_sync", TimeoutSeconds: 1})
	assert.Error(t, err)
	assert.Nil(t, db)
}
