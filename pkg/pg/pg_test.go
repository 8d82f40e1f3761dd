package pg

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type note struct {
	Model
	Body string
}

func setupDB(t *testing.T) *DB {
	t.Helper()
	g, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := g.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, g.AutoMigrate(&note{}))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return NewDB(g, g)
}

func count(t *testing.T, db *DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Read(context.Background()).Model(&note{}).Count(&n).Error)
	return n
}

func TestWithinTransaction(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	err := db.WithinTransaction(ctx, func(ctx context.Context) error {
		return db.Write(ctx).Create(&note{Body: "kept"}).Error
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count(t, db))

	boom := errors.New("boom")
	err = db.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := db.Write(ctx).Create(&note{Body: "rolled back"}).Error; err != nil {
			return err
		}
		// nested calls join the outer transaction
		return db.WithinTransaction(ctx, func(ctx context.Context) error {
			return boom
		})
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(1), count(t, db))
}

func TestModel_AssignsID(t *testing.T) {
	db := setupDB(t)

	n := &note{Body: "x"}
	require.NoError(t, db.Write(context.Background()).Create(n).Error)
	assert.Len(t, n.ID, 36)
	assert.False(t, n.CreatedAt.IsZero())

	preset := &note{Model: Model{ID: "00000000-0000-0000-0000-000000000001"}}
	require.NoError(t, db.Write(context.Background()).Create(preset).Error)
	assert.Equal(t, "00000000-0000-0000-0000-000000000001", preset.ID)
}

func TestPingAndClose(t *testing.T) {
	db := setupDB(t)
	assert.NoError(t, db.Ping(context.Background()))
	require.NoError(t, db.Close())
	assert.Error(t, db.Ping(context.Background()))
}

func TestConfigDSN(t *testing.T) {
	c := Config{User: "u", Host: "h", Port: "5432", Password: "p", Database: "d"}
	assert.Equal(t, "host=h user=u password=p dbname=d port=5432 sslmode=disable", c.DSN())

	c.SSLMode = "require"
	assert.Contains(t, c.DSN(), "sslmode=require")
}
