package helpers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nimasrn/inquiry-gateway/internal/model"
	"github.com/nimasrn/inquiry-gateway/internal/repository"
	"github.com/nimasrn/inquiry-gateway/pkg/pg"
	"github.com/nimasrn/inquiry-gateway/pkg/redis"
	"github.com/nimasrn/inquiry-gateway/test/fixtures"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens an in-memory sqlite database with every table migrated.
func SetupTestDB(t *testing.T) *pg.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// a second pooled connection would see an empty database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(repository.Entities()...))

	t.Cleanup(func() { _ = sqlDB.Close() })
	return pg.NewDB(db, db)
}

// SetupTestRedis starts miniredis and registers an adapter under a name
// unique to the test, since adapters are cached by name.
func SetupTestRedis(t *testing.T) (*miniredis.Miniredis, redis.RedisAdapter) {
	t.Helper()

	mr := miniredis.RunT(t)

	connName := fmt.Sprintf("test-%s-%d", t.Name(), time.Now().UnixNano())
	adapter, err := redis.NewRedisAdapter(connName, "", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = redis.Close(connName) })

	return mr, adapter
}

func CreateTestInquiry(t *testing.T, db *pg.DB, name string, submittedAt time.Time) *model.Inquiry {
	t.Helper()
	inq, err := repository.NewInquiryRepository(db).Create(context.Background(), fixtures.InquiryAt(name, submittedAt))
	require.NoError(t, err)
	return inq
}

func CreateTestVisit(t *testing.T, db *pg.DB, ip string, visitedAt time.Time) *model.Visitor {
	t.Helper()
	v, err := repository.NewVisitorRepository(db).Create(context.Background(), &model.Visitor{
		IPAddress: ip,
		UserAgent: "Mozilla/5.0 (test)",
		VisitedAt: visitedAt,
	})
	require.NoError(t, err)
	return v
}

func CountRows(t *testing.T, db *pg.DB, entity interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Read(context.Background()).Model(entity).Count(&n).Error)
	return n
}

func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func AssertEventually(t *testing.T, timeout time.Duration, condition func() bool, msg string) {
	if !WaitForCondition(t, timeout, condition) {
		t.Fatal(msg)
	}
}

func ContextWithTimeout(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func Ptr[T any](v T) *T {
	return &v
}
