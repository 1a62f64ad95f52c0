package testutil

import (
	"log"
	"strings"
	"testing"
	"time"

	"hackvote/pkg/award"
	"hackvote/pkg/event"
	"hackvote/pkg/team"
	"hackvote/pkg/vote"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewMockDB opens gorm over a sqlmock connection speaking the postgres dialect.
func NewMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	t.Helper()

	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(PrefixMatcher()))
	require.NoError(t, err)

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gdb, mock, func() { _ = mockDB.Close() }
}

// PrefixMatcher accepts a query when it starts with the expected text, ignoring
// whitespace differences. Full gorm SQL is not worth pinning in tests.
func PrefixMatcher() sqlmock.QueryMatcher {
	return sqlmock.QueryMatcherFunc(func(expected, actual string) error {
		normalize := func(s string) string {
			return strings.Join(strings.Fields(s), " ")
		}

		act := normalize(actual)
		exp := normalize(expected)

		if strings.HasPrefix(act, exp) {
			return nil
		}

		log.Println(act)
		log.Println(exp)

		return sqlmock.ErrCancelled
	})
}

// NewSQLiteDB returns a private in-memory database with the full schema.
// A single connection keeps the in-memory database alive and serializes writers.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&event.Event{},
		&team.Team{},
		&team.Membership{},
		&award.Award{},
		&vote.Vote{},
	))

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func NopLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// SeedEvent inserts an event directly. An empty phase leaves the state unset.
func SeedEvent(t *testing.T, db *gorm.DB, name string, phase event.Phase) *event.Event {
	t.Helper()

	now := time.Now().UTC()
	ev := &event.Event{
		ID:        uuid.NewString(),
		Slug:      uuid.NewString(),
		Name:      name,
		StartDate: now.Add(-time.Hour),
		EndDate:   now.Add(24 * time.Hour),
	}
	if phase != "" {
		p := phase
		ev.HackathonState = &p
	}
	require.NoError(t, db.Create(ev).Error)
	return ev
}

// SetPhase moves a seeded event to phase without going through the repo.
func SetPhase(t *testing.T, db *gorm.DB, eventID string, phase event.Phase) {
	t.Helper()
	require.NoError(t, db.Model(&event.Event{}).Where("id = ?", eventID).Update("hackathon_state", phase).Error)
}
