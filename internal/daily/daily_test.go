package daily_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/robalobadob/idiomle/apps/go-server/internal/daily"
	"github.com/robalobadob/idiomle/apps/go-server/internal/db"
)

func TestIdiomIndex(t *testing.T) {
	day := time.Date(2026, 10, 19, 23, 0, 0, 0, time.UTC)
	sameDay := time.Date(2026, 10, 19, 1, 0, 0, 0, time.UTC)

	assert.Equal(t, "2026-10-19", daily.DateKey(day))
	assert.Equal(t, daily.IdiomIndex(day, "salt", 60), daily.IdiomIndex(sameDay, "salt", 60))
	assert.Equal(t, 0, daily.IdiomIndex(day, "salt", 0))

	for i := 0; i < 30; i++ {
		idx := daily.IdiomIndex(day.AddDate(0, 0, i), "salt", 7)
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, 7)
	}
}

type StoreSuite struct {
	suite.Suite
	db    *sql.DB
	store *daily.Store
}

func (s *StoreSuite) SetupTest() {
	conn, err := db.Open(context.Background(), ":memory:")
	s.Require().NoError(err)
	s.db = conn
	s.store = daily.NewStore(conn)
}

func (s *StoreSuite) TearDownTest() {
	s.Require().NoError(s.db.Close())
}

func (s *StoreSuite) TestInsertOncePerDay() {
	ctx := context.Background()
	played, err := s.store.AlreadyPlayed(ctx, "u1", "2026-10-19")
	s.Require().NoError(err)
	s.Assert().False(played)

	r := daily.Result{UserID: "u1", Date: "2026-10-19", IdiomIndex: 3, Guesses: 4, ElapsedMs: 9000}
	s.Require().NoError(s.store.InsertResult(ctx, r))
	r.Guesses = 1
	s.Require().NoError(s.store.InsertResult(ctx, r))

	played, err = s.store.AlreadyPlayed(ctx, "u1", "2026-10-19")
	s.Require().NoError(err)
	s.Assert().True(played)

	rows, err := s.store.Leaderboard(ctx, "2026-10-19", 0)
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Assert().Equal(4, rows[0].Guesses)
}

func (s *StoreSuite) TestLeaderboardOrder() {
	ctx := context.Background()
	for _, r := range []daily.Result{
		{UserID: "slow", Date: "d", Guesses: 2, ElapsedMs: 50000},
		{UserID: "fast", Date: "d", Guesses: 6, ElapsedMs: 1000},
		{UserID: "tie", Date: "d", Guesses: 3, ElapsedMs: 1000},
		{UserID: "other-day", Date: "e", Guesses: 1, ElapsedMs: 1},
	} {
		s.Require().NoError(s.store.InsertResult(ctx, r))
	}

	rows, err := s.store.Leaderboard(ctx, "d", 2)
	s.Require().NoError(err)
	s.Require().Len(rows, 2)
	s.Assert().Equal("tie", rows[0].UserID)
	s.Assert().Equal("fast", rows[1].UserID)
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}
