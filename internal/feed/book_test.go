package feed

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/betslip/internal/models"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func seedBook(t *testing.T) *MatchBook {
	t.Helper()
	book := NewMatchBook(testLogger())
	book.Replace([]models.Match{
		{ID: 10, HomeTeam: "Liverpool", AwayTeam: "Everton", Odds: models.Odds{Home: 1.5, Draw: 4.0, Away: 6.5}},
		{ID: 20, HomeTeam: "Spurs", AwayTeam: "West Ham", Odds: models.Odds{Home: 2.1, Draw: 3.3, Away: 3.4}},
	})
	return book
}

func TestReplacePreservesFeedOrder(t *testing.T) {
	book := NewMatchBook(testLogger())
	book.Replace([]models.Match{
		{ID: 3, HomeTeam: "C", AwayTeam: "c"},
		{ID: 1, HomeTeam: "A", AwayTeam: "a"},
		{ID: 2, HomeTeam: "B", AwayTeam: "b"},
		{ID: 1, HomeTeam: "dup", AwayTeam: "dup"},
	})

	snapshot := book.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, int64(3), snapshot[0].ID)
	assert.Equal(t, int64(1), snapshot[1].ID)
	assert.Equal(t, int64(2), snapshot[2].ID)
	// First occurrence wins on duplicate IDs
	assert.Equal(t, "A", snapshot[1].HomeTeam)
	assert.Equal(t, 3, book.Len())
}

func TestGetReturnsCopy(t *testing.T) {
	book := seedBook(t)

	m, ok := book.Get(10)
	require.True(t, ok)
	m.HomeTeam = "mutated"
	m.Odds.Home = 99

	fresh, ok := book.Get(10)
	require.True(t, ok)
	assert.Equal(t, "Liverpool", fresh.HomeTeam)
	assert.Equal(t, 1.5, fresh.Odds.Home)

	_, ok = book.Get(999)
	assert.False(t, ok)
}

func TestApplyMergesPartialUpdate(t *testing.T) {
	book := seedBook(t)
	minute := "52'"

	applied := book.Apply(models.LiveUpdate{
		MatchID: 10,
		Score:   &models.Score{Home: 1, Away: 0},
		Time:    &minute,
	})
	require.True(t, applied)

	m, ok := book.Get(10)
	require.True(t, ok)
	assert.True(t, m.IsLive)
	require.NotNil(t, m.Score)
	assert.Equal(t, 1, m.Score.Home)
	assert.Equal(t, "52'", m.Time)
	// Untouched fields survive the merge
	assert.Equal(t, 1.5, m.Odds.Home)
	assert.Nil(t, m.Statistics)
}

func TestApplyLeavesAbsentFieldsAlone(t *testing.T) {
	book := seedBook(t)

	book.Apply(models.LiveUpdate{
		MatchID: 10,
		Score:   &models.Score{Home: 2, Away: 1},
	})
	// A later statistics-only delta must not erase the score
	book.Apply(models.LiveUpdate{
		MatchID: 10,
		Statistics: &models.Statistics{
			Possession: models.SideCount{Home: 60, Away: 40},
			Shots:      models.SideCount{Home: 7, Away: 2},
		},
	})

	m, ok := book.Get(10)
	require.True(t, ok)
	require.NotNil(t, m.Score)
	assert.Equal(t, 2, m.Score.Home)
	require.NotNil(t, m.Statistics)
	assert.Equal(t, 60, m.Statistics.Possession.Home)
}

func TestApplyIsIdempotent(t *testing.T) {
	book := seedBook(t)
	update := models.LiveUpdate{
		MatchID: 20,
		Score:   &models.Score{Home: 0, Away: 2},
	}

	require.True(t, book.Apply(update))
	first, _ := book.Get(20)

	require.True(t, book.Apply(update))
	second, _ := book.Get(20)

	assert.Equal(t, first, second)
}

func TestApplyDropsUnknownMatch(t *testing.T) {
	book := seedBook(t)

	applied := book.Apply(models.LiveUpdate{
		MatchID: 777,
		Score:   &models.Score{Home: 3, Away: 3},
	})

	assert.False(t, applied)
	assert.Equal(t, 2, book.Len())
}
