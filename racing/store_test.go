package racing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/padraicbc/betapi/config"
	"github.com/padraicbc/betapi/models"
	"github.com/padraicbc/betapi/storage"
)

const (
	testDate = "2025-03-08"
	race1    = "smspariaz_1_2025-03-08"
	race2    = "smspariaz_2_2025-03-08"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	gw, err := storage.Setup(&config.Config{DataDir: t.TempDir()}, zap.NewNop())
	require.NoError(t, err)

	s := NewStore(gw, zap.NewNop())
	require.NoError(t, s.Init(context.Background()))
	return s
}

func testRaces() []models.Race {
	return []models.Race{
		{
			ID:   race1,
			Name: "Race 1",
			Time: "13:30",
			Horses: []models.Horse{
				{Number: 1, Name: "Steady Eddie", Odds: 3.0},
				{Number: 2, Name: "Long Shot", Odds: 12.0},
			},
		},
		{
			ID:   race2,
			Name: "Race 2",
			Time: "14:05",
			Horses: []models.Horse{
				{Number: 1, Name: "Maiden Voyage", Odds: 7.5},
				{Number: 2, Name: "Second Wind", Odds: 4.0},
			},
		},
	}
}

// seedDay creates the current race day plus one player and returns the user.
func seedDay(t *testing.T, s *Store) *models.User {
	t.Helper()
	ctx := context.Background()

	_, err := s.CreateRaceDay(ctx, testDate, testRaces(), false)
	require.NoError(t, err)

	user, err := s.AddUser(ctx, "Alice")
	require.NoError(t, err)
	return user
}

func TestCreateRaceDayConflict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateRaceDay(ctx, testDate, testRaces(), false)
	require.NoError(t, err)

	_, err = s.CreateRaceDay(ctx, "2025-03-09", testRaces(), false)
	require.Error(t, err)
	assert.Equal(t, models.KindConflict, models.KindOf(err))

	// Explicit replacement discards the never-finalized day.
	day, err := s.CreateRaceDay(ctx, "2025-03-09", testRaces(), true)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-09", day.Date)

	idx, err := s.Index(ctx)
	require.NoError(t, err)
	require.Len(t, idx.Days, 1)
	assert.Equal(t, "2025-03-09", idx.Days[0].Date)
}

func TestCreateRaceDayRecomputesPoints(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	races := testRaces()
	races[0].Horses[1].Points = 99 // feed lied; derived field must be recomputed

	day, err := s.CreateRaceDay(ctx, testDate, races, false)
	require.NoError(t, err)

	horse, ok := day.Races[0].HorseByNumber(2)
	require.True(t, ok)
	assert.Equal(t, 3, horse.Points)
}

func TestPlaceBetValidations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := seedDay(t, s)

	err := s.PlaceBet(ctx, "ghost", race1, 1)
	assert.Equal(t, models.KindNotFound, models.KindOf(err))

	err = s.PlaceBet(ctx, user.ID, "smspariaz_9_2025-03-08", 1)
	assert.Equal(t, models.KindNotFound, models.KindOf(err))

	err = s.PlaceBet(ctx, user.ID, race1, 14)
	assert.Equal(t, models.KindValidation, models.KindOf(err))

	require.NoError(t, s.PlaceBet(ctx, user.ID, race1, 1))

	// Last write wins; no history of prior picks.
	require.NoError(t, s.PlaceBet(ctx, user.ID, race1, 2))
	bets, err := s.BetsFor(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, bets, 1)
	assert.Equal(t, 2, bets[0].Horse)
}

func TestPlaceBetClosedAfterResult(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := seedDay(t, s)

	require.NoError(t, s.PlaceBet(ctx, user.ID, race1, 2))
	require.NoError(t, s.SetWinner(ctx, race1, 2))

	err := s.PlaceBet(ctx, user.ID, race1, 1)
	require.Error(t, err)
	assert.Equal(t, models.KindBettingClosed, models.KindOf(err))
}

func TestSetBankerRequiresBet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := seedDay(t, s)

	err := s.SetBanker(ctx, user.ID, race1)
	require.Error(t, err)
	assert.Equal(t, models.KindNoBet, models.KindOf(err))

	require.NoError(t, s.PlaceBet(ctx, user.ID, race1, 2))
	require.NoError(t, s.SetBanker(ctx, user.ID, race1))

	raceID, err := s.BankerFor(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, race1, raceID)

	// A new nomination replaces the old one.
	require.NoError(t, s.PlaceBet(ctx, user.ID, race2, 1))
	require.NoError(t, s.SetBanker(ctx, user.ID, race2))
	raceID, err = s.BankerFor(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, race2, raceID)
}

func TestSetBankerClosedRace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := seedDay(t, s)

	require.NoError(t, s.PlaceBet(ctx, user.ID, race1, 2))
	require.NoError(t, s.SetWinner(ctx, race1, 2))

	err := s.SetBanker(ctx, user.ID, race1)
	require.Error(t, err)
	assert.Equal(t, models.KindBettingClosed, models.KindOf(err))
}

func TestSetWinner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedDay(t, s)

	err := s.SetWinner(ctx, race1, 44)
	assert.Equal(t, models.KindNotFound, models.KindOf(err))

	err = s.SetWinner(ctx, "smspariaz_9_2025-03-08", 1)
	assert.Equal(t, models.KindNotFound, models.KindOf(err))

	require.NoError(t, s.SetWinner(ctx, race1, 2))

	day, err := s.Current(ctx)
	require.NoError(t, err)
	race, ok := day.RaceByID(race1)
	require.True(t, ok)
	require.NotNil(t, race.Winner)
	assert.Equal(t, 2, *race.Winner)
	assert.Equal(t, models.RaceCompleted, race.Status)

	idx, err := s.Index(ctx)
	require.NoError(t, err)
	entry, ok := idx.ByDate(testDate)
	require.True(t, ok)
	assert.Equal(t, 1, entry.CompletedRaces)
}

func TestRolloverFinalizesScores(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := seedDay(t, s)

	// Alice backs the 12.0 long shot, bankers the race, and it wins: 3*2 = 6.
	require.NoError(t, s.PlaceBet(ctx, user.ID, race1, 2))
	require.NoError(t, s.SetBanker(ctx, user.ID, race1))
	require.NoError(t, s.SetWinner(ctx, race1, 2))

	res, err := s.Rollover(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, testDate, res.Date)
	require.Len(t, res.Scores, 1)
	assert.Equal(t, 6, res.Scores[0].DailyScore)

	users, err := s.Users(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, 6, users[0].TotalScore)

	day, err := s.ByDate(ctx, testDate)
	require.NoError(t, err)
	assert.Equal(t, models.DayHistorical, day.Status)
	require.Len(t, day.UserScores, 1)
	assert.Equal(t, user.ID, day.UserScores[0].UserID)
	assert.Equal(t, 6, day.UserScores[0].DailyScore)

	current, err := s.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestRolloverIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := seedDay(t, s)

	require.NoError(t, s.PlaceBet(ctx, user.ID, race1, 2))
	require.NoError(t, s.SetWinner(ctx, race1, 2))

	_, err := s.Rollover(ctx, "")
	require.NoError(t, err)

	_, err = s.Rollover(ctx, "")
	require.Error(t, err)
	assert.Equal(t, models.KindAlreadyRolledOver, models.KindOf(err))

	// Totals must not move on the rejected second call.
	users, err := s.Users(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, users[0].TotalScore)
}

func TestRolloverOnEmptyStoreIsConflict(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Rollover(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, models.KindConflict, models.KindOf(err))
}

func TestRolloverOpensNextDay(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := seedDay(t, s)

	require.NoError(t, s.PlaceBet(ctx, user.ID, race1, 1))

	_, err := s.Rollover(ctx, "2025-03-15")
	require.NoError(t, err)

	day, err := s.Current(ctx)
	require.NoError(t, err)
	require.NotNil(t, day)
	assert.Equal(t, "2025-03-15", day.Date)
	assert.Empty(t, day.Races)
	assert.Empty(t, day.Bets)
	assert.Empty(t, day.Bankers)
}

func TestRolloverAccumulatesAcrossDays(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := seedDay(t, s)

	require.NoError(t, s.PlaceBet(ctx, user.ID, race1, 2))
	require.NoError(t, s.SetWinner(ctx, race1, 2))
	_, err := s.Rollover(ctx, "")
	require.NoError(t, err)

	// Second day: the 7.5 runner pays 2 points.
	_, err = s.CreateRaceDay(ctx, "2025-03-15", []models.Race{
		{
			ID:   "smspariaz_1_2025-03-15",
			Name: "Race 1",
			Horses: []models.Horse{
				{Number: 1, Name: "Maiden Voyage", Odds: 7.5},
			},
		},
	}, false)
	require.NoError(t, err)

	require.NoError(t, s.PlaceBet(ctx, user.ID, "smspariaz_1_2025-03-15", 1))
	require.NoError(t, s.SetWinner(ctx, "smspariaz_1_2025-03-15", 1))
	_, err = s.Rollover(ctx, "")
	require.NoError(t, err)

	users, err := s.Users(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, users[0].TotalScore)
}

func TestRolloverRejectsHistoricalNextDate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := seedDay(t, s)

	require.NoError(t, s.PlaceBet(ctx, user.ID, race1, 2))
	require.NoError(t, s.SetWinner(ctx, race1, 2))
	_, err := s.Rollover(ctx, "")
	require.NoError(t, err)

	_, err = s.CreateRaceDay(ctx, "2025-03-09", testRaces(), false)
	require.NoError(t, err)

	// A closed day must never come back; rolling over "into" it is rejected.
	_, err = s.Rollover(ctx, testDate)
	require.Error(t, err)
	assert.Equal(t, models.KindConflict, models.KindOf(err))

	idx, err := s.Index(ctx)
	require.NoError(t, err)
	entry, ok := idx.ByDate(testDate)
	require.True(t, ok)
	assert.Equal(t, models.DayHistorical, entry.Status)

	// The stored payload keeps its scores.
	day, err := s.ByDate(ctx, testDate)
	require.NoError(t, err)
	require.Len(t, day.UserScores, 1)
	assert.Equal(t, 3, day.UserScores[0].DailyScore)
}

func TestDeleteRaceDay(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := seedDay(t, s)

	require.NoError(t, s.PlaceBet(ctx, user.ID, race1, 2))
	require.NoError(t, s.SetWinner(ctx, race1, 2))

	// The current day is protected.
	err := s.DeleteRaceDay(ctx, testDate)
	require.Error(t, err)
	assert.Equal(t, models.KindConflict, models.KindOf(err))

	_, err = s.Rollover(ctx, "")
	require.NoError(t, err)

	require.NoError(t, s.DeleteRaceDay(ctx, testDate))

	_, err = s.ByDate(ctx, testDate)
	assert.Equal(t, models.KindNotFound, models.KindOf(err))

	idx, err := s.Index(ctx)
	require.NoError(t, err)
	_, ok := idx.ByDate(testDate)
	assert.False(t, ok)

	err = s.DeleteRaceDay(ctx, testDate)
	assert.Equal(t, models.KindNotFound, models.KindOf(err))
}

func TestDeleteUserCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := seedDay(t, s)

	require.NoError(t, s.PlaceBet(ctx, user.ID, race1, 2))
	require.NoError(t, s.SetBanker(ctx, user.ID, race1))

	require.NoError(t, s.DeleteUser(ctx, user.ID))

	users, err := s.Users(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	day, err := s.Current(ctx)
	require.NoError(t, err)
	assert.Empty(t, day.Bets)
	assert.Empty(t, day.Bankers)

	err = s.DeleteUser(ctx, user.ID)
	assert.Equal(t, models.KindNotFound, models.KindOf(err))
}

func TestByDateMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.ByDate(context.Background(), "1999-01-01")
	require.Error(t, err)
	assert.Equal(t, models.KindNotFound, models.KindOf(err))
}
