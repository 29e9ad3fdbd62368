package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBetListUnmarshalFlat(t *testing.T) {
	data := []byte(`[{"userId":"1","raceId":"smspariaz_1_2025-03-08","horse":4}]`)

	var bl BetList
	require.NoError(t, json.Unmarshal(data, &bl))
	require.Len(t, bl, 1)
	assert.Equal(t, Bet{UserID: "1", RaceID: "smspariaz_1_2025-03-08", Horse: 4}, bl[0])
}

func TestBetListUnmarshalLegacyMap(t *testing.T) {
	data := []byte(`{
		"2": {"smspariaz_1_2025-03-08": 7},
		"1": {"smspariaz_1_2025-03-08": 4, "smspariaz_2_2025-03-08": 2}
	}`)

	var bl BetList
	require.NoError(t, json.Unmarshal(data, &bl))
	require.Len(t, bl, 3)

	// Legacy conversion orders by user then race.
	assert.Equal(t, Bet{UserID: "1", RaceID: "smspariaz_1_2025-03-08", Horse: 4}, bl[0])
	assert.Equal(t, Bet{UserID: "1", RaceID: "smspariaz_2_2025-03-08", Horse: 2}, bl[1])
	assert.Equal(t, Bet{UserID: "2", RaceID: "smspariaz_1_2025-03-08", Horse: 7}, bl[2])
}

func TestBetListPutOverwrites(t *testing.T) {
	bl := BetList{}
	bl = bl.Put(Bet{UserID: "1", RaceID: "r1", Horse: 4})
	bl = bl.Put(Bet{UserID: "1", RaceID: "r1", Horse: 9})

	require.Len(t, bl, 1)
	assert.Equal(t, 9, bl[0].Horse)
}

func TestSetOddsRecomputesPoints(t *testing.T) {
	h := Horse{Number: 1, Name: "Test", Odds: 2.0, Points: 1}
	h.SetOdds(11.0)
	assert.Equal(t, 3, h.Points)
}

func TestRaceSetWinnerValidatesHorse(t *testing.T) {
	r := Race{
		ID:     "smspariaz_1_2025-03-08",
		Status: RaceUpcoming,
		Horses: []Horse{{Number: 1}, {Number: 2}},
	}

	err := r.SetWinner(5)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))

	require.NoError(t, r.SetWinner(2))
	require.NotNil(t, r.Winner)
	assert.Equal(t, 2, *r.Winner)
	assert.Equal(t, RaceCompleted, r.Status)
	assert.True(t, r.Completed())
}
