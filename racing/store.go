// Package racing owns the race-day lifecycle: the index of days, the single
// current day open for betting, result entry, and the rollover that folds a
// finished day's scores into user totals.
package racing

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/padraicbc/betapi/models"
	"github.com/padraicbc/betapi/storage"
)

// Document keys under the storage gateway. The current day is split across
// three documents; closed days are persisted whole under race_days/{date}.
const (
	keyUsers          = "users"
	keyCurrentRaces   = "current/races"
	keyCurrentBets    = "current/bets"
	keyCurrentBankers = "current/bankers"
	keyIndex          = "race_days/index"
)

func dayKey(date string) string { return "race_days/" + date }

// Store is the race-day store and betting ledger. The backing gateway offers
// only whole-document load/save, so every mutation is a read-modify-write
// serialized by a single mutex; concurrent unserialized writes would silently
// lose bets.
type Store struct {
	mu  sync.Mutex
	gw  *storage.Gateway
	log *zap.Logger
}

// NewStore creates a Store over the given document gateway.
func NewStore(gw *storage.Gateway, log *zap.Logger) *Store {
	return &Store{gw: gw, log: log}
}

// Persisted document envelopes. Every envelope carries a version; saves that
// don't match the stored version are rejected so an outside writer can't be
// silently overwritten.

type usersDoc struct {
	Users   []models.User `json:"users"`
	Version int           `json:"version"`
}

type racesDoc struct {
	Date    string        `json:"date"`
	Races   []models.Race `json:"races"`
	Version int           `json:"version"`
}

type betsDoc struct {
	Bets    models.BetList `json:"bets"`
	Version int            `json:"version"`
}

type bankersDoc struct {
	Bankers map[string]string `json:"bankers"`
	Version int               `json:"version"`
}

// loadDoc unmarshals the document at key into v. Missing documents surface as
// a NotFound domain error from the gateway.
func (s *Store) loadDoc(ctx context.Context, key string, v any) error {
	data, err := s.gw.Load(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return models.Storagef("decode %s: %v", key, err)
	}
	return nil
}

// saveDoc writes v under key after verifying the stored version still matches
// expect (0 for a document that should not exist yet). The caller bumps the
// version inside v before saving.
func (s *Store) saveDoc(ctx context.Context, key string, expect int, v any) error {
	if err := s.checkVersion(ctx, key, expect); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return models.Storagef("encode %s: %v", key, err)
	}
	return s.gw.Save(ctx, key, data)
}

func (s *Store) checkVersion(ctx context.Context, key string, expect int) error {
	data, err := s.gw.Load(ctx, key)
	if err != nil {
		if models.IsKind(err, models.KindNotFound) {
			return nil
		}
		return err
	}
	var stored struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(data, &stored); err != nil {
		// Malformed JSON; let the normalized save replace it. Unversioned
		// legacy documents decode as Version 0 and pass the check below.
		return nil
	}
	if stored.Version != expect {
		return models.Conflictf("document %s was modified concurrently (stored version %d, expected %d)",
			key, stored.Version, expect)
	}
	return nil
}

// Init makes sure the baseline documents exist so first requests don't 404.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.gw.Exists(ctx, keyUsers) {
		if err := s.saveDoc(ctx, keyUsers, 0, &usersDoc{Users: []models.User{}, Version: 1}); err != nil {
			return err
		}
		s.log.Info("racing: created default users document")
	}
	if !s.gw.Exists(ctx, keyIndex) {
		idx := &models.RaceDayIndex{Days: []models.IndexEntry{}, Version: 1}
		if err := s.saveDoc(ctx, keyIndex, 0, idx); err != nil {
			return err
		}
		s.log.Info("racing: created default race-day index")
	}
	return nil
}

// Index returns all known race days without loading full payloads.
func (s *Store) Index(ctx context.Context) (*models.RaceDayIndex, error) {
	var idx models.RaceDayIndex
	if err := s.loadDoc(ctx, keyIndex, &idx); err != nil {
		if models.IsKind(err, models.KindNotFound) {
			return &models.RaceDayIndex{Days: []models.IndexEntry{}}, nil
		}
		return nil, err
	}
	return &idx, nil
}

// Current assembles the current race day from its split documents, or returns
// (nil, nil) when no day is current.
func (s *Store) Current(ctx context.Context) (*models.RaceDay, error) {
	idx, err := s.Index(ctx)
	if err != nil {
		return nil, err
	}
	entry, ok := idx.Current()
	if !ok {
		return nil, nil
	}
	return s.loadCurrent(ctx, entry.Date)
}

func (s *Store) loadCurrent(ctx context.Context, date string) (*models.RaceDay, error) {
	var races racesDoc
	if err := s.loadDoc(ctx, keyCurrentRaces, &races); err != nil {
		return nil, err
	}

	var bets betsDoc
	if err := s.loadDoc(ctx, keyCurrentBets, &bets); err != nil && !models.IsKind(err, models.KindNotFound) {
		return nil, err
	}
	var bankers bankersDoc
	if err := s.loadDoc(ctx, keyCurrentBankers, &bankers); err != nil && !models.IsKind(err, models.KindNotFound) {
		return nil, err
	}

	day := &models.RaceDay{
		Date:    date,
		Races:   races.Races,
		Bets:    bets.Bets,
		Bankers: bankers.Bankers,
		Status:  models.DayCurrent,
		Version: races.Version,
	}
	if day.Bets == nil {
		day.Bets = models.BetList{}
	}
	if day.Bankers == nil {
		day.Bankers = map[string]string{}
	}
	return day, nil
}

// ByDate returns the race day for date: the live current day if it matches,
// otherwise the stored historical payload.
func (s *Store) ByDate(ctx context.Context, date string) (*models.RaceDay, error) {
	idx, err := s.Index(ctx)
	if err != nil {
		return nil, err
	}
	if entry, ok := idx.Current(); ok && entry.Date == date {
		return s.loadCurrent(ctx, date)
	}

	var day models.RaceDay
	if err := s.loadDoc(ctx, dayKey(date), &day); err != nil {
		if models.IsKind(err, models.KindNotFound) {
			return nil, models.NotFoundf("race day %s not found", date)
		}
		return nil, err
	}
	return &day, nil
}

// CreateRaceDay opens a new current race day for date with the given races.
// It fails with a conflict when a current day already exists unless replace is
// set, in which case the never-finalized day is discarded.
func (s *Store) CreateRaceDay(ctx context.Context, date string, races []models.Race, replace bool) (*models.RaceDay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.Index(ctx)
	if err != nil {
		return nil, err
	}

	if entry, ok := idx.Current(); ok {
		if !replace {
			return nil, models.Conflictf("race day %s is already current", entry.Date)
		}
		if entry.Date != date {
			// The replaced day was never rolled over; drop its index entry.
			s.removeIndexEntry(idx, entry.Date)
		}
	}
	if entry, ok := idx.ByDate(date); ok && entry.Status == models.DayHistorical {
		return nil, models.Conflictf("race day %s is already historical", date)
	}

	normalizeRaces(races)

	var prevRaces racesDoc
	prevVersion := 0
	if err := s.loadDoc(ctx, keyCurrentRaces, &prevRaces); err == nil {
		prevVersion = prevRaces.Version
	}

	if err := s.saveDoc(ctx, keyCurrentRaces, prevVersion,
		&racesDoc{Date: date, Races: races, Version: prevVersion + 1}); err != nil {
		return nil, err
	}
	if err := s.resetCurrentBetting(ctx); err != nil {
		return nil, err
	}

	s.upsertIndexEntry(idx, models.IndexEntry{
		Date:       date,
		Status:     models.DayCurrent,
		TotalRaces: len(races),
	})
	if err := s.saveIndex(ctx, idx); err != nil {
		return nil, err
	}

	s.log.Info("racing: race day created",
		zap.String("date", date), zap.Int("races", len(races)))

	return s.loadCurrent(ctx, date)
}

// SetWinner records the result for a race in the current day and marks the
// race completed.
func (s *Store) SetWinner(ctx context.Context, raceID string, horseNumber int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var races racesDoc
	if err := s.loadDoc(ctx, keyCurrentRaces, &races); err != nil {
		if models.IsKind(err, models.KindNotFound) {
			return models.NotFoundf("no current race day")
		}
		return err
	}

	found := false
	for i := range races.Races {
		if races.Races[i].ID == raceID {
			if err := races.Races[i].SetWinner(horseNumber); err != nil {
				return err
			}
			found = true
			break
		}
	}
	if !found {
		return models.NotFoundf("race %s not found in current race day", raceID)
	}

	expect := races.Version
	races.Version++
	if err := s.saveDoc(ctx, keyCurrentRaces, expect, &races); err != nil {
		return err
	}

	idx, err := s.Index(ctx)
	if err != nil {
		return err
	}
	if entry, ok := idx.ByDate(races.Date); ok {
		day := models.RaceDay{Races: races.Races}
		entry.CompletedRaces = day.CompletedRaces()
		if err := s.saveIndex(ctx, idx); err != nil {
			return err
		}
	}

	s.log.Info("racing: winner set",
		zap.String("raceID", raceID), zap.Int("horse", horseNumber))
	return nil
}

// DeleteRaceDay removes a historical race day's payload and index entry. The
// current day cannot be deleted; replace or roll it over instead. Totals
// credited from the deleted day are corrected on the next rollover, which
// recomputes them from the remaining historical records.
func (s *Store) DeleteRaceDay(ctx context.Context, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.Index(ctx)
	if err != nil {
		return err
	}
	entry, ok := idx.ByDate(date)
	if !ok {
		return models.NotFoundf("race day %s not found", date)
	}
	if entry.Status == models.DayCurrent {
		return models.Conflictf("race day %s is current, replace or roll it over instead", date)
	}

	if err := s.gw.Delete(ctx, dayKey(date)); err != nil {
		return err
	}
	s.removeIndexEntry(idx, date)
	if err := s.saveIndex(ctx, idx); err != nil {
		return err
	}

	s.log.Info("racing: race day deleted", zap.String("date", date))
	return nil
}

func (s *Store) resetCurrentBetting(ctx context.Context) error {
	var prevBets betsDoc
	betsVersion := 0
	if err := s.loadDoc(ctx, keyCurrentBets, &prevBets); err == nil {
		betsVersion = prevBets.Version
	}
	if err := s.saveDoc(ctx, keyCurrentBets, betsVersion,
		&betsDoc{Bets: models.BetList{}, Version: betsVersion + 1}); err != nil {
		return err
	}

	var prevBankers bankersDoc
	bankersVersion := 0
	if err := s.loadDoc(ctx, keyCurrentBankers, &prevBankers); err == nil {
		bankersVersion = prevBankers.Version
	}
	return s.saveDoc(ctx, keyCurrentBankers, bankersVersion,
		&bankersDoc{Bankers: map[string]string{}, Version: bankersVersion + 1})
}

func (s *Store) saveIndex(ctx context.Context, idx *models.RaceDayIndex) error {
	expect := idx.Version
	idx.Version++
	return s.saveDoc(ctx, keyIndex, expect, idx)
}

func (s *Store) upsertIndexEntry(idx *models.RaceDayIndex, entry models.IndexEntry) {
	for i := range idx.Days {
		if idx.Days[i].Date == entry.Date {
			idx.Days[i] = entry
			return
		}
	}
	// Newest first.
	idx.Days = append([]models.IndexEntry{entry}, idx.Days...)
}

func (s *Store) removeIndexEntry(idx *models.RaceDayIndex, date string) {
	out := idx.Days[:0]
	for _, d := range idx.Days {
		if d.Date != date {
			out = append(out, d)
		}
	}
	idx.Days = out
}

// normalizeRaces recomputes derived horse points from odds and defaults race
// status, regardless of what the feed claimed.
func normalizeRaces(races []models.Race) {
	for i := range races {
		if races[i].Status == "" {
			races[i].Status = models.RaceUpcoming
		}
		for j := range races[i].Horses {
			h := &races[i].Horses[j]
			h.Points = models.PointsForOdds(h.Odds)
		}
	}
}
