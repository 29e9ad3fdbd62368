package racing

import (
	"context"

	"go.uber.org/zap"

	"github.com/padraicbc/betapi/models"
)

// PlaceBet records userID's pick for a race in the current day, overwriting
// any previous pick for the same race. Betting is closed for completed races.
func (s *Store) PlaceBet(ctx context.Context, userID, raceID string, horseNumber int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}

	day, err := s.Current(ctx)
	if err != nil {
		return err
	}
	if day == nil {
		return models.NotFoundf("no current race day")
	}

	race, ok := day.RaceByID(raceID)
	if !ok {
		return models.NotFoundf("race %s not found in current race day", raceID)
	}
	if race.Completed() {
		return models.BettingClosedf("race %s is completed, betting is closed", raceID)
	}
	if _, ok := race.HorseByNumber(horseNumber); !ok {
		return models.Validationf("horse #%d does not run in race %s", horseNumber, raceID)
	}

	var bets betsDoc
	if err := s.loadDoc(ctx, keyCurrentBets, &bets); err != nil && !models.IsKind(err, models.KindNotFound) {
		return err
	}
	bets.Bets = bets.Bets.Put(models.Bet{UserID: userID, RaceID: raceID, Horse: horseNumber})

	expect := bets.Version
	bets.Version++
	if err := s.saveDoc(ctx, keyCurrentBets, expect, &bets); err != nil {
		return err
	}

	s.log.Info("racing: bet placed",
		zap.String("userID", userID), zap.String("raceID", raceID), zap.Int("horse", horseNumber))
	return nil
}

// SetBanker nominates raceID as userID's banker for the day. The user must
// already hold a bet on that race and the race must still be open. A new
// nomination overwrites the previous one; one banker per user per day.
func (s *Store) SetBanker(ctx context.Context, userID, raceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	day, err := s.Current(ctx)
	if err != nil {
		return err
	}
	if day == nil {
		return models.NotFoundf("no current race day")
	}

	race, ok := day.RaceByID(raceID)
	if !ok {
		return models.NotFoundf("race %s not found in current race day", raceID)
	}
	if race.Completed() {
		return models.BettingClosedf("race %s is completed, banker selection is closed", raceID)
	}
	if _, ok := day.Bets.Find(userID, raceID); !ok {
		return models.NoBetf("no bet placed on race %s, place a bet before nominating it as banker", raceID)
	}

	var bankers bankersDoc
	if err := s.loadDoc(ctx, keyCurrentBankers, &bankers); err != nil && !models.IsKind(err, models.KindNotFound) {
		return err
	}
	if bankers.Bankers == nil {
		bankers.Bankers = map[string]string{}
	}
	bankers.Bankers[userID] = raceID

	expect := bankers.Version
	bankers.Version++
	if err := s.saveDoc(ctx, keyCurrentBankers, expect, &bankers); err != nil {
		return err
	}

	s.log.Info("racing: banker set",
		zap.String("userID", userID), zap.String("raceID", raceID))
	return nil
}

// BetsFor returns userID's bets on the current day.
func (s *Store) BetsFor(ctx context.Context, userID string) ([]models.Bet, error) {
	day, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	if day == nil {
		return []models.Bet{}, nil
	}
	bets := day.Bets.ForUser(userID)
	if bets == nil {
		bets = []models.Bet{}
	}
	return bets, nil
}

// BankerFor returns the race userID nominated as banker, or "" when none.
func (s *Store) BankerFor(ctx context.Context, userID string) (string, error) {
	day, err := s.Current(ctx)
	if err != nil {
		return "", err
	}
	if day == nil {
		return "", nil
	}
	return day.Bankers[userID], nil
}

// AllBets returns every bet on the current day.
func (s *Store) AllBets(ctx context.Context) (models.BetList, error) {
	day, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	if day == nil {
		return models.BetList{}, nil
	}
	return day.Bets, nil
}

// AllBankers returns the current day's banker map.
func (s *Store) AllBankers(ctx context.Context) (map[string]string, error) {
	day, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	if day == nil {
		return map[string]string{}, nil
	}
	return day.Bankers, nil
}
