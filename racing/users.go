package racing

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/padraicbc/betapi/models"
)

// Users returns all registered players.
func (s *Store) Users(ctx context.Context) ([]models.User, error) {
	var doc usersDoc
	if err := s.loadDoc(ctx, keyUsers, &doc); err != nil {
		if models.IsKind(err, models.KindNotFound) {
			return []models.User{}, nil
		}
		return nil, err
	}
	if doc.Users == nil {
		doc.Users = []models.User{}
	}
	return doc.Users, nil
}

// AddUser registers a new player with a fresh numeric id.
func (s *Store) AddUser(ctx context.Context, name string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name == "" {
		return nil, models.Validationf("name is required")
	}

	var doc usersDoc
	if err := s.loadDoc(ctx, keyUsers, &doc); err != nil && !models.IsKind(err, models.KindNotFound) {
		return nil, err
	}

	maxID := 0
	for _, u := range doc.Users {
		if n, err := strconv.Atoi(u.ID); err == nil && n > maxID {
			maxID = n
		}
	}

	user := models.User{ID: strconv.Itoa(maxID + 1), Name: name}
	doc.Users = append(doc.Users, user)

	expect := doc.Version
	doc.Version++
	if err := s.saveDoc(ctx, keyUsers, expect, &doc); err != nil {
		return nil, err
	}

	s.log.Info("racing: user added", zap.String("id", user.ID), zap.String("name", name))
	return &user, nil
}

// DeleteUser removes a player and cascades: their current-day bets and banker
// selection go with them.
func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var doc usersDoc
	if err := s.loadDoc(ctx, keyUsers, &doc); err != nil {
		return err
	}

	kept := doc.Users[:0]
	found := false
	for _, u := range doc.Users {
		if u.ID == userID {
			found = true
			continue
		}
		kept = append(kept, u)
	}
	if !found {
		return models.NotFoundf("user %s not found", userID)
	}
	doc.Users = kept

	expect := doc.Version
	doc.Version++
	if err := s.saveDoc(ctx, keyUsers, expect, &doc); err != nil {
		return err
	}

	// Cascade into the current day's betting documents.
	var bets betsDoc
	if err := s.loadDoc(ctx, keyCurrentBets, &bets); err == nil {
		bets.Bets = bets.Bets.WithoutUser(userID)
		expect := bets.Version
		bets.Version++
		if err := s.saveDoc(ctx, keyCurrentBets, expect, &bets); err != nil {
			return err
		}
	}

	var bankers bankersDoc
	if err := s.loadDoc(ctx, keyCurrentBankers, &bankers); err == nil {
		if _, ok := bankers.Bankers[userID]; ok {
			delete(bankers.Bankers, userID)
			expect := bankers.Version
			bankers.Version++
			if err := s.saveDoc(ctx, keyCurrentBankers, expect, &bankers); err != nil {
				return err
			}
		}
	}

	s.log.Info("racing: user deleted", zap.String("id", userID))
	return nil
}

func (s *Store) requireUser(ctx context.Context, userID string) error {
	users, err := s.Users(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.ID == userID {
			return nil
		}
	}
	return models.NotFoundf("user %s not found", userID)
}
