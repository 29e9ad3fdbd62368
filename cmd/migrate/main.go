// Command migrate rewrites legacy documents into the normalized schema.
// Earlier versions of the pool stored bets as nested userId -> raceId -> horse
// maps and carried no version fields; this reads every known document through
// the legacy-tolerant decoder and writes it back in the flat, versioned shape.
//
//	go run ./cmd/migrate [-dry-run]
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"go.uber.org/zap"

	"github.com/padraicbc/betapi/config"
	"github.com/padraicbc/betapi/models"
	"github.com/padraicbc/betapi/storage"
)

type betsDoc struct {
	Bets    models.BetList `json:"bets"`
	Version int            `json:"version"`
}

func main() {
	dryRun := flag.Bool("dry-run", false, "report what would change without writing")
	flag.Parse()

	cfg := config.Load()
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	gw, err := storage.Setup(cfg, logger)
	if err != nil {
		log.Fatalf("storage setup: %v", err)
	}

	ctx := context.Background()

	migrated := 0
	if changed, err := migrateBets(ctx, gw, *dryRun); err != nil {
		log.Fatalf("migrate current/bets: %v", err)
	} else if changed {
		migrated++
	}

	n, err := migrateHistoricalDays(ctx, gw, *dryRun)
	if err != nil {
		log.Fatalf("migrate race days: %v", err)
	}
	migrated += n

	fmt.Printf("migrated %d document(s)\n", migrated)
}

// migrateBets normalizes the current bets document. Legacy files were either
// a bare nested map or an unversioned envelope; both round-trip through
// models.BetList into the flat shape.
func migrateBets(ctx context.Context, gw *storage.Gateway, dryRun bool) (bool, error) {
	raw, err := gw.Load(ctx, "current/bets")
	if err != nil {
		if models.IsKind(err, models.KindNotFound) {
			return false, nil
		}
		return false, err
	}

	// Distinguish the versioned envelope from the oldest shapes, where the
	// whole document was the bet collection itself (flat list or nested map).
	var doc betsDoc
	trimmed := bytes.TrimSpace(raw)
	envelope := false
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &probe); err != nil {
			return false, fmt.Errorf("unrecognized bets document: %w", err)
		}
		_, envelope = probe["bets"]
	}
	if envelope {
		if err := json.Unmarshal(raw, &doc); err != nil {
			return false, fmt.Errorf("decode bets envelope: %w", err)
		}
	} else {
		if err := json.Unmarshal(raw, &doc.Bets); err != nil {
			return false, fmt.Errorf("unrecognized bets document: %w", err)
		}
	}
	if doc.Bets == nil {
		doc.Bets = models.BetList{}
	}

	normalized, err := json.MarshalIndent(&betsDoc{Bets: doc.Bets, Version: doc.Version + 1}, "", "  ")
	if err != nil {
		return false, err
	}
	if string(normalized) == string(raw) {
		return false, nil
	}

	fmt.Printf("current/bets: %d bet(s) normalized\n", len(doc.Bets))
	if dryRun {
		return true, nil
	}
	return true, gw.Save(ctx, "current/bets", normalized)
}

func migrateHistoricalDays(ctx context.Context, gw *storage.Gateway, dryRun bool) (int, error) {
	raw, err := gw.Load(ctx, "race_days/index")
	if err != nil {
		if models.IsKind(err, models.KindNotFound) {
			return 0, nil
		}
		return 0, err
	}

	var idx models.RaceDayIndex
	if err := json.Unmarshal(raw, &idx); err != nil {
		return 0, fmt.Errorf("decode index: %w", err)
	}

	migrated := 0
	for _, entry := range idx.Days {
		if entry.Status != models.DayHistorical {
			continue
		}
		key := "race_days/" + entry.Date

		dayRaw, err := gw.Load(ctx, key)
		if err != nil {
			if models.IsKind(err, models.KindNotFound) {
				continue
			}
			return migrated, err
		}

		var day models.RaceDay
		if err := json.Unmarshal(dayRaw, &day); err != nil {
			return migrated, fmt.Errorf("decode %s: %w", key, err)
		}
		if day.Bets == nil {
			day.Bets = models.BetList{}
		}
		if day.Bankers == nil {
			day.Bankers = map[string]string{}
		}

		day.Version++
		normalized, err := json.MarshalIndent(&day, "", "  ")
		if err != nil {
			return migrated, err
		}
		if string(normalized) == string(dayRaw) {
			continue
		}

		fmt.Printf("%s: normalized (%d bets, %d bankers)\n", key, len(day.Bets), len(day.Bankers))
		migrated++
		if dryRun {
			continue
		}
		if err := gw.Save(ctx, key, normalized); err != nil {
			return migrated, err
		}
	}
	return migrated, nil
}
