// Command addplayer registers a new player directly against the document
// store, for bootstrapping a pool before the admin UI is up.
//
//	go run ./cmd/addplayer -name "Alice"
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"go.uber.org/zap"

	"github.com/padraicbc/betapi/config"
	"github.com/padraicbc/betapi/racing"
	"github.com/padraicbc/betapi/storage"
)

func main() {
	name := flag.String("name", "", "player name")
	flag.Parse()

	if *name == "" {
		log.Fatal("usage: addplayer -name <name>")
	}

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
	store := racing.NewStore(gw, logger)
	if err := store.Init(ctx); err != nil {
		log.Fatalf("store init: %v", err)
	}

	user, err := store.AddUser(ctx, *name)
	if err != nil {
		log.Fatalf("add player: %v", err)
	}

	fmt.Printf("added player %q with id %s\n", user.Name, user.ID)
}
