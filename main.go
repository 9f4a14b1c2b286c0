package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"VisitsBackfill/config"
	"VisitsBackfill/credentials"
	"VisitsBackfill/jobs"
	"VisitsBackfill/migrations"
	"VisitsBackfill/store"
)

var (
	openStore     = newStore
	waitForSignal = waitForInterrupt
	exit          = os.Exit
)

func main() {
	exit(run())
}

/*
* Load config and open the store, both fatal on failure
* Run the backfill once
* With a schedule, keep re-running it until interrupted
 */
func run() int {
	cfg, err := config.Load()
	if err != nil {
		log.Println("Error in loading the config:", err)
		return 1
	}

	ctx := context.Background()
	s, err := openStore(ctx, cfg)
	if err != nil {
		log.Println("Error while opening the store:", err)
		return 1
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.Println("Error while closing the store:", err)
		}
	}()

	migration := migrations.NewVisitAdminIdMigration(s, cfg.VisitsCollection, cfg.UsersCollection)
	if _, err := migration.Run(ctx); err != nil {
		return 1
	}
	migration.Logger.Println("✓ Migration complete!")
	if cfg.Schedule == "" {
		return 0
	}

	c, err := jobs.StartBackfillScheduler(cfg.Schedule, func() {
		if _, err := migration.Run(ctx); err != nil {
			log.Println("Scheduled backfill failed:", err)
		}
	})
	if err != nil {
		return 1
	}
	log.Println("Backfill scheduled with", cfg.Schedule)
	waitForSignal()
	<-c.Stop().Done()
	return 0
}

func newStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
	defer cancel()

	if cfg.Backend == config.BackendMongo {
		return store.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	}

	res, err := credentials.Resolve(credentials.DefaultStrategies(cfg.ProjectID)...)
	if err != nil {
		return nil, err
	}
	if res.Path != "" {
		log.Println("✓ Using service account:", res.Path)
	} else {
		log.Println("ℹ Using Application Default Credentials")
	}
	return store.NewFirestoreStore(ctx, cfg.ProjectID, res.Options...)
}

func waitForInterrupt() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
}
