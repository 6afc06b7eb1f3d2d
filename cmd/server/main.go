package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/mkarimof/quizduel/pkg/api"
	"github.com/mkarimof/quizduel/pkg/clients"
	"github.com/mkarimof/quizduel/pkg/config"
	"github.com/mkarimof/quizduel/pkg/game"
	"github.com/mkarimof/quizduel/pkg/log"
	"github.com/mkarimof/quizduel/pkg/matchmaking"
	"github.com/mkarimof/quizduel/pkg/questions"
	"github.com/mkarimof/quizduel/pkg/repositories"
	"github.com/mkarimof/quizduel/pkg/servers"
	"github.com/mkarimof/quizduel/pkg/workers"
)

func main() {
	configPath := flag.String("config", "", "Path to the YAML config file")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file loaded: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx := context.Background()

	var repository repositories.Repository
	switch cfg.Database.Driver {
	case "sqlite":
		repository, err = repositories.NewSQLiteRepository(ctx, cfg.Database.DSN, cfg.Database.Migrations)
		if err != nil {
			panic(fmt.Sprintf("Failed to open sqlite repository: %v", err))
		}
	case "postgres":
		repository = repositories.NewPostgresRepository(ctx, cfg.Database.DSN, cfg.Database.Migrations)
	default:
		log.Warn("Running without a repository, nothing will be persisted")
	}
	if repository != nil {
		defer repository.Close(ctx)
	}

	source := questions.NewInMemorySource(nil)
	if repository != nil {
		stored, err := repository.ListQuestions(ctx)
		if err != nil {
			panic(fmt.Sprintf("Failed to list questions: %v", err))
		}
		for _, question := range stored {
			source.Add(question)
		}
	}
	log.Info("Question source holds %d questions", source.Len())
	if source.Len() < cfg.Game.QuestionsPerMatch {
		log.Warn("Fewer than %d questions available, no games can start", cfg.Game.QuestionsPerMatch)
	}

	registry := clients.NewRegistry()
	queue := matchmaking.NewQueue()
	store := game.NewStore()

	var saveSnapshotChan chan game.Snapshot
	if repository != nil {
		saveSnapshotChan = make(chan game.Snapshot, cfg.Game.SaveChannelSize)
	}

	manager := game.NewManager(game.NewManagerOptions{
		Registry:          registry,
		Queue:             queue,
		Store:             store,
		Questions:         source,
		QuestionsPerMatch: cfg.Game.QuestionsPerMatch,
		SaveSnapshotChan:  saveSnapshotChan,
	})

	if repository != nil {
		snapshots, err := repository.LoadActiveSessions(ctx)
		if err != nil {
			log.Error("Failed to load active sessions: %v", err)
		} else {
			manager.Restore(snapshots)
		}

		saveWorker := workers.NewSaveSessionWorker(workers.NewSaveSessionWorkerOptions{
			Repository:       repository,
			SaveSnapshotChan: saveSnapshotChan,
		})
		go saveWorker.Start(ctx)
	}

	watchdog := workers.NewWatchdogWorker(workers.NewWatchdogWorkerOptions{
		Store:      store,
		Finisher:   manager,
		Interval:   cfg.Game.WatchdogInterval.Std(),
		IdleWindow: cfg.Game.IdleWindow.Std(),
		Retention:  cfg.Game.Retention.Std(),
	})
	go watchdog.Start(ctx)

	apiServer := api.NewAPIServer(api.NewAPIServerOptions{
		Port:       cfg.Server.APIPort,
		Store:      store,
		Repository: repository,
	})
	go apiServer.Start()

	wsServer := servers.NewWSServer(servers.NewWSServerOptions{
		Registry:   registry,
		Manager:    manager,
		Repository: repository,
		Port:       cfg.Server.WSPort,
	})
	wsServer.Start(ctx)
}
