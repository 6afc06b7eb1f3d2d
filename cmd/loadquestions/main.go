package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/mkarimof/quizduel/pkg/config"
	"github.com/mkarimof/quizduel/pkg/log"
	"github.com/mkarimof/quizduel/pkg/questions"
	"github.com/mkarimof/quizduel/pkg/repositories"
)

// loadquestions imports question JSON files into the repository. Each
// file holds an array of {text, category, options[4]} objects, the first
// option being the correct one.
func main() {
	configPath := flag.String("config", "", "Path to the YAML config file")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: loadquestions [-config path] file.json [file.json ...]")
		os.Exit(1)
	}

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
		panic("loadquestions requires a configured database driver")
	}
	defer repository.Close(ctx)

	loaded, err := questions.LoadFromFiles(flag.Args())
	if err != nil {
		panic(fmt.Sprintf("Failed to load question files: %v", err))
	}

	inserted, err := repository.InsertQuestions(ctx, loaded)
	if err != nil {
		panic(fmt.Sprintf("Failed to insert questions: %v", err))
	}

	log.Info("Imported %d questions", len(inserted))
}
