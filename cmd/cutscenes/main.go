package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/cutscenes/internal/catalog"
	"github.com/jask/cutscenes/internal/config"
	"github.com/jask/cutscenes/internal/database"
	"github.com/jask/cutscenes/internal/database/repository"
	"github.com/jask/cutscenes/internal/drawer"
	"github.com/jask/cutscenes/internal/prefs"
	"github.com/jask/cutscenes/internal/service"
	"github.com/jask/cutscenes/internal/tui"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// the TUI owns the terminal, so everything logged goes to a file
	if err := os.MkdirAll(filepath.Dir(cfg.Log.Path), 0o755); err != nil {
		log.Fatalf("mkdir log dir: %v", err)
	}
	logFile, err := tea.LogToFile(cfg.Log.Path, "cutscenes")
	if err != nil {
		log.Fatalf("log: %v", err)
	}
	defer logFile.Close()
	if cfg.Log.Debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
	logger := log.Default()

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}
	registry := drawer.NewRegistry()
	if err := registry.Validate(cat.Specs()); err != nil {
		log.Fatalf("catalog: %v", err)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db, cfg.Database.Migrations); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	version, dirty, err := database.SchemaVersion(db, cfg.Database.Migrations)
	if err != nil {
		log.Fatalf("schema version: %v", err)
	}
	if dirty {
		log.Fatalf("schema version %d is dirty; fix the database before starting", version)
	}
	logger.Printf("database %s at schema version %d", cfg.Database.Path, version)
	if err := database.SeedDefaults(ctx, db, cat); err != nil {
		log.Fatalf("seed defaults: %v", err)
	}

	state, err := prefs.Load()
	if err != nil {
		logger.Printf("warn: ignoring saved state: %v", err)
	}

	repo := repository.NewCutsceneRepo(db)
	session := service.NewSession(repo, cat)
	session.Logger = logger

	app := tui.New(ctx, tui.Options{
		Config:       cfg,
		Session:      session,
		Repo:         repo,
		Maintenance:  &service.MaintenanceService{DB: db},
		Catalog:      cat,
		Registry:     registry,
		Logger:       logger,
		LastCutscene: state.LastCutscene,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
}
