package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/reelkeep/reelkeep/internal/catalog"
	"github.com/reelkeep/reelkeep/internal/config"
	"github.com/reelkeep/reelkeep/internal/identity"
	"github.com/reelkeep/reelkeep/internal/log"
	"github.com/reelkeep/reelkeep/internal/service"
	"github.com/reelkeep/reelkeep/internal/store"
	"github.com/reelkeep/reelkeep/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.Parse()

	if showVersion {
		fmt.Printf("reelkeep %s\n", Version)
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := log.SetupLogger(cfg.Logging.File, cfg.Logging.Level)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting reelkeep", "version", Version)

	if !cfg.IsConfigured() {
		if err := runSetupFlow(cfg, logger); err != nil {
			return err
		}
	}

	recordStore, err := store.NewRecordStore(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open record store: %w", err)
	}

	timeout := time.Duration(cfg.Catalog.TimeoutSeconds) * time.Second
	catalogClient := catalog.NewClient(cfg.Catalog.APIKey, cfg.Catalog.BaseURL, timeout)
	identityProvider := identity.NewProvider(cfg.Storage.DataDir)

	app := service.NewApp(recordStore, catalogClient, identityProvider, logger, timeout)
	defer app.Close()

	model := tui.NewModel(app)

	p := tea.NewProgram(model, tea.WithAltScreen())

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// runSetupFlow prompts for the OMDb API key on first run.
func runSetupFlow(cfg *config.Config, logger *slog.Logger) error {
	fmt.Println()
	fmt.Println("Welcome to reelkeep!")
	fmt.Println()
	fmt.Println("An OMDb API key is required (free at https://www.omdbapi.com/apikey.aspx).")
	fmt.Print("Enter your API key: ")

	keyBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read API key: %w", err)
	}

	key := strings.TrimSpace(string(keyBytes))
	if key == "" {
		return fmt.Errorf("no API key provided")
	}

	if err := config.SaveAPIKey(key); err != nil {
		return fmt.Errorf("failed to save API key: %w", err)
	}

	cfg.Catalog.APIKey = key
	logger.Info("saved catalog API key")
	fmt.Println("API key saved.")
	fmt.Println()
	return nil
}
