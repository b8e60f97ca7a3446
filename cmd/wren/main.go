package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wrenchat/wren/internal/app"
	"github.com/wrenchat/wren/internal/cli"
	"github.com/wrenchat/wren/internal/config"
	"github.com/wrenchat/wren/internal/ui"
	"github.com/wrenchat/wren/pkg/logger"
)

const version = "wren v1.0.0"

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	args, err := parseFlags(cfg, os.Args[1:])
	if err != nil {
		return err
	}
	logger.SetLevel(cfg.LogLevel)

	if len(args) > 0 {
		switch args[0] {
		case "login":
			return cli.LoginCommand(cfg)
		case "logout":
			return cli.LogoutCommand(cfg)
		case "whoami":
			return cli.WhoamiCommand(cfg)
		case "help", "--help", "-h":
			printUsage()
			return nil
		case "version", "--version", "-v":
			fmt.Println(version)
			return nil
		default:
			return fmt.Errorf("unknown command %q (try `wren help`)", args[0])
		}
	}

	return runChat(cfg)
}

// runChat starts the interactive chat surface. The logger is redirected to a
// file while the TUI owns the terminal.
func runChat(cfg *config.Config) error {
	logFile, err := os.OpenFile(filepath.Join(cfg.WrenHome, "wren.log"),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	logger.SetOutput(logFile)

	bridge := ui.NewBridge()
	a := app.New(cfg, bridge)
	defer a.Close()

	// Session transitions drive the login form visibility.
	a.Tokens.OnChange(func(token string) {
		bridge.NotifyAuth(token != "")
	})

	program := tea.NewProgram(ui.NewChat(a, bridge), tea.WithAltScreen())
	bridge.Attach(program)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("chat surface failed: %w", err)
	}
	return nil
}

func parseFlags(cfg *config.Config, args []string) ([]string, error) {
	fs := flag.NewFlagSet("wren", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	serverURL := fs.String("server", "", "Chat server URL")
	debug := fs.Bool("debug", false, "Enable debug logging")
	showHelp := fs.Bool("help", false, "Show help")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *showHelp {
		printUsage()
		os.Exit(0)
	}

	if *serverURL != "" {
		cfg.ServerURL = *serverURL
	}
	if *debug {
		cfg.Debug = true
		if cfg.LogLevel > logger.LevelDebug {
			cfg.LogLevel = logger.LevelDebug
		}
	}

	return fs.Args(), nil
}

func printUsage() {
	fmt.Println(`wren - terminal chat client with live sync

Usage:
  wren           Open the chat surface
  wren login     Log in (or register) and save an access token
  wren logout    Discard the saved access token
  wren whoami    Show the saved session state
  wren help      Show this help message
  wren version   Show version information

Environment Variables:
  WREN_SERVER_URL     Server URL (default: http://localhost:5000)
  WREN_HOME_DIR       Config directory (default: ~/.wren)
  WREN_POLL_INTERVAL  Poll cadence for users and messages (default: 10s)
  WREN_PING_INTERVAL  Presence ping cadence (default: 30s)
  WREN_LOG_LEVEL      Log threshold (trace|debug|info|warn|error)
  DEBUG               Enable debug logging (true/1)

Flags:
  --server   Chat server URL
  --debug    Enable debug logging

Examples:
  # Chat against a local server
  wren

  # Chat against a remote server
  WREN_SERVER_URL=https://chat.example.com wren`)
}
