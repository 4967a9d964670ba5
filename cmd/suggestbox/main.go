// Copyright 2025 The SuggestBox Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the SuggestBox client: a terminal search box with
live, cancellable, cached suggestions.

Note: This is a BETA release. APIs and functionality may rapidly change.

Every keystroke is debounced and handed to a suggestion store. The store
cancels whatever request is still in flight, serves repeated queries from
its cache and fetches the rest from a JSON suggestion endpoint such as the
one started by suggestd.

# Usage

Open the search box against the default endpoint:

	suggestbox

Use a different endpoint and enable debug logging to stderr:

	suggestbox -endpoint https://suggest.example.com/v1 -d

Serve canned results without any network:

	suggestbox -mock true
	suggestbox -mock admarketplace

# Modes

The default mode is the interactive search box. -c switches to a line based
CLI that reads one query per line and is handy for scripting. -ipc speaks
MessagePack over stdin/stdout for editor and launcher integrations; see the
server package for the protocol.

# Configuration

Runtime configuration lives in a TOML file, created with defaults when
missing:

	[client]
	endpoint = "http://127.0.0.1:7474/suggest"
	timeout_ms = 0

	[suggest]
	debounce_ms = 150
	breakpoint = "large"
	limit_large = 8

-save writes the -endpoint, -debounce and -mock values back to that file.

# Command Line Flags

	-config string
	    Path to a custom config file
	-endpoint string
	    Suggestion endpoint URL (default from config)
	-debounce int
	    Debounce delay in ms (default from config)
	-mock string
	    Mock mode: true or admarketplace
	-d  Enable debug mode with detailed logging
	-c  Run the line based CLI instead of the search box
	-ipc
	    Serve MessagePack IPC on stdin/stdout
	-save
	    Persist flag overrides to the config file
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/suggestbox/internal/cli"
	"github.com/bastiangx/suggestbox/internal/logger"
	"github.com/bastiangx/suggestbox/internal/tui"
	"github.com/bastiangx/suggestbox/pkg/config"
	"github.com/bastiangx/suggestbox/pkg/server"
	"github.com/bastiangx/suggestbox/pkg/suggest"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.3.0-beta"
	AppName = "suggestbox"
	gh      = "https://github.com/bastiangx/suggestbox"
)

// sigHandler cancels ctx on SIGINT/SIGTERM and exits if that is not enough.
func sigHandler(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		cancel()
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main only wires config, store and the chosen front end together.
func main() {
	showVersion := flag.Bool("version", false, "Show current version")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	configFile := flag.String("config", "", "Path to custom config file")
	endpoint := flag.String("endpoint", "", "Suggestion endpoint URL (default from config)")
	debounce := flag.Int("debounce", -1, "Debounce delay in ms (default from config)")
	mock := flag.String("mock", "", "Serve fixtures instead of fetching: true or admarketplace")
	cliMode := flag.Bool("c", false, "Run line based CLI -- useful for testing and debugging")
	ipcMode := flag.Bool("ipc", false, "Serve MessagePack IPC on stdin/stdout")
	save := flag.Bool("save", false, "Persist -endpoint, -debounce and -mock to the config file")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logger.Setup(os.Stderr, *debugMode)

	cfg, configPath, err := config.LoadConfigWithPriority(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(configPath))

	if *save {
		if configPath == "" {
			log.Fatal("No config file to save to")
		}
		if err := cfg.Update(configPath, optString(*endpoint), optInt(*debounce), optString(*mock)); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}
		log.Infof("Saved config to %s", configPath)
	}
	applyOverrides(cfg, *endpoint, *debounce, *mock)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := suggest.NewHTTPFetcher(cfg.FetcherOptions())
	store := suggest.NewStore(fetcher, suggest.WithQueryParam(cfg.Client.QueryParam))
	params := cfg.ParamOptions()

	switch {
	case *ipcMode:
		sigHandler(cancel)
		log.Debug("spawning IPC")
		srv := server.NewServer(store, cfg.Client.Endpoint, params, os.Stdin, os.Stdout)
		if err := srv.Start(ctx); err != nil {
			log.Fatalf("IPC server error: %v", err)
		}

	case *cliMode:
		sigHandler(cancel)
		input := cli.NewInputHandler(store, cfg.Client.Endpoint, params, cfg.CLI.ShowContext, os.Stdin, os.Stdout)
		if err := input.Start(ctx); err != nil {
			log.Fatalf("CLI error: %v", err)
		}

	default:
		model := tui.New(ctx, store, tui.Options{
			Endpoint:    cfg.Client.Endpoint,
			Params:      params,
			Debounce:    cfg.Suggest.Debounce(),
			MaxRows:     cfg.CLI.MaxRows,
			ShowContext: cfg.CLI.ShowContext,
			Beacon:      fetcher.Beacon,
		})
		final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
		if err != nil {
			log.Fatalf("Search box error: %v", err)
		}
		if m, ok := final.(tui.Model); ok {
			if sel := m.Chosen(); sel != nil {
				printSelection(sel)
			}
		}
	}
}

// applyOverrides lays flag values over the loaded config.
func applyOverrides(cfg *config.Config, endpoint string, debounceMs int, mock string) {
	if endpoint != "" {
		cfg.Client.Endpoint = endpoint
	}
	if debounceMs >= 0 {
		cfg.Suggest.DebounceMs = debounceMs
		cfg.Suggest.ExperimentalDebounce = false
	}
	if mock != "" {
		cfg.Suggest.Mocked = mock
	}
}

func optString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func optInt(v int) *int {
	if v < 0 {
		return nil
	}
	return &v
}

// printSelection writes the accepted entry to stdout for shell pipelines.
func printSelection(sel *suggest.Selection) {
	switch {
	case sel.AI != nil:
		fmt.Println(sel.AI.URL)
	case sel.Context != nil && sel.Context.URL != "":
		fmt.Println(sel.Context.URL)
	default:
		fmt.Println(sel.Text)
	}
}

func printVersion() {
	l := logger.NewWithConfig(os.Stderr, "", log.InfoLevel, false, false, log.TextFormatter)

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	l.SetStyles(styles)

	l.Print("")
	l.Print("[ SuggestBox ] Live search suggestions in your terminal")
	l.Print("", "version", Version)
	l.Print("")
	l.Print("use -h or --help to see available options")
	l.Print("Github Repo", "gh", gh)
}
