// Copyright 2025 The SuggestBox Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements suggestd, a development suggestion endpoint.

suggestd loads word lists into a Patricia trie and answers prefix lookups
with the JSON body the suggestbox client consumes:

	GET /suggest?q=ber&limit=8

	{"suggestions": ["berlin", "bern"], "contextData": [{"type": "QUERY"}, {"type": "QUERY"}]}

Dictionary files are read from the data directory. Supported formats are the
chunked binary .bin files, plain "word frequency" .txt lists and .tsv files
that can also carry navigation entries (word, frequency, type, title, url,
description).

A status query param forces an HTTP status, which is useful to see how a
client deals with a degraded backend:

	GET /suggest?q=ber&status=503

# Command Line Flags

	-data string
	    Directory containing dictionary files (default from config)
	-addr string
	    Listen address (default from config)
	-config string
	    Path to a custom config file
	-d  Enable debug mode with detailed logging
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/suggestbox/internal/logger"
	"github.com/bastiangx/suggestbox/internal/utils"
	"github.com/bastiangx/suggestbox/pkg/backend"
	"github.com/bastiangx/suggestbox/pkg/config"
	"github.com/bastiangx/suggestbox/pkg/dictionary"
	"github.com/charmbracelet/log"
)

const Version = "0.3.0-beta"

// sigHandler shuts the server down on SIGINT/SIGTERM.
func sigHandler(srv *backend.Server) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		if err := srv.Shutdown(); err != nil {
			log.Errorf("Shutdown: %v", err)
			os.Exit(1)
		}
	}()
}

func main() {
	dataDir := flag.String("data", "", "Directory containing dictionary files (default from config)")
	addr := flag.String("addr", "", "Listen address (default from config)")
	configFile := flag.String("config", "", "Path to custom config file")
	debugMode := flag.Bool("d", false, "Toggle debug mode")

	flag.Parse()

	logger.Setup(os.Stderr, *debugMode)
	lg := logger.New("suggestd")

	cfg, _, err := config.LoadConfigWithPriority(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dataDir == "" {
		*dataDir = cfg.Backend.DataDir
	}
	if *addr == "" {
		*addr = cfg.Backend.Addr
	}

	pathResolver, err := utils.NewPathResolver()
	if err != nil {
		log.Fatalf("Failed to initialize path resolver: %v", err)
	}
	resolvedDataDir, err := pathResolver.GetDataDir(*dataDir)
	if err != nil {
		log.Fatalf("Failed to resolve data dir:(%v)", err)
	}
	lg.Debugf("Using data dir at: %s", resolvedDataDir)

	dict := dictionary.New()
	if err := dict.LoadDir(resolvedDataDir); err != nil {
		lg.Warnf("No dictionary loaded from %s: %v. Running with an empty dict...", resolvedDataDir, err)
	}

	completer := backend.NewCompleter(dict, backend.CompleterOptions{
		MinFrequency:      cfg.Backend.MinFreqThreshold,
		MinFrequencyShort: cfg.Backend.MinFreqShortPrefix,
		StrictInput:       cfg.Backend.StrictInput,
	})
	srv := backend.NewServer(completer, backend.Options{
		MaxLimit:     cfg.Backend.MaxLimit,
		DefaultLimit: cfg.Suggest.LimitLarge,
		MinPrefix:    cfg.Backend.MinPrefix,
		MaxPrefix:    cfg.Backend.MaxPrefix,
		AllowOrigins: cfg.Backend.AllowOrigins,
	})
	sigHandler(srv)

	showStartupInfo(lg, resolvedDataDir, dict.GetStats())

	if err := srv.Listen(*addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// showStartupInfo displays some basic info about the loaded dictionary.
func showStartupInfo(lg *log.Logger, dataDir string, stats dictionary.Stats) {
	lg.SetLevel(log.InfoLevel)
	lg.Infof("Version: %s", Version)
	lg.Infof("Process ID: [ %d ]", os.Getpid())
	lg.Infof("data dir: ( %s )", dataDir)
	lg.Info("dictionary",
		"words", utils.FormatWithCommas(stats.TotalWords),
		"navigations", utils.FormatWithCommas(stats.Navigations),
		"files", stats.LoadedFiles)
}
