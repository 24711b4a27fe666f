// Command vlnode serves a causal log over gRPC.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"vectorlog/internal/config"
	"vectorlog/internal/node"
	"vectorlog/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "YAML config file")
	participant := flag.String("id", "", "participant ID (overrides config)")
	listen := flag.String("listen", "", "listen address (overrides config)")
	dataDir := flag.String("data", "", "data directory (overrides config)")
	peers := flag.String("peers", "", "comma-separated peers id=addr (overrides config)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			zlog.Fatal().Err(err).Msg("failed to load config")
		}
		cfg = loaded
	}
	if *participant != "" {
		cfg.ParticipantID = *participant
	}
	if *listen != "" {
		cfg.ListenAddr = *listen
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *peers != "" {
		parsed, err := config.ParsePeers(*peers)
		if err != nil {
			zlog.Fatal().Err(err).Msg("invalid peers")
		}
		cfg.Peers = parsed
	}

	// Prepare zerolog
	zerolog.TimeFieldFormat = time.RFC3339Nano
	level, err := cfg.ZerologLevel()
	if err != nil {
		zlog.Fatal().Err(err).Msg("invalid log level")
	}
	zerolog.SetGlobalLevel(level)
	zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	store, err := storage.NewFileStore(cfg.DataDir)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to open store")
	}

	n, err := node.NewNode(cfg, store, zlog.Logger)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to create node")
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		n.Stop()
	}()

	zlog.Info().Str("participant", cfg.ParticipantID).Int("peers", len(cfg.Peers)).Msg("node configured")
	if err := n.Start(); err != nil {
		zlog.Fatal().Err(err).Msg("node stopped")
	}
}
