// ChessHub - a multiplayer chess server speaking newline-delimited JSON
// over TCP.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hailam/chesshub/internal/config"
	"github.com/hailam/chesshub/internal/history"
	"github.com/hailam/chesshub/internal/server"
	"github.com/hailam/chesshub/internal/user"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to TOML config file")
		port       = flag.Int("port", 0, "listen port (overrides config)")
		dataDir    = flag.String("data", "", "data directory (overrides config)")
	)
	flag.Parse()

	logCfg := zap.NewProductionConfig()
	logCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := logCfg.Build()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("configuration", zap.Error(err))
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Fatal("data directory", zap.Error(err))
	}

	users, err := user.NewStore(cfg.UsersPath(), logger)
	if err != nil {
		logger.Fatal("user store", zap.Error(err))
	}

	// The index is an accelerator; the server runs without it.
	index, err := history.OpenIndex(cfg.IndexDir())
	if err != nil {
		logger.Warn("history index unavailable", zap.Error(err))
		index = nil
	} else {
		defer index.Close()
	}
	hist := history.NewStore(cfg.MatchesDir(), index, logger)

	srv := server.New(cfg, users, hist, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.Error("server", zap.Error(err))
		os.Exit(1)
	}

	if index != nil {
		if games, moves, err := index.Stats(); err == nil {
			logger.Info("lifetime stats",
				zap.Int64("gamesCompleted", games), zap.Int64("movesRecorded", moves))
		}
	}
	logger.Info("shutdown complete")
}
