package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gigchain/config"
	"gigchain/core"
	"gigchain/core/genesis"
	"gigchain/crypto"
	"gigchain/observability/logging"
	"gigchain/rpc"
	"gigchain/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.Setup("gigd", cfg.Env, cfg.LogFile)

	db, err := openDatabase(cfg)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	platform, err := crypto.DecodeAddress(cfg.PlatformAddress)
	if err != nil {
		logger.Error("invalid platform address", "error", err)
		os.Exit(1)
	}
	arbiter, err := crypto.DecodeAddress(cfg.ArbiterAddress)
	if err != nil {
		logger.Error("invalid arbiter address", "error", err)
		os.Exit(1)
	}

	node, err := core.NewNode(db, platform.Array(), arbiter.Array())
	if err != nil {
		logger.Error("failed to initialise node", "error", err)
		os.Exit(1)
	}

	if cfg.GenesisFile != "" {
		entries, err := genesis.LoadFile(cfg.GenesisFile)
		if err != nil {
			logger.Error("failed to load genesis allocation", "error", err)
			os.Exit(1)
		}
		if err := node.ApplyGenesis(entries); err != nil {
			logger.Error("failed to apply genesis allocation", "error", err)
			os.Exit(1)
		}
		logger.Info("genesis allocation applied", "entries", len(entries))
	}

	if cfg.BlockIntervalSeconds > 0 {
		go tickHeight(node, logger, time.Duration(cfg.BlockIntervalSeconds)*time.Second)
	}

	logger.Info("node ready",
		"network", cfg.NetworkName,
		"height", node.CurrentHeight(),
		"rpc", cfg.RPCAddress,
	)
	server := rpc.NewServer(node)
	if err := server.Start(cfg.RPCAddress); err != nil {
		logger.Error("rpc server stopped", "error", err)
		os.Exit(1)
	}
}

// tickHeight advances the block height counter on a fixed interval. Deployments
// that drive time externally leave BlockIntervalSeconds at zero and call the
// gig_advanceHeight RPC instead.
func tickHeight(node *core.Node, logger *slog.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		if _, err := node.AdvanceHeight(); err != nil {
			logger.Error("failed to advance height", "error", err)
		}
	}
}

func openDatabase(cfg *config.Config) (storage.Database, error) {
	switch cfg.Database {
	case "memory":
		return storage.NewMemDB(), nil
	case "bolt":
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, err
		}
		return storage.NewBoltDB(filepath.Join(cfg.DataDir, "gigchain.db"))
	default:
		return storage.NewLevelDB(filepath.Join(cfg.DataDir, "leveldb"))
	}
}
