package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"gigchain/crypto"
)

// Config carries the deployment settings of a gigd node.
type Config struct {
	RPCAddress           string `toml:"RPCAddress"`
	DataDir              string `toml:"DataDir"`
	Database             string `toml:"Database"`
	GenesisFile          string `toml:"GenesisFile"`
	LogFile              string `toml:"LogFile"`
	Env                  string `toml:"Env"`
	NetworkName          string `toml:"NetworkName"`
	PlatformAddress      string `toml:"PlatformAddress"`
	ArbiterAddress       string `toml:"ArbiterAddress"`
	BlockIntervalSeconds int    `toml:"BlockIntervalSeconds"`
}

// Load loads the configuration from the given path, writing a commented
// default file when none exists yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, cfg.Validate()
}

// Validate checks the fields that cannot fall back to a sane default.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.PlatformAddress) == "" {
		return fmt.Errorf("config: PlatformAddress is required")
	}
	if _, err := crypto.DecodeAddress(c.PlatformAddress); err != nil {
		return fmt.Errorf("config: invalid PlatformAddress: %w", err)
	}
	if strings.TrimSpace(c.ArbiterAddress) == "" {
		return fmt.Errorf("config: ArbiterAddress is required")
	}
	if _, err := crypto.DecodeAddress(c.ArbiterAddress); err != nil {
		return fmt.Errorf("config: invalid ArbiterAddress: %w", err)
	}
	switch c.Database {
	case "leveldb", "bolt", "memory":
	default:
		return fmt.Errorf("config: Database must be leveldb, bolt or memory")
	}
	if c.BlockIntervalSeconds < 0 {
		return fmt.Errorf("config: BlockIntervalSeconds must not be negative")
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = "127.0.0.1:8545"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./data"
	}
	if strings.TrimSpace(cfg.Database) == "" {
		cfg.Database = "leveldb"
	}
	if strings.TrimSpace(cfg.NetworkName) == "" {
		cfg.NetworkName = "gig-local"
	}
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{}
	applyDefaults(cfg)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	if _, err := file.WriteString(defaultFileHeader); err != nil {
		return nil, err
	}
	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

const defaultFileHeader = `# gigd configuration.
# PlatformAddress and ArbiterAddress must be set before the node will start.
`
