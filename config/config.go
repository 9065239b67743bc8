package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"certledger/crypto"
)

// Config carries the static wiring of a certificate ledger instance. The
// super admin is fixed here rather than in contract storage; rotating it
// means redeploying, which is intentional.
type Config struct {
	DataDir    string `toml:"DataDir"`
	InMemory   bool   `toml:"InMemory"`
	Namespace  string `toml:"Namespace"`
	SuperAdmin string `toml:"SuperAdmin"`
}

// Load loads the configuration from the given path, creating a default file
// when none exists.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults(path)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults(path string) {
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = filepath.Join(filepath.Dir(path), "certledger-data")
	}
	if strings.TrimSpace(c.Namespace) == "" {
		c.Namespace = "cert/"
	}
}

// Validate checks the loaded values without touching the filesystem.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.SuperAdmin) == "" {
		return fmt.Errorf("config: SuperAdmin is required")
	}
	if _, err := c.SuperAdminAddress(); err != nil {
		return err
	}
	return nil
}

// SuperAdminAddress decodes the configured bech32 super-admin address into
// its raw 20-byte form.
func (c *Config) SuperAdminAddress() ([20]byte, error) {
	var out [20]byte
	addr, err := crypto.DecodeAddress(strings.TrimSpace(c.SuperAdmin))
	if err != nil {
		return out, fmt.Errorf("config: SuperAdmin: %w", err)
	}
	copy(out[:], addr.Bytes())
	return out, nil
}

func createDefault(path string) (*Config, error) {
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		SuperAdmin: key.PubKey().Address().String(),
	}
	cfg.applyDefaults(path)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
