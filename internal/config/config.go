package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	DefaultListenAddr = "127.0.0.1:50061"
	DefaultDataDir    = ".vectorlog"
	DefaultLogName    = "main"
	DefaultLogLevel   = "info"
)

// Peer represents a peer participant reachable over the network.
type Peer struct {
	ID   string `yaml:"id"`
	Addr string `yaml:"addr"`
}

// Config holds the node configuration.
type Config struct {
	ParticipantID string `yaml:"participant_id"`
	ListenAddr    string `yaml:"listen_addr"`
	DataDir       string `yaml:"data_dir"`
	LogName       string `yaml:"log_name"`
	LogLevel      string `yaml:"log_level"`
	Peers         []Peer `yaml:"peers"`
}

// Default returns a configuration with every optional field filled in.
func Default() *Config {
	return &Config{
		ListenAddr: DefaultListenAddr,
		DataDir:    DefaultDataDir,
		LogName:    DefaultLogName,
		LogLevel:   DefaultLogLevel,
	}
}

// Load reads a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the configuration can run a node.
func (c *Config) Validate() error {
	if c.ParticipantID == "" {
		return errors.New("participant_id is required")
	}
	if c.ListenAddr == "" {
		return errors.New("listen_addr is required")
	}
	if c.LogName == "" {
		return errors.New("log_name is required")
	}
	seen := make(map[string]bool)
	for _, p := range c.Peers {
		if p.ID == "" || p.Addr == "" {
			return fmt.Errorf("peer ID and address cannot be empty: %s=%s", p.ID, p.Addr)
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate peer %s", p.ID)
		}
		seen[p.ID] = true
	}
	if _, err := c.ZerologLevel(); err != nil {
		return err
	}
	return nil
}

// Peer returns the peer with the given ID.
func (c *Config) Peer(id string) (Peer, bool) {
	for _, p := range c.Peers {
		if p.ID == id {
			return p, true
		}
	}
	return Peer{}, false
}

// ZerologLevel maps LogLevel onto a zerolog level. "none" disables logging.
func (c *Config) ZerologLevel() (zerolog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "", "info":
		return zerolog.InfoLevel, nil
	case "none":
		return zerolog.Disabled, nil
	default:
		lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
		if err != nil {
			return zerolog.NoLevel, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
		}
		return lvl, nil
	}
}

// ParsePeers parses a comma-separated list of peers in the format:
// "id1=addr1,id2=addr2,id3=addr3"
func ParsePeers(peersStr string) ([]Peer, error) {
	if peersStr == "" {
		return []Peer{}, nil
	}

	parts := strings.Split(peersStr, ",")
	peers := make([]Peer, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("invalid peer format: %s (expected id=addr)", part)
		}

		id := strings.TrimSpace(kv[0])
		addr := strings.TrimSpace(kv[1])

		if id == "" || addr == "" {
			return nil, fmt.Errorf("peer ID and address cannot be empty: %s", part)
		}

		peers = append(peers, Peer{
			ID:   id,
			Addr: addr,
		})
	}

	return peers, nil
}
