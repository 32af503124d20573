// Package config provides YAML configuration with layered loading for csight.
//
// Configuration precedence (lowest to highest):
//  1. Hardcoded defaults (NewConfig)
//  2. Project config (.csight.yaml in project root)
//  3. Environment variables (CSIGHT_*)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for csight.
type Config struct {
	Version    int              `yaml:"version" json:"version"`
	Query      QueryConfig      `yaml:"query" json:"query"`
	Cache      CacheConfig      `yaml:"cache" json:"cache"`
	Storage    StorageConfig    `yaml:"storage" json:"storage"`
	Embeddings EmbeddingsConfig `yaml:"embeddings" json:"embeddings"`
	LLM        LLMConfig        `yaml:"llm" json:"llm"`
	Logging    LoggingConfig    `yaml:"logging" json:"logging"`
}

// SourceConfig configures a single retrieval source.
type SourceConfig struct {
	// Enable toggles the source on or off.
	Enable bool `yaml:"enable" json:"enable"`

	// TopK is the maximum candidates requested from this source.
	TopK int `yaml:"top_k" json:"top_k"`

	// MinScore drops candidates below this native-score floor (0 disables).
	MinScore float64 `yaml:"min_score" json:"min_score"`
}

// QueryConfig configures the enhanced query engine.
type QueryConfig struct {
	// Vector, CallGraph and Dependency configure the three retrieval sources.
	Vector     SourceConfig `yaml:"vector" json:"vector"`
	CallGraph  SourceConfig `yaml:"call_graph" json:"call_graph"`
	Dependency SourceConfig `yaml:"dependency" json:"dependency"`

	// Timeout is the global retrieval deadline shared by all sources.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`

	// FinalTopK bounds the final ranked context window.
	FinalTopK int `yaml:"final_top_k" json:"final_top_k"`

	// Rerank toggles cross-source reranking. When disabled, fused results
	// are ordered by corroboration count then best native score.
	Rerank bool `yaml:"rerank" json:"rerank"`

	// CorroborationBoost is the rerank bonus per additional corroborating
	// source (default 0.15).
	CorroborationBoost float64 `yaml:"corroboration_boost" json:"corroboration_boost"`
}

// CacheConfig configures the query result cache.
type CacheConfig struct {
	Enable     bool          `yaml:"enable" json:"enable"`
	TTL        time.Duration `yaml:"ttl" json:"ttl"`
	MaxEntries int           `yaml:"max_entries" json:"max_entries"`
}

// StorageConfig configures the backing store paths.
type StorageConfig struct {
	// DataDir is the root data directory (default: .csight in project root).
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// GraphPath is the SQLite graph database path, relative to DataDir.
	GraphPath string `yaml:"graph_path" json:"graph_path"`

	// VectorPath is the vector index path, relative to DataDir.
	VectorPath string `yaml:"vector_path" json:"vector_path"`
}

// EmbeddingsConfig configures the query embedder.
type EmbeddingsConfig struct {
	// Endpoint is the Ollama-compatible embeddings endpoint.
	Endpoint string `yaml:"endpoint" json:"endpoint"`

	// Model is the embedding model name.
	Model string `yaml:"model" json:"model"`

	// Dimensions is the embedding dimension.
	Dimensions int `yaml:"dimensions" json:"dimensions"`

	// CacheSize is the number of query embeddings cached in memory.
	CacheSize int `yaml:"cache_size" json:"cache_size"`

	// Timeout bounds a single embedding call.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// LLMConfig configures the answer-generation collaborator.
type LLMConfig struct {
	Endpoint    string        `yaml:"endpoint" json:"endpoint"`
	Model       string        `yaml:"model" json:"model"`
	Temperature float64       `yaml:"temperature" json:"temperature"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level     string `yaml:"level" json:"level"`
	FilePath  string `yaml:"file_path" json:"file_path"`
	MaxSizeMB int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files" json:"max_files"`
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Query: QueryConfig{
			Vector:             SourceConfig{Enable: true, TopK: 5},
			CallGraph:          SourceConfig{Enable: true, TopK: 5},
			Dependency:         SourceConfig{Enable: true, TopK: 5},
			Timeout:            30 * time.Second,
			FinalTopK:          5,
			Rerank:             true,
			CorroborationBoost: 0.15,
		},
		Cache: CacheConfig{
			Enable:     true,
			TTL:        10 * time.Minute,
			MaxEntries: 256,
		},
		Storage: StorageConfig{
			DataDir:    ".csight",
			GraphPath:  "graph.db",
			VectorPath: "vectors.hnsw",
		},
		Embeddings: EmbeddingsConfig{
			Endpoint:   "http://localhost:11434",
			Model:      "nomic-embed-text",
			Dimensions: 768,
			CacheSize:  1000,
			Timeout:    30 * time.Second,
		},
		LLM: LLMConfig{
			Endpoint:    "http://localhost:11434",
			Model:       "qwen2.5-coder",
			Temperature: 0.1,
			Timeout:     120 * time.Second,
		},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSizeMB: 10,
			MaxFiles:  5,
		},
	}
}

// Load loads configuration from the specified project directory.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFromFile attempts to load configuration from .csight.yaml or .csight.yml.
func (c *Config) loadFromFile(dir string) error {
	yamlPath := filepath.Join(dir, ".csight.yaml")
	if _, err := os.Stat(yamlPath); err == nil {
		return c.loadYAML(yamlPath)
	}

	ymlPath := filepath.Join(dir, ".csight.yml")
	if _, err := os.Stat(ymlPath); err == nil {
		return c.loadYAML(ymlPath)
	}

	// No config file is fine - use defaults.
	return nil
}

// loadYAML loads and merges configuration from a YAML file.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies CSIGHT_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CSIGHT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Query.Timeout = d
		}
	}
	if v := os.Getenv("CSIGHT_FINAL_TOP_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Query.FinalTopK = n
		}
	}
	if v := os.Getenv("CSIGHT_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Cache.TTL = d
		}
	}
	if v := os.Getenv("CSIGHT_OLLAMA_HOST"); v != "" {
		c.Embeddings.Endpoint = v
		c.LLM.Endpoint = v
	}
	if v := os.Getenv("CSIGHT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	for _, src := range []struct {
		name string
		cfg  SourceConfig
	}{
		{"vector", c.Query.Vector},
		{"call_graph", c.Query.CallGraph},
		{"dependency", c.Query.Dependency},
	} {
		if src.cfg.Enable && src.cfg.TopK <= 0 {
			return fmt.Errorf("query.%s.top_k must be positive, got %d", src.name, src.cfg.TopK)
		}
		if src.cfg.MinScore < 0 || src.cfg.MinScore > 1 {
			return fmt.Errorf("query.%s.min_score must be in [0,1], got %g", src.name, src.cfg.MinScore)
		}
	}

	if c.Query.Timeout <= 0 {
		return fmt.Errorf("query.timeout must be positive, got %s", c.Query.Timeout)
	}
	if c.Query.FinalTopK <= 0 {
		return fmt.Errorf("query.final_top_k must be positive, got %d", c.Query.FinalTopK)
	}
	if c.Cache.Enable {
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be positive, got %s", c.Cache.TTL)
		}
		if c.Cache.MaxEntries <= 0 {
			return fmt.Errorf("cache.max_entries must be positive, got %d", c.Cache.MaxEntries)
		}
	}
	if c.Embeddings.Dimensions <= 0 {
		return fmt.Errorf("embeddings.dimensions must be positive, got %d", c.Embeddings.Dimensions)
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// GraphDBPath returns the absolute graph database path for a project root.
func (c *Config) GraphDBPath(root string) string {
	return filepath.Join(root, c.Storage.DataDir, c.Storage.GraphPath)
}

// VectorIndexPath returns the absolute vector index path for a project root.
func (c *Config) VectorIndexPath(root string) string {
	return filepath.Join(root, c.Storage.DataDir, c.Storage.VectorPath)
}

// FindProjectRoot walks up from startDir looking for a .csight data
// directory or a .git directory marking the project root.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		for _, marker := range []string{".csight", ".csight.yaml", ".git"} {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no project root found from %s", startDir)
		}
		dir = parent
	}
}
