// Package config provides configuration loading for intentd.
//
// Configuration is loaded from a YAML file, overridden by environment
// variables, with hardcoded defaults underneath.
package config

import (
	"fmt"
	"time"

	"github.com/fyrsmithlabs/intentd/internal/logging"
)

// Config holds the complete intentd configuration.
type Config struct {
	Classifier  ClassifierConfig  `koanf:"classifier"`
	Embeddings  EmbeddingsConfig  `koanf:"embeddings"`
	VectorIndex VectorIndexConfig `koanf:"vectorindex"`
	Dataset     DatasetConfig     `koanf:"dataset"`
	Server      ServerConfig      `koanf:"server"`
	Logging     logging.Config    `koanf:"logging"`
}

// ClassifierConfig holds the pipeline and fusion constants.
type ClassifierConfig struct {
	// K is the semantic neighbor count.
	K int `koanf:"k"`

	// BatchSize is texts per embedding call during training.
	BatchSize int `koanf:"batch_size"`

	// Workers is concurrent embedding batches during training.
	Workers int `koanf:"workers"`

	// PatternConfidence is the fixed confidence of pattern matches.
	PatternConfidence float64 `koanf:"pattern_confidence"`

	// SemanticThreshold is the minimum top-1 similarity for the semantic
	// vote (inclusive).
	SemanticThreshold float64 `koanf:"semantic_threshold"`

	// Boost scales agreement-based semantic confidence boosting.
	Boost float64 `koanf:"boost"`

	// KeywordThreshold is the minimum TF-IDF similarity for the keyword
	// fallback.
	KeywordThreshold float64 `koanf:"keyword_threshold"`

	// KeywordMarginWeight shapes keyword confidence by best-vs-runner-up
	// margin.
	KeywordMarginWeight float64 `koanf:"keyword_margin_weight"`

	// DefaultConfidence is the fixed confidence of the fallback default.
	DefaultConfidence float64 `koanf:"default_confidence"`
}

// EmbeddingsConfig selects the embedding provider.
type EmbeddingsConfig struct {
	// Provider: "fastembed" (local ONNX, default) or "tei".
	Provider string `koanf:"provider"`

	// Model is the embedding model name.
	Model string `koanf:"model"`

	// BaseURL is the TEI server URL (tei provider only).
	BaseURL string `koanf:"base_url"`

	// CacheDir caches downloaded model files (fastembed provider only).
	CacheDir string `koanf:"cache_dir"`
}

// VectorIndexConfig selects the ANN index provider.
type VectorIndexConfig struct {
	// Provider: "chromem" (embedded, default) or "qdrant".
	Provider string `koanf:"provider"`

	Chromem ChromemConfig `koanf:"chromem"`
	Qdrant  QdrantConfig  `koanf:"qdrant"`
}

// ChromemConfig holds the embedded index settings.
type ChromemConfig struct {
	Path       string `koanf:"path"`
	Compress   bool   `koanf:"compress"`
	Collection string `koanf:"collection"`
}

// QdrantConfig holds the external Qdrant settings.
type QdrantConfig struct {
	Host       string `koanf:"host"`
	Port       int    `koanf:"port"`
	Collection string `koanf:"collection"`
	UseTLS     bool   `koanf:"use_tls"`
}

// DatasetConfig holds the CSV dataset paths.
type DatasetConfig struct {
	Training string `koanf:"training"`
	Eval     string `koanf:"eval"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// applyDefaults fills unset fields with production defaults. Fusion constants
// are left at zero here; the fusion package owns those defaults.
func applyDefaults(cfg *Config) {
	if cfg.Classifier.K == 0 {
		cfg.Classifier.K = 5
	}
	if cfg.Classifier.BatchSize == 0 {
		cfg.Classifier.BatchSize = 64
	}
	if cfg.Classifier.Workers == 0 {
		cfg.Classifier.Workers = 4
	}
	if cfg.Embeddings.Provider == "" {
		cfg.Embeddings.Provider = "fastembed"
	}
	if cfg.Embeddings.Model == "" {
		cfg.Embeddings.Model = "intfloat/multilingual-e5-large"
	}
	if cfg.VectorIndex.Provider == "" {
		cfg.VectorIndex.Provider = "chromem"
	}
	if cfg.VectorIndex.Chromem.Collection == "" {
		cfg.VectorIndex.Chromem.Collection = "intentd_training"
	}
	if cfg.VectorIndex.Qdrant.Host == "" {
		cfg.VectorIndex.Qdrant.Host = "localhost"
	}
	if cfg.VectorIndex.Qdrant.Port == 0 {
		cfg.VectorIndex.Qdrant.Port = 6334
	}
	if cfg.VectorIndex.Qdrant.Collection == "" {
		cfg.VectorIndex.Qdrant.Collection = "intentd_training"
	}
	if cfg.Dataset.Training == "" {
		cfg.Dataset.Training = "data/train.csv"
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8700
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Fields == nil {
		cfg.Logging.Fields = map[string]string{"service": "intentd"}
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Embeddings.Provider {
	case "fastembed", "tei":
	default:
		return fmt.Errorf("embeddings.provider must be 'fastembed' or 'tei', got %q", c.Embeddings.Provider)
	}
	if c.Embeddings.Provider == "tei" && c.Embeddings.BaseURL == "" {
		return fmt.Errorf("embeddings.base_url required for the tei provider")
	}

	switch c.VectorIndex.Provider {
	case "chromem", "qdrant":
	default:
		return fmt.Errorf("vectorindex.provider must be 'chromem' or 'qdrant', got %q", c.VectorIndex.Provider)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	if c.Classifier.K < 1 {
		return fmt.Errorf("classifier.k must be at least 1, got %d", c.Classifier.K)
	}

	return c.Logging.Validate()
}
