package vectorindex

import (
	"fmt"

	"go.uber.org/zap"
)

// Config selects and configures an Index implementation.
type Config struct {
	// Provider selects the backend: "chromem" (embedded, default) or
	// "qdrant" (external server over gRPC).
	Provider string

	Chromem ChromemConfig
	Qdrant  QdrantConfig
}

// New creates an Index based on the configured provider.
//
// The chromem provider is embedded and needs no external services, which
// makes it the default. The qdrant provider requires a running Qdrant
// server and is intended for deployments that share one index across
// replicas.
func New(cfg Config, embedder Embedder, logger *zap.Logger) (Index, error) {
	switch cfg.Provider {
	case "chromem", "":
		return NewChromemIndex(cfg.Chromem, embedder, logger)
	case "qdrant":
		return NewQdrantIndex(cfg.Qdrant, logger)
	default:
		return nil, fmt.Errorf("%w: unsupported vector index provider: %s (supported: chromem, qdrant)",
			ErrInvalidConfig, cfg.Provider)
	}
}
