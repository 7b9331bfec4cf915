package postprocessors

import (
	"github.com/custodia-labs/passel/internal/core/domain"
	"github.com/custodia-labs/passel/internal/core/ports/driven"
	"github.com/custodia-labs/passel/internal/postprocessors/preprocess"
	"github.com/custodia-labs/passel/internal/postprocessors/segmenter"
	"github.com/custodia-labs/passel/internal/postprocessors/validity"
)

// DefaultChain is the processor order used by a selection run.
var DefaultChain = []string{"segmenter", "validity", "preprocess"}

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register("segmenter", buildSegmenter)
	r.Register("validity", func(_ map[string]any) (driven.PostProcessor, error) {
		return validity.New(), nil
	})
	r.Register("preprocess", func(_ map[string]any) (driven.PostProcessor, error) {
		return preprocess.New(), nil
	})
}

// SegmenterConfig returns the generic segmenter config for a run.
func SegmenterConfig(cfg domain.PipelineConfig, encoder segmenter.Encoder) map[string]any {
	m := map[string]any{
		"method":     string(cfg.SplitMethod),
		"max_length": cfg.PassageMaxLength,
		"overlap":    cfg.PassageOverlap,
	}
	if encoder != nil {
		m["encoder"] = encoder
	}
	return m
}

// buildSegmenter creates a segmenter from generic config.
// Supported config keys:
//   - method (string): tokens, sentences or semantic (default: tokens)
//   - max_length (int): Window size (default: 512)
//   - overlap (int): Units carried between windows (default: 50)
//   - threshold (float): Semantic boundary similarity (default: 0.5)
//   - encoder (segmenter.Encoder): Required by the semantic method
func buildSegmenter(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []segmenter.Option

	if cfg != nil {
		if method, ok := cfg["method"].(string); ok && method != "" {
			opts = append(opts, segmenter.WithMethod(domain.SplitMethod(method)))
		}
		if size := getIntFromConfig(cfg, "max_length"); size > 0 {
			opts = append(opts, segmenter.WithMaxLength(size))
		}
		if _, ok := cfg["overlap"]; ok {
			opts = append(opts, segmenter.WithOverlap(getIntFromConfig(cfg, "overlap")))
		}
		if threshold, ok := cfg["threshold"].(float64); ok {
			opts = append(opts, segmenter.WithThreshold(threshold))
		}
		if encoder, ok := cfg["encoder"].(segmenter.Encoder); ok {
			opts = append(opts, segmenter.WithEncoder(encoder))
		}
	}

	return segmenter.New(opts...)
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
