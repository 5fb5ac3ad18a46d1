package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/portfolio-content-api/internal/metrics"
	"github.com/rs/zerolog"
)

// ReadSlot decodes the records held in slot. An empty slot yields an empty
// slice. A slot that does not decode is cleared and also yields an empty
// slice; only backend failures are returned as errors.
func ReadSlot[T any](ctx context.Context, cache DraftCache, slot string, log zerolog.Logger) ([]T, error) {
	payload, err := cache.Get(ctx, slot)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache slot %s: %w", slot, err)
	}
	if len(payload) == 0 {
		return []T{}, nil
	}

	var records []T
	if err := json.Unmarshal(payload, &records); err != nil {
		log.Warn().Err(err).Str("slot", slot).Msg("Cache slot is corrupt, clearing")
		metrics.CacheCorrupt(slot)
		if derr := cache.Delete(ctx, slot); derr != nil {
			log.Error().Err(derr).Str("slot", slot).Msg("Failed to clear corrupt cache slot")
		}
		return []T{}, nil
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// WriteSlot replaces the contents of slot with records
func WriteSlot[T any](ctx context.Context, cache DraftCache, slot string, records []T) error {
	if records == nil {
		records = []T{}
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode cache slot %s: %w", slot, err)
	}
	if err := cache.Put(ctx, slot, payload); err != nil {
		return fmt.Errorf("failed to write cache slot %s: %w", slot, err)
	}
	return nil
}
