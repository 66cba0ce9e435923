package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strings"
	"sync"

	"github.com/bnema/cart-session-cli/internal/domain"
	"github.com/bnema/cart-session-cli/internal/ports"
)

const ImagesBySKUKey = "imagesBySku"

type imageRecord struct {
	File     string `json:"file"`
	Label    string `json:"label,omitempty"`
	Position int    `json:"position"`
}

// ImageCache remembers the primary image last seen for each SKU. The mapping is loaded once
// and kept in memory; every change is persisted as a whole in the background.
type ImageCache struct {
	store      ports.KeyValueStore
	background *Background

	mu      sync.Mutex
	loaded  bool
	entries map[string]domain.MediaEntry
	version uint64

	saveMu       sync.Mutex
	savedVersion uint64
}

func NewImageCache(store ports.KeyValueStore, background *Background) *ImageCache {
	return &ImageCache{store: store, background: background}
}

// Write returns the item's primary image and records it for the item's SKU when it differs
// from the cached one. ok is false when the item has no SKU or no image.
func (c *ImageCache) Write(ctx context.Context, item domain.Item) (domain.MediaEntry, bool, error) {
	sku := strings.TrimSpace(item.SKU)
	if sku == "" {
		return domain.MediaEntry{}, false, nil
	}
	image, ok := item.PrimaryImage()
	if !ok {
		return domain.MediaEntry{}, false, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.loadLocked(ctx); err != nil {
		return image, true, err
	}
	if cached, found := c.entries[sku]; found && cached == image {
		return image, true, nil
	}

	c.entries[sku] = image
	c.version++
	encoded, err := encodeImages(c.entries)
	if err != nil {
		return image, true, err
	}
	c.saveInBackground(ctx, c.version, encoded)

	return image, true, nil
}

func (c *ImageCache) Lookup(ctx context.Context, sku string) (domain.MediaEntry, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.loadLocked(ctx); err != nil {
		return domain.MediaEntry{}, false, err
	}
	entry, ok := c.entries[strings.TrimSpace(sku)]
	return entry, ok, nil
}

func (c *ImageCache) All(ctx context.Context) (map[string]domain.MediaEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.loadLocked(ctx); err != nil {
		return nil, err
	}
	return maps.Clone(c.entries), nil
}

func (c *ImageCache) loadLocked(ctx context.Context) error {
	if c.loaded {
		return nil
	}

	raw, err := c.store.Get(ctx, ImagesBySKUKey)
	if err != nil && !errors.Is(err, domain.ErrKeyNotFound) {
		return fmt.Errorf("get %s: %w", ImagesBySKUKey, err)
	}

	entries, err := decodeImages(raw)
	if err != nil {
		return err
	}

	c.entries = entries
	c.loaded = true
	return nil
}

// saveInBackground drops snapshots older than one already written, so out-of-order tasks
// cannot roll the mapping back.
func (c *ImageCache) saveInBackground(ctx context.Context, version uint64, encoded string) {
	c.background.Go(ctx, "save image cache", func(ctx context.Context) error {
		c.saveMu.Lock()
		defer c.saveMu.Unlock()

		if version <= c.savedVersion {
			return nil
		}
		if err := c.store.Set(ctx, ImagesBySKUKey, encoded); err != nil {
			return fmt.Errorf("set %s: %w", ImagesBySKUKey, err)
		}
		c.savedVersion = version
		return nil
	})
}

func decodeImages(raw string) (map[string]domain.MediaEntry, error) {
	entries := map[string]domain.MediaEntry{}
	if strings.TrimSpace(raw) == "" {
		return entries, nil
	}

	var records map[string]imageRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", ImagesBySKUKey, err)
	}
	for sku, record := range records {
		entries[sku] = domain.MediaEntry{File: record.File, Label: record.Label, Position: record.Position}
	}

	return entries, nil
}

func encodeImages(entries map[string]domain.MediaEntry) (string, error) {
	records := make(map[string]imageRecord, len(entries))
	for sku, entry := range entries {
		records[sku] = imageRecord{File: entry.File, Label: entry.Label, Position: entry.Position}
	}

	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", ImagesBySKUKey, err)
	}
	return string(data), nil
}
