package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"mdmserver/internal/domain/material"
	"mdmserver/matching"
)

// indexCache кэш индексов корпусов по хэшу содержимого.
// Повторный поиск по тому же корпусу не переобучает словарь.
type indexCache struct {
	mu      sync.RWMutex
	entries map[string]*cachedIndex
	maxSize int
}

type cachedIndex struct {
	index    *matching.Index
	lastUsed time.Time
}

func newIndexCache(maxSize int) *indexCache {
	return &indexCache{
		entries: make(map[string]*cachedIndex),
		maxSize: maxSize,
	}
}

// getOrBuild возвращает индекс из кэша или строит новый
func (c *indexCache) getOrBuild(corpus []material.Record, build func() (*matching.Index, error)) (*matching.Index, bool, error) {
	if c.maxSize == 0 {
		idx, err := build()
		return idx, false, err
	}

	key := corpusKey(corpus)

	c.mu.Lock()
	if entry, ok := c.entries[key]; ok {
		entry.lastUsed = time.Now()
		c.mu.Unlock()
		return entry.index, true, nil
	}
	c.mu.Unlock()

	idx, err := build()
	if err != nil {
		return nil, false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}
	c.entries[key] = &cachedIndex{index: idx, lastUsed: time.Now()}
	return idx, false, nil
}

func (c *indexCache) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for key, entry := range c.entries {
		if oldestKey == "" || entry.lastUsed.Before(oldest) {
			oldestKey, oldest = key, entry.lastUsed
		}
	}
	delete(c.entries, oldestKey)
}

func (c *indexCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// corpusKey хэш полей, влияющих на индекс. Порядок записей не важен,
// так как индекс упорядочивает их по ID сам.
func corpusKey(corpus []material.Record) string {
	sorted := make([]material.Record, len(corpus))
	copy(sorted, corpus)
	sortByID(sorted)

	h := sha256.New()
	for _, r := range sorted {
		for _, v := range []string{r.ID, r.Name, r.Spec, r.Manufacturer, r.Unit, r.Category} {
			h.Write([]byte(v))
			h.Write([]byte{0x1f})
		}
		h.Write([]byte{0x1e})
	}
	return hex.EncodeToString(h.Sum(nil))
}
