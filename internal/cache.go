package internal

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const cacheVersion = "1.0"

// CacheManager keeps binary blobs (generated images) on disk with a YAML index
type CacheManager struct {
	cacheDir string
	now      func() time.Time
}

// CacheMetadata stores metadata about the cache
type CacheMetadata struct {
	CacheVersion string    `yaml:"cache_version"`
	CreatedAt    time.Time `yaml:"created_at"`
	UpdatedAt    time.Time `yaml:"updated_at"`
}

// CacheIndexEntry describes one cached blob
type CacheIndexEntry struct {
	Key         string    `yaml:"key"`
	File        string    `yaml:"file"`
	ContentType string    `yaml:"content_type,omitempty"`
	Size        int       `yaml:"size"`
	CreatedAt   time.Time `yaml:"created_at"`
	ExpiresAt   time.Time `yaml:"expires_at,omitempty"`
}

// CacheIndex represents the YAML index of all cached blobs
type CacheIndex struct {
	Entries  []CacheIndexEntry `yaml:"entries"`
	Metadata CacheMetadata     `yaml:"metadata"`
}

// NewCacheManager creates a new cache manager
func NewCacheManager(cacheDir string) *CacheManager {
	return &CacheManager{
		cacheDir: cacheDir,
		now:      time.Now,
	}
}

// EnsureCacheDir ensures the cache directory exists
func (cm *CacheManager) EnsureCacheDir() error {
	return os.MkdirAll(cm.cacheDir, 0755)
}

// GetCacheDir returns the cache directory path
func (cm *CacheManager) GetCacheDir() string {
	return cm.cacheDir
}

// GetIndexPath returns the path to the cache index YAML file
func (cm *CacheManager) GetIndexPath() string {
	return filepath.Join(cm.cacheDir, "index.yaml")
}

// GetBlobPath returns the path of the blob stored for key
func (cm *CacheManager) GetBlobPath(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(cm.cacheDir, "blob_"+hex.EncodeToString(sum[:8]))
}

// LoadIndex loads the cache index; a missing index is an empty one
func (cm *CacheManager) LoadIndex() (*CacheIndex, error) {
	data, err := os.ReadFile(cm.GetIndexPath())
	if errors.Is(err, os.ErrNotExist) {
		now := cm.now()
		return &CacheIndex{Metadata: CacheMetadata{CacheVersion: cacheVersion, CreatedAt: now, UpdatedAt: now}}, nil
	}
	if err != nil {
		return nil, err
	}

	var index CacheIndex
	if err := yaml.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to unmarshal index: %w", err)
	}
	return &index, nil
}

// SaveIndex saves the cache index
func (cm *CacheManager) SaveIndex(index *CacheIndex) error {
	if err := cm.EnsureCacheDir(); err != nil {
		return err
	}

	index.Metadata.UpdatedAt = cm.now()
	data, err := yaml.Marshal(index)
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}

	return os.WriteFile(cm.GetIndexPath(), data, 0644)
}

// Put stores data under key, expiring after ttl when ttl > 0
func (cm *CacheManager) Put(key string, data []byte, contentType string, ttl time.Duration) error {
	index, err := cm.LoadIndex()
	if err != nil {
		return err
	}

	path := cm.GetBlobPath(key)
	if err := cm.EnsureCacheDir(); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache blob: %w", err)
	}

	now := cm.now()
	entry := CacheIndexEntry{
		Key:         key,
		File:        filepath.Base(path),
		ContentType: contentType,
		Size:        len(data),
		CreatedAt:   now,
	}
	if ttl > 0 {
		entry.ExpiresAt = now.Add(ttl)
	}

	found := false
	for i := range index.Entries {
		if index.Entries[i].Key == key {
			index.Entries[i] = entry
			found = true
			break
		}
	}
	if !found {
		index.Entries = append(index.Entries, entry)
	}

	return cm.SaveIndex(index)
}

// Get returns the blob stored under key. ok is false on a miss or an expired entry.
func (cm *CacheManager) Get(key string) (data []byte, contentType string, ok bool, err error) {
	index, err := cm.LoadIndex()
	if err != nil {
		return nil, "", false, err
	}

	for _, entry := range index.Entries {
		if entry.Key != key {
			continue
		}
		if !entry.ExpiresAt.IsZero() && !cm.now().Before(entry.ExpiresAt) {
			LogDebug("Cache entry %s expired at %s", key, entry.ExpiresAt.Format(time.RFC3339))
			return nil, "", false, cm.Delete(key)
		}
		data, err := os.ReadFile(filepath.Join(cm.cacheDir, entry.File))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, "", false, cm.Delete(key)
			}
			return nil, "", false, err
		}
		return data, entry.ContentType, true, nil
	}

	return nil, "", false, nil
}

// Delete removes key from the index and its blob from disk
func (cm *CacheManager) Delete(key string) error {
	index, err := cm.LoadIndex()
	if err != nil {
		return err
	}

	kept := index.Entries[:0]
	for _, entry := range index.Entries {
		if entry.Key == key {
			_ = os.Remove(filepath.Join(cm.cacheDir, entry.File))
			continue
		}
		kept = append(kept, entry)
	}
	index.Entries = kept

	return cm.SaveIndex(index)
}

// ClearCache removes every blob and the index
func (cm *CacheManager) ClearCache() error {
	index, err := cm.LoadIndex()
	if err == nil {
		for _, entry := range index.Entries {
			_ = os.Remove(filepath.Join(cm.cacheDir, entry.File))
		}
	}

	if err := os.Remove(cm.GetIndexPath()); err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}
