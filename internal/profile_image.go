package internal

import (
	"fmt"
	"time"
)

const (
	// ProfileImageKey is the cache key of the generated profile image.
	ProfileImageKey = "profile_image"
	// ProfileImageTTL matches the 7 day cookie lifetime of the web client.
	ProfileImageTTL = 7 * 24 * time.Hour

	ConsentAccepted = "accepted"
	ConsentDeclined = "declined"
)

// ProfileImageCache caches the generated profile image, but only with cookie consent
type ProfileImageCache struct {
	cache *CacheManager
	state *StateStore
}

// NewProfileImageCache creates a profile image cache
func NewProfileImageCache(cache *CacheManager, state *StateStore) *ProfileImageCache {
	return &ProfileImageCache{cache: cache, state: state}
}

// Consent returns the stored consent decision, "" when never asked
func (p *ProfileImageCache) Consent() string {
	v, err := p.state.GetString(KeyCookieConsent)
	if err != nil {
		return ""
	}
	return v
}

// SetConsent records the consent decision. Declining drops any cached image.
func (p *ProfileImageCache) SetConsent(accepted bool) error {
	value := ConsentDeclined
	if accepted {
		value = ConsentAccepted
	}
	if err := p.state.Set(KeyCookieConsent, []byte(value)); err != nil {
		return err
	}
	if !accepted {
		return p.Invalidate()
	}
	return nil
}

// Load returns the cached image, ok=false on a miss or without consent
func (p *ProfileImageCache) Load() (data []byte, contentType string, ok bool) {
	if p.Consent() != ConsentAccepted {
		return nil, "", false
	}
	data, contentType, ok, err := p.cache.Get(ProfileImageKey)
	if err != nil {
		LogWarn("Failed to read cached profile image: %v", err)
		return nil, "", false
	}
	return data, contentType, ok
}

// Store caches a freshly generated image. It is a no-op without consent.
func (p *ProfileImageCache) Store(data []byte, contentType string) error {
	if p.Consent() != ConsentAccepted {
		LogDebug("Skipping profile image cache: no cookie consent")
		return nil
	}
	if err := p.cache.Put(ProfileImageKey, data, contentType, ProfileImageTTL); err != nil {
		return fmt.Errorf("failed to cache profile image: %w", err)
	}
	return nil
}

// Invalidate drops the cached image, e.g. after a profile picture change or logout
func (p *ProfileImageCache) Invalidate() error {
	return p.cache.Delete(ProfileImageKey)
}
