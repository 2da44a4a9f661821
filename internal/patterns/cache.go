package patterns

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache memoizes compiled pattern libraries, keyed by document content.
// It exists for embedders that resolve the library per request (the CLI
// compiles once and does not need it). Safe for concurrent use.
type Cache struct {
	cache *gocache.Cache
}

// NewCache creates a compiled-library cache with the given default TTL and
// cleanup interval.
func NewCache(defaultTTL, cleanupInterval time.Duration) *Cache {
	return &Cache{cache: gocache.New(defaultTTL, cleanupInterval)}
}

// Load reads, parses and compiles the library at path, reusing a previously
// compiled config when the file content is unchanged. The returned Compiled
// is shared; callers must treat it as read-only.
func (c *Cache) Load(path string) (*Compiled, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	key := cacheKey(data)
	if v, found := c.cache.Get(key); found {
		return v.(*Compiled), nil
	}

	lib, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	compiled, err := Compile(lib)
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, compiled, gocache.DefaultExpiration)
	return compiled, nil
}

// Flush drops all cached configs
func (c *Cache) Flush() {
	c.cache.Flush()
}

func cacheKey(data []byte) string {
	hash := sha256.Sum256(data)
	return "hedgewatch:v1:" + hex.EncodeToString(hash[:])
}
