package engine

import (
	"crypto/sha256"
	"sync"
)

// contentCache remembers a digest of the content last analyzed for each file.
type contentCache struct {
	mu      sync.Mutex
	digests map[string][sha256.Size]byte
}

func newContentCache() *contentCache {
	return &contentCache{digests: make(map[string][sha256.Size]byte)}
}

// changed records src as the content of filename and reports whether it
// differs from what was recorded before.
func (c *contentCache) changed(filename string, src []byte) bool {
	sum := sha256.Sum256(src)

	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.digests[filename]; ok && prev == sum {
		return false
	}
	c.digests[filename] = sum
	return true
}

func (c *contentCache) forget(filename string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.digests, filename)
}
