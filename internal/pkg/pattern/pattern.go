// Package pattern keeps a process-wide cache of compiled PCRE expressions.
package pattern

import (
	"sync"

	"go.elara.ws/pcre"
)

// Cache holds compiled expressions keyed by their source.
type Cache struct {
	compiled map[string]*pcre.Regexp
	mutex    sync.RWMutex
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		compiled: make(map[string]*pcre.Regexp),
	}
}

// Get returns the compiled expression for expr, compiling it on first use.
func (c *Cache) Get(expr string) (*pcre.Regexp, error) {
	c.mutex.RLock()
	if regex, exists := c.compiled[expr]; exists {
		c.mutex.RUnlock()
		return regex, nil
	}
	c.mutex.RUnlock()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	// Double-check pattern
	if regex, exists := c.compiled[expr]; exists {
		return regex, nil
	}

	regex, err := pcre.Compile(expr)
	if err != nil {
		return nil, err
	}
	c.compiled[expr] = regex
	return regex, nil
}

var shared = NewCache()

// Submatch returns the first capture group of expr in s. Invalid expressions
// and misses both report false.
func Submatch(expr, s string) (string, bool) {
	regex, err := shared.Get(expr)
	if err != nil {
		return "", false
	}
	matches := regex.FindStringSubmatch(s)
	if len(matches) < 2 {
		return "", false
	}
	return matches[1], true
}
