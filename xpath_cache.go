package xpquery

import (
	"sync"

	"github.com/golang/groupcache/lru"
)

// expressionCache memoizes compiled token trees keyed by source text, so
// re-parsing the same expression string (common in a hot evaluation loop
// that runs the same XPath query against many context nodes) is a cache
// hit rather than a fresh tokenize+parse. Grounded verbatim on the
// teacher's getCachedExpression/setCachedExpression (xpath.go:381-415),
// which also backs its cache with groupcache/lru.
type expressionCache struct {
	mu    sync.Mutex
	cache *lru.Cache
}

// newExpressionCache builds a cache holding up to maxEntries compiled
// token trees.
func newExpressionCache(maxEntries int) *expressionCache {
	return &expressionCache{cache: lru.New(maxEntries)}
}

func (c *expressionCache) get(source string) (*Token, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.cache.Get(lru.Key(source))
	if !ok {
		return nil, false
	}
	return v.(*Token), true
}

func (c *expressionCache) set(source string, root *Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Add(lru.Key(source), root)
}

// CachingParser wraps a Parser with an expression cache: Parse returns a
// shared, already-compiled token tree for a source string it has seen
// before instead of re-tokenizing and re-parsing it. A cached tree is
// immutable once built (spec.md §4.F: token trees carry no per-evaluation
// mutable state), so sharing it across calls is safe.
type CachingParser struct {
	*Parser
	cache *expressionCache
}

// NewCachingParser wraps parser with an LRU cache of the given capacity.
func NewCachingParser(parser *Parser, capacity int) *CachingParser {
	return &CachingParser{Parser: parser, cache: newExpressionCache(capacity)}
}

// Parse returns source's compiled token tree, parsing and caching it on
// first use.
func (c *CachingParser) Parse(source string) (*Token, error) {
	if root, ok := c.cache.get(source); ok {
		return root, nil
	}
	root, err := c.Parser.Parse(source)
	if err != nil {
		return nil, err
	}
	c.cache.set(source, root)
	return root, nil
}
