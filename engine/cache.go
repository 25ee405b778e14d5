// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/lzkill/ir-tester/audio"
)

// convCache memoizes convolution results keyed by the pair of asset
// content identities ("irID@rev+diID@rev"). Keys embed revisions, so a
// replaced asset can never serve a stale hit; evict drops entries whose
// key mentions a removed or replaced asset to keep memory bounded.
//
// Concurrent requests for the same key join one in-flight computation
// through singleflight instead of convolving twice.
type convCache struct {
	group singleflight.Group

	mtx     sync.Mutex
	entries map[string]*audio.Buffer
}

func newConvCache() *convCache {
	return &convCache{entries: make(map[string]*audio.Buffer)}
}

func pairKey(irKey, diKey string) string {
	return irKey + "+" + diKey
}

// fetch returns the cached buffer for key, computing it via build on a
// miss. At most one build per key runs at a time; duplicate callers
// block on and share the first one's result.
func (c *convCache) fetch(key string, build func() (*audio.Buffer, error)) (*audio.Buffer, bool, error) {
	c.mtx.Lock()
	if buf, ok := c.entries[key]; ok {
		c.mtx.Unlock()
		return buf, true, nil
	}
	c.mtx.Unlock()

	v, err, shared := c.group.Do(key, func() (any, error) {
		buf, err := build()
		if err != nil {
			return nil, err
		}

		c.mtx.Lock()
		c.entries[key] = buf
		c.mtx.Unlock()

		return buf, nil
	})
	if err != nil {
		return nil, false, err
	}

	return v.(*audio.Buffer), shared, nil
}

// evict drops every entry involving the given asset key.
func (c *convCache) evict(assetKey string) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	for key := range c.entries {
		ir, di, ok := strings.Cut(key, "+")
		if ok && (ir == assetKey || di == assetKey) {
			delete(c.entries, key)
		}
	}
}

func (c *convCache) len() int {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	return len(c.entries)
}
