// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lzkill/ir-tester/audio"
)

func cacheBuffer(t *testing.T) *audio.Buffer {
	t.Helper()

	buf, err := audio.NewBuffer([]float64{1, 0, 0, 0}, 48000, 1)
	if err != nil {
		t.Fatalf("NewBuffer() error = %v", err)
	}

	return buf
}

func TestConvCache_FetchMemoizes(t *testing.T) {
	t.Parallel()

	c := newConvCache()
	buf := cacheBuffer(t)
	builds := 0

	got, cached, err := c.fetch("1@1+2@1", func() (*audio.Buffer, error) {
		builds++
		return buf, nil
	})
	if err != nil {
		t.Fatalf("fetch() error = %v", err)
	}
	if got != buf {
		t.Error("fetch() returned a different buffer")
	}

	got, cached, err = c.fetch("1@1+2@1", func() (*audio.Buffer, error) {
		builds++
		return nil, errors.New("must not run")
	})
	if err != nil {
		t.Fatalf("second fetch() error = %v", err)
	}
	if !cached {
		t.Error("second fetch() cached = false, want true")
	}
	if got != buf {
		t.Error("second fetch() returned a different buffer")
	}
	if builds != 1 {
		t.Errorf("builds = %d, want 1", builds)
	}
}

func TestConvCache_BuildErrorNotCached(t *testing.T) {
	t.Parallel()

	c := newConvCache()
	boom := errors.New("decode blew up")

	_, _, err := c.fetch("k", func() (*audio.Buffer, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("fetch() error = %v, want %v", err, boom)
	}
	if c.len() != 0 {
		t.Errorf("len() = %d, want 0 after failed build", c.len())
	}

	// The failure must not poison the key.
	buf := cacheBuffer(t)
	got, _, err := c.fetch("k", func() (*audio.Buffer, error) { return buf, nil })
	if err != nil || got != buf {
		t.Errorf("retry fetch() = %v, %v", got, err)
	}
}

func TestConvCache_ConcurrentFetchRunsOneBuild(t *testing.T) {
	t.Parallel()

	c := newConvCache()
	buf := cacheBuffer(t)

	var builds atomic.Int32
	var wg sync.WaitGroup

	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()

			got, _, err := c.fetch("shared", func() (*audio.Buffer, error) {
				builds.Add(1)
				time.Sleep(20 * time.Millisecond)
				return buf, nil
			})
			if err != nil {
				t.Errorf("fetch() error = %v", err)
			}
			if got != buf {
				t.Error("fetch() returned a different buffer")
			}
		}()
	}
	wg.Wait()

	if n := builds.Load(); n != 1 {
		t.Errorf("builds = %d, want 1", n)
	}
}

func TestConvCache_EvictMatchesEitherSide(t *testing.T) {
	t.Parallel()

	c := newConvCache()
	buf := cacheBuffer(t)
	build := func() (*audio.Buffer, error) { return buf, nil }

	c.fetch(pairKey("1@1", "9@1"), build)
	c.fetch(pairKey("2@1", "9@1"), build)
	c.fetch(pairKey("1@1", "8@1"), build)

	c.evict("9@1") // DI side: drops two entries
	if c.len() != 1 {
		t.Fatalf("len() = %d after DI evict, want 1", c.len())
	}

	c.evict("1@1") // IR side: drops the rest
	if c.len() != 0 {
		t.Errorf("len() = %d after IR evict, want 0", c.len())
	}
}

func TestConvCache_EvictIgnoresRevisionMismatch(t *testing.T) {
	t.Parallel()

	c := newConvCache()
	buf := cacheBuffer(t)

	c.fetch(pairKey("1@2", "9@1"), func() (*audio.Buffer, error) { return buf, nil })

	c.evict("1@1") // older revision of the same asset
	if c.len() != 1 {
		t.Errorf("len() = %d, want 1; keys are revision-exact", c.len())
	}
}
