package frame

import (
	"context"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"voxelspace/internal/camera"
	"voxelspace/internal/logging"
	"voxelspace/internal/metrics"
)

// Renderer produces a finished frame for a pose.
type Renderer interface {
	Render(pose camera.Pose) *image.NRGBA
}

// Grounder is implemented by renderers that know the terrain height,
// letting the cache keep the camera above ground.
type Grounder interface {
	Ground(x, y float64) float64
}

// State is the preload lifecycle of a Cache.
type State int32

const (
	Idle State = iota
	Preloading
	Ready
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Preloading:
		return "preloading"
	case Ready:
		return "ready"
	}
	return "unknown"
}

// Options configures a Cache.
type Options struct {
	// Candidates are the symbols the background worker renders ahead.
	// Defaults to camera.Symbols.
	Candidates []camera.Symbol
	// Tick is the elapsed time passed to camera.Simulate.
	Tick time.Duration
	// AutoPreload restarts the background worker after every commit.
	AutoPreload bool

	Metrics *metrics.Collector
	Logger  *logging.Logger
}

// Cache holds frames for the next possible moves from the committed pose.
// Entries are valid only for the generation they were rendered against;
// every commit bumps the generation and drops them.
type Cache struct {
	r      Renderer
	ground func(x, y float64) float64
	opts   Options

	mu      sync.RWMutex
	pose    camera.Pose
	gen     uint64
	entries map[camera.Symbol]*image.NRGBA
	state   State
	cancel  context.CancelFunc
	closed  bool

	workers sync.WaitGroup
	renders atomic.Int64
}

// New creates a cache around r, committed at pose. No background work
// starts until Preload is called.
func New(r Renderer, pose camera.Pose, opts Options) *Cache {
	if len(opts.Candidates) == 0 {
		opts.Candidates = camera.Symbols
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	c := &Cache{
		r:       r,
		opts:    opts,
		entries: make(map[camera.Symbol]*image.NRGBA),
	}
	if g, ok := r.(Grounder); ok {
		c.ground = g.Ground
	}
	c.pose = camera.Clearance(pose, c.ground)
	return c
}

// GetOrRender returns the frame seen after applying sym to the committed pose.
// A cached frame is returned as is; otherwise it is rendered synchronously
// without touching the committed pose and stored if no commit happened
// meanwhile. It never waits for the background worker.
func (c *Cache) GetOrRender(sym camera.Symbol) *image.NRGBA {
	img, _ := c.getOrRender(sym)
	return img
}

// Current returns the frame for the committed pose itself.
func (c *Cache) Current() *image.NRGBA {
	return c.GetOrRender(camera.None)
}

func (c *Cache) getOrRender(sym camera.Symbol) (*image.NRGBA, camera.Pose) {
	// Fast path: read lock
	c.mu.RLock()
	pose, gen := c.pose, c.gen
	img, ok := c.entries[sym]
	c.mu.RUnlock()

	next := c.next(sym, pose)
	if ok {
		c.opts.Metrics.CacheHit()
		return img, next
	}
	c.opts.Metrics.CacheMiss()

	img = c.render(next, false)

	// Write lock with double-check
	c.mu.Lock()
	if c.gen == gen {
		if existing, ok := c.entries[sym]; ok {
			img = existing
		} else {
			c.entries[sym] = img
		}
	}
	c.mu.Unlock()

	return img, next
}

// Commit makes pose the committed camera. Cached frames were simulated from
// the old pose, so all of them are dropped and any running preload is
// cancelled; the cache goes back to Idle.
func (c *Cache) Commit(pose camera.Pose) {
	c.commit(c.clearance(pose), nil)
}

// CommitSymbol moves the committed camera by sym and returns the frame for
// the new pose, reusing the cached frame when there is one.
func (c *Cache) CommitSymbol(sym camera.Symbol) *image.NRGBA {
	img, next := c.getOrRender(sym)
	c.commit(next, img)
	return img
}

func (c *Cache) commit(pose camera.Pose, current *image.NRGBA) {
	c.mu.Lock()
	c.pose = pose
	c.gen++
	clear(c.entries)
	if current != nil {
		c.entries[camera.None] = current
	}
	c.stopLocked()
	c.mu.Unlock()

	c.opts.Metrics.Invalidated()

	if c.opts.AutoPreload {
		c.Preload()
	}
}

// Preload starts the background worker if the cache is Idle.
// It reports whether a worker was started.
func (c *Cache) Preload() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.state != Idle {
		return false
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.state = Preloading

	c.workers.Add(1)
	go c.preload(ctx, c.pose, c.gen)
	return true
}

// Cancel stops the running preload, keeping frames already cached.
func (c *Cache) Cancel() {
	c.mu.Lock()
	c.stopLocked()
	c.mu.Unlock()
}

// Wait blocks until every background worker started so far has returned.
func (c *Cache) Wait() {
	c.workers.Wait()
}

// Close cancels background work and waits for it. Safe to call twice.
func (c *Cache) Close() {
	c.mu.Lock()
	c.closed = true
	c.stopLocked()
	c.mu.Unlock()

	c.workers.Wait()
}

func (c *Cache) stopLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.state = Idle
}

// preload renders every candidate for the pose of generation gen.
// Cancellation is checked between candidates, never mid-render.
func (c *Cache) preload(ctx context.Context, pose camera.Pose, gen uint64) {
	defer c.workers.Done()

	start := time.Now()
	rendered := 0
	for _, sym := range c.opts.Candidates {
		if ctx.Err() != nil {
			c.opts.Logger.Debug("preload: cancelled after %d frames", rendered)
			return
		}

		c.mu.RLock()
		_, cached := c.entries[sym]
		stale := c.gen != gen
		c.mu.RUnlock()
		if stale {
			return
		}
		if cached {
			continue
		}

		img := c.render(c.next(sym, pose), true)
		rendered++

		c.mu.Lock()
		if c.gen != gen {
			c.mu.Unlock()
			c.opts.Logger.Debug("preload: pose changed, dropping %s", sym)
			return
		}
		if _, ok := c.entries[sym]; !ok {
			c.entries[sym] = img
		}
		c.mu.Unlock()
	}

	c.mu.Lock()
	if c.gen == gen && ctx.Err() == nil {
		// Nothing cancelled us, so c.cancel is still this worker's.
		c.cancel()
		c.cancel = nil
		c.state = Ready
	}
	c.mu.Unlock()

	c.opts.Logger.Debug("preload: %d frames in %s", rendered, time.Since(start).Round(time.Millisecond))
}

func (c *Cache) next(sym camera.Symbol, pose camera.Pose) camera.Pose {
	return c.clearance(camera.Simulate(sym, pose, c.opts.Tick))
}

func (c *Cache) clearance(p camera.Pose) camera.Pose {
	return camera.Clearance(p, c.ground)
}

func (c *Cache) render(p camera.Pose, preload bool) *image.NRGBA {
	start := time.Now()
	img := c.r.Render(p)
	c.renders.Add(1)
	c.opts.Metrics.Rendered(time.Since(start), preload)
	return img
}

// Pose returns the committed pose.
func (c *Cache) Pose() camera.Pose {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pose
}

func (c *Cache) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Len returns the number of cached frames.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Renders returns how many frames this cache has rendered in total.
func (c *Cache) Renders() int64 {
	return c.renders.Load()
}
