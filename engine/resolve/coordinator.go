package resolve

import (
	"context"
	"sync"
	"time"

	"github.com/jjfont/jjfont/core"
	"github.com/jjfont/jjfont/core/table"
)

// ErrNotAvailable is returned by Request if no table is available at the
// end of the wait window.
var ErrNotAvailable = core.Error(core.EMISSING, "resolution table not available")

// Resolver resolves a font and stores its table in the cache.
type Resolver interface {
	Resolve(ctx context.Context, name string) error
}

// Coordinator queues fonts for resolution and runs resolutions on a fixed
// pool of workers.
type Coordinator struct {
	cache    *table.Cache
	resolver Resolver
	claims   ClaimStore
	workers  int
	wait     time.Duration

	mx      sync.Mutex
	signals map[string]chan struct{} // closed on completion
	kick    chan struct{}
	tasks   chan string
	results chan result
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

type result struct {
	name string
	err  error
}

// Option configures a coordinator.
type Option func(*Coordinator)

// WithWorkers sets the number of workers.
func WithWorkers(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithWaitWindow sets how long Request waits for a resolution.
func WithWaitWindow(d time.Duration) Option {
	return func(c *Coordinator) {
		c.wait = d
	}
}

// WithClaimStore replaces the in-memory claim store.
func WithClaimStore(cs ClaimStore) Option {
	return func(c *Coordinator) {
		c.claims = cs
	}
}

// NewCoordinator creates a coordinator serving tables from cache and
// filling the cache with resolver. It has to be started before it runs
// any resolution.
func NewCoordinator(cache *table.Cache, resolver Resolver, opts ...Option) *Coordinator {
	c := &Coordinator{
		cache:    cache,
		resolver: resolver,
		claims:   NewMemoryClaims(),
		workers:  1,
		wait:     5 * time.Second,
		signals:  make(map[string]chan struct{}),
		kick:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.tasks = make(chan string, c.workers)
	c.results = make(chan result, c.workers)
	return c
}

// Start launches the dispatcher and the workers. They run until ctx is
// done or Stop is called.
func (c *Coordinator) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	c.mx.Lock()
	c.cancel = cancel
	c.mx.Unlock()
	tracer().Infof("starting %d resolution workers", c.workers)
	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.work(ctx)
	}
	c.wg.Add(1)
	go c.dispatch(ctx)
}

// Stop terminates the dispatcher and the workers and waits for them to
// exit. Resolutions in progress see their context cancelled.
func (c *Coordinator) Stop() {
	c.mx.Lock()
	cancel := c.cancel
	c.mx.Unlock()
	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
	tracer().Infof("resolution workers stopped")
}

func (c *Coordinator) dispatch(ctx context.Context) {
	defer c.wg.Done()
	working := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.kick:
		case res := <-c.results:
			working--
			if res.err != nil {
				tracer().Errorf("resolution of font %s failed: %v", res.name, res.err)
			}
			c.complete(res.name)
		}
		for working < c.workers {
			name, ok := c.claims.Claim()
			if !ok {
				break
			}
			tracer().Debugf("dispatching font %s", name)
			working++
			c.tasks <- name // never blocks: at most c.workers tasks are in flight
		}
	}
}

func (c *Coordinator) work(ctx context.Context) {
	defer c.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case name := <-c.tasks:
			start := time.Now()
			err := c.resolver.Resolve(ctx, name)
			tracer().Infof("font %s done in %s", name, time.Since(start).Round(time.Millisecond))
			select {
			case c.results <- result{name: name, err: err}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// complete stops tracking a font and wakes up its waiters.
func (c *Coordinator) complete(name string) {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.claims.Release(name)
	if sig, ok := c.signals[name]; ok {
		close(sig)
		delete(c.signals, name)
	}
}

// Submit queues a font for resolution, unless it is already queued or being
// resolved. The returned channel is closed when the resolution completes.
func (c *Coordinator) Submit(name string) <-chan struct{} {
	return c.submit(name, true)
}

// closed is returned for fonts which need no resolution.
var closed = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// submit queues a font. Unless force is set, a font with a table is not
// queued. Tables are stored before a resolution completes, so checking the
// cache under c.mx cannot miss a resolution finishing concurrently.
func (c *Coordinator) submit(name string, force bool) <-chan struct{} {
	c.mx.Lock()
	defer c.mx.Unlock()
	if sig, ok := c.signals[name]; ok {
		return sig
	}
	if !force && c.cache.Exists(name) {
		return closed
	}
	if !c.claims.Enqueue(name) {
		// tracked by another party sharing the claim store; nothing to wait for
		return nil
	}
	sig := make(chan struct{})
	c.signals[name] = sig
	tracer().Debugf("font %s queued for resolution", name)
	select {
	case c.kick <- struct{}{}:
	default:
	}
	return sig
}

// State returns the resolution state of a font.
func (c *Coordinator) State(name string) State {
	return c.claims.State(name)
}

// Request returns the table of a font as JSON, together with its
// modification time. If the table is not cached, the font is queued for
// resolution and Request waits for it, at most for the wait window or until
// ctx is done. If there is still no table, ErrNotAvailable is returned; the
// resolution continues in the background.
func (c *Coordinator) Request(ctx context.Context, name string) ([]byte, time.Time, error) {
	data, mtime, err := c.cache.Open(name)
	if err == nil || !core.Is(err, core.EMISSING) {
		return data, mtime, err
	}
	sig := c.submit(name, false)
	timer := time.NewTimer(c.wait)
	defer timer.Stop()
	select {
	case <-sig:
	case <-timer.C:
		tracer().Debugf("font %s not resolved within %s", name, c.wait)
	case <-ctx.Done():
	}
	data, mtime, err = c.cache.Open(name)
	if core.Is(err, core.EMISSING) {
		return nil, mtime, ErrNotAvailable
	}
	return data, mtime, err
}

// ResolveAll queues fonts for resolution and waits until all of them are
// done. It returns the names of fonts which have no table afterwards.
func (c *Coordinator) ResolveAll(ctx context.Context, names []string) ([]string, error) {
	sigs := make([]<-chan struct{}, len(names))
	for i, name := range names {
		sigs[i] = c.Submit(name)
	}
	for i, sig := range sigs {
		if sig == nil {
			continue
		}
		select {
		case <-sig:
		case <-ctx.Done():
			return nil, core.WrapError(ctx.Err(), core.EINTERNAL, "waiting for %s cancelled", names[i])
		}
	}
	var failed []string
	for _, name := range names {
		if !c.cache.Exists(name) {
			failed = append(failed, name)
		}
	}
	return failed, nil
}
