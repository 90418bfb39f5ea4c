package vorgaben

import (
	"context"
	"runtime"
	"sync"

	"github.com/alnah/go-vorgaben/internal/render"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps concurrent renderers; rendering is CPU-bound and
	// gains nothing beyond the core count.
	MaxPoolSize = 16
)

// RenderedSection is the outcome of rendering one section. A failure is
// confined to its own section.
type RenderedSection struct {
	Section
	HTML string
	Err  error
}

// RendererPool bounds how many sections render at once. Renderers are
// created lazily on first acquire.
type RendererPool struct {
	size    int
	opts    []render.Option
	sem     chan *render.Renderer
	mu      sync.Mutex
	created int
	closed  bool
}

// NewRendererPool creates a pool of up to n renderers built with opts.
// The options are checked up front so a bad highlight style fails here.
func NewRendererPool(n int, opts ...render.Option) (*RendererPool, error) {
	if n < 1 {
		n = 1
	}
	first, err := render.New(opts...)
	if err != nil {
		return nil, err
	}

	p := &RendererPool{
		size:    n,
		opts:    opts,
		sem:     make(chan *render.Renderer, n),
		created: 1,
	}
	p.sem <- first
	return p, nil
}

// Acquire gets a renderer, creating one if the pool is not full yet.
// Blocks until one is released or ctx is done.
func (p *RendererPool) Acquire(ctx context.Context) (*render.Renderer, error) {
	if p.isClosed() {
		return nil, ErrPoolClosed
	}

	// Try to get an idle renderer (non-blocking)
	select {
	case r, ok := <-p.sem:
		if !ok {
			return nil, ErrPoolClosed
		}
		return r, nil
	default:
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		// Create outside the lock
		r, err := render.New(p.opts...)
		if err != nil {
			p.mu.Lock()
			p.created--
			p.mu.Unlock()
			return nil, err
		}
		return r, nil
	}
	p.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r, ok := <-p.sem:
		if !ok {
			return nil, ErrPoolClosed
		}
		return r, nil
	}
}

// Release returns a renderer to the pool. The channel holds every renderer
// ever created, so the send never blocks.
func (p *RendererPool) Release(r *render.Renderer) {
	if r == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.sem <- r
}

// Close stops handing out renderers. Waiting Acquire calls return
// ErrPoolClosed.
func (p *RendererPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.sem)
}

func (p *RendererPool) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Size returns the pool capacity.
func (p *RendererPool) Size() int {
	return p.size
}

// RenderSections renders sections concurrently, at most Size at a time.
// Results keep the input order.
func (p *RendererPool) RenderSections(ctx context.Context, sections []Section) []RenderedSection {
	results := make([]RenderedSection, len(sections))

	var wg sync.WaitGroup
	for i, s := range sections {
		results[i].Section = s
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := p.Acquire(ctx)
			if err != nil {
				results[i].Err = err
				return
			}
			defer p.Release(r)
			results[i].HTML, results[i].Err = r.Render(ctx, s.ContentType, s.Text)
		}()
	}
	wg.Wait()
	return results
}

// ResolvePoolSize determines the pool size.
// Priority: explicit workers > GOMAXPROCS (adjusted by automaxprocs in
// containers), clamped to [MinPoolSize, MaxPoolSize].
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	n := runtime.GOMAXPROCS(0)
	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
