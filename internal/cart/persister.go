package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/thedivyam/noon-sde3/pkg/kv"
)

const writeTimeout = 5 * time.Second

var errPersisterClosed = errors.New("cart persister closed")

// persister writes cart snapshots in the background. Only the newest pending
// snapshot is kept, so a burst of mutations costs one write and the last
// mutation always wins.
type persister struct {
	store   kv.Store
	key     string
	onError func(error)

	mu      sync.Mutex
	pending string
	version uint64
	written uint64
	wrote   chan struct{}
	closed  bool

	kick      chan struct{}
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

func newPersister(store kv.Store, key string, onError func(error)) *persister {
	p := &persister{
		store:   store,
		key:     key,
		onError: onError,
		wrote:   make(chan struct{}),
		kick:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *persister) schedule(snapshot string) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.onError(errPersisterClosed)
		return
	}
	p.pending = snapshot
	p.version++
	p.mu.Unlock()

	select {
	case p.kick <- struct{}{}:
	default:
	}
}

func (p *persister) run() {
	defer close(p.stopped)
	for {
		select {
		case <-p.kick:
			p.drain()
		case <-p.done:
			p.drain()
			return
		}
	}
}

func (p *persister) drain() {
	for {
		p.mu.Lock()
		if p.written == p.version {
			p.mu.Unlock()
			return
		}
		snapshot, version := p.pending, p.version
		p.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := p.store.Set(ctx, p.key, snapshot)
		cancel()
		if err != nil {
			p.onError(err)
		}

		p.mu.Lock()
		p.written = version
		close(p.wrote)
		p.wrote = make(chan struct{})
		p.mu.Unlock()
	}
}

// flush waits until every snapshot scheduled before the call has been written
// (or has failed).
func (p *persister) flush(ctx context.Context) error {
	p.mu.Lock()
	target := p.version
	p.mu.Unlock()

	for {
		p.mu.Lock()
		if p.written >= target {
			p.mu.Unlock()
			return nil
		}
		wait := p.wrote
		p.mu.Unlock()

		select {
		case <-wait:
		case <-p.stopped:
			p.mu.Lock()
			done := p.written >= target
			p.mu.Unlock()
			if done {
				return nil
			}
			return errPersisterClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (p *persister) close(ctx context.Context) error {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()
		close(p.done)
	})
	select {
	case <-p.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
