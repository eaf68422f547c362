package ftracez

import (
	"crypto/rand"
	"encoding/hex"
	"sync"

	"github.com/zoobzio/clockz"
)

// idPool maintains a pool of pre-generated span ids to amortize
// crypto/rand overhead on the span-creation path.
type idPool struct {
	ids    chan SpanID
	stopCh chan struct{}
	clock  clockz.Clock
	mu     sync.Mutex
	closed bool
}

// newIDPool creates an id pool with the specified capacity and starts its
// background refill goroutine.
func newIDPool(capacity int, clock clockz.Clock) *idPool {
	pool := &idPool{
		ids:    make(chan SpanID, capacity),
		stopCh: make(chan struct{}),
		clock:  clock,
	}
	go pool.refill()
	return pool
}

// get retrieves an id from the pool, generating one directly if the pool
// is empty (fallback for burst load).
func (p *idPool) get() SpanID {
	select {
	case id := <-p.ids:
		return id
	default:
		return p.generate()
	}
}

// generate produces one 8-byte random hex id.
func (p *idPool) generate() SpanID {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to a time-based id if crypto/rand fails.
		return hex.EncodeToString([]byte(p.clock.Now().Format("15:04:05.000000")))
	}
	return hex.EncodeToString(bytes)
}

// refill keeps the pool topped up in the background.
func (p *idPool) refill() {
	for {
		select {
		case <-p.stopCh:
			return
		case p.ids <- p.generate():
			// Successfully added an id to the pool.
		}
	}
}

// close shuts down the refill goroutine.
func (p *idPool) close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.closed {
		close(p.stopCh)
		p.closed = true
	}
}
