package bot

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xaenox/aura/internal/models"
)

type pendingRequest struct {
	req     models.Request
	created time.Time
}

// pendingRequests holds requests awaiting a Confirm/Cancel tap. Each id can be
// taken once; entries older than ttl are dropped.
type pendingRequests struct {
	mu    sync.Mutex
	items map[string]pendingRequest
	ttl   time.Duration
	now   func() time.Time
}

func newPendingRequests(ttl time.Duration) *pendingRequests {
	return &pendingRequests{
		items: make(map[string]pendingRequest),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (p *pendingRequests) put(req models.Request) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	for id, item := range p.items {
		if now.Sub(item.created) > p.ttl {
			delete(p.items, id)
		}
	}

	// callback data is limited to 64 bytes, a uuid plus prefix fits
	id := uuid.NewString()
	p.items[id] = pendingRequest{req: req, created: now}
	return id
}

func (p *pendingRequests) take(id string) (models.Request, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	item, ok := p.items[id]
	if !ok {
		return models.Request{}, false
	}
	delete(p.items, id)
	if p.now().Sub(item.created) > p.ttl {
		return models.Request{}, false
	}
	return item.req, true
}
