package salesactivity

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

// Guard rejects an invocation while another one for the same contact and
// note is still running. Entries expire after the window even if never
// released, so a crashed invocation cannot block a contact forever.
type Guard struct {
	inflight *cache.Cache
	window   time.Duration
}

// NewGuard creates a Guard whose entries expire after window.
func NewGuard(window time.Duration) *Guard {
	return &Guard{
		inflight: cache.New(window, window),
		window:   window,
	}
}

// Acquire claims the (contact, note) pair. It returns false if the pair is
// already claimed; otherwise the returned func releases the claim.
func (g *Guard) Acquire(contactID ID, note string) (release func(), ok bool) {
	key := guardKey(contactID, note)
	if err := g.inflight.Add(key, struct{}{}, g.window); err != nil {
		return nil, false
	}
	return func() { g.inflight.Delete(key) }, true
}

// InFlight returns the number of claims currently held.
func (g *Guard) InFlight() int {
	return g.inflight.ItemCount()
}

func guardKey(contactID ID, note string) string {
	return fmt.Sprintf("%d\x00%s", contactID, note)
}
