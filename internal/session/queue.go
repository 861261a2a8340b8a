package session

import "sync"

// matchQueue is the FIFO of identities awaiting a random pairing. Pop-and-pair
// runs under one lock so two concurrent enqueues can never pair with the same
// opponent.
type matchQueue struct {
	mu  sync.Mutex
	ids []string
}

// popOther removes the requester if queued, prunes identities whose
// connections died, and pops the earliest remaining identity. When none is
// left the requester is appended and ok is false.
func (that *matchQueue) popOther(requester string, isLive func(string) bool) (string, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	live := that.ids[:0]
	for _, id := range that.ids {
		if id != requester && isLive(id) {
			live = append(live, id)
		}
	}
	that.ids = live

	if len(that.ids) > 0 {
		other := that.ids[0]
		that.ids = append([]string(nil), that.ids[1:]...)
		return other, true
	}

	that.ids = append(that.ids, requester)
	return "", false
}

func (that *matchQueue) remove(id string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	kept := that.ids[:0]
	for _, queued := range that.ids {
		if queued != id {
			kept = append(kept, queued)
		}
	}
	that.ids = kept
}

func (that *matchQueue) contains(id string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	for _, queued := range that.ids {
		if queued == id {
			return true
		}
	}
	return false
}
