// Package dedupe tracks keys that were already handled during one pass.
package dedupe

import (
	"container/list"
	"sync"
)

// Deduper records seen keys so each is handled at most once.
type Deduper interface {
	// SeenAndRecord reports whether key was seen before and records it if not.
	SeenAndRecord(key string) bool

	// Unrecord forgets key so that a later SeenAndRecord treats it as new.
	Unrecord(key string)

	Size() int64
}

// inMemoryDeduper keeps keys in a map. In bounded mode insertion order is
// kept in a list and the oldest key is evicted first.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List
	maxSize int
}

// New creates an unbounded deduper unless WithMaxSize says otherwise.
func New(opts ...Option) Deduper {
	d := &inMemoryDeduper{}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]*list.Element)
	if d.maxSize > 0 {
		d.order = list.New()
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}
	if d.order == nil {
		d.seen[key] = nil
		return false
	}
	if d.order.Len() >= d.maxSize {
		if oldest := d.order.Front(); oldest != nil {
			delete(d.seen, d.order.Remove(oldest).(string))
		}
	}
	d.seen[key] = d.order.PushBack(key)
	return false
}

func (d *inMemoryDeduper) Unrecord(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	el, ok := d.seen[key]
	if !ok {
		return
	}
	delete(d.seen, key)
	if el != nil {
		d.order.Remove(el)
	}
}

func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
