// Package topic matches MQTT topic names against topic filters (the
// wildcards `+` and `#`, and shared subscriptions `$share/<group>/...`)
// and keeps the ordered Subscription Registry the Client Facade
// consults on every inbound PUBLISH.
//
// The teacher's MemoryTrie walked a topic level-by-level through a tree
// of nodes, trading insertion order and replace-by-filter semantics for
// trie compression. The registry needs both of those, so filter storage
// here is a plain ordered slice and matching is the teacher's same
// level-by-level walk turned into a pure function over two strings.
package topic

import (
	"strings"
	"sync"
)

// Handler is invoked once per matching inbound PUBLISH, in subscription
// insertion order.
type Handler func(topicName string, payload []byte, qos uint8)

type entry struct {
	filter  string
	matcher string // filter with the $share/<group>/ prefix stripped, if any
	qos     uint8
	handler Handler
}

// Registry is the ordered set of active subscriptions. The zero value
// is not usable; construct one with NewRegistry. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries []entry
	index   map[string]int // filter -> position in entries
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Add inserts filter, replacing any existing entry with the same filter
// string (keeping the new QoS and handler but the original insertion
// position is reused so ordering stays stable). Reports whether this is
// a brand-new filter (false means an existing entry was replaced).
func (r *Registry) Add(filter string, qos uint8, handler Handler) (isNew bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := entry{filter: filter, matcher: stripShare(filter), qos: qos, handler: handler}
	if pos, ok := r.index[filter]; ok {
		r.entries[pos] = e
		return false
	}
	r.index[filter] = len(r.entries)
	r.entries = append(r.entries, e)
	return true
}

// Remove deletes the entry matching filter exactly (exact-string match,
// not topic matching). No-op if filter was never added.
func (r *Registry) Remove(filter string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pos, ok := r.index[filter]
	if !ok {
		return
	}
	delete(r.index, filter)
	r.entries = append(r.entries[:pos], r.entries[pos+1:]...)
	for f, p := range r.index {
		if p > pos {
			r.index[f] = p - 1
		}
	}
}

// Clear removes every subscription, used when the broker reports
// session-present=false after a reconnect.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
	r.index = make(map[string]int)
}

// Len reports the number of distinct topic filters currently held.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Match returns the handlers of every subscription whose filter matches
// topicName, in insertion order.
func (r *Registry) Match(topicName string) []Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var handlers []Handler
	for _, e := range r.entries {
		if FilterMatches(e.matcher, topicName) {
			handlers = append(handlers, e.handler)
		}
	}
	return handlers
}

// stripShare removes a leading "$share/<group>/" from filter, returning
// the plain filter portion that is actually matched against topics.
func stripShare(filter string) string {
	if !strings.HasPrefix(filter, "$share/") {
		return filter
	}
	rest := filter[len("$share/"):]
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		return rest[i+1:]
	}
	return rest
}

// FilterMatches reports whether topicName matches filter per MQTT 5
// wildcard rules: `+` matches exactly one level, `#` matches zero or
// more trailing levels and must be the final character (preceded by `/`
// or the entire filter), and a `$`-prefixed topic's first level is never
// matched by a wildcard in that position.
func FilterMatches(filter, topicName string) bool {
	if filter == topicName {
		return true
	}

	filterLevels := strings.Split(filter, "/")
	topicLevels := strings.Split(topicName, "/")

	dollarTopic := strings.HasPrefix(topicName, "$")

	for i, fl := range filterLevels {
		if fl == "#" {
			// must be the final filter level
			if i != len(filterLevels)-1 {
				return false
			}
			if i == 0 && dollarTopic {
				return false
			}
			return true
		}

		if i >= len(topicLevels) {
			return false
		}

		switch fl {
		case "+":
			if i == 0 && dollarTopic {
				return false
			}
		default:
			if fl != topicLevels[i] {
				return false
			}
		}
	}

	return len(filterLevels) == len(topicLevels)
}
