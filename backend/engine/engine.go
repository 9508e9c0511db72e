// Package engine is the entitlement and progress core: who may see which
// content, how a purchase turns into an entitlement, and how per-lesson
// completion is tracked. It holds no state of its own; everything durable
// lives behind the store interfaces it is constructed with.
package engine

import (
	"log"

	"kitlab/backend/store"
)

// Engine bundles the four components over one store.
type Engine struct {
	Resolver *Resolver
	Filter   *Filter
	Granter  *Granter
	Tracker  *Tracker
}

func New(s store.Store, notifier Notifier, logger *log.Logger) *Engine {
	resolver := NewResolver(s)
	return &Engine{
		Resolver: resolver,
		Filter:   NewFilter(resolver, s, s),
		Granter:  NewGranter(s, s, notifier, logger),
		Tracker:  NewTracker(s, s, resolver, s, s),
	}
}
