package husk

import "github.com/TheBitDrifter/table"

// Config holds global, package-level configuration for the table and
// world systems, kept as a singleton in the teacher's own style.
var Config config = config{}

type config struct {
	tableEvents table.TableEvents
	worldEvents WorldEvents
}

// SetTableEvents configures the dependency-level table event callbacks
// (on-resize, on-transfer) every archetype built via newArchetype shares.
func (c *config) SetTableEvents(te table.TableEvents) {
	c.tableEvents = te
}

// SetWorldEvents configures the husk-level hooks a caller can observe
// structural events through: OnMerge fires after every (*World).merge
// that did real work; OnReentrantProgress fires on a re-entrant Progress
// call, just before that call returns ReentrantProgressError, for callers
// that want a log line in addition to the error.
func (c *config) SetWorldEvents(we WorldEvents) {
	c.worldEvents = we
}

// WorldEvents are optional hooks into world-level lifecycle events,
// mirroring table.TableEvents' shape at the husk level rather than the
// table level.
type WorldEvents struct {
	OnMerge             func(w *World)
	OnReentrantProgress func(w *World)
}
