package te

import (
	"context"
	"time"

	"github.com/oroboro-sim/kernel/observability"
)

// Event types emitted by assertion verdicts, analogous to task/events.go.
const (
	EventMatch observability.EventType = "te.match"
	EventFail  observability.EventType = "te.fail"
)

// ObserveMatches returns onmatch/onfail callbacks that forward each
// concluded Trace to obs as an observability.Event tagged source, letting
// a supervisor's verdicts flow through the same pipeline task emits its
// lifecycle events on. source identifies the assertion in logs (e.g. a
// registry name).
func ObserveMatches(obs observability.Observer, source string) (onmatch MatchFunc, onfail FailFunc) {
	emit := func(et observability.EventType, level observability.Level, tr *Trace) {
		obs.OnEvent(context.Background(), observability.Event{
			Type:      et,
			Level:     level,
			Timestamp: time.Now(),
			Source:    source,
			Data: map[string]any{
				"label":       tr.Label,
				"instance_id": tr.InstanceID,
				"start_cycle": tr.StartCycle,
				"end_cycle":   tr.EndCycle,
				"sim_start":   int64(tr.StartTime),
				"sim_end":     int64(tr.EndTime),
			},
		})
	}
	onmatch = func(tr *Trace) { emit(EventMatch, observability.LevelInfo, tr) }
	onfail = func(tr *Trace) { emit(EventFail, observability.LevelWarning, tr) }
	return onmatch, onfail
}
