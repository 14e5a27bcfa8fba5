package stats

import (
	"sort"
	"time"

	"github.com/kisy/appmole/model"
	"github.com/kisy/appmole/pkg/identity"
)

// ProximityThreshold bounds the pid distance between a runtime host process
// and the helper it is merged into.
const ProximityThreshold = 1000

// AppSpeed is one application's share of a tick.
type AppSpeed struct {
	Speed float64 // Bytes/sec
	PID   int32   // representative pid
}

// Member is a helper process waiting to be attributed to its bucket's app.
type Member struct {
	Key   string
	PID   int32
	Bytes uint64
}

type entry struct {
	app   string
	pid   int32
	bytes uint64
}

// Attributor turns consecutive per-process snapshots into per-application
// speeds and running totals. It is not safe for concurrent use; the
// Aggregator serializes access.
type Attributor struct {
	prev     map[string]uint64 // process key -> cumulative bytes last tick
	prevTime time.Time
	totals   map[string]uint64 // canonical app -> bytes since reset
}

func NewAttributor() *Attributor {
	return &Attributor{
		prev:   make(map[string]uint64),
		totals: make(map[string]uint64),
	}
}

// Attribute folds one snapshot into the state and returns the speed of every
// application with a usable delta this tick.
func (a *Attributor) Attribute(samples []model.RawProcessSample, now time.Time) map[string]AppSpeed {
	current := make(map[string]entry, len(samples))
	add := func(key, app string, pid int32, bytes uint64) {
		e := current[key]
		e.app = app
		e.pid = pid
		e.bytes += bytes
		current[key] = e
	}

	var deferred []model.RawProcessSample
	buckets := make(map[string][]Member)

	for _, s := range samples {
		c := identity.Classify(s.Name)
		switch c.Kind {
		case identity.Ignore:
		case identity.DeferredRuntime:
			deferred = append(deferred, s)
		case identity.HelperMember:
			buckets[c.Name] = append(buckets[c.Name], Member{Key: s.Key, PID: s.PID, Bytes: s.TotalBytes()})
		default:
			add(s.Key, c.Name, s.PID, s.TotalBytes())
		}
	}

	for _, d := range deferred {
		app, ok := MatchDeferred(d.PID, buckets)
		if !ok {
			app = identity.RuntimeLabel
		}
		add(d.Key, app, d.PID, d.TotalBytes())
	}

	for app, members := range buckets {
		for _, m := range members {
			add(m.Key, app, m.PID, m.Bytes)
		}
	}

	speeds := make(map[string]AppSpeed)

	var dt float64
	if !a.prevTime.IsZero() {
		dt = now.Sub(a.prevTime).Seconds()
	}

	if dt > 0 {
		keys := make([]string, 0, len(current))
		for k := range current {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			e := current[k]
			last, ok := a.prev[k]
			if !ok {
				// New process: baseline only
				continue
			}
			if e.bytes < last {
				// Counter went backwards (restart or wrap): no usable delta
				continue
			}
			delta := e.bytes - last

			sp, exists := speeds[e.app]
			if !exists {
				sp.PID = e.pid
			}
			sp.Speed += float64(delta) / dt
			speeds[e.app] = sp

			if delta > 0 {
				a.totals[e.app] += delta
			}
		}
	}

	prev := make(map[string]uint64, len(current))
	for k, e := range current {
		prev[k] = e.bytes
	}
	a.prev = prev
	a.prevTime = now

	return speeds
}

// MatchDeferred picks the helper member closest in pid to a runtime host
// process. Candidates must be strictly closer than ProximityThreshold. Equal
// distances go to the lexicographically smallest app name, then to the
// earlier member.
func MatchDeferred(pid int32, buckets map[string][]Member) (string, bool) {
	apps := make([]string, 0, len(buckets))
	for app := range buckets {
		apps = append(apps, app)
	}
	sort.Strings(apps)

	var (
		best    string
		bestGap int64 = ProximityThreshold
		found   bool
	)
	for _, app := range apps {
		for _, m := range buckets[app] {
			gap := int64(pid) - int64(m.PID)
			if gap < 0 {
				gap = -gap
			}
			if gap < bestGap {
				best, bestGap, found = app, gap, true
			}
		}
	}
	return best, found
}

// Reset clears cumulative totals only; the per-process baseline is kept so
// the next tick's speeds are unaffected.
func (a *Attributor) Reset() {
	a.totals = make(map[string]uint64)
}

// Seed replaces cumulative totals, typically from a checkpoint.
func (a *Attributor) Seed(totals map[string]uint64) {
	a.totals = make(map[string]uint64, len(totals))
	for k, v := range totals {
		a.totals[k] = v
	}
}

func (a *Attributor) Total(app string) uint64 {
	return a.totals[app]
}

func (a *Attributor) Totals() map[string]uint64 {
	out := make(map[string]uint64, len(a.totals))
	for k, v := range a.totals {
		out[k] = v
	}
	return out
}

// Tracked reports how many process keys hold a baseline.
func (a *Attributor) Tracked() int {
	return len(a.prev)
}
