package monitor

import (
	"context"
	"time"
)

// Counters are cumulative interface byte counters.
type Counters struct {
	RxBytes uint64
	TxBytes uint64
}

// AllInterfaces names the sum over every non-loopback interface.
const AllInterfaces = "all"

// CounterReader reads system-wide interface counters.
type CounterReader interface {
	Read(ctx context.Context) (Counters, error)
	Interface() string
}

type Bandwidth struct {
	Upload   uint64
	Download uint64
}

// Meter converts successive Counters into speed and running totals.
// It is not safe for concurrent use.
type Meter struct {
	last     Counters
	lastTime time.Time
	seen     bool

	speed Bandwidth // Bytes/sec
	total Bandwidth
}

func NewMeter() *Meter {
	return &Meter{}
}

// Update applies a new reading. The first reading only sets the baseline,
// and a counter that went backwards contributes nothing.
func (m *Meter) Update(c Counters, now time.Time) Bandwidth {
	if !m.seen {
		m.seen = true
		m.last = c
		m.lastTime = now
		m.speed = Bandwidth{}
		return m.speed
	}

	dt := now.Sub(m.lastTime).Seconds()
	up := safeDelta(c.TxBytes, m.last.TxBytes)
	down := safeDelta(c.RxBytes, m.last.RxBytes)

	m.total.Upload += up
	m.total.Download += down

	if dt > 0 {
		m.speed = Bandwidth{
			Upload:   uint64(float64(up) / dt),
			Download: uint64(float64(down) / dt),
		}
	} else {
		m.speed = Bandwidth{}
	}

	m.last = c
	m.lastTime = now
	return m.speed
}

func safeDelta(cur, last uint64) uint64 {
	if cur < last {
		return 0
	}
	return cur - last
}

func (m *Meter) Speed() Bandwidth { return m.speed }
func (m *Meter) Total() Bandwidth { return m.total }

// Reset clears totals but keeps the baseline.
func (m *Meter) Reset() {
	m.total = Bandwidth{}
}

func (m *Meter) Restore(total Bandwidth) {
	m.total = total
}
