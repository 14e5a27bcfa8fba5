package stats

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/kisy/appmole/model"
	"github.com/kisy/appmole/pkg/monitor"
	"github.com/kisy/appmole/pkg/sample"
)

// DisplayNamer resolves a canonical application name for presentation.
type DisplayNamer interface {
	DisplayName(name string, pid *int32) string
}

type Aggregator struct {
	sampler sample.Sampler
	reader  monitor.CounterReader
	namer   DisplayNamer
	onReset func()
	now     func() time.Time

	// mu guards everything below; it is the only lock around
	// attribution state.
	mu        sync.RWMutex
	attr      *Attributor
	meter     *monitor.Meter
	speeds    map[string]AppSpeed
	lastTick  time.Time
	lastErr   error
	lastCErr  error
	startTime time.Time
}

func NewAggregator(sampler sample.Sampler) *Aggregator {
	return &Aggregator{
		sampler:   sampler,
		now:       time.Now,
		attr:      NewAttributor(),
		meter:     monitor.NewMeter(),
		speeds:    make(map[string]AppSpeed),
		startTime: time.Now(),
	}
}

// SetCounterReader enables interface-level throughput.
func (a *Aggregator) SetCounterReader(r monitor.CounterReader) {
	a.reader = r
}

func (a *Aggregator) SetDisplayNamer(n DisplayNamer) {
	a.namer = n
}

// SetResetHook registers fn to run after every Reset, outside the lock.
func (a *Aggregator) SetResetHook(fn func()) {
	a.onReset = fn
}

// Run ticks every interval until ctx is done. Ticks run on this goroutine
// only, so a slow tick delays the next one instead of overlapping it.
func (a *Aggregator) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			a.Tick(ctx)
		}
	}
}

// Tick performs one sampling round trip and attribution pass. A started
// tick is not cancelled by ctx.
func (a *Aggregator) Tick(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)

	samples, err := a.sampler.Sample(ctx)

	var (
		counters monitor.Counters
		cerr     error
	)
	if a.reader != nil {
		counters, cerr = a.reader.Read(ctx)
	}

	now := a.now()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.reader != nil {
		if cerr != nil {
			if !sameError(a.lastCErr, cerr) {
				log.Printf("Interface counters: %v", cerr)
			}
		} else {
			a.meter.Update(counters, now)
		}
		a.lastCErr = cerr
	}

	if err == nil && len(samples) == 0 {
		err = sample.ErrNoOutput
	}
	if err != nil {
		if !sameError(a.lastErr, err) {
			log.Printf("Sampling failed, keeping previous state: %v", err)
		}
		a.lastErr = err
		return
	}
	if a.lastErr != nil {
		log.Printf("Sampling recovered: %d processes", len(samples))
		a.lastErr = nil
	}

	a.speeds = a.attr.Attribute(samples, now)
	a.lastTick = now
}

func sameError(a, b error) bool {
	return a != nil && b != nil && a.Error() == b.Error()
}

// Public Methods

// TopBySpeed returns applications by descending current speed. n <= 0
// returns all of them.
func (a *Aggregator) TopBySpeed(n int) []model.AppStats {
	a.mu.RLock()
	list := a.speedList()
	a.mu.RUnlock()
	return a.finish(sortBySpeed(list), n)
}

// TopByTotal returns applications by descending cumulative bytes.
func (a *Aggregator) TopByTotal(n int) []model.AppStats {
	a.mu.RLock()
	list := a.totalList()
	a.mu.RUnlock()
	return a.finish(sortByTotal(list), n)
}

// CurrentTopApps is TopBySpeed with the default list size of 3.
func (a *Aggregator) CurrentTopApps() []model.AppStats {
	return a.TopBySpeed(3)
}

// TopByCumulativeUsage is TopByTotal with the default list size of 3.
func (a *Aggregator) TopByCumulativeUsage() []model.AppStats {
	return a.TopByTotal(3)
}

// Stats copies both rankings and the global figures under one read lock,
// so every part of the view belongs to the same tick. Display names are
// resolved after the lock is released.
func (a *Aggregator) Stats(n int) model.StatsView {
	a.mu.RLock()
	bySpeed := a.speedList()
	byTotal := a.totalList()
	view := model.StatsView{
		StartTime: a.startTime,
		LastTick:  a.lastTick,
		Global:    a.globalStats(),
	}
	a.mu.RUnlock()

	view.TopSpeed = a.finish(sortBySpeed(bySpeed), n)
	view.TopUsage = a.finish(sortByTotal(byTotal), n)
	return view
}

// speedList and totalList need a.mu held.
func (a *Aggregator) speedList() []model.AppStats {
	list := make([]model.AppStats, 0, len(a.speeds))
	for name, sp := range a.speeds {
		pid := sp.PID
		list = append(list, model.AppStats{
			Name:       name,
			Speed:      sp.Speed,
			TotalBytes: a.attr.Total(name),
			PID:        &pid,
		})
	}
	return list
}

func (a *Aggregator) totalList() []model.AppStats {
	totals := a.attr.Totals()
	list := make([]model.AppStats, 0, len(totals))
	for name, total := range totals {
		st := model.AppStats{Name: name, TotalBytes: total}
		if sp, ok := a.speeds[name]; ok {
			pid := sp.PID
			st.Speed = sp.Speed
			st.PID = &pid
		}
		list = append(list, st)
	}
	return list
}

func sortBySpeed(list []model.AppStats) []model.AppStats {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Speed != list[j].Speed {
			return list[i].Speed > list[j].Speed
		}
		return list[i].Name < list[j].Name
	})
	return list
}

func sortByTotal(list []model.AppStats) []model.AppStats {
	sort.Slice(list, func(i, j int) bool {
		if list[i].TotalBytes != list[j].TotalBytes {
			return list[i].TotalBytes > list[j].TotalBytes
		}
		return list[i].Name < list[j].Name
	})
	return list
}

func (a *Aggregator) finish(list []model.AppStats, n int) []model.AppStats {
	if n > 0 && len(list) > n {
		list = list[:n]
	}
	for i := range list {
		list[i].DisplayName = list[i].Name
		if a.namer != nil {
			list[i].DisplayName = a.namer.DisplayName(list[i].Name, list[i].PID)
		}
	}
	return list
}

func (a *Aggregator) GetGlobalStats() model.GlobalStats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.globalStats()
}

// globalStats needs a.mu held. Apps counts applications that moved bytes
// in the last tick.
func (a *Aggregator) globalStats() model.GlobalStats {
	speed := a.meter.Speed()
	total := a.meter.Total()
	gs := model.GlobalStats{
		TotalDownload: total.Download,
		TotalUpload:   total.Upload,
		DownloadSpeed: speed.Download,
		UploadSpeed:   speed.Upload,
	}
	for _, sp := range a.speeds {
		if sp.Speed > 0 {
			gs.Apps++
		}
	}
	if a.reader != nil {
		gs.Interface = a.reader.Interface()
	}
	return gs
}

func (a *Aggregator) GetStartTime() time.Time {
	return a.startTime
}

// LastTick reports when attribution last succeeded.
func (a *Aggregator) LastTick() time.Time {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastTick
}

// Reset clears application and interface totals. Instantaneous speeds keep
// their baselines.
func (a *Aggregator) Reset() error {
	a.mu.Lock()
	a.attr.Reset()
	a.meter.Reset()
	a.mu.Unlock()

	if a.onReset != nil {
		a.onReset()
	}
	return nil
}

// Snapshot copies cumulative state for persistence.
func (a *Aggregator) Snapshot() model.Checkpoint {
	a.mu.RLock()
	defer a.mu.RUnlock()

	total := a.meter.Total()
	return model.Checkpoint{
		TotalBytes:    a.attr.Totals(),
		TotalUpload:   total.Upload,
		TotalDownload: total.Download,
		LastUpdate:    a.now(),
	}
}

// Restore seeds cumulative state from a checkpoint.
func (a *Aggregator) Restore(cp model.Checkpoint) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.attr.Seed(cp.TotalBytes)
	a.meter.Restore(monitor.Bandwidth{Upload: cp.TotalUpload, Download: cp.TotalDownload})
}
