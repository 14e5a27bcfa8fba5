package checkpoint

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron"

	"github.com/kisy/appmole/model"
	"github.com/kisy/appmole/pkg/store"
)

const DefaultSchedule = "@every 5m"

// Source is the state being checkpointed.
type Source interface {
	Snapshot() model.Checkpoint
	Restore(cp model.Checkpoint)
}

// Persister saves snapshots of a Source on a cron schedule, on demand and
// once more on Stop.
type Persister struct {
	src      Source
	store    store.Store
	schedule string
	timeout  time.Duration

	mu      sync.Mutex // serialises saves
	crontab *cron.Cron
}

func NewPersister(src Source, st store.Store, schedule string) *Persister {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &Persister{
		src:      src,
		store:    st,
		schedule: schedule,
		timeout:  10 * time.Second,
	}
}

// Load restores the last checkpoint into the source. On error the source
// is left as it was.
func (p *Persister) Load(ctx context.Context) error {
	cp, err := p.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load checkpoint: %w", err)
	}
	p.src.Restore(cp)
	log.Printf("Restored %d app totals (saved %s)", len(cp.TotalBytes), formatSaved(cp.LastUpdate))
	return nil
}

func (p *Persister) Save(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	cp := p.src.Snapshot()
	if err := p.store.Save(ctx, cp); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// Start begins scheduled saves.
func (p *Persister) Start() error {
	p.crontab = cron.New()
	if err := p.crontab.AddFunc(p.schedule, p.scheduledSave); err != nil {
		return fmt.Errorf("schedule %q: %w", p.schedule, err)
	}
	p.crontab.Start()
	log.Printf("Checkpoint schedule: %s", p.schedule)
	return nil
}

func (p *Persister) scheduledSave() {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if err := p.Save(ctx); err != nil {
		log.Printf("Scheduled save failed: %v", err)
	}
}

// Stop halts the schedule and writes a final checkpoint.
func (p *Persister) Stop(ctx context.Context) error {
	if p.crontab != nil {
		p.crontab.Stop()
	}
	return p.Save(ctx)
}

func formatSaved(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format(time.RFC3339)
}
