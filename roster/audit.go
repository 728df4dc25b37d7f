package roster

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/ariebrainware/clinic-admin/model"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

// Directory lists doctors and their visits.
type Directory interface {
	ListDoctors(ctx context.Context) ([]model.Doctor, error)
	ListVisits(ctx context.Context, doctorID string) ([]model.Visit, error)
}

// Loader loads one roster; *Service satisfies it.
type Loader interface {
	Load(ctx context.Context, visitID string) ([]model.Patient, error)
}

// AuditReport summarises one sweep.
type AuditReport struct {
	Doctors int
	Visits  int
	Loaded  int
	Failed  int
}

// Audit walks every roster so serial drift gets repaired for visits nobody opens.
type Audit struct {
	dir         Directory
	loader      Loader
	concurrency int
}

func NewAudit(dir Directory, loader Loader, concurrency int) *Audit {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Audit{dir: dir, loader: loader, concurrency: concurrency}
}

// Run loads every visit of every doctor. Failing to list doctors aborts the sweep; a failing
// doctor or visit is logged and skipped.
func (a *Audit) Run(ctx context.Context) (AuditReport, error) {
	doctors, err := a.dir.ListDoctors(ctx)
	if err != nil {
		return AuditReport{}, fmt.Errorf("list doctors: %w", err)
	}
	report := AuditReport{Doctors: len(doctors)}

	var visitIDs []string
	for _, d := range doctors {
		visits, err := a.dir.ListVisits(ctx, d.ID)
		if err != nil {
			report.Failed++
			logger().Warn().Err(err).Str("doctor_id", d.ID).Msg("audit: list visits failed")
			continue
		}
		for _, v := range visits {
			visitIDs = append(visitIDs, v.ID)
		}
	}
	report.Visits = len(visitIDs)

	var loaded, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for _, id := range visitIDs {
		g.Go(func() error {
			if _, err := a.loader.Load(gctx, id); err != nil {
				failed.Add(1)
				logger().Warn().Err(err).Str("visit_id", id).Msg("audit: load roster failed")
				return nil
			}
			loaded.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	report.Loaded = int(loaded.Load())
	report.Failed += int(failed.Load())
	return report, ctx.Err()
}

// RunVisit audits a single roster.
func (a *Audit) RunVisit(ctx context.Context, visitID string) ([]model.Patient, error) {
	return a.loader.Load(ctx, visitID)
}

// cronLogger routes cron's own messages (skipped runs, recovered panics) to the roster logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger().Info().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger().Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}

// NewScheduler returns a cron that recovers panicking jobs and skips a run while the previous
// run of the same job is still going.
func NewScheduler() *cron.Cron {
	l := cronLogger{}
	return cron.New(
		cron.WithLogger(l),
		cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
	)
}

// Schedule registers the sweep on c under spec. An empty spec registers nothing.
func (a *Audit) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	if spec == "" {
		return 0, nil
	}
	id, err := c.AddFunc(spec, func() {
		report, err := a.Run(context.Background())
		evt := logger().Info()
		if err != nil {
			evt = logger().Error().Err(err)
		}
		evt.Int("doctors", report.Doctors).
			Int("visits", report.Visits).
			Int("loaded", report.Loaded).
			Int("failed", report.Failed).
			Msg("roster audit finished")
	})
	if err != nil {
		return 0, fmt.Errorf("schedule roster audit %q: %w", spec, err)
	}
	return id, nil
}
