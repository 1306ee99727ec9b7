// internal/syncer/syncer.go
package syncer

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	custom_errors "starsync/internal/errors"
	"starsync/internal/model"
	"starsync/internal/reconcile"
)

// SourceClient lists the authenticated user's starred set and answers
// per-repository freshness lookups.
type SourceClient interface {
	ListStarredRepos(ctx context.Context) ([]model.StarredRepo, error)
	LatestRelease(ctx context.Context, owner, name string) (*model.Date, error)
	LatestCommit(ctx context.Context, owner, name string) (*model.Date, error)
}

// MirrorClient reads and mutates the mirror database.
type MirrorClient interface {
	QueryAllRecords(ctx context.Context) ([]model.MirrorRecord, error)
	CreateRecord(ctx context.Context, repo model.StarredRepo) (model.MirrorRecord, error)
	ArchiveRecord(ctx context.Context, id string) error
	PatchRecord(ctx context.Context, id string, release, commit *model.Date) error
}

// Result tallies one reconciliation pass.
type Result struct {
	Stars   int
	Records int

	Created   int
	Archived  int
	Checked   int
	Patched   int
	Unchanged int

	// Errors holds the contained per-record mutation failures, each a
	// *errors.MutationError with the identity needed for a manual retry.
	Errors []error
}

// Failures is the number of records the pass could not mutate.
func (r *Result) Failures() int {
	return len(r.Errors)
}

// Syncer drives one reconciliation pass between the starred set and the
// mirror database.
type Syncer struct {
	source      SourceClient
	mirror      MirrorClient
	logger      *slog.Logger
	concurrency int
}

// NewSyncer creates a new Syncer instance. Concurrency bounds the parallel
// freshness checks; 1 checks records one at a time in plan order.
func NewSyncer(source SourceClient, mirror MirrorClient, logger *slog.Logger, concurrency int) *Syncer {
	if concurrency < 1 {
		concurrency = 1
	}

	return &Syncer{
		source:      source,
		mirror:      mirror,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Run performs one full pass: fetch both collections, apply the plan's
// creates and archivals, then re-check the surviving records for
// freshness. Only a failed collection fetch is fatal; per-record failures
// are logged, collected on the Result and skipped.
func (s *Syncer) Run(ctx context.Context) (*Result, error) {
	s.logger.Info("Starting reconciliation pass")

	stars, err := s.source.ListStarredRepos(ctx)
	if err != nil {
		return nil, &custom_errors.CollectionError{Collection: "starred repositories", Err: err}
	}

	records, err := s.mirror.QueryAllRecords(ctx)
	if err != nil {
		return nil, &custom_errors.CollectionError{Collection: "mirror records", Err: err}
	}

	plan := reconcile.Build(stars, records)
	s.logger.Info("Built reconciliation plan", "stars", len(stars), "records", len(records), "plan", plan.Summary())
	s.logPlan(plan)

	result := &Result{Stars: len(stars), Records: len(records)}
	s.applyCreates(ctx, plan.Create, result)
	s.applyArchivals(ctx, plan.Archive, result)
	s.checkFreshness(ctx, plan.Check, result)

	if err := ctx.Err(); err != nil {
		s.logger.Warn("Reconciliation pass interrupted", "error", err)
		return result, err
	}

	s.logger.Info("Reconciliation pass finished",
		"created", result.Created,
		"archived", result.Archived,
		"checked", result.Checked,
		"patched", result.Patched,
		"unchanged", result.Unchanged,
		"failures", result.Failures(),
	)
	return result, nil
}

// logPlan prints the per-name work lists before any mutation happens.
func (s *Syncer) logPlan(plan *reconcile.Plan) {
	if !plan.HasWork() {
		s.logger.Info("Collections are already reconciled")
		return
	}

	for _, repo := range plan.Create {
		s.logger.Debug("Planned create", "owner", repo.Owner, "repo", repo.Name)
	}
	for _, record := range plan.Archive {
		s.logger.Debug("Planned archive", "title", record.Title, "record_id", record.ID)
	}
}

func (s *Syncer) applyCreates(ctx context.Context, repos []model.StarredRepo, result *Result) {
	for _, repo := range repos {
		if ctx.Err() != nil {
			return
		}
		logger := s.logger.With("owner", repo.Owner, "repo", repo.Name)

		record, err := s.mirror.CreateRecord(ctx, repo)
		if err != nil {
			result.Errors = append(result.Errors, &custom_errors.MutationError{Op: "create", Title: repo.Name, Err: err})
			logger.Error("Failed to create mirror record", "error", err)
			continue
		}

		result.Created++
		logger.Info("Created mirror record", "record_id", record.ID)
	}
}

func (s *Syncer) applyArchivals(ctx context.Context, records []model.MirrorRecord, result *Result) {
	for _, record := range records {
		if ctx.Err() != nil {
			return
		}
		logger := s.logger.With("title", record.Title, "record_id", record.ID)

		if err := s.mirror.ArchiveRecord(ctx, record.ID); err != nil {
			result.Errors = append(result.Errors, &custom_errors.MutationError{Op: "archive", Title: record.Title, RecordID: record.ID, Err: err})
			logger.Error("Failed to archive mirror record", "error", err)
			continue
		}

		result.Archived++
		logger.Info("Archived mirror record")
	}
}

// checkFreshness re-checks the surviving records concurrently. Each worker
// owns exactly one record and writes to its own outcome slot, so raising
// the concurrency cannot double-patch or interleave writes to one record.
func (s *Syncer) checkFreshness(ctx context.Context, pairs []reconcile.Pairing, result *Result) {
	outcomes := make([]checkOutcome, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, pair := range pairs {
		i, pair := i, pair
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			outcomes[i] = s.checkPair(gctx, pair)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	for _, o := range outcomes {
		if !o.checked {
			continue
		}
		result.Checked++
		switch {
		case o.err != nil:
			result.Errors = append(result.Errors, o.err)
		case o.patched:
			result.Patched++
		default:
			result.Unchanged++
		}
	}
}

type checkOutcome struct {
	checked bool
	patched bool
	err     error
}

// checkPair refreshes one record: look up both signals, compute the deltas
// and patch when anything moved. A record with no deltas is skipped
// without touching the mirror.
func (s *Syncer) checkPair(ctx context.Context, pair reconcile.Pairing) checkOutcome {
	logger := s.logger.With("owner", pair.Star.Owner, "repo", pair.Star.Name)

	release := s.lookupDate(ctx, logger, "release", pair.Star, s.source.LatestRelease)
	commit := s.lookupDate(ctx, logger, "commit", pair.Star, s.source.LatestCommit)

	releaseDelta, commitDelta := deltas(pair.Record, release, commit)
	if releaseDelta == nil && commitDelta == nil {
		logger.Debug("Record is fresh")
		return checkOutcome{checked: true}
	}

	if err := s.mirror.PatchRecord(ctx, pair.Record.ID, releaseDelta, commitDelta); err != nil {
		logger.Error("Failed to patch mirror record", "record_id", pair.Record.ID, "error", err)
		return checkOutcome{
			checked: true,
			err:     &custom_errors.MutationError{Op: "patch", Title: pair.Record.Title, RecordID: pair.Record.ID, Err: err},
		}
	}

	logger.Info("Patched mirror record", "record_id", pair.Record.ID, "release", dateString(releaseDelta), "commit", dateString(commitDelta))
	return checkOutcome{checked: true, patched: true}
}

// lookupDate swallows per-repository lookup failures to "no signal", so a
// flaky or missing lookup can never clear a stored date.
func (s *Syncer) lookupDate(ctx context.Context, logger *slog.Logger, signal string, star model.StarredRepo, fetch func(context.Context, string, string) (*model.Date, error)) *model.Date {
	date, err := fetch(ctx, star.Owner, star.Name)
	if err != nil {
		logger.Debug("Freshness lookup failed", "signal", signal, "error", err)
		return nil
	}
	return date
}

// deltas compares observed signals against the stored ones. A field's
// delta is the observed date only when it is present and differs; an
// absent observation never produces a delta.
func deltas(record model.MirrorRecord, release, commit *model.Date) (releaseDelta, commitDelta *model.Date) {
	if release != nil && !model.DatesEqual(release, record.StoredRelease) {
		releaseDelta = release
	}
	if commit != nil && !model.DatesEqual(commit, record.StoredCommit) {
		commitDelta = commit
	}
	return releaseDelta, commitDelta
}

func dateString(d *model.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}
