// internal/reconcile/reconcile.go
package reconcile

import (
	"fmt"
	"sort"
	"starsync/internal/model"
)

// Pairing joins a live mirror record with the starred repository it
// mirrors.
type Pairing struct {
	Record model.MirrorRecord
	Star   model.StarredRepo
}

// Plan is the outcome of one reconciliation pass: repositories to mirror,
// records to archive, and surviving records due a freshness re-check.
type Plan struct {
	Create  []model.StarredRepo
	Archive []model.MirrorRecord
	Check   []Pairing
}

// Build diffs the starred set against the live mirror records. The join
// key is the repository name against the record title, byte for byte;
// owners do not participate. Every record still starred is re-checked on
// every pass. Archived records never participate, whatever the input
// carries, so a re-starred repository whose old record was archived gets a
// fresh one. The returned lists are sorted by name.
func Build(stars []model.StarredRepo, mirror []model.MirrorRecord) *Plan {
	plan := &Plan{}

	starByName := make(map[string]model.StarredRepo, len(stars))
	for _, star := range stars {
		if _, ok := starByName[star.Name]; ok {
			continue // first occurrence wins
		}
		starByName[star.Name] = star
	}

	mirrored := make(map[string]struct{})
	for _, record := range mirror {
		if record.Archived {
			continue
		}
		mirrored[record.Title] = struct{}{}

		if star, ok := starByName[record.Title]; ok {
			plan.Check = append(plan.Check, Pairing{Record: record, Star: star})
		} else {
			plan.Archive = append(plan.Archive, record)
		}
	}

	for name, star := range starByName {
		if _, ok := mirrored[name]; !ok {
			plan.Create = append(plan.Create, star)
		}
	}

	sortPlan(plan)
	return plan
}

// HasWork reports whether the plan mutates or checks anything.
func (p *Plan) HasWork() bool {
	return len(p.Create) > 0 || len(p.Archive) > 0 || len(p.Check) > 0
}

// Summary renders the plan in one line for run logs.
func (p *Plan) Summary() string {
	return fmt.Sprintf("create %d, archive %d, check %d", len(p.Create), len(p.Archive), len(p.Check))
}

// sortPlan orders all three lists by name so runs are deterministic.
// Duplicate mirror titles fall back to the record id.
func sortPlan(plan *Plan) {
	sort.Slice(plan.Create, func(i, j int) bool {
		return plan.Create[i].Name < plan.Create[j].Name
	})
	sort.Slice(plan.Archive, func(i, j int) bool {
		if plan.Archive[i].Title != plan.Archive[j].Title {
			return plan.Archive[i].Title < plan.Archive[j].Title
		}
		return plan.Archive[i].ID < plan.Archive[j].ID
	})
	sort.Slice(plan.Check, func(i, j int) bool {
		if plan.Check[i].Record.Title != plan.Check[j].Record.Title {
			return plan.Check[i].Record.Title < plan.Check[j].Record.Title
		}
		return plan.Check[i].Record.ID < plan.Check[j].Record.ID
	})
}
