package resolver

import (
	"context"
	"time"

	"github.com/hyeonso/EnhanceBot_Go/internal/domain"
	"github.com/hyeonso/EnhanceBot_Go/internal/itembook"
	"github.com/hyeonso/EnhanceBot_Go/internal/logger"
	"github.com/hyeonso/EnhanceBot_Go/internal/metrics"
)

// Resolver stamps tree ids onto the item-bearing events of a pass by
// narrowing a per-track candidate set against the item book.
type Resolver struct {
	book   *itembook.Book
	policy Policy
}

// New creates a resolver over the given book. A zero policy resolves nothing
// useful; callers normally pass DefaultPolicy or BatchPolicy.
func New(book *itembook.Book, policy Policy) *Resolver {
	return &Resolver{book: book, policy: policy}
}

// Summary reports what one assignment pass did.
type Summary struct {
	Total      int
	Success    int
	Keep       int
	Break      int
	Sell       int
	Considered int
	Resolved   int
	Unresolved int
	Reloads    int
}

// track is the mutable per-pass state: the candidate set of the current item
// track, the output indexes still awaiting a resolved id, and whether the
// previous item-bearing event ended the track.
type track struct {
	cands          itembook.IDSet
	pending        []int
	terminatedPrev bool
}

// Assign returns a copy of events with tree ids stamped onto ItemBefore and
// ItemAfter where a track narrows to a single candidate. Events without items
// pass through untouched and keep the track state alive. prev seeds the
// candidate set when the pass continues an earlier session's track.
func (r *Resolver) Assign(ctx context.Context, events []domain.GameEvent, prev itembook.IDSet) ([]domain.GameEvent, Summary) {
	log := logger.FromContext(ctx)

	out := make([]domain.GameEvent, 0, len(events))
	st := track{cands: prev.Clone()}

	reloadCalls := 0
	var lastReload time.Time

	canReload := func(now time.Time) bool {
		if !r.policy.EnableReload {
			return false
		}
		if reloadCalls >= r.policy.MaxReloadCalls {
			return false
		}
		if now.IsZero() || lastReload.IsZero() {
			return true
		}
		return now.Sub(lastReload) >= r.policy.ReloadCooldown
	}

	// lookup consults the index; on a miss it may reload the book once,
	// subject to the budget and cooldown, then retry.
	lookup := func(name string, level int, now time.Time, allowReload bool) itembook.IDSet {
		if s := r.book.Lookup(name, level); s != nil {
			return s
		}
		if allowReload && canReload(now) {
			if err := r.book.Reload(); err != nil {
				log.Warn("item book reload failed", "error", err)
			} else {
				reloadCalls++
				metrics.ReloadCalls.Inc()
				if !now.IsZero() {
					lastReload = now
				}
				return r.book.Lookup(name, level)
			}
		}
		return nil
	}

	backfill := func(id int) {
		for _, j := range st.pending {
			out[j].ItemBefore = stampItem(out[j].ItemBefore, &id)
			out[j].ItemAfter = stampItem(out[j].ItemAfter, &id)
		}
		st.pending = st.pending[:0]
	}

	for i := range events {
		ev := events[i]
		now := ev.Timestamp

		if !ev.CarriesItems() {
			out = append(out, ev)
			continue
		}

		if ev.IsTerminal() {
			resolved := st.cands.Sole()
			ev.ItemBefore = stampItem(ev.ItemBefore, resolved)
			ev.ItemAfter = stampItem(ev.ItemAfter, nil)
			out = append(out, ev)

			if resolved != nil {
				backfill(*resolved)
			} else {
				st.pending = st.pending[:0]
			}
			st.cands = nil
			st.terminatedPrev = true
			continue
		}

		// SUCCESS or KEEP from here on.
		mismatch := levelMismatch(ev)

		// Online inheritance works by skipping validation on normal steps:
		// when no lookup runs, the candidate set simply carries over.
		needValidation := r.policy.Mode == ModeBatch ||
			r.policy.ValidateWithIndexOnNormalSteps ||
			st.cands == nil ||
			mismatch ||
			st.terminatedPrev ||
			(ev.Type == domain.EventEnhanceSuccess && !r.policy.InheritOnSuccessLevelUp)

		allowReload := false
		if r.policy.Mode != ModeBatch {
			allowReload = r.policy.ReloadOnMissingKey ||
				(st.terminatedPrev && r.policy.ReloadOnTerminationThenMissing)
		}

		var afterCands itembook.IDSet
		if ev.ItemAfter != nil {
			if needValidation {
				afterCands = lookup(ev.ItemAfter.Name, ev.ItemAfter.Level, now, allowReload)
			} else if st.cands == nil {
				// Track start with validation off: still seed candidates,
				// without reloading.
				afterCands = lookup(ev.ItemAfter.Name, ev.ItemAfter.Level, now, false)
			}
		}

		resetTrack := false
		switch {
		case r.policy.KeepCandidatesWhenAfterUnindexed &&
			ev.ItemAfter != nil && afterCands == nil &&
			!mismatch && !st.terminatedPrev:
			// Mid-track index miss: treat as book staleness, keep candidates.

		case st.terminatedPrev || st.cands == nil:
			st.cands = afterCands
			resetTrack = true

		default:
			if afterCands != nil {
				inter := st.cands.Intersect(afterCands)
				if len(inter) == 0 {
					// Discontinuity: the observed item cannot be on the
					// current track. Start over from the new candidates.
					st.cands = afterCands
					resetTrack = true
				} else {
					st.cands = inter
				}
			}
		}

		if resetTrack {
			st.pending = st.pending[:0]
		}

		resolved := st.cands.Sole()
		ev.ItemBefore = stampItem(ev.ItemBefore, resolved)
		ev.ItemAfter = stampItem(ev.ItemAfter, resolved)
		out = append(out, ev)

		if resolved == nil {
			st.pending = append(st.pending, len(out)-1)
		} else {
			backfill(*resolved)
		}

		st.terminatedPrev = false
	}

	sum := summarize(out)
	sum.Reloads = reloadCalls
	metrics.EventsResolved.Add(float64(sum.Resolved))
	metrics.EventsUnresolved.Add(float64(sum.Unresolved))

	log.Info("tree id assignment finished",
		"total", sum.Total,
		"considered", sum.Considered,
		"resolved", sum.Resolved,
		"unresolved", sum.Unresolved,
		"reloads", sum.Reloads,
	)

	return out, sum
}

// stampItem returns a copy of item carrying the given tree id; nil clears it.
// A nil item stays nil.
func stampItem(item *domain.Item, id *int) *domain.Item {
	if item == nil {
		return nil
	}
	stamped := item.WithTreeID(id)
	return &stamped
}

// levelMismatch reports whether the observed level step contradicts the event
// kind: success must raise the level by one, keep must hold it. Events with a
// missing side cannot mismatch.
func levelMismatch(ev domain.GameEvent) bool {
	if ev.ItemBefore == nil || ev.ItemAfter == nil {
		return false
	}
	delta := ev.ItemAfter.Level - ev.ItemBefore.Level
	switch ev.Type {
	case domain.EventEnhanceSuccess:
		return delta != 1
	case domain.EventEnhanceKeep:
		return delta != 0
	}
	return false
}

func summarize(out []domain.GameEvent) Summary {
	var sum Summary
	sum.Total = len(out)
	for i := range out {
		ev := &out[i]
		switch ev.Type {
		case domain.EventEnhanceSuccess:
			sum.Success++
		case domain.EventEnhanceKeep:
			sum.Keep++
		case domain.EventEnhanceBreak:
			sum.Break++
		case domain.EventSell:
			sum.Sell++
		default:
			continue
		}
		sum.Considered++
		if eventResolved(ev) {
			sum.Resolved++
		} else {
			sum.Unresolved++
		}
	}
	return sum
}

// eventResolved reports whether either side of the event carries a tree id.
func eventResolved(ev *domain.GameEvent) bool {
	if ev.ItemBefore != nil && ev.ItemBefore.Resolved() {
		return true
	}
	return ev.ItemAfter != nil && ev.ItemAfter.Resolved()
}
