package resolver

import (
	"fmt"
	"io"
	"time"

	"github.com/hyeonso/EnhanceBot_Go/internal/domain"
)

// WriteUnresolvedLog writes a human-readable audit of every item-bearing
// event that ended the pass without a tree id on either side. Returns the
// number of events written.
func WriteUnresolvedLog(w io.Writer, events []domain.GameEvent) (int, error) {
	var unresolved []int
	for i := range events {
		ev := &events[i]
		if !ev.CarriesItems() {
			continue
		}
		hasItem := ev.ItemBefore != nil || ev.ItemAfter != nil
		if !hasItem || !eventResolved(ev) {
			unresolved = append(unresolved, i)
		}
	}

	if _, err := fmt.Fprintf(w,
		"===== unresolved events log =====\ngenerated_at: %s\ntotal_events: %d\nunresolved_count: %d\n=================================\n\n",
		time.Now().Format("2006-01-02 15:04:05"), len(events), len(unresolved),
	); err != nil {
		return 0, err
	}

	for _, i := range unresolved {
		ev := &events[i]
		if _, err := fmt.Fprintf(w, "#%d\n  type: %s\n  timestamp: %s\n  item_before: %s\n  item_after : %s\n",
			i, ev.Type, fmtTimestamp(ev.Timestamp), fmtItem(ev.ItemBefore), fmtItem(ev.ItemAfter),
		); err != nil {
			return 0, err
		}
		if ev.GoldAfter != nil {
			fmt.Fprintf(w, "  gold_after: %d\n", *ev.GoldAfter)
		}
		if gb := ev.GoldBefore(); gb != nil {
			fmt.Fprintf(w, "  gold_before: %d\n", *gb)
		}
		if ev.Cost != nil {
			fmt.Fprintf(w, "  cost: %d\n", *ev.Cost)
		}
		if ev.Reward != nil {
			fmt.Fprintf(w, "  reward: %d\n", *ev.Reward)
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return 0, err
		}
	}

	return len(unresolved), nil
}

func fmtTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Format("2006-01-02 15:04:05")
}

func fmtItem(item *domain.Item) string {
	if item == nil {
		return "-"
	}
	id := "-"
	if item.TreeID != nil {
		id = fmt.Sprintf("%d", *item.TreeID)
	}
	return fmt.Sprintf("%s (tree=%s)", item.String(), id)
}
