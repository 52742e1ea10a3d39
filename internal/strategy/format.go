package strategy

import (
	"fmt"
	"strings"

	"github.com/hyeonso/EnhanceBot_Go/internal/domain"
)

// FormatTable renders a decision list as the operator-facing strategy table.
func FormatTable(decisions []domain.Decision) string {
	var b strings.Builder
	b.WriteString("===== Optimal strategy (expected gold maximization) =====\n")
	b.WriteString("lvl | action  |     V(opt)  |   SELL_mean |   ENH_value | ps    pk    pb    | n_prob n_sell source\n")
	b.WriteString(strings.Repeat("-", 103) + "\n")
	for _, d := range decisions {
		b.WriteString(fmt.Sprintf(
			"%3d | %-7s | %11.1f | %11.1f | %11.1f | %.3f %.3f %.3f | %6d %6d %s\n",
			d.Level, d.Action, d.V, d.SellMean, d.VEnhance,
			d.PS, d.PK, d.PB, d.NProb, d.NSell, d.Source,
		))
	}
	b.WriteString(strings.Repeat("-", 103) + "\n")
	return b.String()
}
