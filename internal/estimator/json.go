package estimator

import (
	"encoding/json"
	"sort"

	"github.com/hyeonso/EnhanceBot_Go/internal/domain"
	"github.com/hyeonso/EnhanceBot_Go/internal/itembook"
)

// The struct-keyed maps cannot round-trip through encoding/json directly, so
// the wire form flattens each tier into an entry list. This is what snapshot
// persistence stores.

type idCountEntry struct {
	TreeID int                  `json:"tree_id"`
	Level  int                  `json:"level"`
	Counts domain.EnhanceCounts `json:"counts"`
}

type groupCountEntry struct {
	Group  domain.Group         `json:"group"`
	Level  int                  `json:"level"`
	Counts domain.EnhanceCounts `json:"counts"`
}

type levelCountEntry struct {
	Level  int                  `json:"level"`
	Counts domain.EnhanceCounts `json:"counts"`
}

type idSellEntry struct {
	TreeID int              `json:"tree_id"`
	Level  int              `json:"level"`
	Stats  domain.SellStats `json:"stats"`
}

type groupSellEntry struct {
	Group domain.Group     `json:"group"`
	Level int              `json:"level"`
	Stats domain.SellStats `json:"stats"`
}

type levelSellEntry struct {
	Level int              `json:"level"`
	Stats domain.SellStats `json:"stats"`
}

type costEntry struct {
	Level int `json:"level"`
	Cost  int `json:"cost"`
}

type tablesWire struct {
	ByID    []idCountEntry    `json:"by_id"`
	ByGroup []groupCountEntry `json:"by_group"`
	ByLevel []levelCountEntry `json:"by_level"`

	SellByID    []idSellEntry    `json:"sell_by_id"`
	SellByGroup []groupSellEntry `json:"sell_by_group"`
	SellByLevel []levelSellEntry `json:"sell_by_level"`

	UpgradeCost []costEntry `json:"upgrade_cost"`
	Special     []int       `json:"special"`
}

// MarshalJSON renders the tables in deterministic key order so snapshots of
// identical content are byte-identical.
func (t *Tables) MarshalJSON() ([]byte, error) {
	var w tablesWire

	for k, c := range t.ByID {
		w.ByID = append(w.ByID, idCountEntry{TreeID: k.TreeID, Level: k.Level, Counts: c})
	}
	sort.Slice(w.ByID, func(i, j int) bool {
		if w.ByID[i].TreeID != w.ByID[j].TreeID {
			return w.ByID[i].TreeID < w.ByID[j].TreeID
		}
		return w.ByID[i].Level < w.ByID[j].Level
	})

	for k, c := range t.ByGroup {
		w.ByGroup = append(w.ByGroup, groupCountEntry{Group: k.Group, Level: k.Level, Counts: c})
	}
	sort.Slice(w.ByGroup, func(i, j int) bool {
		if w.ByGroup[i].Group != w.ByGroup[j].Group {
			return w.ByGroup[i].Group < w.ByGroup[j].Group
		}
		return w.ByGroup[i].Level < w.ByGroup[j].Level
	})

	for k, c := range t.ByLevel {
		w.ByLevel = append(w.ByLevel, levelCountEntry{Level: k, Counts: c})
	}
	sort.Slice(w.ByLevel, func(i, j int) bool { return w.ByLevel[i].Level < w.ByLevel[j].Level })

	for k, s := range t.SellByID {
		w.SellByID = append(w.SellByID, idSellEntry{TreeID: k.TreeID, Level: k.Level, Stats: s})
	}
	sort.Slice(w.SellByID, func(i, j int) bool {
		if w.SellByID[i].TreeID != w.SellByID[j].TreeID {
			return w.SellByID[i].TreeID < w.SellByID[j].TreeID
		}
		return w.SellByID[i].Level < w.SellByID[j].Level
	})

	for k, s := range t.SellByGroup {
		w.SellByGroup = append(w.SellByGroup, groupSellEntry{Group: k.Group, Level: k.Level, Stats: s})
	}
	sort.Slice(w.SellByGroup, func(i, j int) bool {
		if w.SellByGroup[i].Group != w.SellByGroup[j].Group {
			return w.SellByGroup[i].Group < w.SellByGroup[j].Group
		}
		return w.SellByGroup[i].Level < w.SellByGroup[j].Level
	})

	for k, s := range t.SellByLevel {
		w.SellByLevel = append(w.SellByLevel, levelSellEntry{Level: k, Stats: s})
	}
	sort.Slice(w.SellByLevel, func(i, j int) bool { return w.SellByLevel[i].Level < w.SellByLevel[j].Level })

	for level, cost := range t.UpgradeCost {
		w.UpgradeCost = append(w.UpgradeCost, costEntry{Level: level, Cost: cost})
	}
	sort.Slice(w.UpgradeCost, func(i, j int) bool { return w.UpgradeCost[i].Level < w.UpgradeCost[j].Level })

	for id := range t.Special {
		w.Special = append(w.Special, id)
	}
	sort.Ints(w.Special)

	return json.Marshal(w)
}

// UnmarshalJSON rebuilds the keyed maps from the wire form.
func (t *Tables) UnmarshalJSON(data []byte) error {
	var w tablesWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	fresh := NewTables(itembook.NewIDSet(w.Special...))
	for _, e := range w.ByID {
		fresh.ByID[domain.IDLevelKey{TreeID: e.TreeID, Level: e.Level}] = e.Counts
	}
	for _, e := range w.ByGroup {
		fresh.ByGroup[domain.GroupLevelKey{Group: e.Group, Level: e.Level}] = e.Counts
	}
	for _, e := range w.ByLevel {
		fresh.ByLevel[e.Level] = e.Counts
	}
	for _, e := range w.SellByID {
		fresh.SellByID[domain.IDLevelKey{TreeID: e.TreeID, Level: e.Level}] = e.Stats
	}
	for _, e := range w.SellByGroup {
		fresh.SellByGroup[domain.GroupLevelKey{Group: e.Group, Level: e.Level}] = e.Stats
	}
	for _, e := range w.SellByLevel {
		fresh.SellByLevel[e.Level] = e.Stats
	}
	for _, e := range w.UpgradeCost {
		fresh.UpgradeCost[e.Level] = e.Cost
	}

	*t = *fresh
	return nil
}
