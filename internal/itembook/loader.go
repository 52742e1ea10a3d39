package itembook

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/hyeonso/EnhanceBot_Go/internal/domain"
)

// hierarchyFile mirrors the crawler's hierarchy_*.json output format.
type hierarchyFile struct {
	ID      int                `json:"id"`
	Special bool               `json:"special"`
	Nodes   []hierarchyNode    `json:"nodes"`
	ByLevel map[string]hierarchyNode `json:"by_level"`
}

type hierarchyNode struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// NewFileBook creates a book backed by hierarchy_*.json files under dir and
// performs the initial load.
func NewFileBook(dir string) (*Book, error) {
	b := New(DirLoader(dir))
	if err := b.Reload(); err != nil {
		return nil, err
	}
	return b, nil
}

// DirLoader returns a LoaderFunc reading every hierarchy_*.json under dir.
// Used both for the initial load and for reloads after the external crawler
// has rewritten the files.
func DirLoader(dir string) LoaderFunc {
	return func() (map[Key]IDSet, IDSet, map[int]Hierarchy, error) {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			return nil, nil, nil, fmt.Errorf("%w: %s", domain.ErrBookDirNotFound, dir)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to read book dir: %w", err)
		}

		var files []string
		for _, e := range entries {
			name := e.Name()
			if !e.IsDir() && strings.HasPrefix(name, "hierarchy_") && strings.HasSuffix(name, ".json") {
				files = append(files, filepath.Join(dir, name))
			}
		}
		sort.Strings(files)

		index := map[Key]IDSet{}
		special := IDSet{}
		hierarchies := map[int]Hierarchy{}

		for _, path := range files {
			raw, err := os.ReadFile(path)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
			}

			var hf hierarchyFile
			if err := json.Unmarshal(raw, &hf); err != nil {
				return nil, nil, nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}

			if hf.Special {
				special[hf.ID] = struct{}{}
			}

			byLevel := make(map[int]domain.Item, len(hf.ByLevel))
			for lvlStr, node := range hf.ByLevel {
				lvl, err := strconv.Atoi(lvlStr)
				if err != nil {
					return nil, nil, nil, fmt.Errorf("bad by_level key %q in %s: %w", lvlStr, path, err)
				}
				id := hf.ID
				byLevel[lvl] = domain.Item{Level: node.Level, Name: node.Name, TreeID: &id}
			}
			hierarchies[hf.ID] = Hierarchy{ID: hf.ID, Special: hf.Special, ByLevel: byLevel}

			for _, n := range hf.Nodes {
				k := Key{Name: n.Name, Level: n.Level}
				if index[k] == nil {
					index[k] = IDSet{}
				}
				index[k][hf.ID] = struct{}{}
			}
		}

		return index, special, hierarchies, nil
	}
}
