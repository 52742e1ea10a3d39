package domain

import "fmt"

// Item is a weapon observed in chat: a level, a display name, and (once
// identity resolution has run) the id of the upgrade tree it belongs to.
// Items are value objects; resolution produces a new Item with TreeID filled
// in rather than mutating in place.
type Item struct {
	Level  int    `json:"level"`
	Name   string `json:"name"`
	TreeID *int   `json:"tree_id,omitempty"`
}

// NewItem creates an unresolved item.
func NewItem(level int, name string) Item {
	return Item{Level: level, Name: name}
}

// WithTreeID returns a copy of the item with the tree id set (or cleared when
// nil). The receiver is left untouched.
func (i Item) WithTreeID(treeID *int) Item {
	if treeID == nil {
		i.TreeID = nil
		return i
	}
	id := *treeID
	i.TreeID = &id
	return i
}

// Resolved reports whether the item has been pinned to a single tree.
func (i Item) Resolved() bool {
	return i.TreeID != nil
}

// Equal compares level, name, and tree id when both sides carry one.
func (i Item) Equal(o Item) bool {
	if i.Level != o.Level || i.Name != o.Name {
		return false
	}
	if i.TreeID != nil && o.TreeID != nil {
		return *i.TreeID == *o.TreeID
	}
	return true
}

// String renders the item the way the game prints it: "[+L] name".
func (i Item) String() string {
	if i.TreeID != nil {
		return fmt.Sprintf("[+%d] %s (tree=%d)", i.Level, i.Name, *i.TreeID)
	}
	return fmt.Sprintf("[+%d] %s", i.Level, i.Name)
}
