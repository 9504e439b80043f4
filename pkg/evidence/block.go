package evidence

import "fmt"

// Block is the per-ticket, append-only evidence log. It assigns sequential
// IDs in plan order as items are appended, regardless of when the
// corresponding probe actually finished executing.
type Block struct {
	items []Item
	byID  map[string]int
}

// NewBlock returns an empty evidence block.
func NewBlock() *Block {
	return &Block{byID: make(map[string]int)}
}

// Append adds an item, assigning it the next sequential "E<n>" ID. The
// caller-supplied ProbeID/Kind/etc are preserved; only the ID is generated
// here, so call order must match plan order.
func (b *Block) Append(item Item) Item {
	item.ID = fmt.Sprintf("E%d", len(b.items)+1)
	b.byID[item.ID] = len(b.items)
	b.items = append(b.items, item)
	return item
}

// Get looks up an item by its evidence ID.
func (b *Block) Get(id string) (Item, bool) {
	idx, ok := b.byID[id]
	if !ok {
		return Item{}, false
	}
	return b.items[idx], true
}

// All returns every item in plan order. The returned slice is a copy; the
// caller may not mutate the block through it.
func (b *Block) All() []Item {
	out := make([]Item, len(b.items))
	copy(out, b.items)
	return out
}

// Len reports how many items have been appended.
func (b *Block) Len() int { return len(b.items) }

// HasKind reports whether any item of the given evidence kind succeeded.
func (b *Block) HasKind(k Kind) bool {
	for _, item := range b.items {
		if item.Kind == k && item.Success {
			return true
		}
	}
	return false
}
