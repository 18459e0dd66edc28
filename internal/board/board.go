// Package board orders notices the way the kiosk list shows them.
package board

import "github.com/dgallion1/noticegest/internal/backend"

const (
	// MaxPinned is how many pinned notices are shown at the top.
	MaxPinned = 3
	// PageSize is the number of notices per kiosk slide.
	PageSize = 6

	// Titles longer than titleLimit runes are cut to titleKeep plus "...".
	titleLimit = 75
	titleKeep  = 70
)

// Item is a notice with its displayed post number.
type Item struct {
	backend.Notice
	PostNumber   int    `json:"postNumber"`
	DisplayTitle string `json:"displayTitle"`
}

// ShortTitle shortens a title for the list view.
func ShortTitle(title string) string {
	r := []rune(title)
	if len(r) <= titleLimit {
		return title
	}
	return string(r[:titleKeep]) + "..."
}

// Order puts the first MaxPinned pinned notices first, followed by every
// unpinned notice, each group in backend order. Pinned notices past the
// limit are dropped. Post numbers count down from len+postBase.
func Order(notices []backend.Notice, postBase int) []Item {
	var pinned, rest []backend.Notice
	for _, n := range notices {
		if n.Pinned {
			if len(pinned) < MaxPinned {
				pinned = append(pinned, n)
			}
			continue
		}
		rest = append(rest, n)
	}

	sorted := append(pinned, rest...)
	items := make([]Item, len(sorted))
	for i, n := range sorted {
		items[i] = Item{Notice: n, PostNumber: len(sorted) - i + postBase, DisplayTitle: ShortTitle(n.Title)}
	}
	return items
}

// Pages splits items into slides of size. A non-positive size uses PageSize.
func Pages(items []Item, size int) [][]Item {
	if size <= 0 {
		size = PageSize
	}
	pages := make([][]Item, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		pages = append(pages, items[start:min(start+size, len(items))])
	}
	return pages
}

// Find returns the item with the given id.
func Find(items []Item, id string) (Item, bool) {
	for _, it := range items {
		if string(it.ID) == id {
			return it, true
		}
	}
	return Item{}, false
}
