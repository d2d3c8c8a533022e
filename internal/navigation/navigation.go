package navigation

import (
	"context"
	"github.com/samborkent/uuidv7"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"it-solutions-hub/internal/environment"
	"it-solutions-hub/internal/models"
	"it-solutions-hub/internal/routing"
	"it-solutions-hub/internal/utils"
	"slices"
	"strings"
)

// Item is one entry of the page menu.
type Item struct {
	Uuid     string  `json:"uuid"`
	Href     string  `json:"href"`
	Label    string  `json:"label"`
	Children []*Item `json:"children"`
}

// IsActive reports whether the item or one of its descendants links to path.
func (i *Item) IsActive(path string) bool {
	if strings.TrimSuffix(i.Href, "/") == strings.TrimSuffix(path, "/") {
		return true
	}
	for _, c := range i.Children {
		if c.IsActive(path) {
			return true
		}
	}
	return false
}

// TreeService builds the page menu from the published pages.
type TreeService struct {
	*environment.Env
	// Language selects the collation used to sort sibling labels.
	Language language.Tag
}

// itemsLister implements [collate.Lister] so siblings can be sorted with [collate.Collator.Sort],
// which orders "Über uns" next to "Uber" instead of after "Z".
type itemsLister struct {
	items []*Item
}

func (l itemsLister) Len() int {
	return len(l.items)
}

func (l itemsLister) Swap(i, j int) {
	l.items[i], l.items[j] = l.items[j], l.items[i]
}

func (l itemsLister) Bytes(i int) []byte {
	return []byte(l.items[i].Label)
}

// Menu loads the published pages and arranges them as a tree.
func (n TreeService) Menu(ctx context.Context) ([]*Item, error) {
	var pages []models.Page
	if err := n.FindPublishedPages(ctx, &pages); err != nil {
		return nil, err
	}
	return n.BuildTree(pages), nil
}

// BuildTree nests every page under its parent. Pages whose parent is missing from pages
// (deleted or unpublished) or whose ancestry loops become roots. The home page is left out
// since the site root links to it already.
func (n TreeService) BuildTree(pages []models.Page) []*Item {
	visible := slices.DeleteFunc(slices.Clone(pages), func(p models.Page) bool { return p.Slug == routing.HomePageSlug })
	byID := utils.SliceToMap(visible, func(p models.Page) uint { return p.ID })

	items := make(map[uint]*Item, len(visible))
	for _, p := range visible {
		items[p.ID] = &Item{
			Uuid:  uuidv7.New().String(),
			Href:  p.AbsoluteURL(),
			Label: p.Title,
		}
	}

	var roots []*Item
	for _, p := range visible {
		item := items[p.ID]
		parentID := p.ParentID
		if parentID == nil || n.loops(p.ID, byID) {
			roots = append(roots, item)
			continue
		}

		parent, ok := items[*parentID]
		if !ok {
			n.LogDebugf(nil, "page %s has no visible parent, showing it at the top level", p.Slug)
			roots = append(roots, item)
			continue
		}
		parent.Children = append(parent.Children, item)
	}

	c := collate.New(n.Language)
	n.sort(c, roots)

	return roots
}

// loops reports whether following the parents of id leads back to id.
func (n TreeService) loops(id uint, pages map[uint]models.Page) bool {
	current := pages[id].ParentID
	for steps := 0; current != nil && steps <= len(pages); steps++ {
		if *current == id {
			return true
		}
		parent, ok := pages[*current]
		if !ok {
			return false
		}
		current = parent.ParentID
	}
	return false
}

func (n TreeService) sort(c *collate.Collator, items []*Item) {
	c.Sort(itemsLister{items: items})
	for _, item := range items {
		n.sort(c, item.Children)
	}
}
