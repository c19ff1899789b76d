package dimension

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/cleared-dev/fincore/internal/model"
)

// Persister receives accepted tag mutations so the index can be rebuilt on
// restart. Nil keeps the index in memory only.
type Persister interface {
	SaveClassTag(t model.ClassTag) error
	SaveCategoryTag(t model.CategoryTag) error
	SaveIndexVersion(version uint64) error
}

// Index owns the class and category tag hierarchies. Lines hold only tag IDs;
// deleting a history-bearing tag is not an operation — archival hides a tag
// from pickers without detaching it from posted lines. Every hierarchy
// mutation bumps a monotonic version used for report-cache invalidation.
type Index struct {
	mu        sync.RWMutex
	class     *arena
	category  *arena
	version   uint64
	persister Persister
}

// NewIndex creates an empty index.
func NewIndex(persister Persister) *Index {
	return &Index{
		class:     newArena(),
		category:  newArena(),
		persister: persister,
	}
}

// Version returns the current monotonic index version.
func (x *Index) Version() uint64 {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.version
}

// CreateClassTag adds a class tag under an optional parent.
func (x *Index) CreateClassTag(name, parentID string) (model.ClassTag, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	tagID := uuid.NewString()
	if err := x.class.add(tagID, name, parentID); err != nil {
		return model.ClassTag{}, err
	}
	x.version++

	tag := model.ClassTag{ID: tagID, Name: name, ParentID: parentID}
	if err := x.persistClass(tag); err != nil {
		return model.ClassTag{}, err
	}
	return tag, nil
}

// CreateCategoryTag adds a category tag under an optional parent. Depth is
// unbounded.
func (x *Index) CreateCategoryTag(name, parentID string) (model.CategoryTag, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	tagID := uuid.NewString()
	if err := x.category.add(tagID, name, parentID); err != nil {
		return model.CategoryTag{}, err
	}
	x.version++

	tag := model.CategoryTag{ID: tagID, Name: name, ParentID: parentID}
	if err := x.persistCategory(tag); err != nil {
		return model.CategoryTag{}, err
	}
	return tag, nil
}

// restore re-adds persisted tags without minting new IDs or bumping versions.

// RestoreClassTag loads a persisted class tag into the index.
func (x *Index) RestoreClassTag(tag model.ClassTag) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if err := x.class.add(tag.ID, tag.Name, tag.ParentID); err != nil {
		return err
	}
	x.class.nodes[tag.ID].archived = tag.Archived
	return nil
}

// RestoreCategoryTag loads a persisted category tag into the index.
func (x *Index) RestoreCategoryTag(tag model.CategoryTag) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if err := x.category.add(tag.ID, tag.Name, tag.ParentID); err != nil {
		return err
	}
	x.category.nodes[tag.ID].archived = tag.Archived
	return nil
}

// SetVersion restores the persisted index version after loading tags.
func (x *Index) SetVersion(v uint64) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.version = v
}

// ReparentCategory moves a category node under a new parent. Fails with
// ErrCycle when the proposed parent sits below the node being moved.
func (x *Index) ReparentCategory(tagID, newParentID string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if err := x.category.reparent(tagID, newParentID); err != nil {
		return err
	}
	x.version++
	n := x.category.nodes[tagID]
	return x.persistCategory(model.CategoryTag{ID: n.id, Name: n.name, ParentID: n.parentID, Archived: n.archived})
}

// ReparentClass moves a class node under a new parent.
func (x *Index) ReparentClass(tagID, newParentID string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if err := x.class.reparent(tagID, newParentID); err != nil {
		return err
	}
	x.version++
	n := x.class.nodes[tagID]
	return x.persistClass(model.ClassTag{ID: n.id, Name: n.name, ParentID: n.parentID, Archived: n.archived})
}

// SetClassArchived flips archival on a class tag. Historical lines keep
// reporting under the tag; only pickers stop offering it.
func (x *Index) SetClassArchived(tagID string, archived bool) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	n, ok := x.class.nodes[tagID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTag, tagID)
	}
	n.archived = archived
	x.version++
	return x.persistClass(model.ClassTag{ID: n.id, Name: n.name, ParentID: n.parentID, Archived: n.archived})
}

// SetCategoryArchived flips archival on a category tag.
func (x *Index) SetCategoryArchived(tagID string, archived bool) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	n, ok := x.category.nodes[tagID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTag, tagID)
	}
	n.archived = archived
	x.version++
	return x.persistCategory(model.CategoryTag{ID: n.id, Name: n.name, ParentID: n.parentID, Archived: n.archived})
}

// ClassTag returns a class tag by ID.
func (x *Index) ClassTag(tagID string) (model.ClassTag, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	n, ok := x.class.nodes[tagID]
	if !ok {
		return model.ClassTag{}, false
	}
	return model.ClassTag{ID: n.id, Name: n.name, ParentID: n.parentID, Archived: n.archived}, true
}

// CategoryTag returns a category tag by ID.
func (x *Index) CategoryTag(tagID string) (model.CategoryTag, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	n, ok := x.category.nodes[tagID]
	if !ok {
		return model.CategoryTag{}, false
	}
	return model.CategoryTag{ID: n.id, Name: n.name, ParentID: n.parentID, Archived: n.archived}, true
}

// ActiveClassTags returns the class tags offered by assignment pickers, in
// creation order. Archived tags are excluded.
func (x *Index) ActiveClassTags() []model.ClassTag {
	x.mu.RLock()
	defer x.mu.RUnlock()
	var out []model.ClassTag
	for _, tagID := range x.class.order {
		n := x.class.nodes[tagID]
		if n.archived {
			continue
		}
		out = append(out, model.ClassTag{ID: n.id, Name: n.name, ParentID: n.parentID})
	}
	return out
}

// ActiveCategoryTags returns the category tags offered by assignment pickers.
func (x *Index) ActiveCategoryTags() []model.CategoryTag {
	x.mu.RLock()
	defer x.mu.RUnlock()
	var out []model.CategoryTag
	for _, tagID := range x.category.order {
		n := x.category.nodes[tagID]
		if n.archived {
			continue
		}
		out = append(out, model.CategoryTag{ID: n.id, Name: n.name, ParentID: n.parentID})
	}
	return out
}

// Labels returns the tag-ID-to-name map for one axis, archived tags
// included: historical lines keep reporting under archived tags.
func (x *Index) Labels(axis model.GroupAxis) map[string]string {
	x.mu.RLock()
	defer x.mu.RUnlock()

	a := x.class
	if axis == model.AxisCategory {
		a = x.category
	}
	out := make(map[string]string, len(a.nodes))
	for tagID, n := range a.nodes {
		out[tagID] = n.name
	}
	return out
}

// AncestorsOf returns the parent chain of a category tag, nearest first.
func (x *Index) AncestorsOf(categoryTagID string) ([]string, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.category.ancestors(categoryTagID)
}

// DescendantsOf returns a category tag together with everything below it,
// the roll-up set for filtered reports.
func (x *Index) DescendantsOf(categoryTagID string) ([]string, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.category.descendants(categoryTagID)
}

// AssignTags sets the class and/or category tag on an unposted line. Each
// axis holds at most one tag; passing an empty ID leaves that axis untouched.
// Archived tags are rejected.
func (x *Index) AssignTags(line *model.Line, classTagID, categoryTagID string) error {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if classTagID != "" {
		n, ok := x.class.nodes[classTagID]
		if !ok {
			return fmt.Errorf("%w: class %s", ErrUnknownTag, classTagID)
		}
		if n.archived {
			return fmt.Errorf("%w: class %s (%s)", ErrArchivedTag, classTagID, n.name)
		}
	}
	if categoryTagID != "" {
		n, ok := x.category.nodes[categoryTagID]
		if !ok {
			return fmt.Errorf("%w: category %s", ErrUnknownTag, categoryTagID)
		}
		if n.archived {
			return fmt.Errorf("%w: category %s (%s)", ErrArchivedTag, categoryTagID, n.name)
		}
	}

	if classTagID != "" {
		line.ClassTagID = classTagID
	}
	if categoryTagID != "" {
		line.CategoryTagID = categoryTagID
	}
	return nil
}

// ApplySuggestion applies an externally computed tag suggestion through the
// standard assignment path. The core validates, it never suggests.
func (x *Index) ApplySuggestion(line *model.Line, s model.Suggestion, minConfidence float64) error {
	if s.Confidence < minConfidence {
		return fmt.Errorf("%w: %.2f < %.2f", ErrLowConfidence, s.Confidence, minConfidence)
	}
	return x.AssignTags(line, s.ClassTagID, s.CategoryTagID)
}

func (x *Index) persistClass(tag model.ClassTag) error {
	if x.persister == nil {
		return nil
	}
	if err := x.persister.SaveClassTag(tag); err != nil {
		return fmt.Errorf("persisting class tag %s: %w", tag.ID, err)
	}
	return x.persister.SaveIndexVersion(x.version)
}

func (x *Index) persistCategory(tag model.CategoryTag) error {
	if x.persister == nil {
		return nil
	}
	if err := x.persister.SaveCategoryTag(tag); err != nil {
		return fmt.Errorf("persisting category tag %s: %w", tag.ID, err)
	}
	return x.persister.SaveIndexVersion(x.version)
}
