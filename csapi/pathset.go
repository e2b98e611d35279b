package csapi

import (
	"sort"
)

// PathCollection is a deduplicated set of DatasetPath.
// Iteration order is not insertion order: Paths and Each emit members in
// canonical order (ascending field-tuple sort) so that search results and
// bulk operations are deterministic and reproducible.
//
// The zero PathCollection is empty and usable.
// Collections are immutable once constructed; combining operations return
// new collections.
type PathCollection struct {
	members map[DatasetPath]struct{}
}

// NewPathCollection builds a collection from paths, dropping duplicates
// silently (set semantics).
func NewPathCollection(paths ...DatasetPath) PathCollection {
	members := make(map[DatasetPath]struct{}, len(paths))
	for _, p := range paths {
		members[p] = struct{}{}
	}
	return PathCollection{members: members}
}

// ParsePathCollection builds a collection from textual paths.
// Duplicates are dropped silently, but any malformed text fails the whole
// construction, so a catalog built from it is never silently partial.
//
// Errors:
//
//    - cistern-error-path-malformed -- when any of the texts does not parse.
func ParsePathCollection(texts ...string) (PathCollection, error) {
	members := make(map[DatasetPath]struct{}, len(texts))
	for _, t := range texts {
		p, err := ParseDatasetPath(t)
		if err != nil {
			return PathCollection{}, err
		}
		members[p] = struct{}{}
	}
	return PathCollection{members: members}, nil
}

// Len reports the number of distinct paths in the collection.
func (c PathCollection) Len() int {
	return len(c.members)
}

// Contains reports exact membership.  The D field is significant here:
// two paths differing only by date range are distinct members.
func (c PathCollection) Contains(p DatasetPath) bool {
	_, ok := c.members[p]
	return ok
}

// Equal reports set equality of the two collections.
func (c PathCollection) Equal(other PathCollection) bool {
	if len(c.members) != len(other.members) {
		return false
	}
	for p := range c.members {
		if !other.Contains(p) {
			return false
		}
	}
	return true
}

// Paths returns the members in canonical order.
func (c PathCollection) Paths() []DatasetPath {
	out := make([]DatasetPath, 0, len(c.members))
	for p := range c.members {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Each calls fn for every member in canonical order, stopping at the first
// error.
func (c PathCollection) Each(fn func(DatasetPath) error) error {
	for _, p := range c.Paths() {
		if err := fn(p); err != nil {
			return err
		}
	}
	return nil
}

// FindAll returns a new collection holding exactly the members that match
// the pattern (D field excluded, per DatasetPath.Matches).  The receiver is
// never mutated.
//
// Errors:
//
//    - cistern-error-path-malformed -- when a pattern field does not compile as a regular expression.
func (c PathCollection) FindAll(pattern DatasetPath) (PathCollection, error) {
	members := make(map[DatasetPath]struct{})
	for p := range c.members {
		ok, err := p.Matches(pattern)
		if err != nil {
			return PathCollection{}, err
		}
		if ok {
			members[p] = struct{}{}
		}
	}
	return PathCollection{members: members}, nil
}

// CollapseDates returns a copy with every member's D field dropped.
// Members that differed only by date range collapse into one.
func (c PathCollection) CollapseDates() PathCollection {
	members := make(map[DatasetPath]struct{}, len(c.members))
	for p := range c.members {
		members[p.DropDate()] = struct{}{}
	}
	return PathCollection{members: members}
}

// Union returns the set union of the two collections.
func (c PathCollection) Union(other PathCollection) PathCollection {
	members := make(map[DatasetPath]struct{}, len(c.members)+len(other.members))
	for p := range c.members {
		members[p] = struct{}{}
	}
	for p := range other.members {
		members[p] = struct{}{}
	}
	return PathCollection{members: members}
}

// Intersect returns the set intersection of the two collections.
func (c PathCollection) Intersect(other PathCollection) PathCollection {
	members := make(map[DatasetPath]struct{})
	for p := range c.members {
		if other.Contains(p) {
			members[p] = struct{}{}
		}
	}
	return PathCollection{members: members}
}

// Difference returns the members of this collection absent from the other.
func (c PathCollection) Difference(other PathCollection) PathCollection {
	members := make(map[DatasetPath]struct{})
	for p := range c.members {
		if !other.Contains(p) {
			members[p] = struct{}{}
		}
	}
	return PathCollection{members: members}
}
