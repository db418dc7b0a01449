package tensorboard

import "sort"

// RunTagFilter is a set-membership predicate over (run, tag) pairs. A pair is
// admitted iff the run passes the run set and the tag passes the tag set,
// where a nil set admits everything. A nil *RunTagFilter admits every pair,
// which is how an omitted filter is spelled at call sites.
//
// RunTagFilter is immutable after construction and safe for concurrent use.
type RunTagFilter struct {
	runs map[string]struct{}
	tags map[string]struct{}
}

// NewRunTagFilter constructs a filter from collections of run and tag names.
// Order and multiplicity of the inputs are irrelevant; each collection is
// treated as a set. A nil slice means "admit all" for that dimension; note
// that an empty non-nil slice admits nothing.
func NewRunTagFilter(runs, tags []string) *RunTagFilter {
	return &RunTagFilter{runs: toSet(runs), tags: toSet(tags)}
}

func toSet(names []string) map[string]struct{} {
	if names == nil {
		return nil
	}
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

// Admits reports whether the given (run, tag) pair passes the filter. Any
// strings are valid inputs, including ones that name no existing run or tag.
func (f *RunTagFilter) Admits(run, tag string) bool {
	if f == nil {
		return true
	}
	if f.runs != nil {
		if _, ok := f.runs[run]; !ok {
			return false
		}
	}
	if f.tags != nil {
		if _, ok := f.tags[tag]; !ok {
			return false
		}
	}
	return true
}

// Runs returns the admitted run names, sorted, or nil if all runs are
// admitted. The returned slice is a copy.
func (f *RunTagFilter) Runs() []string {
	if f == nil {
		return nil
	}
	return setToSorted(f.runs)
}

// Tags returns the admitted tag names, sorted, or nil if all tags are
// admitted. The returned slice is a copy.
func (f *RunTagFilter) Tags() []string {
	if f == nil {
		return nil
	}
	return setToSorted(f.tags)
}

func setToSorted(set map[string]struct{}) []string {
	if set == nil {
		return nil
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
