// Package inventory discovers conflict groups in a file listing. The
// sync daemon marks a conflicting variant by inserting a marker of the
// form ".sync-conflict-20240101-113000-ABCDEF" (timestamp plus
// originating device) before the file extension; grouping files by
// their marker-stripped path yields one group per original.
package inventory

import (
	"regexp"
	"sort"
	"time"

	"github.com/syncmend/syncmend/internal/store"
)

// markerPattern matches the conflict marker the daemon inserts into a
// file name: date, time, and the short form of the originating device
// ID.
var markerPattern = regexp.MustCompile(`\.sync-conflict-(\d{8})-(\d{6})-([A-Z0-9]+)`)

// markerTimeLayout is the timestamp layout embedded in the marker.
const markerTimeLayout = "20060102-150405"

// Marker holds the parsed fields of a conflict marker.
type Marker struct {
	// Time is when the daemon detected the conflict.
	Time time.Time
	// Device is the short ID of the device the variant came from.
	Device string
}

// ParseMarker extracts the conflict marker from a path. The second
// return value is false when the path carries no marker.
func ParseMarker(path string) (Marker, bool) {
	m := markerPattern.FindStringSubmatch(path)
	if m == nil {
		return Marker{}, false
	}

	t, err := time.ParseInLocation(markerTimeLayout, m[1]+"-"+m[2], time.Local)
	if err != nil {
		// Matched shape but impossible date (e.g. month 13). Treat as
		// a marker with zero time rather than misfiling the variant
		// as an original.
		return Marker{Device: m[3]}, true
	}

	return Marker{Time: t, Device: m[3]}, true
}

// IsConflict reports whether the path names a conflict variant.
func IsConflict(path string) bool {
	return markerPattern.MatchString(path)
}

// BasePath strips every conflict marker from a path, yielding the path
// the original file lives at.
func BasePath(path string) string {
	return markerPattern.ReplaceAllString(path, "")
}

// ConflictGroup is an original file plus its known conflicting
// variants. Original is nil when the original has already been
// resolved or deleted; the group is still valid and usable, and
// promoting a variant to stand in for the original is the resolver's
// policy, not the scanner's.
type ConflictGroup struct {
	// Base is the marker-stripped path the group is keyed by.
	Base string
	// Original is the file at Base, if present.
	Original *store.FileRef
	// Conflicts holds the marked variants, oldest modification first.
	// The UI and resolver depend on this ordering for deterministic
	// display and default choice.
	Conflicts []store.FileRef
}

// IsConflicted reports whether the group actually contains conflicts.
// A group with zero conflicts is just an ordinary file.
func (g ConflictGroup) IsConflicted() bool {
	return len(g.Conflicts) > 0
}

// ScanGroups partitions a file listing into conflict groups: every
// input file appears in exactly one group, keyed by its
// marker-stripped path. Within a group the unmarked file is the
// original and the variants are ordered by modification time
// ascending. Groups are returned in base-path order.
func ScanGroups(files []store.FileRef) []ConflictGroup {
	byBase := make(map[string]*ConflictGroup)

	for _, file := range files {
		base := BasePath(file.Path)

		group, ok := byBase[base]
		if !ok {
			group = &ConflictGroup{Base: base}
			byBase[base] = group
		}

		if IsConflict(file.Path) {
			group.Conflicts = append(group.Conflicts, file)
			continue
		}

		original := file
		group.Original = &original
	}

	groups := make([]ConflictGroup, 0, len(byBase))

	for _, group := range byBase {
		sort.SliceStable(group.Conflicts, func(i, j int) bool {
			a, b := group.Conflicts[i], group.Conflicts[j]
			if !a.ModTime.Equal(b.ModTime) {
				return a.ModTime.Before(b.ModTime)
			}

			return a.Path < b.Path
		})

		groups = append(groups, *group)
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Base < groups[j].Base
	})

	return groups
}

// Conflicted filters a group list down to groups with at least one
// conflict variant.
func Conflicted(groups []ConflictGroup) []ConflictGroup {
	out := make([]ConflictGroup, 0, len(groups))

	for _, group := range groups {
		if group.IsConflicted() {
			out = append(out, group)
		}
	}

	return out
}

// FindGroup returns the group containing the given path, either as its
// original or as one of its variants. The second return value is false
// when no group matches.
func FindGroup(groups []ConflictGroup, path string) (ConflictGroup, bool) {
	base := BasePath(store.NormalizePath(path))

	for _, group := range groups {
		if group.Base == base {
			return group, true
		}
	}

	return ConflictGroup{}, false
}
