// Package message splits commit messages into a body and a "# Conflicts:" block
// and reassembles a consolidated message for a collapsed chain of merges.
package message

import (
	"sort"
	"strings"
)

const (
	// ConflictsHeader is the line git writes above the list of conflicted paths
	ConflictsHeader = "# Conflicts:"

	// conflictEntryPrefix starts every path line inside a conflicts block
	conflictEntryPrefix = "#\t"
)

type scanState int

const (
	stateNormal scanState = iota
	stateInConflicts
)

// Parsed is a commit message split at its conflicts block
type Parsed struct {
	// Saved holds the lines kept from the message, trailing blank lines removed
	Saved []string
	// Conflicts holds the verbatim "#\t<path>" lines of the conflicts block, in order
	Conflicts []string
}

// Parse scans raw line by line. Lines before a "# Conflicts:" header are kept;
// the "#\t" entries directly after it are collected; the first line that is not
// an entry ends the scan and everything from there on is dropped.
func Parse(raw string) Parsed {
	var p Parsed
	state := stateNormal

scan:
	for _, line := range strings.Split(raw, "\n") {
		switch state {
		case stateNormal:
			if line == ConflictsHeader {
				state = stateInConflicts
				continue
			}
			p.Saved = append(p.Saved, line)
		case stateInConflicts:
			if !strings.HasPrefix(line, conflictEntryPrefix) {
				break scan
			}
			p.Conflicts = append(p.Conflicts, line)
		}
	}

	p.Saved = TrimTrailingBlank(p.Saved)
	return p
}

// TrimTrailingBlank drops empty lines from the end of lines. An empty slice is returned unchanged.
func TrimTrailingBlank(lines []string) []string {
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// ConflictSet is a set of distinct conflict entry lines
type ConflictSet map[string]struct{}

// Add inserts every line into the set
func (s ConflictSet) Add(lines ...string) {
	for _, line := range lines {
		s[line] = struct{}{}
	}
}

// Sorted returns the entries in lexicographic order
func (s ConflictSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for line := range s {
		out = append(out, line)
	}
	sort.Strings(out)
	return out
}

// Consolidate builds the message for a collapsed chain: the tip's body followed by
// the union of the conflict entries of the tip and every other message.
func Consolidate(tip string, messages ...string) string {
	set := ConflictSet{}
	tipParsed := Parse(tip)
	set.Add(tipParsed.Conflicts...)
	for _, raw := range messages {
		set.Add(Parse(raw).Conflicts...)
	}
	return Assemble(tipParsed.Saved, set)
}

// Assemble joins body with a conflicts block listing set, if set is non-empty.
func Assemble(body []string, set ConflictSet) string {
	lines := append([]string{}, body...)
	if len(set) > 0 {
		lines = append(lines, "", ConflictsHeader)
		lines = append(lines, set.Sorted()...)
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
