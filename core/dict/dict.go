// Package dict holds the name dictionary the tagger matches against
// stripped document text.
//
// Dictionaries can be loaded from plain line-oriented text files, from the
// small dictionary DSL (see ParseDSL), or from a SQLite store (see Store).
package dict

import (
	"bufio"
	"io"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/FocuswithJustin/markalign/core/errors"
)

// Entry is one dictionary name with an optional kind label.
type Entry struct {
	Name string `json:"name"`
	Kind string `json:"kind,omitempty"`
}

// Dictionary is a set of entries indexed for longest-match lookup at a
// position in text. Names may contain internal spaces ("New York City").
type Dictionary struct {
	entries []Entry
	// byFirstWord maps the first word of each name to entry indices,
	// ordered by decreasing name length so the first prefix hit is the
	// longest match.
	byFirstWord map[string][]int
}

// New returns an empty Dictionary.
func New() *Dictionary {
	return &Dictionary{byFirstWord: make(map[string][]int)}
}

// Add inserts an entry. Names must be non-empty and start with a word
// character (letter, digit or underscore).
func (d *Dictionary) Add(e Entry) error {
	if e.Name == "" {
		return errors.NewValidation("name", "must not be empty")
	}
	first := firstWord(e.Name)
	if first == "" {
		return errors.NewValidation("name", "must start with a word character: "+e.Name)
	}
	idx := len(d.entries)
	d.entries = append(d.entries, e)

	ids := append(d.byFirstWord[first], idx)
	sort.SliceStable(ids, func(i, j int) bool {
		return len(d.entries[ids[i]].Name) > len(d.entries[ids[j]].Name)
	})
	d.byFirstWord[first] = ids
	return nil
}

// Len returns the number of entries.
func (d *Dictionary) Len() int { return len(d.entries) }

// Entries returns all entries in insertion order.
func (d *Dictionary) Entries() []Entry { return d.entries }

// MatchAt returns the longest entry whose name starts at text[off] and
// ends on a word boundary, along with the matched length in bytes. The
// caller is responsible for ensuring off itself is a word boundary.
func (d *Dictionary) MatchAt(text string, off int) (Entry, int, bool) {
	first := firstWord(text[off:])
	if first == "" {
		return Entry{}, 0, false
	}
	for _, idx := range d.byFirstWord[first] {
		name := d.entries[idx].Name
		if !strings.HasPrefix(text[off:], name) {
			continue
		}
		end := off + len(name)
		if end == len(text) || !IsWordRune(firstRune(text[end:])) {
			return d.entries[idx], len(name), true
		}
	}
	return Entry{}, 0, false
}

// Load reads a plain text dictionary: one entry per line, with an optional
// tab-separated kind. Blank lines and lines starting with '#' are skipped.
func Load(r io.Reader) (*Dictionary, error) {
	d := New()
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		e := Entry{Name: line}
		if name, kind, ok := strings.Cut(line, "\t"); ok {
			e.Name = strings.TrimSpace(name)
			e.Kind = strings.TrimSpace(kind)
		}
		if err := d.Add(e); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.NewIO("read", "dictionary", err)
	}
	return d, nil
}

// IsWordRune reports whether r is part of a word for boundary purposes.
func IsWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// firstWord returns the leading run of word characters in s.
func firstWord(s string) string {
	for i, r := range s {
		if !IsWordRune(r) {
			return s[:i]
		}
	}
	return s
}

// firstRune decodes the first rune of s, or utf8.RuneError if empty.
func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}
