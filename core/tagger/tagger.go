// Package tagger finds dictionary names in a document's stripped text and
// emits annotations whose spans are corrected to tag boundaries in the
// original markup.
//
// Candidates whose spans cannot be aligned without crossing non-whitespace
// content are dropped and counted, not reported as errors.
package tagger

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/markalign/core/corrector"
	"github.com/FocuswithJustin/markalign/core/dict"
	"github.com/FocuswithJustin/markalign/core/markup"
	"github.com/FocuswithJustin/markalign/internal/logging"
)

// Annotation is one matched dictionary name with its corrected span in
// original-text coordinates.
type Annotation struct {
	Name string         `json:"name"`
	Kind string         `json:"kind,omitempty"`
	Span corrector.Span `json:"span"`
	Text string         `json:"text"`
}

// Result is the outcome of one tagging run.
type Result struct {
	RunID       string       `json:"run_id"`
	Fingerprint string       `json:"fingerprint"`
	Annotations []Annotation `json:"annotations"`
	Dropped     int          `json:"dropped"`
}

// Tagger matches one dictionary against analyzed documents. It keeps no
// per-run state and may be shared between goroutines.
type Tagger struct {
	dict *dict.Dictionary
}

// New returns a Tagger over d.
func New(d *dict.Dictionary) *Tagger {
	return &Tagger{dict: d}
}

// Run tags one analyzed document. Matches are non-overlapping; at each
// word boundary the longest dictionary name wins and scanning resumes
// after it.
func (t *Tagger) Run(a *markup.Analysis) *Result {
	start := time.Now()
	res := &Result{
		RunID:       uuid.NewString(),
		Fingerprint: a.Fingerprint(),
	}

	text := a.Stripped()
	corr := corrector.New(a.Text(), a.Tags())

	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !dict.IsWordRune(r) {
			i += size
			continue
		}
		// i is a word start: the scan only stops on a word rune after
		// consuming a full word or a non-word rune.
		if e, n, ok := t.dict.MatchAt(text, i); ok {
			origStart := a.ToOriginal(i)
			origEnd := a.ToOriginal(i + n)
			if sp, aligned := corr.CorrectPair(origStart, origEnd); aligned {
				res.Annotations = append(res.Annotations, Annotation{
					Name: e.Name,
					Kind: e.Kind,
					Span: sp,
					Text: a.Text()[sp.Start:sp.End],
				})
			} else {
				res.Dropped++
			}
			i += n
			continue
		}
		i += wordLen(text[i:])
	}

	logging.TagRun(res.RunID, res.Fingerprint, len(res.Annotations), res.Dropped, time.Since(start))
	return res
}

// wordLen returns the byte length of the leading word in s.
func wordLen(s string) int {
	for i, r := range s {
		if !dict.IsWordRune(r) {
			return i
		}
	}
	return len(s)
}
