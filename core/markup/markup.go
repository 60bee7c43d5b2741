// Package markup parses a markup-bearing document into the structures the
// rest of the system works with: the tag table describing every open/close
// delimiter pair, the stripped (markup-free) text, and the offset map from
// stripped-text coordinates back to original-text coordinates.
//
// The scanner tokenizes with golang.org/x/net/html, tracking byte offsets
// from the raw token lengths. It requires balanced markup: stray or
// mismatched closing tags and unclosed elements are parse errors. Void
// elements (br, img, ...) and self-closing tags contribute no tag record;
// their delimiter text is simply stripped.
package markup

import (
	"bytes"
	"encoding/hex"
	"io"
	"sort"

	"github.com/zeebo/blake3"
	"golang.org/x/net/html"

	"github.com/FocuswithJustin/markalign/core/errors"
	"github.com/FocuswithJustin/markalign/core/tagtable"
)

// voidElements never take a closing tag in HTML; their start tags are
// stripped without producing a tag record.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// segment maps a run of stripped text back to its position in the original
// document.
type segment struct {
	stripped int // start offset in stripped text
	orig     int // start offset in original text
	n        int // length in bytes
}

// Analysis is the result of scanning one document: the original text, the
// stripped text, the tag table, and the stripped-to-original offset map.
// It is immutable and safe for concurrent use.
type Analysis struct {
	doc      string
	stripped string
	tags     *tagtable.Table
	segs     []segment
	fp       string
}

// Text returns the original document text.
func (a *Analysis) Text() string { return a.doc }

// Stripped returns the document text with all markup removed. Entity
// references are left as written so stripped runs correspond byte-for-byte
// to ranges of the original text.
func (a *Analysis) Stripped() string { return a.stripped }

// Tags returns the document's tag table.
func (a *Analysis) Tags() *tagtable.Table { return a.tags }

// Fingerprint returns the hex-encoded BLAKE3 hash of the original document.
func (a *Analysis) Fingerprint() string { return a.fp }

// ToOriginal maps an offset in stripped-text coordinates to original-text
// coordinates. An exclusive end offset that falls exactly on a boundary
// between two stripped runs maps to the start of the later run, i.e. to
// the first original position after the markup skipped between them; the
// corrector's close-tag snap-back accounts for that.
//
// Offsets outside [0, len(Stripped())] panic.
func (a *Analysis) ToOriginal(off int) int {
	if off < 0 || off > len(a.stripped) {
		panic("markup: stripped offset out of range")
	}
	if len(a.segs) == 0 {
		return off
	}
	i := sort.Search(len(a.segs), func(i int) bool { return a.segs[i].stripped > off }) - 1
	s := a.segs[i]
	return s.orig + (off - s.stripped)
}

// openElement is an entry on the scanner's open-element stack.
type openElement struct {
	id   int
	name string
}

// Scan parses doc and returns its Analysis.
func Scan(doc []byte) (*Analysis, error) {
	fp := blake3.Sum256(doc)

	sizeHint := len(doc) / 20
	builder := tagtable.NewBuilder(sizeHint)

	var (
		stripped bytes.Buffer
		segs     []segment
		stack    []openElement
	)

	z := html.NewTokenizer(bytes.NewReader(doc))
	off := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() == io.EOF {
				break
			}
			return nil, &errors.ParseError{
				Format:  "markup",
				Offset:  off,
				Message: "tokenizer failed",
				Err:     z.Err(),
			}
		}
		raw := z.Raw()
		n := len(raw)

		switch tt {
		case html.TextToken:
			segs = append(segs, segment{stripped: stripped.Len(), orig: off, n: n})
			stripped.Write(raw)

		case html.StartTagToken:
			name, _ := z.TagName()
			if !voidElements[string(name)] {
				parent := tagtable.RootTag
				if len(stack) > 0 {
					parent = stack[len(stack)-1].id
				}
				id := builder.OpenTag(parent, off, off+n)
				stack = append(stack, openElement{id: id, name: string(name)})
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			if len(stack) == 0 {
				return nil, errors.NewParseAt("markup", off, "stray closing tag </"+string(name)+">")
			}
			top := stack[len(stack)-1]
			if top.name != string(name) {
				return nil, errors.NewParseAt("markup", off,
					"closing tag </"+string(name)+"> does not match open <"+top.name+">")
			}
			stack = stack[:len(stack)-1]
			builder.CloseTag(top.id, off, off+n)

		case html.SelfClosingTagToken, html.CommentToken, html.DoctypeToken:
			// Stripped; no tag record.
		}
		off += n
	}

	if len(stack) > 0 {
		return nil, errors.NewParseAt("markup", off, "unclosed tag <"+stack[len(stack)-1].name+">")
	}

	return &Analysis{
		doc:      string(doc),
		stripped: stripped.String(),
		tags:     builder.Table(),
		segs:     segs,
		fp:       hex.EncodeToString(fp[:]),
	}, nil
}
