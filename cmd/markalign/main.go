// Command markalign scans markup documents, strips them, and tags them
// against a name dictionary, correcting every annotation span to tag
// boundaries in the original text.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/markalign/core/cache"
	"github.com/FocuswithJustin/markalign/core/corrector"
	"github.com/FocuswithJustin/markalign/core/dict"
	"github.com/FocuswithJustin/markalign/core/errors"
	"github.com/FocuswithJustin/markalign/core/markup"
	"github.com/FocuswithJustin/markalign/core/sqlite"
	"github.com/FocuswithJustin/markalign/core/tagger"
	"github.com/FocuswithJustin/markalign/core/xml"
	"github.com/FocuswithJustin/markalign/internal/logging"
)

const version = "0.1.0"

// CLI defines the command-line interface for markalign.
var CLI struct {
	// Global flags
	LogLevel  string `name:"log-level" default:"info" enum:"debug,info,warn,error" help:"Log level"`
	LogFormat string `name:"log-format" default:"text" enum:"text,json" help:"Log output format"`

	Scan    ScanCmd    `cmd:"" help:"Parse markup and print the tag table"`
	Strip   StripCmd   `cmd:"" help:"Print document text with markup removed"`
	Tag     TagCmd     `cmd:"" help:"Tag documents against a dictionary"`
	Correct CorrectCmd `cmd:"" help:"Correct one candidate offset pair"`
	Dict    DictGroup  `cmd:"" help:"Dictionary operations"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// ScanCmd parses a document and prints its tag table.
type ScanCmd struct {
	Path     string `arg:"" help:"Markup document (.xz accepted)" type:"existingfile"`
	Validate bool   `help:"Check XML well-formedness before scanning"`
	XPath    string `name:"xpath" help:"Also print elements matching this XPath expression"`
}

// tagRecord is the JSON shape of one tag table row.
type tagRecord struct {
	ID         int `json:"id"`
	Parent     int `json:"parent"`
	OpenStart  int `json:"open_start"`
	OpenEnd    int `json:"open_end"`
	CloseStart int `json:"close_start"`
	CloseEnd   int `json:"close_end"`
}

func (c *ScanCmd) Run() error {
	data, err := readInput(c.Path)
	if err != nil {
		return err
	}

	if c.Validate {
		result := xml.Validate(data)
		if !result.Valid {
			for _, e := range result.Errors {
				fmt.Fprintf(os.Stderr, "%s: offset %d: %s\n", c.Path, e.Offset, e.Message)
			}
			return errors.NewParse("XML", c.Path, "document is not well-formed")
		}
	}

	if c.XPath != "" {
		doc, err := xml.Parse(data)
		if err != nil {
			return err
		}
		nodes, err := doc.XPath(c.XPath)
		if err != nil {
			return err
		}
		for _, n := range nodes {
			fmt.Printf("%s\t%s\n", n.Name(), n.InnerText())
		}
	}

	a, err := markup.Scan(data)
	if err != nil {
		return err
	}

	tags := a.Tags()
	out := struct {
		Fingerprint string      `json:"fingerprint"`
		Tags        []tagRecord `json:"tags"`
	}{Fingerprint: a.Fingerprint(), Tags: make([]tagRecord, 0, tags.Len())}
	for id := 0; id < tags.Len(); id++ {
		out.Tags = append(out.Tags, tagRecord{
			ID:         id,
			Parent:     tags.Parent(id),
			OpenStart:  tags.OpenStart(id),
			OpenEnd:    tags.OpenEnd(id),
			CloseStart: tags.CloseStart(id),
			CloseEnd:   tags.CloseEnd(id),
		})
	}
	return printJSON(out)
}

// StripCmd prints the stripped text of a document.
type StripCmd struct {
	Path   string `arg:"" help:"Markup document (.xz accepted)" type:"existingfile"`
	Output string `short:"o" help:"Write to file instead of stdout" type:"path"`
}

func (c *StripCmd) Run() error {
	data, err := readInput(c.Path)
	if err != nil {
		return err
	}
	a, err := markup.Scan(data)
	if err != nil {
		return err
	}
	if c.Output == "" {
		_, err = io.WriteString(os.Stdout, a.Stripped())
		return err
	}
	if err := os.WriteFile(c.Output, []byte(a.Stripped()), 0644); err != nil {
		return errors.NewIO("write", c.Output, err)
	}
	return nil
}

// TagCmd tags one or more documents against a dictionary.
type TagCmd struct {
	Paths []string `arg:"" help:"Markup documents (.xz accepted)" type:"existingfile"`
	Dict  string   `required:"" help:"Dictionary file (.txt, .dsl, or .db)" type:"existingfile"`
}

// taggedDoc pairs a document path with its tagging result.
type taggedDoc struct {
	Path   string         `json:"path"`
	Result *tagger.Result `json:"result"`
}

func (c *TagCmd) Run() error {
	d, err := loadDictionary(c.Dict)
	if err != nil {
		return err
	}
	logging.Info("dictionary loaded", "path", c.Dict, "entries", d.Len())

	tg := tagger.New(d)
	analyses := cache.NewDefaultAnalysisCache()

	var out []taggedDoc
	for _, path := range c.Paths {
		data, err := readInput(path)
		if err != nil {
			return err
		}
		sum := blake3.Sum256(data)
		fp := fmt.Sprintf("%x", sum[:])

		a, ok := analyses.Get(fp)
		if !ok {
			if a, err = markup.Scan(data); err != nil {
				return errors.Wrapf(err, "scanning %s", path)
			}
			analyses.Put(fp, a)
		}
		out = append(out, taggedDoc{Path: path, Result: tg.Run(a)})
	}

	stats := analyses.Stats()
	logging.Debug("analysis cache", "hits", stats.Hits, "misses", stats.Misses)
	return printJSON(out)
}

// CorrectCmd corrects a single candidate offset pair against a document.
type CorrectCmd struct {
	Path  string `arg:"" help:"Markup document (.xz accepted)" type:"existingfile"`
	Start int    `arg:"" help:"Candidate start offset (original-text bytes)"`
	End   int    `arg:"" help:"Candidate end offset (original-text bytes)"`
}

func (c *CorrectCmd) Run() error {
	data, err := readInput(c.Path)
	if err != nil {
		return err
	}
	a, err := markup.Scan(data)
	if err != nil {
		return err
	}
	if c.Start < 0 || c.Start > c.End || c.End > len(a.Text()) {
		return errors.NewValidation("offsets",
			fmt.Sprintf("pair [%d,%d) out of range for document of length %d", c.Start, c.End, len(a.Text())))
	}

	corr := corrector.New(a.Text(), a.Tags())
	sp, ok := corr.CorrectPair(c.Start, c.End)
	if !ok {
		return fmt.Errorf("pair [%d,%d) is unalignable: widening would cross non-whitespace content", c.Start, c.End)
	}
	return printJSON(struct {
		Span corrector.Span `json:"span"`
		Text string         `json:"text"`
	}{Span: sp, Text: a.Text()[sp.Start:sp.End]})
}

// DictGroup contains dictionary operations.
type DictGroup struct {
	Build DictBuildCmd `cmd:"" help:"Compile a text or DSL dictionary into a SQLite store"`
	Info  DictInfoCmd  `cmd:"" help:"Print dictionary summary"`
}

// DictBuildCmd compiles a dictionary into a SQLite store.
type DictBuildCmd struct {
	Input  string `arg:"" help:"Source dictionary (.txt or .dsl, .xz accepted)" type:"existingfile"`
	Output string `arg:"" help:"SQLite store to create" type:"path"`
}

func (c *DictBuildCmd) Run() error {
	d, err := loadDictionary(c.Input)
	if err != nil {
		return err
	}
	store, err := dict.CreateStore(c.Output)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Put(d.Entries()); err != nil {
		return err
	}
	logging.Info("dictionary store built",
		"input", c.Input, "output", c.Output,
		"entries", d.Len(), "driver", sqlite.DriverType())
	return nil
}

// DictInfoCmd prints a dictionary summary.
type DictInfoCmd struct {
	Path string `arg:"" help:"Dictionary file (.txt, .dsl, or .db)" type:"existingfile"`
}

func (c *DictInfoCmd) Run() error {
	d, err := loadDictionary(c.Path)
	if err != nil {
		return err
	}
	kinds := map[string]int{}
	for _, e := range d.Entries() {
		kinds[e.Kind]++
	}
	return printJSON(struct {
		Path    string         `json:"path"`
		Entries int            `json:"entries"`
		Kinds   map[string]int `json:"kinds"`
	}{Path: c.Path, Entries: d.Len(), Kinds: kinds})
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("markalign %s (sqlite driver: %s)\n", version, sqlite.DriverType())
	return nil
}

// readInput reads a file, transparently decompressing .xz input.
func readInput(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, errors.NewParse("xz", path, err.Error())
		}
		r = xr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	return data, nil
}

// loadDictionary loads a dictionary by file extension: SQLite stores
// (.db/.sqlite), the dictionary DSL (.dsl), or plain lines otherwise.
// An .xz suffix on text inputs is handled transparently.
func loadDictionary(path string) (*dict.Dictionary, error) {
	switch filepath.Ext(strings.TrimSuffix(path, ".xz")) {
	case ".db", ".sqlite":
		store, err := dict.OpenStore(path)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.Load()
	case ".dsl":
		data, err := readInput(path)
		if err != nil {
			return nil, err
		}
		return dict.ParseDSL(path, data)
	default:
		data, err := readInput(path)
		if err != nil {
			return nil, err
		}
		return dict.Load(strings.NewReader(string(data)))
	}
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("markalign"),
		kong.Description("Align annotation spans with markup tag boundaries."),
		kong.UsageOnError(),
	)

	level, err := logging.ParseLevel(CLI.LogLevel)
	if err != nil {
		ctx.Fatalf("%v", err)
	}
	format, err := logging.ParseFormat(CLI.LogFormat)
	if err != nil {
		ctx.Fatalf("%v", err)
	}
	logging.InitLogger(level, format)

	ctx.FatalIfErrorf(ctx.Run())
}
