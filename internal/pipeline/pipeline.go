// Package pipeline drives a detection run: input format resolution, document
// iteration, segmentation and scoring, and streaming JSONL output.
package pipeline

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/time/rate"

	"github.com/ppiankov/hedgewatch/internal/extract"
	"github.com/ppiankov/hedgewatch/internal/model"
	"github.com/ppiankov/hedgewatch/internal/patterns"
	"github.com/ppiankov/hedgewatch/internal/score"
	"github.com/ppiankov/hedgewatch/internal/segment"
	"github.com/ppiankov/hedgewatch/internal/worker"
)

// Input formats. FormatHTML is never auto-detected; it must be requested
// explicitly.
const (
	FormatAuto  = "auto"
	FormatText  = "text"
	FormatJSONL = "jsonl"
	FormatHTML  = "html"
)

// Auto-detection samples at most this many characters of input
const sniffRunes = 2000

// StdinToken is the doc_id base used when input comes from a pipe
const StdinToken = "STDIN"

// Options configures a detection run
type Options struct {
	Source    string // input path as given; drives doc_id derivation and meta.source
	Format    string // auto, text, jsonl or html
	TextField string // JSONL field holding the document text
	IDField   string // JSONL field holding the document ID
	Threshold float64
	Workers   int     // >1 fans JSONL documents out across a pool
	Rate      float64 // max output records/sec; 0 disables throttling
}

// Stats summarizes one run
type Stats struct {
	Format    string // resolved input format
	Documents int
	Records   int
}

// Pipeline runs detection over one input stream. The compiled library it
// holds is read-only; Detect may be called concurrently, Run may not.
type Pipeline struct {
	cfg     *patterns.Compiled
	scorer  *score.Scorer
	opts    Options
	limiter *rate.Limiter
	stats   Stats
}

// New creates a pipeline. Zero-valued options fall back to the CLI defaults.
func New(cfg *patterns.Compiled, opts Options) *Pipeline {
	if opts.Format == "" {
		opts.Format = FormatAuto
	}
	if opts.TextField == "" {
		opts.TextField = "text"
	}
	if opts.IDField == "" {
		opts.IDField = "doc_id"
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}

	p := &Pipeline{
		cfg:    cfg,
		scorer: score.NewScorer(cfg, opts.Threshold),
		opts:   opts,
	}
	if opts.Rate > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(opts.Rate), 1)
	}
	return p
}

// Detect segments one document and scores every sentence, returning the
// findings that cleared the threshold in document order.
func (p *Pipeline) Detect(text string) []model.Finding {
	var findings []model.Finding
	for _, sent := range segment.Split(text, p.cfg.Boundary) {
		if f, ok := p.scorer.Score(sent); ok {
			findings = append(findings, f)
		}
	}
	return findings
}

// Run reads the whole input, resolves the format, and streams one JSON
// record per flagged sentence to out. The full input is held in memory (the
// in-flight document's text is required for offset recovery); emitted
// records are not buffered.
func (p *Pipeline) Run(ctx context.Context, in io.Reader, out io.Writer) (Stats, error) {
	raw, err := io.ReadAll(in)
	if err != nil {
		return Stats{}, fmt.Errorf("read input: %w", err)
	}
	text := string(raw)

	format := p.opts.Format
	if format == FormatAuto {
		format = DetectFormat(text)
	}
	p.stats = Stats{Format: format}

	w := bufio.NewWriter(out)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	switch format {
	case FormatHTML:
		var visible string
		visible, err = extract.VisibleText(text)
		if err != nil {
			err = fmt.Errorf("extract html text: %w", err)
			break
		}
		err = p.runText(ctx, visible, enc)
	case FormatText:
		err = p.runText(ctx, text, enc)
	case FormatJSONL:
		err = p.runJSONL(ctx, text, enc)
	default:
		err = fmt.Errorf("unknown format: %s", format)
	}

	// Records written before a mid-stream failure stay written.
	if ferr := w.Flush(); err == nil {
		err = ferr
	}
	return p.stats, err
}

// DetectFormat sniffs raw input: jsonl when the first line of the leading
// sample parses as a single JSON value, text otherwise.
func DetectFormat(raw string) string {
	sample := strings.TrimSpace(leadingRunes(raw, sniffRunes))
	if sample == "" {
		return FormatText
	}
	line, _, _ := strings.Cut(sample, "\n")
	var v any
	if json.Unmarshal([]byte(line), &v) == nil {
		return FormatJSONL
	}
	return FormatText
}

func leadingRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func (p *Pipeline) docBase() string {
	if p.opts.Source == "" || p.opts.Source == "-" {
		return StdinToken
	}
	return filepath.Base(p.opts.Source)
}

func (p *Pipeline) runText(ctx context.Context, text string, enc *json.Encoder) error {
	p.stats.Documents = 1
	docID := p.docBase()
	for i, f := range p.Detect(text) {
		if err := p.write(ctx, enc, p.record(docID, i+1, f, 0)); err != nil {
			return err
		}
	}
	return nil
}

// document is one JSONL record queued for detection
type document struct {
	index int    // position among surviving documents, for ordered emission
	id    string // resolved doc_id
	line  int    // 1-based position among non-blank input lines
	text  string
}

func (p *Pipeline) runJSONL(ctx context.Context, raw string, enc *json.Encoder) error {
	docs, err := p.parseLines(raw)
	if err != nil {
		return err
	}
	p.stats.Documents = len(docs)

	if p.opts.Workers <= 1 {
		for _, doc := range docs {
			if err := p.emitDoc(ctx, enc, doc, p.Detect(doc.text)); err != nil {
				return err
			}
		}
		return nil
	}
	return p.runParallel(ctx, docs, enc)
}

// parseLines decodes every non-blank input line. A line that fails to parse
// is fatal: a caller who forced the wrong format should see the failure
// immediately rather than silently lose records. Records whose text field is
// blank, missing or not a string are skipped.
func (p *Pipeline) parseLines(raw string) ([]document, error) {
	base := p.docBase()
	var docs []document
	lineNo := 0
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lineNo++

		obj, err := decodeLine(line)
		if err != nil {
			return nil, fmt.Errorf("jsonl line %d: %w", lineNo, err)
		}

		text, ok := obj[p.opts.TextField].(string)
		if !ok || strings.TrimSpace(text) == "" {
			continue
		}

		id := fmt.Sprintf("%s#%d", base, lineNo)
		if v, present := obj[p.opts.IDField]; present && v != nil {
			id = idString(v)
		}

		docs = append(docs, document{index: len(docs), id: id, line: lineNo, text: text})
	}
	return docs, nil
}

func decodeLine(line string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(line))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after JSON object")
	}
	return obj, nil
}

func idString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}

func (p *Pipeline) record(docID string, sentenceID int, f model.Finding, line int) model.Record {
	return model.Record{
		DocID:           docID,
		SentenceID:      sentenceID,
		Span:            f.Span,
		Sentence:        f.Sentence,
		Score:           f.Score,
		Labels:          f.Labels,
		MatchedPatterns: f.MatchedPatterns,
		Meta: model.RecordMeta{
			Threshold: p.scorer.Threshold(),
			Source:    p.opts.Source,
			JSONLLine: line,
		},
	}
}

func (p *Pipeline) emitDoc(ctx context.Context, enc *json.Encoder, doc document, findings []model.Finding) error {
	for i, f := range findings {
		if err := p.write(ctx, enc, p.record(doc.id, i+1, f, doc.line)); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) write(ctx context.Context, enc *json.Encoder, rec model.Record) error {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	if err := enc.Encode(rec); err != nil {
		return err
	}
	p.stats.Records++
	return nil
}

// detectJob runs detection for one document on the pool
type detectJob struct {
	doc document
	p   *Pipeline
}

func (j *detectJob) Execute(_ context.Context) worker.Result {
	return &detectResult{doc: j.doc, findings: j.p.Detect(j.doc.text)}
}

type detectResult struct {
	doc      document
	findings []model.Finding
}

func (r *detectResult) Index() int      { return r.doc.index }
func (r *detectResult) GetError() error { return nil }

// runParallel fans documents out across a bounded pool. Output preserves
// input line order: results are released through an OrderedEmitter as the
// completed prefix grows, so nothing beyond the out-of-order window is
// buffered.
func (p *Pipeline) runParallel(ctx context.Context, docs []document, enc *json.Encoder) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pool := worker.NewPool(p.opts.Workers)
	pool.Start(ctx)

	go func() {
		for _, doc := range docs {
			pool.Submit(ctx, &detectJob{doc: doc, p: p})
		}
		pool.Close()
	}()

	emitter := worker.NewOrderedEmitter(func(r worker.Result) error {
		res := r.(*detectResult)
		return p.emitDoc(ctx, enc, res.doc, res.findings)
	})

	var emitErr error
	for r := range pool.Results() {
		if emitErr != nil {
			continue // drain so the workers can exit
		}
		if err := emitter.Add(r); err != nil {
			emitErr = err
			cancel()
		}
	}
	return emitErr
}
