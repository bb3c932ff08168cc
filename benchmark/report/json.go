package report

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/nvr-ai/go-filterbench/benchmark"
)

// Record types of the JSON lines stream.
const (
	RecordRun     = "run"
	RecordResult  = "result"
	RecordSummary = "summary"
)

// Line is one line of JSON output. Exactly one of Run, Result and Summary is
// set, as named by Type.
type Line struct {
	Type    string             `json:"type"`
	Run     *benchmark.RunInfo `json:"run,omitempty"`
	Result  *benchmark.Result  `json:"result,omitempty"`
	Summary *benchmark.Summary `json:"summary,omitempty"`
}

// JSON writes one JSON object per line as the run progresses.
type JSON struct {
	enc *json.Encoder
}

// NewJSON creates a JSON lines reporter.
func NewJSON(w io.Writer) *JSON {
	return &JSON{enc: json.NewEncoder(w)}
}

func (j *JSON) Begin(info benchmark.RunInfo) error {
	return j.enc.Encode(Line{Type: RecordRun, Run: &info})
}

func (j *JSON) Record(res benchmark.Result) error {
	return j.enc.Encode(Line{Type: RecordResult, Result: &res})
}

func (j *JSON) End(sum benchmark.Summary) error {
	return j.enc.Encode(Line{Type: RecordSummary, Summary: &sum})
}

// Document is the YAML report layout.
type Document struct {
	Run     benchmark.RunInfo  `yaml:"run"`
	Results []benchmark.Result `yaml:"results"`
	Summary benchmark.Summary  `yaml:"summary"`
}

// YAML collects the run and writes it as one document on End.
type YAML struct {
	w   io.Writer
	doc Document
}

// NewYAML creates a YAML reporter.
func NewYAML(w io.Writer) *YAML {
	return &YAML{w: w}
}

func (y *YAML) Begin(info benchmark.RunInfo) error {
	y.doc = Document{Run: info}
	return nil
}

func (y *YAML) Record(res benchmark.Result) error {
	y.doc.Results = append(y.doc.Results, res)
	return nil
}

func (y *YAML) End(sum benchmark.Summary) error {
	y.doc.Summary = sum
	enc := yaml.NewEncoder(y.w)
	enc.SetIndent(2)
	if err := enc.Encode(&y.doc); err != nil {
		return err
	}
	return enc.Close()
}
