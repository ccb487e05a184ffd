// Package fixtures loads override mappings and sequences from YAML
// documents, for feeding batch creation and Has calls:
//
//	seq, err := fixtures.LoadSequenceFile("testdata/comments.yaml")
//	records, err := f.CreateBatch(ctx, 5, fabrica.WithSequence(seq...))
package fixtures

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/syssam/fabrica"
)

// LoadOverrides decodes a single YAML mapping into a field mapping.
func LoadOverrides(r io.Reader) (fabrica.Fields, error) {
	var raw map[string]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("fixtures: decoding overrides: %w", err)
	}
	m, ok := normalize(raw).(fabrica.Fields)
	if !ok {
		return nil, fmt.Errorf("fixtures: document is not a mapping")
	}
	return m, nil
}

// LoadSequence decodes a YAML list of mappings into sequence items for
// fabrica.WithSequence. Items that are not mappings are passed through and
// surface as a SequenceTypeError at merge time.
func LoadSequence(r io.Reader) ([]any, error) {
	var raw []any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("fixtures: decoding sequence: %w", err)
	}
	out := make([]any, len(raw))
	for i, item := range raw {
		out[i] = normalize(item)
	}
	return out, nil
}

// LoadOverridesFile is LoadOverrides over a file path.
func LoadOverridesFile(path string) (fabrica.Fields, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fixtures: %w", err)
	}
	defer f.Close()
	return LoadOverrides(f)
}

// LoadSequenceFile is LoadSequence over a file path.
func LoadSequenceFile(path string) ([]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fixtures: %w", err)
	}
	defer f.Close()
	return LoadSequence(f)
}

// normalize converts the mapping types the YAML decoder produces into
// fabrica.Fields, recursively, so loaded data merges cleanly with literal
// overrides.
func normalize(v any) any {
	switch m := v.(type) {
	case map[string]any:
		out := make(fabrica.Fields, len(m))
		for k, val := range m {
			out[k] = normalize(val)
		}
		return out
	case map[any]any:
		out := make(fabrica.Fields, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(m))
		for i, val := range m {
			out[i] = normalize(val)
		}
		return out
	default:
		return v
	}
}
