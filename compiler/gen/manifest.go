package gen

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest is the YAML description of the record types to generate
// blueprints for.
//
//	package: blogfix
//	types:
//	  - name: posts.Post
//	    fields:
//	      title: sentence
//	      content: paragraph
//	    relationships:
//	      - name: comments
//	        reverse: post
//	        type: posts.Comment
type Manifest struct {
	Package string     `yaml:"package"`
	Types   []TypeSpec `yaml:"types"`
}

// TypeSpec describes one record type: its generated fields (field name to
// value kind) and its to-many relationships.
type TypeSpec struct {
	Name          string            `yaml:"name"`
	Fields        map[string]string `yaml:"fields"`
	Relationships []RelSpec         `yaml:"relationships"`
}

// RelSpec describes one relationship declaration.
type RelSpec struct {
	Name    string `yaml:"name"`
	Reverse string `yaml:"reverse"`
	Type    string `yaml:"type"`
}

// LoadManifest decodes and validates a manifest document.
func LoadManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("gen: decoding manifest: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadManifestFile is LoadManifest over a file path.
func LoadManifestFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gen: %w", err)
	}
	defer f.Close()
	return LoadManifest(f)
}

func (m *Manifest) validate() error {
	if m.Package == "" {
		return fmt.Errorf("gen: manifest is missing the output package name")
	}
	if len(m.Types) == 0 {
		return fmt.Errorf("gen: manifest declares no types")
	}
	seen := make(map[string]bool, len(m.Types))
	for _, t := range m.Types {
		if !strings.Contains(t.Name, ".") {
			return fmt.Errorf("gen: type name %q must be qualified (namespace.Name)", t.Name)
		}
		if seen[t.Name] {
			return fmt.Errorf("gen: type %q declared twice", t.Name)
		}
		seen[t.Name] = true
		for field, kind := range t.Fields {
			if _, err := fieldValue(kind); err != nil {
				return fmt.Errorf("gen: type %q field %q: %w", t.Name, field, err)
			}
		}
	}
	return nil
}
