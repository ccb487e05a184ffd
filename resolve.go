package fabrica

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// maxResolveDepth bounds recursive related-instance creation. Cyclic
// blueprint graphs are a caller error; the bound turns them into a
// DepthError instead of a hang.
const maxResolveDepth = 25

// compoundSep separates path elements in compound override keys
// ("post__title" overrides the "title" field of the "post" relationship).
const compoundSep = "__"

// expandOverrides returns a copy of the overrides with compound keys
// expanded into nested mappings: "a__b__c" becomes {"a": {"b": {"c": v}}}.
// A compound key and a direct nested mapping for the same relationship
// merge; later keys in iteration order win on conflicting leaves. The
// caller's mapping is never mutated.
func expandOverrides(overrides Fields) Fields {
	out := make(Fields, len(overrides))
	for key, value := range overrides {
		if !strings.Contains(key, compoundSep) {
			setLeaf(out, key, value)
			continue
		}
		parts := strings.Split(key, compoundSep)
		node := out
		for _, part := range parts[:len(parts)-1] {
			node = descend(node, part)
		}
		setLeaf(node, parts[len(parts)-1], value)
	}
	return out
}

// descend returns the nested mapping under key, creating or copying it as
// needed so the result is always writable without touching caller data.
func descend(node Fields, key string) Fields {
	if existing, ok := node[key]; ok {
		if m, ok := asFields(existing); ok {
			next := m.Clone()
			node[key] = next
			return next
		}
	}
	next := Fields{}
	node[key] = next
	return next
}

// setLeaf assigns value under key, deep-merging when both the existing and
// the new value are mappings (a compound key and a direct nested mapping
// for disjoint leaves must coexist).
func setLeaf(node Fields, key string, value Value) {
	nm, nok := asFields(value)
	if !nok {
		node[key] = value
		return
	}
	if existing, ok := node[key]; ok {
		if em, ok := asFields(existing); ok {
			node[key] = mergeFields(em, nm)
			return
		}
	}
	node[key] = nm.Clone()
}

// mergeFields returns base overlaid with over; over wins on conflicting
// leaves, and nested mappings merge recursively. Neither input is mutated.
func mergeFields(base, over Fields) Fields {
	out := base.Clone()
	for k, v := range over {
		bm, bok := asFields(out[k])
		om, ook := asFields(v)
		if bok && ook {
			out[k] = mergeFields(bm, om)
			continue
		}
		out[k] = v
	}
	return out
}

// asFields reports whether v is a field mapping, normalizing the mapping
// types produced by literals and by YAML decoding.
func asFields(v Value) (Fields, bool) {
	switch m := v.(type) {
	case Fields:
		return m, true
	case map[string]any:
		return Fields(m), true
	case nil:
		return nil, false
	default:
		return nil, false
	}
}

// expandSequence produces size override mappings: the i-th is the
// (i mod len(sequence))-th sequence item merged with the flat overrides,
// flat overrides winning on conflicts. An empty sequence yields size
// copies of the flat overrides. A sequence item that is not a field
// mapping is a SequenceTypeError.
func expandSequence(size int, sequence []any, overrides Fields) ([]Fields, error) {
	items := make([]Fields, 0, size)
	for i := 0; i < size; i++ {
		item := Fields{}
		if len(sequence) > 0 {
			raw := sequence[i%len(sequence)]
			m, ok := asFields(raw)
			if !ok {
				return nil, NewSequenceTypeError(i%len(sequence), raw)
			}
			item = m
		}
		items = append(items, mergeFields(item, overrides))
	}
	return items, nil
}

// resolve expands the blueprint definition plus caller overrides into the
// final flat field mapping. Related values (nested blueprints and registry
// references) are eagerly created, recursively, passing through any
// override mapping scoped to their field name.
func (f *Factory) resolve(ctx context.Context, overrides Fields, depth int) (Fields, error) {
	if depth >= maxResolveDepth {
		return nil, NewDepthError(f.record.Name(), maxResolveDepth)
	}
	ov := expandOverrides(overrides)
	def, err := f.bp.Definition(f.fake)
	if err != nil {
		if errors.Is(err, ErrNotImplemented) {
			return nil, NewNotImplementedError(QualifiedName(f.bp))
		}
		return nil, err
	}
	out := make(Fields, len(def))
	for name, value := range def {
		resolved, err := f.resolveField(ctx, name, value, ov, depth)
		if err != nil {
			return nil, err
		}
		out[name] = resolved
	}
	// Overrides for fields the definition does not mention still apply;
	// the reverse-field binding set while draining pending generations
	// depends on this.
	for name, value := range ov {
		if _, ok := out[name]; !ok {
			out[name] = value
		}
	}
	return out, nil
}

// resolveField resolves one field. Precedence, highest first: an explicit
// record instance in the overrides, a blueprint or registry reference in
// the definition (replaced by a freshly created related instance), the
// override literal, the definition value.
func (f *Factory) resolveField(ctx context.Context, name string, value Value, ov Fields, depth int) (Value, error) {
	if o, ok := ov[name]; ok {
		if rec, ok := o.(Record); ok {
			return rec, nil
		}
	}
	switch v := value.(type) {
	case Blueprint:
		return f.createRelated(ctx, name, v, ov, depth)
	case Ref:
		if f.env.Registry == nil {
			return nil, NewUnresolvedRefError(name, string(v))
		}
		bp, err := f.env.Registry.Lookup(string(v))
		if err != nil {
			return nil, NewUnresolvedRefError(name, string(v))
		}
		return f.createRelated(ctx, name, bp, ov, depth)
	default:
		if o, ok := ov[name]; ok {
			return o, nil
		}
		return value, nil
	}
}

// createRelated eagerly creates (not merely makes) the related instance
// for a relationship field, scoping the nested overrides to it.
func (f *Factory) createRelated(ctx context.Context, name string, bp Blueprint, ov Fields, depth int) (Record, error) {
	var nested Fields
	if o, ok := ov[name]; ok {
		m, mok := asFields(o)
		if !mok {
			return nil, fmt.Errorf("fabrica: override for relationship %q must be a field mapping, got %T", name, o)
		}
		nested = m
	}
	child, err := New(f.env, bp)
	if err != nil {
		return nil, err
	}
	return child.create(ctx, nested, depth+1)
}
