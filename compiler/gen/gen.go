// Package gen generates typed fabrica blueprints from a YAML manifest.
// Code is built with Jennifer rather than templates: imports are tracked
// automatically and files render deterministically, so the output needs no
// goimports pass.
package gen

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/go-openapi/inflect"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	fabricaPkg  = "github.com/syssam/fabrica"
	schemaPkg   = "github.com/syssam/fabrica/schema"
	gofakeitPkg = "github.com/brianvoe/gofakeit/v6"
)

// Config carries the generation settings.
type Config struct {
	// OutDir is the directory generated files are written to.
	OutDir string

	// Package overrides the manifest's output package name.
	Package string

	// Workers bounds parallel file generation. Defaults to GOMAXPROCS.
	Workers int

	// Header is an extra comment added at the top of each file.
	Header string
}

// Option configures code generation.
type Option func(*Config) error

// WithOutDir sets the output directory.
func WithOutDir(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return fmt.Errorf("gen: output directory cannot be empty")
		}
		c.OutDir = dir
		return nil
	}
}

// WithPackage overrides the output package name.
func WithPackage(pkg string) Option {
	return func(c *Config) error {
		c.Package = pkg
		return nil
	}
}

// WithWorkers sets the number of parallel workers.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n > 0 {
			c.Workers = n
		}
		return nil
	}
}

// WithHeader sets the file header comment.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// Generate writes one factory file per manifest type plus a blueprints
// index file to the output directory. Files are generated in parallel.
func Generate(ctx context.Context, m *Manifest, opts ...Option) error {
	cfg := Config{OutDir: ".", Workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return err
		}
	}
	if cfg.Package == "" {
		cfg.Package = m.Package
	}
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, t := range m.Types {
		g.Go(func() error {
			f, err := factoryFile(cfg, t)
			if err != nil {
				return err
			}
			return f.Save(filepath.Join(cfg.OutDir, fileName(t.Name)))
		})
	}
	g.Go(func() error {
		return indexFile(cfg, m).Save(filepath.Join(cfg.OutDir, "blueprints.go"))
	})
	return g.Wait()
}

// factoryFile builds the blueprint declaration for one type.
func factoryFile(cfg Config, t TypeSpec) (*jen.File, error) {
	f := newFile(cfg)
	name := factoryName(t.Name)

	f.Commentf("%s is the blueprint for %s records.", name, t.Name)
	f.Type().Id(name).Struct(jen.Qual(fabricaPkg, "Recipe"))

	f.Commentf("Record names the record type %s produces.", name)
	f.Func().Params(jen.Id(name)).Id("Record").Params().Qual(fabricaPkg, "RecordRef").Block(
		jen.Return(jen.Qual(fabricaPkg, "RefNamed").Call(jen.Lit(t.Name))),
	)

	dict := jen.Dict{}
	for field, kind := range t.Fields {
		value, err := fieldValue(kind)
		if err != nil {
			return nil, err
		}
		dict[jen.Lit(field)] = value()
	}
	f.Comment("Definition returns the base field mapping.")
	f.Func().Params(jen.Id(name)).Id("Definition").Params(
		jen.Id("fake").Op("*").Qual(gofakeitPkg, "Faker"),
	).Params(jen.Qual(fabricaPkg, "Fields"), jen.Error()).Block(
		jen.Return(jen.Qual(fabricaPkg, "Fields").Values(dict), jen.Nil()),
	)
	return f, nil
}

// indexFile builds blueprints.go: the Blueprints index consumed by
// Registry.Add, and DefineTypes wiring the manifest's relationship
// metadata into a schema registry.
func indexFile(cfg Config, m *Manifest) *jen.File {
	f := newFile(cfg)

	f.Comment("Blueprints returns every generated blueprint, for Registry.Add.")
	f.Func().Id("Blueprints").Params().Index().Qual(fabricaPkg, "Blueprint").Block(
		jen.Return(jen.Index().Qual(fabricaPkg, "Blueprint").ValuesFunc(func(g *jen.Group) {
			for _, t := range m.Types {
				g.Id(factoryName(t.Name)).Values()
			}
		})),
	)

	f.Comment("DefineTypes declares the generated record types and their relationships.")
	f.Func().Id("DefineTypes").Params(jen.Id("reg").Op("*").Qual(schemaPkg, "Registry")).BlockFunc(func(g *jen.Group) {
		for _, t := range m.Types {
			g.Id("reg").Dot("Define").CallFunc(func(call *jen.Group) {
				call.Lit(t.Name)
				for _, rel := range t.Relationships {
					call.Qual(schemaPkg, "HasMany").Call(
						jen.Lit(rel.Name), jen.Lit(rel.Reverse), jen.Lit(rel.Type),
					)
				}
			})
		}
	})
	return f
}

func newFile(cfg Config) *jen.File {
	f := jen.NewFile(cfg.Package)
	f.HeaderComment("Code generated by fabrica. DO NOT EDIT.")
	if cfg.Header != "" {
		f.HeaderComment(cfg.Header)
	}
	return f
}

// valueGen builds the definition value expression for one field kind.
// A fresh statement is built per call; jen statements are not reusable.
type valueGen func() *jen.Statement

// refKindPrefix marks a field kind referencing another blueprint by
// qualified name ("ref:posts.PostFactory").
const refKindPrefix = "ref:"

var fieldKinds = map[string]valueGen{
	"sentence":  func() *jen.Statement { return fakeCall("Sentence", jen.Lit(6)) },
	"paragraph": func() *jen.Statement { return fakeCall("Paragraph", jen.Lit(1), jen.Lit(3), jen.Lit(12), jen.Lit(" ")) },
	"word":      func() *jen.Statement { return fakeCall("Word") },
	"name":      func() *jen.Statement { return fakeCall("Name") },
	"email":     func() *jen.Statement { return fakeCall("Email") },
	"phone":     func() *jen.Statement { return fakeCall("Phone") },
	"city":      func() *jen.Statement { return fakeCall("City") },
	"company":   func() *jen.Statement { return fakeCall("Company") },
	"url":       func() *jen.Statement { return fakeCall("URL") },
	"uuid":      func() *jen.Statement { return fakeCall("UUID") },
	"int":       func() *jen.Statement { return fakeCall("Number", jen.Lit(1), jen.Lit(1000)) },
	"float":     func() *jen.Statement { return fakeCall("Float64Range", jen.Lit(0), jen.Lit(1000)) },
	"bool":      func() *jen.Statement { return fakeCall("Bool") },
	"date":      func() *jen.Statement { return fakeCall("Date") },
}

func fakeCall(method string, args ...jen.Code) *jen.Statement {
	return jen.Id("fake").Dot(method).Call(args...)
}

// fieldValue resolves a manifest field kind to its value builder.
func fieldValue(kind string) (valueGen, error) {
	if ref, ok := strings.CutPrefix(kind, refKindPrefix); ok {
		return func() *jen.Statement {
			return jen.Qual(fabricaPkg, "Use").Call(jen.Lit(ref))
		}, nil
	}
	vg, ok := fieldKinds[kind]
	if !ok {
		return nil, fmt.Errorf("unknown field kind %q (known: %s)", kind, strings.Join(kindNames(), ", "))
	}
	return vg, nil
}

func kindNames() []string {
	names := make([]string, 0, len(fieldKinds))
	for k := range fieldKinds {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

var (
	rules = inflect.NewDefaultRuleset()
	title = cases.Title(language.English)
)

// factoryName derives the blueprint type name: "posts.order_item" becomes
// "OrderItemFactory".
func factoryName(typeName string) string {
	return pascal(baseName(typeName)) + "Factory"
}

// fileName derives the generated file name: "posts.OrderItem" becomes
// "order_item_factory.go".
func fileName(typeName string) string {
	return rules.Underscore(baseName(typeName)) + "_factory.go"
}

func baseName(typeName string) string {
	if i := strings.LastIndex(typeName, "."); i >= 0 {
		return typeName[i+1:]
	}
	return typeName
}

func pascal(s string) string {
	parts := strings.Split(rules.Underscore(s), "_")
	for i, p := range parts {
		parts[i] = title.String(p)
	}
	return strings.Join(parts, "")
}
