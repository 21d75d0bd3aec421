// Package generator turns payloads into document trees.
//
// Every document is assembled by the same fixed sequence in Generator.Generate:
// the root element named by the configuration, its namespace and custom
// attributes, an optional metadata block, and finally the type specific content
// produced by a ContentGenerator. Serialization is a separate step so callers
// can validate the tree first.
//
// Content generators are looked up by type name through a Registry. The
// built-in types are "data", "table" and "report".
package generator

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-xmlgen/pkg/config"
	"github.com/goliatone/go-xmlgen/pkg/document"
	"github.com/goliatone/go-xmlgen/pkg/payload"
)

// MetadataTag names the metadata block written before content.
const MetadataTag = "metadata"

// ContentGenerator writes type specific content below a root that already
// carries the namespace, attributes and metadata block.
type ContentGenerator interface {
	GenerateContent(payload any, root *document.Node) error
}

// ContentGeneratorFunc adapts a function to ContentGenerator.
type ContentGeneratorFunc func(payload any, root *document.Node) error

// GenerateContent calls f.
func (f ContentGeneratorFunc) GenerateContent(payload any, root *document.Node) error {
	return f(payload, root)
}

// Generator binds a content step to a configuration.
type Generator struct {
	typeName string
	cfg      config.Config
	content  ContentGenerator
}

// New wraps a content step. Registry.Create is the usual way to obtain one.
func New(typeName string, cfg config.Config, content ContentGenerator) (*Generator, error) {
	if content == nil {
		return nil, errors.New("generator: content generator is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Generator{typeName: typeName, cfg: cfg, content: content}, nil
}

// TypeName returns the registry name the generator was created under.
func (g *Generator) TypeName() string { return g.typeName }

// Config returns the configuration the generator writes with.
func (g *Generator) Config() config.Config { return g.cfg }

// Generate builds a complete tree. On error no tree is returned.
func (g *Generator) Generate(data any) (*document.Node, error) {
	root := document.NewRoot(g.cfg.RootElement(), g.cfg.Namespace())

	attrs := g.cfg.CustomAttributes()
	for _, name := range g.cfg.CustomAttributeNames() {
		root.SetAttr(name, attrs[name])
	}

	if g.cfg.HasMetadata() {
		block := root.AddChild(MetadataTag)
		path := "/" + root.Tag + "/" + MetadataTag
		if err := writeMetadata(block, g.cfg.Metadata(), path); err != nil {
			return nil, err
		}
	}

	if err := g.content.GenerateContent(data, root); err != nil {
		return nil, err
	}
	return root, nil
}

// writeMetadata recurses through nested mappings. Keys are written sorted.
func writeMetadata(node *document.Node, meta map[string]any, path string) error {
	fields, _ := payload.Fields(meta)
	sc := newScope(path, nil)
	for _, field := range fields {
		tag, err := sc.claim(field.Key)
		if err != nil {
			return err
		}
		child := node.AddChild(tag)
		if nested, ok := field.Value.(map[string]any); ok {
			if err := writeMetadata(child, nested, path+"/"+tag); err != nil {
				return err
			}
			continue
		}
		text, ok := config.ScalarText(field.Value)
		if !ok {
			return &ShapeError{Path: path + "/" + tag, Reason: fmt.Sprintf("unsupported metadata value of type %T", field.Value)}
		}
		child.SetText(text)
	}
	return nil
}
