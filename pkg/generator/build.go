package generator

import (
	"fmt"
	"strconv"

	"github.com/goliatone/go-xmlgen/pkg/config"
	"github.com/goliatone/go-xmlgen/pkg/document"
	"github.com/goliatone/go-xmlgen/pkg/payload"
)

// IndexAttr carries the 0-based position of repeated elements.
const IndexAttr = "index"

// ItemTag names elements produced for sequences that have no key of their own.
const ItemTag = "item"

// builder materializes arbitrary payload values as elements. depth counts the
// containers (mappings and sequences) entered so far.
type builder struct {
	generator string
	maxDepth  int
}

// fill writes value into node. Mappings become child elements, sequences
// become repeated ItemTag children and scalars become text.
func (b *builder) fill(node *document.Node, value any, depth int, path string) error {
	if fields, ok := payload.Fields(value); ok {
		level, err := b.enter(depth, path)
		if err != nil {
			return err
		}
		return b.fillFields(node, fields, level, path, newScope(path, nil))
	}
	if items, ok := payload.Items(value); ok {
		level, err := b.enter(depth, path)
		if err != nil {
			return err
		}
		return b.fillItems(node, ItemTag, items, level, path)
	}
	return b.setScalar(node, value, path)
}

// fillFields writes one child per field into node. Sequence values repeat the
// field's tag once per item.
func (b *builder) fillFields(node *document.Node, fields []payload.Field, depth int, path string, sc *scope) error {
	for _, field := range fields {
		tag, err := sc.claim(field.Key)
		if err != nil {
			return err
		}
		childPath := path + "/" + tag
		if items, ok := payload.Items(field.Value); ok {
			level, err := b.enter(depth, childPath)
			if err != nil {
				return err
			}
			if err := b.fillItems(node, tag, items, level, path); err != nil {
				return err
			}
			continue
		}
		child := node.AddChild(tag)
		if err := b.fill(child, field.Value, depth, childPath); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) fillItems(node *document.Node, tag string, items []any, depth int, path string) error {
	for idx, item := range items {
		child := node.AddChild(tag)
		child.SetAttr(IndexAttr, strconv.Itoa(idx))
		if err := b.fill(child, item, depth, fmt.Sprintf("%s/%s[%d]", path, tag, idx+1)); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) setScalar(node *document.Node, value any, path string) error {
	text, ok := config.ScalarText(value)
	if !ok {
		return &ShapeError{Generator: b.generator, Path: path, Reason: fmt.Sprintf("unsupported value of type %T", value)}
	}
	if !document.IsValidText(text) {
		return &ShapeError{Generator: b.generator, Path: path, Reason: "value contains characters not allowed in XML"}
	}
	node.SetText(text)
	return nil
}

func (b *builder) enter(depth int, path string) (int, error) {
	level := depth + 1
	if b.maxDepth > 0 && level > b.maxDepth {
		return 0, &DepthExceededError{Path: path, Limit: b.maxDepth}
	}
	return level, nil
}
