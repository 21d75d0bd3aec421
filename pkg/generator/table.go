package generator

import (
	"fmt"
	"strconv"

	"github.com/goliatone/go-xmlgen/pkg/config"
	"github.com/goliatone/go-xmlgen/pkg/document"
	"github.com/goliatone/go-xmlgen/pkg/payload"
)

const (
	// TypeTable is the registry name of TableGenerator.
	TypeTable = "table"
	// RowTag names one table row.
	RowTag = "row"
)

// TableGenerator writes a sequence of mappings as row elements. Rows may be
// ragged; the validator flags them.
type TableGenerator struct {
	build builder
}

// NewTableGenerator is the registry constructor for TypeTable.
func NewTableGenerator(cfg config.Config) (ContentGenerator, error) {
	return &TableGenerator{build: builder{generator: TypeTable, maxDepth: cfg.MaxDepth()}}, nil
}

// GenerateContent implements ContentGenerator.
func (g *TableGenerator) GenerateContent(data any, root *document.Node) error {
	path := "/" + root.Tag
	rows, ok := payload.Items(data)
	if !ok {
		return &ShapeError{Generator: TypeTable, Path: path, Reason: fmt.Sprintf("payload must be a sequence of rows, got %s", describe(data))}
	}
	tableLevel, err := g.build.enter(0, path)
	if err != nil {
		return err
	}

	for idx, row := range rows {
		rowPath := fmt.Sprintf("%s/%s[%d]", path, RowTag, idx+1)
		fields, ok := payload.Fields(row)
		if !ok {
			return &ShapeError{Generator: TypeTable, Path: rowPath, Reason: fmt.Sprintf("row must be a mapping, got %s", describe(row))}
		}
		rowLevel, err := g.build.enter(tableLevel, rowPath)
		if err != nil {
			return err
		}
		node := root.AddChild(RowTag)
		node.SetAttr(IndexAttr, strconv.Itoa(idx))
		if err := g.build.fillFields(node, fields, rowLevel, rowPath, newScope(rowPath, nil)); err != nil {
			return err
		}
	}
	return nil
}

func describe(value any) string {
	if value == nil {
		return "null"
	}
	if _, ok := payload.Fields(value); ok {
		return "mapping"
	}
	if _, ok := payload.Items(value); ok {
		return "sequence"
	}
	return fmt.Sprintf("scalar %T", value)
}
