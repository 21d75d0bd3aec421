package generator

import (
	"github.com/goliatone/go-xmlgen/pkg/config"
	"github.com/goliatone/go-xmlgen/pkg/document"
	"github.com/goliatone/go-xmlgen/pkg/payload"
)

// TypeData is the registry name of DataGenerator.
const TypeData = "data"

// DataGenerator maps arbitrary nested payloads onto elements. Mapping keys
// become sanitized tags, sequences repeat the key's tag with an index
// attribute and scalars become text. A top-level sequence produces item
// children and a top-level scalar becomes the root's text.
type DataGenerator struct {
	build builder
}

// NewDataGenerator is the registry constructor for TypeData.
func NewDataGenerator(cfg config.Config) (ContentGenerator, error) {
	return &DataGenerator{build: builder{generator: TypeData, maxDepth: cfg.MaxDepth()}}, nil
}

// GenerateContent implements ContentGenerator.
func (g *DataGenerator) GenerateContent(data any, root *document.Node) error {
	path := "/" + root.Tag
	if fields, ok := payload.Fields(data); ok {
		level, err := g.build.enter(0, path)
		if err != nil {
			return err
		}
		// Root scope includes the metadata block so a payload key cannot
		// shadow it.
		return g.build.fillFields(root, fields, level, path, newScope(path, root.Children))
	}
	return g.build.fill(root, data, 0, path)
}
