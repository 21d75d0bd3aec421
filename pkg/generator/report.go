package generator

import (
	"fmt"

	"github.com/goliatone/go-xmlgen/pkg/config"
	"github.com/goliatone/go-xmlgen/pkg/document"
	"github.com/goliatone/go-xmlgen/pkg/payload"
)

const (
	// TypeReport is the registry name of ReportGenerator.
	TypeReport = "report"

	SectionTag = "section"
	TitleTag   = "title"
	ContentTag = "content"
)

// ReportGenerator writes {title, sections: [{name, title, content, subsections}]}
// as a title element followed by nested section elements.
type ReportGenerator struct {
	build builder
}

// NewReportGenerator is the registry constructor for TypeReport.
func NewReportGenerator(cfg config.Config) (ContentGenerator, error) {
	return &ReportGenerator{build: builder{generator: TypeReport, maxDepth: cfg.MaxDepth()}}, nil
}

// GenerateContent implements ContentGenerator.
func (g *ReportGenerator) GenerateContent(data any, root *document.Node) error {
	path := "/" + root.Tag
	if _, ok := payload.Fields(data); !ok {
		return &ShapeError{Generator: TypeReport, Path: path, Reason: fmt.Sprintf("payload must be a mapping, got %s", describe(data))}
	}
	title, ok := payload.Lookup(data, "title")
	if !ok {
		return &ShapeError{Generator: TypeReport, Path: path, Reason: `missing required key "title"`}
	}
	rawSections, ok := payload.Lookup(data, "sections")
	if !ok {
		return &ShapeError{Generator: TypeReport, Path: path, Reason: `missing required key "sections"`}
	}
	sections, ok := payload.Items(rawSections)
	if !ok {
		return &ShapeError{Generator: TypeReport, Path: path + "/sections", Reason: fmt.Sprintf("sections must be a sequence, got %s", describe(rawSections))}
	}

	level, err := g.build.enter(0, path)
	if err != nil {
		return err
	}
	if err := g.build.setScalar(root.AddChild(TitleTag), title, path+"/"+TitleTag); err != nil {
		return err
	}
	return g.writeSections(root, sections, level, path)
}

// writeSections appends one section element per entry. Each nesting level of
// subsections counts against the depth ceiling.
func (g *ReportGenerator) writeSections(parent *document.Node, sections []any, depth int, path string) error {
	level, err := g.build.enter(depth, path)
	if err != nil {
		return err
	}
	for idx, raw := range sections {
		sectionPath := fmt.Sprintf("%s/%s[%d]", path, SectionTag, idx+1)
		if _, ok := payload.Fields(raw); !ok {
			return &ShapeError{Generator: TypeReport, Path: sectionPath, Reason: fmt.Sprintf("section must be a mapping, got %s", describe(raw))}
		}
		node := parent.AddChild(SectionTag)

		if name, ok := payload.Lookup(raw, "name"); ok && name != nil {
			text, ok := config.ScalarText(name)
			if !ok || !document.IsValidText(text) {
				return &ShapeError{Generator: TypeReport, Path: sectionPath, Reason: "section name must be a scalar"}
			}
			node.SetAttr("name", text)
		}

		title, _ := payload.Lookup(raw, "title")
		if err := g.build.setScalar(node.AddChild(TitleTag), title, sectionPath+"/"+TitleTag); err != nil {
			return err
		}

		content, _ := payload.Lookup(raw, "content")
		if err := g.build.fill(node.AddChild(ContentTag), content, level, sectionPath+"/"+ContentTag); err != nil {
			return err
		}

		rawSubs, ok := payload.Lookup(raw, "subsections")
		if !ok || rawSubs == nil {
			continue
		}
		subs, ok := payload.Items(rawSubs)
		if !ok {
			return &ShapeError{Generator: TypeReport, Path: sectionPath, Reason: fmt.Sprintf("subsections must be a sequence, got %s", describe(rawSubs))}
		}
		if err := g.writeSections(node, subs, level, sectionPath); err != nil {
			return err
		}
	}
	return nil
}
