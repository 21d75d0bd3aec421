package validation

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-xmlgen/pkg/document"
)

const (
	metadataTag = "metadata"
	rowTag      = "row"
	indexAttr   = "index"
	idAttr      = "id"
)

// all returns every element in document order. The walk happens once per run.
func (r *run) all() []document.Visit {
	if r.visited {
		return r.nodes
	}
	document.Walk(r.root, func(v document.Visit) bool {
		r.nodes = append(r.nodes, v)
		return true
	})
	r.visited = true
	return r.nodes
}

// checkWellFormed flags anything the serializer would refuse.
func checkWellFormed(r *run) {
	for _, v := range r.all() {
		node := v.Node
		if !document.IsValidName(node.Tag) {
			r.out.errorf(CodeInvalidTag, v.Path, "%q is not a valid element name", node.Tag)
		}
		seen := make(map[string]struct{}, len(node.Attrs))
		for _, attr := range node.Attrs {
			if !document.IsValidName(attr.Name) {
				r.out.errorf(CodeInvalidAttribute, v.Path, "%q is not a valid attribute name", attr.Name)
			}
			if _, dup := seen[attr.Name]; dup {
				r.out.errorf(CodeDuplicateAttr, v.Path, "attribute %q appears more than once", attr.Name)
			}
			seen[attr.Name] = struct{}{}
			if !document.IsValidText(attr.Value) {
				r.out.errorf(CodeInvalidAttrValue, v.Path, "value of attribute %q contains characters not allowed in XML", attr.Name)
			}
		}
		if !document.IsValidText(node.Text) {
			r.out.errorf(CodeInvalidText, v.Path, "text contains characters not allowed in XML")
		}
		for idx, child := range node.Children {
			if child == nil {
				r.out.errorf(CodeNilNode, v.Path, "child %d is nil", idx)
			}
		}
	}
}

// checkShape compares the tree with the configuration and the optional schema.
func checkShape(r *run) {
	rootPath := "/" + r.root.Tag
	if r.root.Tag != r.cfg.RootElement() {
		r.out.errorf(CodeRootMismatch, rootPath, "root element is %q, expected %q", r.root.Tag, r.cfg.RootElement())
	}
	if ns := r.cfg.Namespace(); ns != "" && r.root.Namespace != ns {
		r.out.errorf(CodeNamespaceMismatch, rootPath, "namespace is %q, expected %q", r.root.Namespace, ns)
	}

	if r.cfg.HasMetadata() {
		position := -1
		for idx, child := range r.root.Children {
			if child != nil && child.Tag == metadataTag {
				position = idx
				break
			}
		}
		switch {
		case position < 0:
			r.out.errorf(CodeMissingMetadata, rootPath, "metadata block is missing")
		case position > 0:
			r.out.warnf(CodeMetadataPosition, rootPath+"/"+metadataTag, "metadata block should be the first child")
		}
	}

	for _, v := range r.all() {
		if len(v.Node.Children) > 0 && strings.TrimSpace(v.Node.Text) != "" {
			r.out.warnf(CodeMixedContent, v.Path, "element has both text and child elements")
		}
	}

	checkRaggedRows(r, rootPath)

	if r.schema != nil {
		checkSchemaShape(r)
	}
}

// checkRaggedRows compares every row's columns with the first row.
func checkRaggedRows(r *run, rootPath string) {
	rows := r.root.ChildrenNamed(rowTag)
	if len(rows) < 2 {
		return
	}
	columns := childTags(rows[0])
	known := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		known[col] = struct{}{}
	}

	for idx, row := range rows[1:] {
		path := rootPath + "/" + rowTag + "[" + strconv.Itoa(idx+2) + "]"
		present := make(map[string]struct{})
		var extra []string
		for _, col := range childTags(row) {
			present[col] = struct{}{}
			if _, ok := known[col]; !ok {
				extra = append(extra, col)
			}
		}
		var missing []string
		for _, col := range columns {
			if _, ok := present[col]; !ok {
				missing = append(missing, col)
			}
		}
		if len(missing) > 0 {
			r.out.warnf(CodeRaggedRow, path, "row is missing columns %s present in the first row", strings.Join(missing, ", "))
		}
		if len(extra) > 0 {
			r.out.warnf(CodeRaggedRow, path, "row has columns %s absent from the first row", strings.Join(extra, ", "))
		}
	}
}

func childTags(node *document.Node) []string {
	var tags []string
	seen := make(map[string]struct{})
	for _, child := range node.Children {
		if child == nil {
			continue
		}
		if _, ok := seen[child.Tag]; ok {
			continue
		}
		seen[child.Tag] = struct{}{}
		tags = append(tags, child.Tag)
	}
	return tags
}

func checkSchemaShape(r *run) {
	for _, v := range r.all() {
		rule, ok := r.schema.Elements[v.Node.Tag]
		if !ok {
			continue
		}
		present := make(map[string]struct{})
		for _, tag := range childTags(v.Node) {
			present[tag] = struct{}{}
		}
		for _, tag := range rule.Required {
			if _, ok := present[tag]; !ok {
				r.out.errorf(CodeMissingChild, v.Path, "required child <%s> is missing", tag)
			}
		}
		if len(rule.Required)+len(rule.Optional) > 0 {
			allowed := make(map[string]struct{}, len(rule.Required)+len(rule.Optional))
			for _, tag := range rule.Required {
				allowed[tag] = struct{}{}
			}
			for _, tag := range rule.Optional {
				allowed[tag] = struct{}{}
			}
			for _, tag := range childTags(v.Node) {
				if _, ok := allowed[tag]; !ok {
					r.out.warnf(CodeUnexpectedChild, v.Path, "unexpected child <%s>", tag)
				}
			}
		}
		for _, name := range rule.Attributes {
			if _, ok := v.Node.Attr(name); !ok {
				r.out.errorf(CodeMissingAttribute, v.Path, "required attribute %q is missing", name)
			}
		}
	}
}

type siblingKey struct {
	parent *document.Node
	tag    string
}

// checkIntegrity verifies index sequences, id uniqueness and schema keys.
func checkIntegrity(r *run) {
	expected := make(map[siblingKey]int)
	ids := make(map[string]string)

	for _, v := range r.all() {
		if raw, ok := v.Node.Attr(indexAttr); ok && v.Parent != nil {
			key := siblingKey{parent: v.Parent, tag: v.Node.Tag}
			want := expected[key]
			expected[key] = want + 1
			got, err := strconv.Atoi(raw)
			switch {
			case err != nil || got < 0:
				r.out.errorf(CodeInvalidIndex, v.Path, "index %q is not a non-negative integer", raw)
			case got != want:
				r.out.errorf(CodeIndexSequence, v.Path, "index %d out of sequence, expected %d", got, want)
			}
		}
		if id, ok := v.Node.Attr(idAttr); ok {
			if first, dup := ids[id]; dup {
				r.out.errorf(CodeDuplicateID, v.Path, "id %q already used at %s", id, first)
			} else {
				ids[id] = v.Path
			}
		}
	}

	if r.schema == nil {
		return
	}

	keys := make(map[string]map[string]string, len(r.schema.Unique))
	for _, rule := range r.schema.Unique {
		values := make(map[string]string)
		for _, v := range r.all() {
			if v.Node.Tag != rule.Element {
				continue
			}
			value, ok := keyValue(v.Node, rule.Key)
			if !ok {
				continue
			}
			if first, dup := values[value]; dup {
				r.out.errorf(CodeDuplicateKey, v.Path, "%s %q already used at %s", rule.Name, value, first)
				continue
			}
			values[value] = v.Path
		}
		keys[rule.Name] = values
	}

	for _, rule := range r.schema.References {
		targets := keys[rule.Target]
		for _, v := range r.all() {
			if v.Node.Tag != rule.Element {
				continue
			}
			value, ok := keyValue(v.Node, rule.Key)
			if !ok {
				continue
			}
			if _, found := targets[value]; !found {
				r.out.errorf(CodeDanglingReference, v.Path, "%s %q does not match any %s", rule.Key, value, rule.Target)
			}
		}
	}
}

// keyValue reads "@attr" from an attribute or any other key from the text of
// the first child with that tag.
func keyValue(node *document.Node, key string) (string, bool) {
	if name, ok := strings.CutPrefix(key, "@"); ok {
		return node.Attr(name)
	}
	child := node.Child(key)
	if child == nil {
		return "", false
	}
	return strings.TrimSpace(child.Text), true
}

// checkSize raises warnings for documents that are large enough to be risky.
func checkSize(r *run) {
	rootPath := "/" + r.root.Tag
	visits := r.all()
	if len(visits) > r.limits.MaxNodes {
		r.out.warnf(CodeNodeCount, rootPath, "document has %d elements, limit is %d", len(visits), r.limits.MaxNodes)
	}
	if size := document.EstimateSize(r.root, r.cfg.PrettyPrint()); size > r.limits.MaxBytes {
		r.out.warnf(CodeSizeEstimate, rootPath, "estimated size %d bytes exceeds %d", size, r.limits.MaxBytes)
	}

	deepest := document.Visit{}
	for _, v := range visits {
		if v.Depth > deepest.Depth {
			deepest = v
		}
		if len(v.Node.Text) > r.limits.MaxTextBytes {
			r.out.warnf(CodeLargeText, v.Path, "text is %d bytes, limit is %d", len(v.Node.Text), r.limits.MaxTextBytes)
		}
	}
	if deepest.Depth > r.limits.MaxDepth {
		r.out.warnf(CodeDepth, deepest.Path, "document depth %d exceeds %d", deepest.Depth, r.limits.MaxDepth)
	}
}
