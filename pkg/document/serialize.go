package document

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/shabbyrobe/xmlwriter"
	"golang.org/x/text/encoding"
)

// DefaultIndent is one pretty-print level.
const DefaultIndent = "  "

// SerializeOptions controls the byte form of a tree.
type SerializeOptions struct {
	// Encoding is declared in the XML declaration and used to transcode the
	// output. Empty means UTF-8.
	Encoding string
	// Pretty indents every depth level by Indent.
	Pretty bool
	// Indent overrides DefaultIndent when Pretty is set.
	Indent string
}

func (o SerializeOptions) encodingName() string {
	if strings.TrimSpace(o.Encoding) == "" {
		return DefaultEncoding
	}
	return strings.TrimSpace(o.Encoding)
}

// Serialize writes root to w as an XML 1.0 document. The tree is checked in
// full before the first byte is written, so an invalid tree never produces
// partial output.
func Serialize(w io.Writer, root *Node, opts SerializeOptions) error {
	if w == nil {
		return fmt.Errorf("document: writer is required")
	}
	if root == nil {
		return &SerializationError{Reason: "root node is nil"}
	}

	name := opts.encodingName()
	enc, err := ResolveEncoding(name)
	if err != nil {
		return &SerializationError{Reason: err.Error(), Err: err}
	}
	if err := checkTree(root, name, enc); err != nil {
		return err
	}

	var options []xmlwriter.Option
	if opts.Pretty {
		indent := opts.Indent
		if indent == "" {
			indent = DefaultIndent
		}
		options = append(options, xmlwriter.WithIndentString(indent))
	}

	xw := xmlwriter.OpenEncoding(w, name, enc.NewEncoder(), options...)
	if err := xw.StartDoc(xmlwriter.Doc{}); err != nil {
		return fmt.Errorf("document: write declaration: %w", err)
	}
	if err := writeNode(xw, root, true); err != nil {
		return err
	}
	if err := xw.EndAllFlush(); err != nil {
		return fmt.Errorf("document: flush: %w", err)
	}
	return nil
}

// Marshal serializes root into memory.
func Marshal(root *Node, opts SerializeOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := Serialize(&buf, root, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeNode(xw *xmlwriter.Writer, n *Node, isRoot bool) error {
	if err := xw.StartElem(xmlwriter.Elem{Name: n.Tag}); err != nil {
		return fmt.Errorf("document: write <%s>: %w", n.Tag, err)
	}
	if isRoot && n.Namespace != "" {
		if err := xw.WriteAttr(xmlwriter.Attr{Name: "xmlns", Value: n.Namespace}); err != nil {
			return fmt.Errorf("document: write xmlns: %w", err)
		}
	}
	for _, attr := range n.Attrs {
		if err := xw.WriteAttr(xmlwriter.Attr{Name: attr.Name, Value: attr.Value}); err != nil {
			return fmt.Errorf("document: write attribute %s on <%s>: %w", attr.Name, n.Tag, err)
		}
	}
	if n.Text != "" {
		if err := writeText(xw, n.Text); err != nil {
			return fmt.Errorf("document: write text of <%s>: %w", n.Tag, err)
		}
	}
	for _, child := range n.Children {
		if child == nil {
			continue
		}
		if err := writeNode(xw, child, false); err != nil {
			return err
		}
	}
	if err := xw.EndElem(); err != nil {
		return fmt.Errorf("document: close <%s>: %w", n.Tag, err)
	}
	return nil
}

// writeText emits character data with carriage returns as character
// references, since parsers normalize a literal CR to LF. The first segment is
// always written so the start tag is closed before any raw reference.
func writeText(xw *xmlwriter.Writer, text string) error {
	for idx, segment := range strings.Split(text, "\r") {
		if idx > 0 {
			if err := xw.WriteRaw("&#xD;"); err != nil {
				return err
			}
		}
		if idx == 0 || segment != "" {
			if err := xw.WriteText(segment); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkTree rejects names and values the writer cannot emit.
func checkTree(root *Node, encName string, enc encoding.Encoding) error {
	var encoder *encoding.Encoder
	if !isUnicodeEncoding(encName) {
		encoder = enc.NewEncoder()
	}
	representable := func(s string) bool {
		if encoder == nil || s == "" {
			return true
		}
		_, err := encoder.String(s)
		return err == nil
	}

	var failure error
	Walk(root, func(v Visit) bool {
		n := v.Node
		if !IsValidName(n.Tag) {
			failure = &SerializationError{Path: v.Path, Reason: fmt.Sprintf("invalid element name %q", n.Tag)}
			return false
		}
		if !representable(n.Tag) {
			failure = &SerializationError{Path: v.Path, Reason: fmt.Sprintf("element name not representable in %s", encName)}
			return false
		}
		if v.Depth == 0 && (!IsValidText(n.Namespace) || !representable(n.Namespace)) {
			failure = &SerializationError{Path: v.Path, Reason: "namespace cannot be written as text"}
			return false
		}
		seen := make(map[string]struct{}, len(n.Attrs))
		for _, attr := range n.Attrs {
			if !IsValidName(attr.Name) {
				failure = &SerializationError{Path: v.Path, Reason: fmt.Sprintf("invalid attribute name %q", attr.Name)}
				return false
			}
			if _, dup := seen[attr.Name]; dup {
				failure = &SerializationError{Path: v.Path, Reason: fmt.Sprintf("duplicate attribute %q", attr.Name)}
				return false
			}
			seen[attr.Name] = struct{}{}
			if !IsValidText(attr.Value) || !representable(attr.Value) {
				failure = &SerializationError{Path: v.Path, Reason: fmt.Sprintf("attribute %s cannot be written as text", attr.Name)}
				return false
			}
		}
		if !IsValidText(n.Text) || !representable(n.Text) {
			failure = &SerializationError{Path: v.Path, Reason: "text cannot be written as XML character data"}
			return false
		}
		return failure == nil
	})
	return failure
}

// EstimateSize approximates the serialized byte count of the tree without
// writing it.
func EstimateSize(root *Node, pretty bool) int64 {
	if root == nil {
		return 0
	}
	total := int64(len(`<?xml version="1.0" encoding="UTF-8"?>`) + 1)
	if root.Namespace != "" {
		total += int64(len(root.Namespace) + len(` xmlns=""`))
	}
	Walk(root, func(v Visit) bool {
		n := v.Node
		total += int64(2*len(n.Tag) + 5)
		for _, attr := range n.Attrs {
			total += int64(len(attr.Name) + len(attr.Value) + 4)
		}
		total += int64(len(n.Text)) + int64(4*strings.Count(n.Text, "&")+3*strings.Count(n.Text, "<")+4*strings.Count(n.Text, "\r"))
		if pretty {
			total += int64(v.Depth*len(DefaultIndent) + 1)
		}
		return true
	})
	return total
}
