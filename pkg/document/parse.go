package document

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Declaration captures the XML declaration of parsed input.
type Declaration struct {
	Present  bool
	Version  string
	Encoding string
}

// ParseBytes parses a serialized document.
func ParseBytes(data []byte) (*Node, Declaration, error) {
	return Parse(bytes.NewReader(data))
}

// Parse reads a serialized document back into a tree. Prefixed names are kept
// verbatim (prefix:local); the default namespace declaration on the root
// becomes Node.Namespace. Whitespace-only character data inside elements that
// have child elements is dropped, which makes pretty-printed output parse to
// the same tree as compact output. Text before the first child is kept
// verbatim when it holds anything besides whitespace.
func Parse(r io.Reader) (*Node, Declaration, error) {
	var decl Declaration
	if r == nil {
		return nil, decl, &ParseError{Reason: "reader is required"}
	}

	dec := xml.NewDecoder(r)
	dec.Strict = true
	dec.CharsetReader = charsetReader

	type frame struct {
		node *Node
		lead strings.Builder
		tail strings.Builder
	}

	var (
		root  *Node
		stack []*frame
	)

	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, decl, parseError(dec, err)
		}

		switch t := tok.(type) {
		case xml.ProcInst:
			if t.Target == "xml" {
				decl.Present = true
				decl.Version = procInstAttr(string(t.Inst), "version")
				decl.Encoding = procInstAttr(string(t.Inst), "encoding")
			}
		case xml.StartElement:
			node := &Node{Tag: qualifiedName(t.Name)}
			for _, attr := range t.Attr {
				if len(stack) == 0 && attr.Name.Space == "" && attr.Name.Local == "xmlns" {
					node.Namespace = attr.Value
					continue
				}
				node.Attrs = append(node.Attrs, Attr{Name: qualifiedName(attr.Name), Value: attr.Value})
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, decl, &ParseError{Line: line(dec), Reason: "multiple root elements"}
				}
				root = node
			} else {
				parent := stack[len(stack)-1].node
				parent.Children = append(parent.Children, node)
			}
			stack = append(stack, &frame{node: node})
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, decl, &ParseError{Line: line(dec), Reason: fmt.Sprintf("unexpected </%s>", qualifiedName(t.Name))}
			}
			top := stack[len(stack)-1]
			if name := qualifiedName(t.Name); name != top.node.Tag {
				return nil, decl, &ParseError{Line: line(dec), Reason: fmt.Sprintf("element <%s> closed by </%s>", top.node.Tag, name)}
			}
			text := top.lead.String()
			if len(top.node.Children) > 0 {
				if strings.TrimSpace(text) == "" {
					text = ""
				}
				text += top.tail.String()
			}
			top.node.Text = text
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 {
				if len(bytes.TrimSpace(t)) > 0 {
					return nil, decl, &ParseError{Line: line(dec), Reason: "character data outside the root element"}
				}
				continue
			}
			top := stack[len(stack)-1]
			switch {
			case len(top.node.Children) == 0:
				top.lead.Write(t)
			case len(bytes.TrimSpace(t)) > 0:
				// text after a child element only comes from foreign documents
				top.tail.Write(t)
			}
		}
	}

	if len(stack) > 0 {
		return nil, decl, &ParseError{Line: line(dec), Reason: fmt.Sprintf("unclosed element <%s>", stack[len(stack)-1].node.Tag)}
	}
	if root == nil {
		return nil, decl, &ParseError{Reason: "no root element"}
	}
	return root, decl, nil
}

func qualifiedName(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return name.Space + ":" + name.Local
}

func procInstAttr(inst, key string) string {
	idx := strings.Index(inst, key)
	if idx < 0 {
		return ""
	}
	rest := strings.TrimLeft(inst[idx+len(key):], " \t\r\n")
	if !strings.HasPrefix(rest, "=") {
		return ""
	}
	rest = strings.TrimLeft(rest[1:], " \t\r\n")
	if rest == "" {
		return ""
	}
	quote := rest[0]
	if quote != '"' && quote != '\'' {
		return ""
	}
	end := strings.IndexByte(rest[1:], quote)
	if end < 0 {
		return ""
	}
	return rest[1 : end+1]
}

func line(dec *xml.Decoder) int {
	l, _ := dec.InputPos()
	return l
}

func parseError(dec *xml.Decoder, err error) error {
	var syntax *xml.SyntaxError
	if errors.As(err, &syntax) {
		return &ParseError{Line: syntax.Line, Reason: syntax.Msg, Err: err}
	}
	return &ParseError{Line: line(dec), Reason: err.Error(), Err: err}
}
