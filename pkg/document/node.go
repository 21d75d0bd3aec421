package document

import "strconv"

// Attr is a single attribute on a Node.
type Attr struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Node is one element of the tree. Namespace is only honoured on the root.
type Node struct {
	Tag       string  `json:"tag"`
	Namespace string  `json:"namespace,omitempty"`
	Attrs     []Attr  `json:"attrs,omitempty"`
	Children  []*Node `json:"children,omitempty"`
	Text      string  `json:"text,omitempty"`
}

// NewRoot creates a detached root element bound to namespace (which may be
// empty).
func NewRoot(tag, namespace string) *Node {
	return &Node{Tag: tag, Namespace: namespace}
}

// AddChild appends a new element named tag and returns it.
func (n *Node) AddChild(tag string) *Node {
	child := &Node{Tag: tag}
	n.Children = append(n.Children, child)
	return child
}

// SetAttr sets an attribute. Existing attributes keep their position so the
// emitted order stays the insertion order of the first write.
func (n *Node) SetAttr(name, value string) {
	for idx := range n.Attrs {
		if n.Attrs[idx].Name == name {
			n.Attrs[idx].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, attr := range n.Attrs {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

// SetText replaces the text content of the node.
func (n *Node) SetText(value string) {
	n.Text = value
}

// Child returns the first direct child named tag, or nil.
func (n *Node) Child(tag string) *Node {
	for _, child := range n.Children {
		if child.Tag == tag {
			return child
		}
	}
	return nil
}

// ChildrenNamed returns the direct children named tag in document order.
func (n *Node) ChildrenNamed(tag string) []*Node {
	var out []*Node
	for _, child := range n.Children {
		if child.Tag == tag {
			out = append(out, child)
		}
	}
	return out
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	if n == nil {
		return 0
	}
	total := 0
	Walk(n, func(Visit) bool {
		total++
		return true
	})
	return total
}

// Visit is handed to Walk callbacks.
type Visit struct {
	Node   *Node
	Parent *Node
	// Path locates the node as /root/child[2]/leaf. Positions are 1-based and
	// only present when siblings share the tag.
	Path  string
	Depth int
}

// Walk visits the subtree in document order (pre-order) without recursion.
// Returning false from fn skips the node's descendants.
func Walk(root *Node, fn func(Visit) bool) {
	if root == nil {
		return
	}
	stack := []Visit{{Node: root, Path: "/" + root.Tag}}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !fn(current) {
			continue
		}

		children := current.Node.Children
		if len(children) == 0 {
			continue
		}
		paths := childPaths(current.Path, children)
		for idx := len(children) - 1; idx >= 0; idx-- {
			if children[idx] == nil {
				continue
			}
			stack = append(stack, Visit{
				Node:   children[idx],
				Parent: current.Node,
				Path:   paths[idx],
				Depth:  current.Depth + 1,
			})
		}
	}
}

func childPaths(parent string, children []*Node) []string {
	totals := make(map[string]int, len(children))
	for _, child := range children {
		if child != nil {
			totals[child.Tag]++
		}
	}
	seen := make(map[string]int, len(totals))
	paths := make([]string, len(children))
	for idx, child := range children {
		if child == nil {
			continue
		}
		seen[child.Tag]++
		path := parent + "/" + child.Tag
		if totals[child.Tag] > 1 {
			path += "[" + strconv.Itoa(seen[child.Tag]) + "]"
		}
		paths[idx] = path
	}
	return paths
}
