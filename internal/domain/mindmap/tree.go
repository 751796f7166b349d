package mindmap

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var ErrInvalidGraph = errors.New("invalid mindmap graph")

// Node is the canonical tree every mindmap is reduced to, whatever the stored format.
type Node struct {
	Title    string  `json:"title"`
	Children []*Node `json:"children"`
}

func newNode(title string) *Node {
	return &Node{Title: title, Children: []*Node{}}
}

// ParseTree turns stored content into a tree. Content that looks like a JSON object is
// read as a {nodes, edges} graph; anything else is markdown where headings nest by level
// and list items nest under the nearest heading or parent item.
func ParseTree(content, fallbackTitle string) (*Node, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return newNode(fallbackTitle), nil
	}
	if strings.HasPrefix(trimmed, "{") {
		return parseGraph([]byte(trimmed), fallbackTitle)
	}
	return parseMarkdown([]byte(content), fallbackTitle), nil
}

type headingFrame struct {
	level int
	node  *Node
}

func parseMarkdown(src []byte, fallbackTitle string) *Node {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	root := newNode(fallbackTitle)
	var stack []headingFrame

	current := func() *Node {
		if len(stack) == 0 {
			return root
		}
		return stack[len(stack)-1].node
	}

	for child := doc.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Heading:
			for len(stack) > 0 && stack[len(stack)-1].level >= n.Level {
				stack = stack[:len(stack)-1]
			}
			node := newNode(inlineText(n, src))
			parent := current()
			parent.Children = append(parent.Children, node)
			stack = append(stack, headingFrame{level: n.Level, node: node})
		case *ast.List:
			parent := current()
			parent.Children = append(parent.Children, listNodes(n, src)...)
		}
	}

	// a document with a single top heading is titled by it
	if len(root.Children) == 1 && root.Children[0].Title != "" {
		if h, ok := doc.FirstChild().(*ast.Heading); ok && h.Level == 1 {
			return root.Children[0]
		}
	}
	return root
}

func listNodes(list *ast.List, src []byte) []*Node {
	var out []*Node
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		li, ok := item.(*ast.ListItem)
		if !ok {
			continue
		}

		node := newNode("")
		for c := li.FirstChild(); c != nil; c = c.NextSibling() {
			switch block := c.(type) {
			case *ast.List:
				node.Children = append(node.Children, listNodes(block, src)...)
			default:
				if node.Title == "" {
					node.Title = inlineText(block, src)
				}
			}
		}
		out = append(out, node)
	}
	return out
}

func inlineText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := node.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

type graphNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Text  string `json:"text"`
	Title string `json:"title"`
	Data  struct {
		Label string `json:"label"`
	} `json:"data"`
}

func (g graphNode) title() string {
	for _, s := range []string{g.Label, g.Data.Label, g.Text, g.Title} {
		if s != "" {
			return s
		}
	}
	return g.ID
}

type graphEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	From   string `json:"from"`
	To     string `json:"to"`
}

func (e graphEdge) ends() (string, string) {
	if e.Source != "" || e.Target != "" {
		return e.Source, e.Target
	}
	return e.From, e.To
}

type graph struct {
	Nodes []graphNode `json:"nodes"`
	Edges []graphEdge `json:"edges"`
}

func parseGraph(raw []byte, fallbackTitle string) (*Node, error) {
	var g graph
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGraph, err)
	}

	byID := make(map[string]graphNode, len(g.Nodes))
	order := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("%w: node without id", ErrInvalidGraph)
		}
		if _, dup := byID[n.ID]; dup {
			continue
		}
		byID[n.ID] = n
		order = append(order, n.ID)
	}

	children := make(map[string][]string)
	hasParent := make(map[string]bool)
	for _, e := range g.Edges {
		from, to := e.ends()
		if _, ok := byID[from]; !ok {
			return nil, fmt.Errorf("%w: edge from unknown node %q", ErrInvalidGraph, from)
		}
		if _, ok := byID[to]; !ok {
			return nil, fmt.Errorf("%w: edge to unknown node %q", ErrInvalidGraph, to)
		}
		children[from] = append(children[from], to)
		hasParent[to] = true
	}

	visited := make(map[string]bool)
	var build func(id string) *Node
	build = func(id string) *Node {
		visited[id] = true
		node := newNode(byID[id].title())
		for _, c := range children[id] {
			if visited[c] {
				continue
			}
			node.Children = append(node.Children, build(c))
		}
		return node
	}

	var roots []*Node
	for _, id := range order {
		if !hasParent[id] && !visited[id] {
			roots = append(roots, build(id))
		}
	}
	// nodes only reachable through a cycle
	for _, id := range order {
		if !visited[id] {
			roots = append(roots, build(id))
		}
	}

	if len(roots) == 1 {
		return roots[0], nil
	}
	root := newNode(fallbackTitle)
	root.Children = append(root.Children, roots...)
	return root, nil
}
