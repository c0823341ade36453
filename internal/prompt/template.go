package prompt

import (
	"strings"
)

// Vars maps placeholder names to their already-rendered values
type Vars map[string]string

// Truthy reports whether name is present and not blank
func (v Vars) Truthy(name string) bool {
	value, ok := v[name]
	return ok && strings.TrimSpace(value) != ""
}

type nodeKind int

const (
	nodeText nodeKind = iota
	nodeVar
	nodeIf
)

type node struct {
	kind     nodeKind
	text     string
	children []node // nodeIf only
}

// Template is a parsed prompt template
type Template struct {
	nodes []node
}

// Parse tokenizes and parses src. Conditional blocks may not nest.
func Parse(src string) (*Template, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}

	var (
		top   []node
		block *node
		open  token
	)
	appendNode := func(n node) {
		if block != nil {
			block.children = append(block.children, n)
			return
		}
		top = append(top, n)
	}

	for _, tok := range tokens {
		switch tok.kind {
		case tokenText:
			appendNode(node{kind: nodeText, text: tok.text})
		case tokenVar:
			appendNode(node{kind: nodeVar, text: tok.text})
		case tokenIfOpen:
			if block != nil {
				return nil, &SyntaxError{Offset: tok.offset, Msg: "nested conditional inside {{#if " + open.text + "}} is not supported"}
			}
			block = &node{kind: nodeIf, text: tok.text}
			open = tok
		case tokenIfClose:
			if block == nil {
				return nil, &SyntaxError{Offset: tok.offset, Msg: "{{/if}} without matching {{#if}}"}
			}
			top = append(top, *block)
			block = nil
		}
	}
	if block != nil {
		return nil, &SyntaxError{Offset: open.offset, Msg: "unclosed {{#if " + open.text + "}}"}
	}

	return &Template{nodes: top}, nil
}

// Execute evaluates the template. Known placeholders are replaced by their
// values, unknown ones are left as written, and conditional blocks are kept
// only when their variable is truthy. Values are emitted verbatim.
func (t *Template) Execute(vars Vars) string {
	var b strings.Builder
	writeNodes(&b, t.nodes, vars)
	return b.String()
}

func writeNodes(b *strings.Builder, nodes []node, vars Vars) {
	for _, n := range nodes {
		switch n.kind {
		case nodeText:
			b.WriteString(n.text)
		case nodeVar:
			if value, ok := vars[n.text]; ok {
				b.WriteString(value)
			} else {
				b.WriteString(openDelim + n.text + closeDelim)
			}
		case nodeIf:
			if vars.Truthy(n.text) {
				writeNodes(b, n.children, vars)
			}
		}
	}
}

// Placeholders returns the distinct variable names referenced by the
// template, including conditional variables, in first-seen order.
func (t *Template) Placeholders() []string {
	seen := make(map[string]bool)
	var names []string
	var walk func([]node)
	walk = func(nodes []node) {
		for _, n := range nodes {
			if (n.kind == nodeVar || n.kind == nodeIf) && !seen[n.text] {
				seen[n.text] = true
				names = append(names, n.text)
			}
			walk(n.children)
		}
	}
	walk(t.nodes)
	return names
}
