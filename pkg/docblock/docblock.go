// Package docblock implements the doc-comment adapter (C5): parsing a
// node's attached doc-comment text into tagged sections with variable-name
// and type fields, the shape spec.md's C6/C8 need for @param/@return/@var
// resolution. Grounded on the teacher's own text-wrangling idiom
// (pkg/scope/build.go, pkg/lang/treesitter/parser.go's rawRangeText) —
// plain stdlib string/regexp scanning, no library: no pack example reaches
// for a doc-comment library, and this is a closed, tiny grammar.
package docblock

import (
	"regexp"
	"strings"
)

// Tag is one parsed doc-comment annotation, e.g. "@param int $a description".
type Tag struct {
	Name     string // "param", "return", "var", ...
	VarName  string // for @param/@var: the variable name, without the "$"
	Type     string // the raw type-string token, unresolved
	Rest     string // remaining description text
}

// Block is a parsed doc-comment: every tag it carries, in source order.
type Block struct {
	tags []Tag
}

var tagLine = regexp.MustCompile(`^@([A-Za-z][A-Za-z0-9_-]*)\s*(.*)$`)
var paramOrVar = regexp.MustCompile(`^(\S+)\s*\$([A-Za-z_][A-Za-z0-9_]*)\s*(.*)$`)
var typeOnly = regexp.MustCompile(`^(\S+)\s*(.*)$`)

// Parse scans raw doc-comment text (including its /** ... */ delimiters and
// leading " * " line prefixes, if present) into a Block.
func Parse(raw string) Block {
	var b Block
	for _, line := range strings.Split(raw, "\n") {
		line = stripCommentAdornment(line)
		if line == "" || line[0] != '@' {
			continue
		}
		m := tagLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		tag := Tag{Name: strings.ToLower(m[1])}
		rest := strings.TrimSpace(m[2])
		switch tag.Name {
		case "param", "var":
			if pm := paramOrVar.FindStringSubmatch(rest); pm != nil {
				tag.Type = pm[1]
				tag.VarName = pm[2]
				tag.Rest = strings.TrimSpace(pm[3])
			} else if tm := typeOnly.FindStringSubmatch(rest); tm != nil {
				tag.Type = tm[1]
				tag.Rest = strings.TrimSpace(tm[2])
			}
		default:
			if tm := typeOnly.FindStringSubmatch(rest); tm != nil {
				tag.Type = tm[1]
				tag.Rest = strings.TrimSpace(tm[2])
			}
		}
		b.tags = append(b.tags, tag)
	}
	return b
}

func stripCommentAdornment(line string) string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "/**")
	line = strings.TrimPrefix(line, "/*")
	line = strings.TrimSuffix(line, "*/")
	line = strings.TrimPrefix(line, "*")
	return strings.TrimSpace(line)
}

// Tags returns every tag named name, in source order.
func (b Block) Tags(name string) []Tag {
	var out []Tag
	name = strings.ToLower(name)
	for _, t := range b.tags {
		if t.Name == name {
			out = append(out, t)
		}
	}
	return out
}

// Param returns the @param tag for variable varName (without "$"), if any.
func (b Block) Param(varName string) (Tag, bool) {
	for _, t := range b.Tags("param") {
		if t.VarName == varName {
			return t, true
		}
	}
	return Tag{}, false
}

// Return returns the @return tag, if any.
func (b Block) Return() (Tag, bool) {
	tags := b.Tags("return")
	if len(tags) == 0 {
		return Tag{}, false
	}
	return tags[0], true
}

// Var returns the @var tag, optionally scoped to a variable name (some
// @var tags name the variable explicitly; most apply to the single
// property/constant the doc-comment is attached to and carry no name).
// When varName matches no tag and no tag is nameless, the first @var tag
// is returned.
func (b Block) Var(varName string) (Tag, bool) {
	tags := b.Tags("var")
	if len(tags) == 0 {
		return Tag{}, false
	}
	if varName == "" {
		return tags[0], true
	}
	for _, t := range tags {
		if t.VarName == varName || t.VarName == "" {
			return t, true
		}
	}
	return tags[0], true
}
