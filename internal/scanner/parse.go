package scanner

import (
	"regexp"

	"flowmap/internal/flow"
)

// Comment grammar, appearing anywhere in a line (typically after a comment
// leader):
//
//	<tag> <flow>: <current> -> <next>
//	<tag>^ <flow>: <current> -> <next>   (declares the flow cross-repository)
//
// Names are word characters plus dot and dash. Everything after the next-node
// name is free text and ignored.
type commentParser struct {
	tag string
	re  *regexp.Regexp
}

func newCommentParser(tag string) (*commentParser, error) {
	pattern := regexp.QuoteMeta(tag) +
		`(\^)?\s+([\w.-]+)\s*:\s*([\w.-]+)\s*->\s*([\w.-]+)`
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &commentParser{tag: tag, re: re}, nil
}

// parse extracts the edge from a tag-bearing line. ok is false when the line
// carries the tag but not the grammar.
func (p *commentParser) parse(line string) (edge flow.EdgeKey, cross bool, ok bool) {
	m := p.re.FindStringSubmatch(line)
	if m == nil {
		return flow.EdgeKey{}, false, false
	}
	return flow.EdgeKey{
		FlowName:    m[2],
		CurrentNode: m[3],
		NextNode:    m[4],
	}, m[1] == "^", true
}

// GroupByFlow buckets comments by flow name, preserving scan order within
// each flow.
func GroupByFlow(comments []flow.ParsedComment) map[string][]flow.ParsedComment {
	grouped := make(map[string][]flow.ParsedComment)
	for _, c := range comments {
		grouped[c.Edge.FlowName] = append(grouped[c.Edge.FlowName], c)
	}
	return grouped
}
