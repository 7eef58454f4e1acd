package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/frontmatter"
)

type Parser struct {
	md goldmark.Markdown
}

func NewParser() *Parser {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			&frontmatter.Extender{},
		),
	)

	return &Parser{
		md: md,
	}
}

// ParsePlain returns the frontmatter and the body as plain text, one
// paragraph per blank-line separated block. Markup is dropped.
func (p *Parser) ParsePlain(source []byte) (body string, meta map[string]any, err error) {
	context := parser.NewContext()
	doc := p.md.Parser().Parse(text.NewReader(source), parser.WithContext(context))

	meta = decodeMeta(context)

	var paragraphs []string
	var current strings.Builder
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Paragraph, *ast.Heading:
			if !entering && current.Len() > 0 {
				paragraphs = append(paragraphs, strings.TrimSpace(current.String()))
				current.Reset()
			}
		case *ast.Text:
			if entering {
				current.Write(node.Segment.Value(source))
				if node.SoftLineBreak() || node.HardLineBreak() {
					current.WriteByte(' ')
				}
			}
		case *ast.String:
			if entering {
				current.Write(node.Value)
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", nil, err
	}

	return strings.Join(paragraphs, "\n\n"), meta, nil
}

func decodeMeta(context parser.Context) map[string]any {
	data := frontmatter.Get(context)
	if data == nil {
		return make(map[string]any)
	}

	var meta map[string]any
	err := data.Decode(&meta)
	if err != nil || meta == nil {
		return make(map[string]any)
	}
	return meta
}
