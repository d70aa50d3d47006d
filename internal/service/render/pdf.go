package render

import (
	"bytes"
	"fmt"
	"strings"

	"FinResearch/internal/domain/models"

	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

const (
	fontFamily = "Helvetica"
	bodySize   = 10.0
	lineHeight = 5.0
)

// PDF renders a report as an A4 document.
func PDF(r models.ResearchReport) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(r.CompanyName, true)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	pdf.SetFont(fontFamily, "", bodySize)

	source := []byte(Markdown(r))
	doc := md.Parser().Parse(text.NewReader(source))

	w := &pdfWriter{pdf: pdf, source: source, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	if err := ast.Walk(doc, w.walk); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

type pdfWriter struct {
	pdf    *fpdf.Fpdf
	source []byte
	tr     func(string) string
	bold   bool
	italic bool
	lists  int
}

func (w *pdfWriter) font() {
	style := ""
	if w.bold {
		style += "B"
	}
	if w.italic {
		style += "I"
	}
	w.pdf.SetFont(fontFamily, style, bodySize)
}

func (w *pdfWriter) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Heading:
		if entering {
			w.pdf.Ln(4)
			w.pdf.SetFont(fontFamily, "B", 16-2*float64(node.Level))
		} else {
			w.pdf.Ln(8)
			w.font()
		}
	case *ast.Paragraph:
		if !entering {
			w.pdf.Ln(lineHeight + 2)
		}
	case *ast.Text:
		if entering {
			w.pdf.Write(lineHeight, w.tr(string(node.Segment.Value(w.source))))
			if node.SoftLineBreak() {
				w.pdf.Write(lineHeight, " ")
			}
		}
	case *ast.Emphasis:
		if node.Level == 2 {
			w.bold = entering
		} else {
			w.italic = entering
		}
		w.font()
	case *ast.List:
		if entering {
			w.lists++
		} else {
			w.lists--
			w.pdf.Ln(2)
		}
	case *ast.ListItem:
		if entering {
			w.pdf.SetX(15 + float64(w.lists)*4)
			w.pdf.Write(lineHeight, w.tr("- "))
		}
	case *ast.TextBlock:
		if !entering {
			w.pdf.Ln(lineHeight)
		}
	case *ast.ThematicBreak:
		if entering {
			w.pdf.Ln(2)
			w.pdf.Line(15, w.pdf.GetY(), 195, w.pdf.GetY())
			w.pdf.Ln(2)
		}
	case *extast.Table:
		if entering {
			w.table(node)
			return ast.WalkSkipChildren, nil
		}
	}
	return ast.WalkContinue, nil
}

func (w *pdfWriter) table(t *extast.Table) {
	var rows [][]string
	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for c := row.FirstChild(); c != nil; c = c.NextSibling() {
			cells = append(cells, w.plain(c))
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return
	}
	width := 180.0 / float64(len(rows[0]))
	for i, cells := range rows {
		if i == 0 {
			w.pdf.SetFont(fontFamily, "B", bodySize-1)
		} else {
			w.pdf.SetFont(fontFamily, "", bodySize-1)
		}
		for _, c := range cells {
			w.pdf.CellFormat(width, 6, w.tr(c), "1", 0, "L", false, 0, "")
		}
		w.pdf.Ln(-1)
	}
	w.font()
	w.pdf.Ln(3)
}

// plain concatenates the text under n.
func (w *pdfWriter) plain(n ast.Node) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := c.(*ast.Text); ok && entering {
			sb.Write(t.Segment.Value(w.source))
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}
