package convert

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"golang.org/x/net/html"
)

// ErrConversion marks a converter fault. It is terminal for the session;
// a partially rendered artifact is never returned.
var ErrConversion = errors.New("document conversion failed")

// Creation date is pinned so the same markup always yields the same bytes.
var fixedCreationDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Elements the converter refuses to lay out. Anything active or external is
// rejected rather than silently dropped.
var unsupportedElements = map[string]struct{}{
	"script": {},
	"iframe": {},
	"object": {},
	"embed":  {},
	"img":    {},
}

// HTMLToPDF converts a rendered HTML document into a PDF artifact. The
// supported markup subset covers what the CV templates emit: h1/h2/h3
// headings, paragraphs, unordered/ordered lists, and horizontal rules, with
// inline elements flattened to their text.
func HTMLToPDF(markup string) ([]byte, error) {
	if strings.TrimSpace(markup) == "" {
		return nil, fmt.Errorf("%w: empty document", ErrConversion)
	}

	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("%w: parse markup: %v", ErrConversion, err)
	}

	body := findElement(doc, "body")
	if body == nil {
		return nil, fmt.Errorf("%w: document has no body", ErrConversion)
	}

	w := newWriter()
	if err := w.walk(body); err != nil {
		return nil, err
	}
	if !w.wrote {
		return nil, fmt.Errorf("%w: document has no renderable content", ErrConversion)
	}

	if w.pdf.Err() {
		return nil, fmt.Errorf("%w: %v", ErrConversion, w.pdf.Error())
	}
	var buf bytes.Buffer
	if err := w.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConversion, err)
	}
	return buf.Bytes(), nil
}

type writer struct {
	pdf   *fpdf.Fpdf
	tr    func(string) string
	wrote bool
}

func newWriter() *writer {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(fixedCreationDate)
	pdf.SetModificationDate(fixedCreationDate)
	pdf.SetMargins(18, 16, 18)
	pdf.SetAutoPageBreak(true, 18)
	pdf.AddPage()
	return &writer{
		pdf: pdf,
		tr:  pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

func (w *writer) walk(n *html.Node) error {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if _, bad := unsupportedElements[c.Data]; bad {
			return fmt.Errorf("%w: unsupported element <%s>", ErrConversion, c.Data)
		}
		switch c.Data {
		case "h1":
			if err := w.heading(c, 20, 10); err != nil {
				return err
			}
		case "h2":
			if err := w.sectionHeading(c); err != nil {
				return err
			}
		case "h3":
			if err := w.heading(c, 12, 6); err != nil {
				return err
			}
		case "p":
			if err := w.paragraph(c); err != nil {
				return err
			}
		case "ul", "ol":
			if err := w.list(c); err != nil {
				return err
			}
		case "hr":
			w.rule()
		default:
			// Container elements (div, section, ...) are transparent.
			if err := w.walk(c); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *writer) heading(n *html.Node, size, lineHeight float64) error {
	text, err := collectText(n)
	if err != nil {
		return err
	}
	if text == "" {
		return nil
	}
	w.pdf.SetFont("Helvetica", "B", size)
	w.pdf.MultiCell(0, lineHeight, w.tr(text), "", "L", false)
	w.pdf.Ln(1.5)
	w.wrote = true
	return nil
}

func (w *writer) sectionHeading(n *html.Node) error {
	text, err := collectText(n)
	if err != nil {
		return err
	}
	if text == "" {
		return nil
	}
	w.pdf.Ln(2)
	w.pdf.SetFont("Helvetica", "B", 14)
	w.pdf.MultiCell(0, 7, w.tr(text), "", "L", false)
	w.rule()
	w.wrote = true
	return nil
}

func (w *writer) paragraph(n *html.Node) error {
	text, err := collectText(n)
	if err != nil {
		return err
	}
	if text == "" {
		return nil
	}
	w.pdf.SetFont("Helvetica", "", 10.5)
	w.pdf.MultiCell(0, 5, w.tr(text), "", "L", false)
	w.pdf.Ln(1)
	w.wrote = true
	return nil
}

func (w *writer) list(n *html.Node) error {
	w.pdf.SetFont("Helvetica", "", 10.5)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "li" {
			continue
		}
		text, err := collectText(c)
		if err != nil {
			return err
		}
		if text == "" {
			continue
		}
		w.pdf.CellFormat(6, 5, "-", "", 0, "R", false, 0, "")
		w.pdf.MultiCell(0, 5, w.tr(text), "", "L", false)
		w.wrote = true
	}
	w.pdf.Ln(1)
	return nil
}

func (w *writer) rule() {
	left, _, right, _ := w.pdf.GetMargins()
	pageWidth, _ := w.pdf.GetPageSize()
	y := w.pdf.GetY() + 0.5
	w.pdf.SetDrawColor(120, 120, 120)
	w.pdf.Line(left, y, pageWidth-right, y)
	w.pdf.Ln(3)
	w.wrote = true
}

// collectText flattens the text of a block element, collapsing whitespace.
// Inline formatting tags are transparent; unsupported elements still fail.
func collectText(n *html.Node) (string, error) {
	var sb strings.Builder
	var visit func(*html.Node) error
	visit = func(node *html.Node) error {
		switch node.Type {
		case html.TextNode:
			sb.WriteString(node.Data)
		case html.ElementNode:
			if _, bad := unsupportedElements[node.Data]; bad {
				return fmt.Errorf("%w: unsupported element <%s>", ErrConversion, node.Data)
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if err := visit(c); err != nil {
				return err
			}
		}
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := visit(c); err != nil {
			return "", err
		}
	}
	return strings.Join(strings.Fields(sb.String()), " "), nil
}

func findElement(n *html.Node, name string) *html.Node {
	if n.Type == html.ElementNode && n.Data == name {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, name); found != nil {
			return found
		}
	}
	return nil
}
