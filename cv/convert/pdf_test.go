package convert

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	ledongpdf "github.com/ledongthuc/pdf"
)

const sampleMarkup = `<html><body>
<h1>Ada Lovelace</h1>
<p>ada@example.com | London</p>
<h2>Summary</h2>
<p>Mathematician and writer, known for work on the Analytical Engine.</p>
<h2>Skills</h2>
<ul><li>analysis</li><li>notation</li></ul>
<h2>Experience</h2>
<h3>Collaborator, Analytical Engine project</h3>
<p>1842 - 1843</p>
<p>Published the first algorithm intended for a machine.</p>
</body></html>`

func extractText(t *testing.T, artifact []byte) string {
	t.Helper()
	reader, err := ledongpdf.NewReader(bytes.NewReader(artifact), int64(len(artifact)))
	if err != nil {
		t.Fatalf("open generated pdf: %v", err)
	}
	var sb strings.Builder
	for page := 1; page <= reader.NumPage(); page++ {
		p := reader.Page(page)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			t.Fatalf("extract page %d text: %v", page, err)
		}
		sb.WriteString(text)
	}
	return sb.String()
}

func TestHTMLToPDFProducesValidArtifact(t *testing.T) {
	artifact, err := HTMLToPDF(sampleMarkup)
	if err != nil {
		t.Fatalf("HTMLToPDF: %v", err)
	}
	if !bytes.HasPrefix(artifact, []byte("%PDF-")) {
		t.Fatalf("artifact does not start with %%PDF-: %q", artifact[:16])
	}

	text := extractText(t, artifact)
	for _, want := range []string{"Ada Lovelace", "Summary", "analysis"} {
		if !strings.Contains(text, want) {
			t.Fatalf("pdf text missing %q:\n%s", want, text)
		}
	}
}

func TestHTMLToPDFDeterministic(t *testing.T) {
	first, err := HTMLToPDF(sampleMarkup)
	if err != nil {
		t.Fatalf("HTMLToPDF: %v", err)
	}
	second, err := HTMLToPDF(sampleMarkup)
	if err != nil {
		t.Fatalf("HTMLToPDF: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("same markup produced different artifacts")
	}
}

func TestHTMLToPDFHandlesNonASCII(t *testing.T) {
	artifact, err := HTMLToPDF(`<html><body><h1>Zoë Müller</h1><p>Café, naïve résumé.</p></body></html>`)
	if err != nil {
		t.Fatalf("HTMLToPDF: %v", err)
	}
	if len(artifact) == 0 {
		t.Fatal("empty artifact")
	}
}

func TestHTMLToPDFRejectsUnsupportedElements(t *testing.T) {
	cases := []string{
		`<html><body><h1>X</h1><script>alert(1)</script></body></html>`,
		`<html><body><p>inline <img src="x"> image</p></body></html>`,
		`<html><body><iframe src="https://example.com"></iframe></body></html>`,
	}
	for _, markup := range cases {
		if _, err := HTMLToPDF(markup); !errors.Is(err, ErrConversion) {
			t.Fatalf("markup %q: expected ErrConversion, got %v", markup, err)
		}
	}
}

func TestHTMLToPDFRejectsEmptyDocuments(t *testing.T) {
	cases := []string{
		"",
		"   \n\t ",
		`<html><body></body></html>`,
		`<html><body><div><p>   </p></div></body></html>`,
	}
	for _, markup := range cases {
		if _, err := HTMLToPDF(markup); !errors.Is(err, ErrConversion) {
			t.Fatalf("markup %q: expected ErrConversion, got %v", markup, err)
		}
	}
}

func TestHTMLToPDFFlattensInlineMarkup(t *testing.T) {
	artifact, err := HTMLToPDF(`<html><body><p>Built <strong>fast</strong> and
		<em>reliable</em>   systems.</p></body></html>`)
	if err != nil {
		t.Fatalf("HTMLToPDF: %v", err)
	}
	text := extractText(t, artifact)
	if !strings.Contains(text, "Built fast and reliable systems.") {
		t.Fatalf("inline markup not flattened:\n%s", text)
	}
}
