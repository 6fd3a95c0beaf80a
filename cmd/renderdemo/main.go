package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	ledongpdf "github.com/ledongthuc/pdf"

	"cvbuilder-backend/cv/convert"
	"cvbuilder-backend/cv/model"
	"cvbuilder-backend/cv/render"
	localstore "cvbuilder-backend/internal/shared/storage/template/local"
)

func main() {
	outPath := flag.String("out", "./out/sample_cv.pdf", "output path for generated PDF")
	templateDir := flag.String("templates", "./assets/templates", "template directory")
	flag.Parse()

	cv := sampleCV()

	renderer := render.NewRenderer(localstore.New(*templateDir))
	markup, err := renderer.Render(context.Background(), render.DefaultTemplate, cv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "render failed: %v\n", err)
		os.Exit(1)
	}

	pdfBytes, err := convert.HTMLToPDF(markup)
	if err != nil {
		fmt.Fprintf(os.Stderr, "convert failed: %v\n", err)
		os.Exit(1)
	}

	if err := writeOutputs(*outPath, cv, pdfBytes); err != nil {
		fmt.Fprintf(os.Stderr, "write failed: %v\n", err)
		os.Exit(1)
	}

	if err := validateGeneratedPDF(pdfBytes, cv.FullName); err != nil {
		fmt.Fprintf(os.Stderr, "pdf validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("OK: wrote %s\n", *outPath)
}

func writeOutputs(outPath string, cv model.CVModel, pdfBytes []byte) error {
	dir := filepath.Dir(outPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	if err := os.WriteFile(outPath, pdfBytes, 0o644); err != nil {
		return err
	}

	modelPath := filepath.Join(dir, "sample_cv_record.json")
	payload, err := json.MarshalIndent(cv, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(modelPath, payload, 0o644)
}

func sampleCV() model.CVModel {
	return model.CVModel{
		FullName:        "Jordan Lee",
		Email:           "jordan.lee@example.com",
		PhoneNumber:     "+1-555-0102",
		LinkedInProfile: "https://www.linkedin.com/in/jordanlee",
		Summary:         "Backend engineer with 8+ years of experience building resilient APIs and data services.",
		Skills:          []string{"Go", "PostgreSQL", "AWS", "Kubernetes"},
		Experience: []model.Entry{
			{
				"job_title":    "Senior Backend Engineer",
				"company_name": "Acme Logistics",
				"start_date":   "2021-04",
				"end_date":     "Present",
				"description":  "Designed a routing service that reduced shipment latency by 18%.",
			},
			{
				"job_title":    "Backend Engineer",
				"company_name": "Blue Harbor Systems",
				"start_date":   "2018-01",
				"end_date":     "2021-03",
				"description":  "Built event-driven ingestion pipelines for compliance data feeds.",
			},
		},
		Education: []model.Entry{
			{
				"institution_name": "University of Texas",
				"degree":           "BSc",
				"field_of_study":   "Computer Science",
				"start_date":       "2012",
				"end_date":         "2016",
				"description":      "Graduated with honors.",
			},
		},
	}
}

func validateGeneratedPDF(pdfBytes []byte, mustContain string) error {
	reader, err := ledongpdf.NewReader(bytes.NewReader(pdfBytes), int64(len(pdfBytes)))
	if err != nil {
		return err
	}
	if reader.NumPage() < 1 {
		return fmt.Errorf("generated pdf has no pages")
	}

	textReader, err := reader.GetPlainText()
	if err != nil {
		return err
	}
	text, err := io.ReadAll(textReader)
	if err != nil {
		return err
	}
	if !strings.Contains(string(text), mustContain) {
		return fmt.Errorf("generated pdf does not mention %q", mustContain)
	}
	return nil
}
