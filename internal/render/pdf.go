package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/coastal7-sdlc/user-story-agent/internal/model"
)

const (
	pdfTitle      = "USER STORIES WITH ACCEPTANCE CRITERIA"
	pdfFont       = "Helvetica"
	pdfLineHeight = 6.0
)

// renderPDF lays out a Letter document with the core Helvetica font. Text is
// translated to cp1252, which covers the bullet glyph.
func renderPDF(stories []model.Story, now time.Time) (string, error) {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetTitle(pdfTitle, true)
	pdf.SetCreationDate(now)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont(pdfFont, "B", 16)
	pdf.CellFormat(0, 10, pdfTitle, "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont(pdfFont, "", 10)
	pdf.CellFormat(0, pdfLineHeight, generatedOn(now), "", 1, "L", false, 0, "")
	pdf.Ln(8)

	for i, st := range stories {
		pdf.SetLeftMargin(27)
		pdf.SetX(27)
		pdf.SetFont(pdfFont, "", 12)
		pdf.MultiCell(0, pdfLineHeight, tr(fmt.Sprintf("%d. %s", i+1, st.Story)), "", "L", false)
		pdf.Ln(3)

		pdf.SetLeftMargin(20)
		pdf.SetX(20)
		pdf.SetFont(pdfFont, "B", 11)
		pdf.CellFormat(0, pdfLineHeight, "Acceptance Criteria:", "", 1, "L", false, 0, "")

		pdf.SetLeftMargin(34)
		pdf.SetX(34)
		pdf.SetFont(pdfFont, "", 11)
		for _, c := range st.EffectiveCriteria() {
			pdf.MultiCell(0, pdfLineHeight, tr("• "+c), "", "L", false)
			pdf.Ln(2)
		}
		pdf.SetLeftMargin(20)
		pdf.Ln(6)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return "", fmt.Errorf("writing pdf: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
