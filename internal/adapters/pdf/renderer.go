package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"eventmanagement/internal/domain"
)

const (
	labelWidth = 40.0
	lineHeight = 7.0
)

type renderer struct {
	author string
	now    func() time.Time
}

// NewRenderer returns a PDFRenderer producing a one-document A4 summary of an event:
// its details followed by the list of registered users.
func NewRenderer(author string) domain.PDFRenderer {
	return &renderer{author: author, now: time.Now}
}

func (r *renderer) Render(e *domain.Event) ([]byte, error) {
	if e == nil {
		return nil, errors.New("event is nil")
	}

	doc := fpdf.New("P", "mm", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")
	generatedAt := r.now()

	doc.SetTitle(e.Name, true)
	doc.SetSubject("Event details", false)
	if r.author != "" {
		doc.SetAuthor(r.author, true)
	}
	doc.SetCreator("eventmanagement", false)
	doc.SetCreationDate(generatedAt)
	doc.AliasNbPages("")
	doc.SetFooterFunc(func() {
		doc.SetY(-15)
		doc.SetFont("Helvetica", "I", 8)
		doc.SetTextColor(128, 128, 128)
		footer := fmt.Sprintf("Generated %s - page %d/{nb}", generatedAt.Format("2006-01-02 15:04"), doc.PageNo())
		doc.CellFormat(0, 10, footer, "", 0, "C", false, 0, "")
	})
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 18)
	doc.MultiCell(0, 10, tr(e.Name), "", "L", false)
	doc.Ln(4)

	doc.SetDrawColor(200, 200, 200)
	for _, row := range [][2]string{
		{"Date", e.Date},
		{"Time", e.Time},
		{"Location", e.Location},
	} {
		doc.SetFont("Helvetica", "B", 11)
		doc.CellFormat(labelWidth, lineHeight, row[0], "B", 0, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 11)
		doc.CellFormat(0, lineHeight, tr(row[1]), "B", 1, "L", false, 0, "")
	}
	doc.Ln(6)

	doc.SetFont("Helvetica", "B", 13)
	doc.CellFormat(0, lineHeight, "Description", "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 11)
	doc.MultiCell(0, 6, tr(e.Description), "", "L", false)
	doc.Ln(6)

	users := e.RegisteredUsers.Users()
	doc.SetFont("Helvetica", "B", 13)
	doc.CellFormat(0, lineHeight, fmt.Sprintf("Registered attendees (%d)", len(users)), "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 11)
	if len(users) == 0 {
		doc.SetTextColor(128, 128, 128)
		doc.CellFormat(0, lineHeight, "No registrations yet.", "", 1, "L", false, 0, "")
		doc.SetTextColor(0, 0, 0)
	}
	for i, u := range users {
		doc.CellFormat(10, lineHeight, fmt.Sprintf("%d.", i+1), "", 0, "R", false, 0, "")
		doc.CellFormat(80, lineHeight, tr(u.Name), "", 0, "L", false, 0, "")
		doc.CellFormat(0, lineHeight, tr(u.Email), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
