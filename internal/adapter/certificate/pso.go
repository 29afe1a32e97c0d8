// Package certificate renders printable scheme documents.
package certificate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ucScheme "chitfund-backend/internal/usecase/scheme"

	"github.com/jung-kurt/gofpdf"
)

var ErrNoPSO = errors.New("scheme has no PSO number")

// PSORenderer builds the Provisional Scheme Order certificate as a one-page A4 PDF.
type PSORenderer struct {
	issuer string
}

func NewPSORenderer(issuer string) *PSORenderer {
	if issuer == "" {
		issuer = "Registrar of Chits"
	}
	return &PSORenderer{issuer: issuer}
}

func (r *PSORenderer) RenderPSO(_ context.Context, s *ucScheme.SchemeDTO) ([]byte, error) {
	if s == nil || s.PSONumber == nil {
		return nil, ErrNoPSO
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Provisional Scheme Order "+*s.PSONumber, false)
	pdf.SetAuthor(r.issuer, false)
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "PROVISIONAL SCHEME ORDER", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 7, r.issuer, "", 1, "C", false, 0, "")
	pdf.Ln(8)

	issued := ""
	if s.PSOGeneratedDate != nil {
		issued = s.PSOGeneratedDate.UTC().Format("02 Jan 2006")
	}
	rows := [][2]string{
		{"PSO Number", *s.PSONumber},
		{"Issued On", issued},
		{"Scheme ID", s.SchemeID},
		{"Scheme Name", s.SchemeName},
		{"Foreman", s.CreatedBy},
		{"Chit Value", formatAmount(s.ChitValue)},
		{"Duration", fmt.Sprintf("%d months", s.ChitDuration)},
		{"Subscribers", fmt.Sprintf("%d", s.NumberOfSubscribers)},
		{"Monthly Premium", formatAmount(s.MonthlyPremium)},
		{"Bid Range", formatAmount(s.MinimumBid) + " - " + formatAmount(s.MaximumBid)},
		{"Commencement", s.ChitStartDate},
		{"Termination", s.ChitEndDate},
	}
	for _, row := range rows {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(55, 8, row[0], "1", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 8, row[1], "1", 1, "", false, 0, "")
	}

	if s.ApprovalComments != nil {
		pdf.Ln(6)
		pdf.SetFont("Arial", "I", 10)
		pdf.MultiCell(0, 6, "Remarks: "+*s.ApprovalComments, "", "", false)
	}
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 8)
	pdf.CellFormat(0, 5, "Generated "+time.Now().UTC().Format(time.RFC3339), "", 1, "R", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pso certificate: %w", err)
	}
	return buf.Bytes(), nil
}

// formatAmount groups thousands: 1000000 -> "1,000,000".
func formatAmount(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := fmt.Sprintf("%d", v)
	out := make([]byte, 0, len(s)+len(s)/3)
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
