package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	cone "Taper/internal/calc/cone"
	"Taper/internal/calc/cone/profile"
	"Taper/internal/geometry"

	"github.com/phpdave11/gofpdf"
	"gonum.org/v1/plot/vg"
)

type Input struct {
	Project string     `json:"project"`
	Author  string     `json:"author"`
	Title   string     `json:"title"`
	Notes   string     `json:"notes"`
	Cone    cone.Input `json:"input"`
}

type row struct {
	name, value string
	solved      bool
}

type Handler struct {
	Cone *cone.Handler
}

// Write solves in.Cone and streams an A4 calculation sheet to w.
// The core PDF fonts only cover Latin-1, so the sheet is always in English.
func Write(w io.Writer, in Input, date time.Time) error {
	s, err := cone.Solve(in.Cone)
	if err != nil {
		return err
	}
	if in.Title == "" {
		in.Title = "Cone Turning Calculation"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(in.Title))
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Project: %s", in.Project)))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Author: %s", in.Author)))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", date.Format("2006-01-02")))
	pdf.Ln(10)

	rows := []row{
		{"Large diameter D", fmt.Sprintf("%.2f mm", s.LargeDiameter), s.Solved == geometry.LargeDiameterUnknown},
		{"Small diameter d", fmt.Sprintf("%.2f mm", s.SmallDiameter), s.Solved == geometry.SmallDiameterUnknown},
		{"Cone length L", fmt.Sprintf("%.2f mm", s.Length), s.Solved == geometry.LengthUnknown},
		{"Support angle (half-angle)", fmt.Sprintf("%.2f°", s.HalfAngle), s.Solved == geometry.AngleUnknown},
	}
	if s.DMS != nil {
		rows = append(rows, row{"Half-angle (DMS)", s.DMS.String(), true})
	}
	for _, rw := range rows {
		style := ""
		if rw.solved {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 11)
		pdf.CellFormat(70, 7, rw.name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 7, tr(rw.value), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	var img bytes.Buffer
	if err := profile.WritePNG(&img, s, cone.Caption(s), 4*vg.Inch); err != nil {
		return err
	}
	opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
	pdf.RegisterImageOptionsReader("profile", opt, &img)
	pdf.ImageOptions("profile", pdf.GetX(), pdf.GetY(), 100, 0, true, opt, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, tr(in.Notes), "", "L", false)
	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	var buf bytes.Buffer
	if err := Write(&buf, input, time.Now()); err != nil {
		status := statusFor(err)
		if status != http.StatusBadRequest {
			log.Printf("report: %v", err)
			http.Error(w, "Report error", status)
			return
		}
		msg := err.Error()
		if h.Cone != nil {
			msg = cone.ErrorMessage(h.Cone.Labels.Lookup(h.Cone.Locale(r)), err)
		}
		http.Error(w, msg, status)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\"report.pdf\"")
	w.Write(buf.Bytes())
}

// statusFor maps a Write failure to 400 for bad input and 500 for rendering faults.
func statusFor(err error) int {
	if cone.IsValidation(err) || errors.Is(err, geometry.ErrCalculation) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
