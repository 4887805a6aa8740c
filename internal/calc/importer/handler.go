package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	batch "Taper/internal/calc/batch"
	cone "Taper/internal/calc/cone"

	"github.com/xuri/excelize/v2"
)

const MaxUploadSize = 10 << 20 // 10MB

var header = []any{"D (mm)", "d (mm)", "L (mm)", "α/2 (°)", "solved", "α/2 DMS", "error"}

type Handler struct {
	Cone *cone.Handler
}

// ReadInputs parses the first sheet: header row, then D, d, L, α/2 per row. Blank cells are unknowns.
func ReadInputs(r io.Reader) ([]cone.Input, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("empty sheet")
	}
	var inputs []cone.Input
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		inputs = append(inputs, parseRow(row))
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("empty sheet")
	}
	return inputs, nil
}

func parseRow(row []string) cone.Input {
	cell := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	return cone.Input{D: cell(0), Ds: cell(1), L: cell(2), HalfAngle: cell(3)}
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// WriteResults writes a workbook with one row per batch item.
func WriteResults(w io.Writer, res batch.BatchResult) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, it := range res.Results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{it.Input.D, it.Input.Ds, it.Input.L, it.Input.HalfAngle, "", "", it.Error}
		if s := it.Parameters; s != nil {
			row = []any{s.LargeDiameter, s.SmallDiameter, s.Length, s.HalfAngle, it.Solved, "", ""}
			if s.DMS != nil {
				row[5] = s.DMS.String()
			}
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	inputs, err := ReadInputs(file)
	if err != nil {
		http.Error(w, "Invalid file", http.StatusBadRequest)
		return
	}
	res, err := batch.Calculate(batch.BatchInput{Items: inputs}, h.Cone.Labels.Lookup(h.Cone.Locale(r)))
	if err != nil {
		http.Error(w, "Calculation error: "+err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, batch.MaxBodySize)
	var input batch.BatchInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := batch.Calculate(input, h.Cone.Labels.Lookup(h.Cone.Locale(r)))
	if err != nil {
		http.Error(w, "Calculation error: "+err.Error(), http.StatusBadRequest)
		return
	}
	var buf bytes.Buffer
	if err := WriteResults(&buf, res); err != nil {
		http.Error(w, "Export error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=\"cones.xlsx\"")
	w.Write(buf.Bytes())
}
