package importer

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	batch "Taper/internal/calc/batch"
	cone "Taper/internal/calc/cone"
	"Taper/internal/i18n"

	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	var b bytes.Buffer
	if err := f.Write(&b); err != nil {
		t.Fatal(err)
	}
	return &b
}

func TestReadInputs(t *testing.T) {
	b := workbook(t, [][]any{
		{"D", "d", "L", "a/2"},
		{80, 30, 100, ""},
		{"", "", "", ""},
		{80, 30, "", 14.04},
	})
	inputs, err := ReadInputs(b)
	if err != nil {
		t.Fatal(err)
	}
	if len(inputs) != 2 {
		t.Fatalf("got %d inputs", len(inputs))
	}
	if inputs[0] != (cone.Input{D: "80", Ds: "30", L: "100"}) {
		t.Errorf("row 1: %+v", inputs[0])
	}
	if inputs[1].L != "" || inputs[1].HalfAngle != "14.04" {
		t.Errorf("row 3: %+v", inputs[1])
	}
}

func TestReadInputsEmpty(t *testing.T) {
	if _, err := ReadInputs(workbook(t, [][]any{{"D", "d", "L", "a/2"}})); err == nil {
		t.Error("expected error for header-only sheet")
	}
	if _, err := ReadInputs(strings.NewReader("not a workbook")); err == nil {
		t.Error("expected error for garbage")
	}
}

func TestWriteResults(t *testing.T) {
	res, err := batch.Calculate(batch.BatchInput{Items: []cone.Input{
		{D: "80", Ds: "30", L: "100"},
		{D: "80"},
	}}, i18n.DefaultCatalog()[i18n.English])
	if err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	if err := WriteResults(&b, res); err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(&b)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows", len(rows))
	}
	if rows[1][4] != "half_angle" || rows[1][5] != `14° 2' 10.48"` {
		t.Errorf("row 1: %v", rows[1])
	}
	if got := rows[2][len(rows[2])-1]; !strings.Contains(got, "exactly three") {
		t.Errorf("row 2 error column %q", got)
	}
}

func TestImportHandler(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "cones.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(workbook(t, [][]any{{"D", "d", "L", "a/2"}, {80, 30, 100}}).Bytes())
	mw.Close()

	h := &Handler{Cone: &cone.Handler{Labels: i18n.DefaultCatalog(), DefaultLocale: i18n.English}}
	req := httptest.NewRequest(http.MethodPost, "/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Import(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	var res batch.BatchResult
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if res.Count != 1 || res.Results[0].Solved != "half_angle" {
		t.Errorf("unexpected %+v", res)
	}
}

func TestExportHandler(t *testing.T) {
	h := &Handler{Cone: &cone.Handler{Labels: i18n.DefaultCatalog(), DefaultLocale: i18n.English}}
	req := httptest.NewRequest(http.MethodPost, "/export", strings.NewReader(`{"items":[{"D":"80","d":"30","L":"100"}]}`))
	rec := httptest.NewRecorder()
	h.Export(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	// xlsx is a zip archive
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Error("export is not an xlsx")
	}
	rec = httptest.NewRecorder()
	h.Export(rec, httptest.NewRequest(http.MethodPost, "/export", strings.NewReader(`{"items":[{"D":"`+strings.Repeat("9", batch.MaxBodySize)+`"}]}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status %d for oversized body", rec.Code)
	}
}
