package cone

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"Taper/internal/i18n"
)

func newHandler() *Handler {
	return &Handler{Labels: i18n.DefaultCatalog(), DefaultLocale: i18n.Persian, Resolution: 50}
}

func post(h http.HandlerFunc, target, body string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestCalcHandler(t *testing.T) {
	h := newHandler()
	rec := post(h.Calc, "/api/tools/cone/calc?lang=en", `{"D":"80","d":"30","L":"100"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	var res Result
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if res.Message != "✅ Support angle: 14.04°" {
		t.Errorf("message %q", res.Message)
	}
	if res.Parameters.LargeDiameter != 80 || res.Parameters.Length != 100 {
		t.Errorf("parameters %+v", res.Parameters)
	}
}

func TestCalcHandlerErrors(t *testing.T) {
	h := newHandler()
	cat := i18n.DefaultCatalog()
	tests := []struct {
		name   string
		target string
		body   string
		header []string
		want   string
	}{
		{"bad json", "/calc", `{`, nil, "Invalid request payload"},
		{"persian default", "/calc", `{"D":"80"}`, nil, cat[i18n.Persian].Warning},
		{"accept language", "/calc", `{"D":"80"}`, []string{"Accept-Language", "en-GB"}, cat[i18n.English].Warning},
		{"division", "/calc?lang=en", `{"D":"80","d":"30","L":"0"}`, nil, cat[i18n.English].DivisionZero},
		{"non physical", "/calc?lang=en", `{"D":"30","d":"80","L":"10"}`, nil, cat[i18n.English].NonPhysical},
		{"resolution", "/calc", `{"D":"80","d":"30","L":"100","resolution":100000}`, nil, "resolution above"},
	}
	for _, tt := range tests {
		rec := post(h.Calc, tt.target, tt.body, tt.header...)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d", tt.name, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), tt.want) {
			t.Errorf("%s: body %q does not contain %q", tt.name, rec.Body, tt.want)
		}
	}
}

func TestGetLabels(t *testing.T) {
	h := newHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/labels?lang=en", nil)
	rec := httptest.NewRecorder()
	h.GetLabels(rec, req)
	var l i18n.LabelSet
	if err := json.NewDecoder(rec.Body).Decode(&l); err != nil {
		t.Fatal(err)
	}
	if l.Direction != "ltr" || l.Calculate != "🔍 Calculate" {
		t.Errorf("unexpected labels %+v", l)
	}
}

func TestMeshHandler(t *testing.T) {
	h := newHandler()
	rec := post(h.Mesh, "/mesh", `{"D":"80","d":"30","L":"100","resolution":12}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	var out struct {
		Resolution int      `json:"resolution"`
		Rings      [2][]any `json:"rings"`
		Grid       struct {
			X [][]float64 `json:"x"`
		} `json:"grid"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Resolution != 12 || len(out.Rings[1]) != 12 || len(out.Grid.X) != 2 {
		t.Errorf("unexpected mesh %+v", out)
	}
}

func TestSTLHandler(t *testing.T) {
	h := newHandler()
	rec := post(h.STL, "/stl", `{"D":"80","d":"30","L":"100","resolution":10}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	b := rec.Body.Bytes()
	if len(b) != 84+50*18 || binary.LittleEndian.Uint32(b[80:]) != 18 {
		t.Errorf("unexpected STL of %d bytes", len(b))
	}
}

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestPreviewHandler(t *testing.T) {
	h := newHandler()
	rec := post(h.Preview, "/preview?width=64&height=48", `{"D":"80","d":"30","L":"100"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), pngMagic) {
		t.Error("preview is not a PNG")
	}
	rec = post(h.Preview, "/preview?width=-1", `{"D":"80","d":"30","L":"100"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status %d for negative width", rec.Code)
	}
	rec = post(h.Preview, "/preview?width=4096&height=4096", `{"D":"80","d":"30","L":"100"}`)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "preview size above") {
		t.Errorf("status %d body %q for oversized preview", rec.Code, rec.Body)
	}
}

func TestProfileHandler(t *testing.T) {
	h := newHandler()
	rec := post(h.Profile, "/profile", `{"D":"80","d":"30","L":"100","half_angle":""}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), pngMagic) {
		t.Error("profile is not a PNG")
	}
}
