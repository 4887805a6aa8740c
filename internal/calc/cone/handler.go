package cone

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"Taper/internal/calc/cone/preview"
	"Taper/internal/calc/cone/profile"
	"Taper/internal/geometry"
	"Taper/internal/geometry/mesh"
	"Taper/internal/i18n"

	"gonum.org/v1/plot/vg"
)

// MaxResolution bounds the angular samples a request may ask for.
const MaxResolution = 2000

type Handler struct {
	Labels        i18n.Catalog
	DefaultLocale i18n.Locale
	// Resolution is applied when a request leaves it out.
	Resolution int
}

// Locale resolves the request language from ?lang= or Accept-Language.
func (h *Handler) Locale(r *http.Request) i18n.Locale {
	return h.Labels.Match(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"), h.DefaultLocale)
}

// ErrorMessage turns a calculation failure into the localized text shown to the user.
func ErrorMessage(l i18n.LabelSet, err error) string {
	switch {
	case errors.Is(err, geometry.ErrUnderOrOverSpecified):
		return l.Warning
	case errors.Is(err, geometry.ErrDivisionByZero):
		return l.DivisionZero
	case errors.Is(err, geometry.ErrNonPhysical):
		return l.NonPhysical
	case errors.Is(err, i18n.ErrInvalidNumber):
		return l.InvalidNumber + " " + err.Error()
	}
	return l.Error + " " + err.Error()
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (Input, bool) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return Input{}, false
	}
	if input.Resolution == 0 {
		input.Resolution = h.Resolution
	}
	if input.Resolution > MaxResolution {
		http.Error(w, fmt.Sprintf("resolution above %d", MaxResolution), http.StatusBadRequest)
		return Input{}, false
	}
	return input, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if !IsValidation(err) {
		log.Printf("cone calc error: %v", err)
	}
	http.Error(w, ErrorMessage(h.Labels.Lookup(h.Locale(r)), err), http.StatusBadRequest)
}

// IsValidation reports whether err comes from the user's input rather than the server.
func IsValidation(err error) bool {
	return errors.Is(err, geometry.ErrUnderOrOverSpecified) ||
		errors.Is(err, geometry.ErrDivisionByZero) ||
		errors.Is(err, geometry.ErrNonPhysical) ||
		errors.Is(err, i18n.ErrInvalidNumber)
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decode(w, r)
	if !ok {
		return
	}
	res, err := Calculate(input)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	res.Messages(h.Labels.Lookup(h.Locale(r)))
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

func (h *Handler) GetLabels(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Labels.Lookup(h.Locale(r)))
}

func (h *Handler) solveMesh(w http.ResponseWriter, r *http.Request) (geometry.Solution, mesh.Mesh, bool) {
	input, ok := h.decode(w, r)
	if !ok {
		return geometry.Solution{}, mesh.Mesh{}, false
	}
	s, err := Solve(input)
	if err != nil {
		h.fail(w, r, err)
		return geometry.Solution{}, mesh.Mesh{}, false
	}
	m, err := mesh.FromSolution(s, input.Resolution)
	if err != nil {
		h.fail(w, r, err)
		return geometry.Solution{}, mesh.Mesh{}, false
	}
	return s, m, true
}

func (h *Handler) Mesh(w http.ResponseWriter, r *http.Request) {
	_, m, ok := h.solveMesh(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		mesh.Mesh
		Grid mesh.Grid `json:"grid"`
	}{m, m.Grid()})
}

func (h *Handler) STL(w http.ResponseWriter, r *http.Request) {
	_, m, ok := h.solveMesh(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "model/stl")
	w.Header().Set("Content-Disposition", "attachment; filename=\"cone.stl\"")
	if err := mesh.WriteSTL(w, m); err != nil {
		log.Printf("stl write: %v", err)
	}
}

func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	width, height := queryInt(r, "width", preview.DefaultWidth), queryInt(r, "height", preview.DefaultHeight)
	_, m, ok := h.solveMesh(w, r)
	if !ok {
		return
	}
	if width > preview.MaxSize || height > preview.MaxSize {
		http.Error(w, fmt.Sprintf("preview size above %d", preview.MaxSize), http.StatusBadRequest)
		return
	}
	var buf bytes.Buffer
	if err := preview.WritePNG(&buf, m, width, height); err != nil {
		if errors.Is(err, preview.ErrSize) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Printf("preview render: %v", err)
		http.Error(w, "Preview error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	s, _, ok := h.solveMesh(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := profile.WritePNG(w, s, Caption(s), 5*vg.Inch); err != nil {
		log.Printf("profile render: %v", err)
	}
}

// Caption is a one-line summary of a solved cone.
func Caption(s geometry.Solution) string {
	return fmt.Sprintf("D %.2f mm, d %.2f mm, L %.2f mm, α/2 %.2f°",
		s.LargeDiameter, s.SmallDiameter, s.Length, s.HalfAngle)
}

func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return v
}
