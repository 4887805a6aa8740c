package cone

import (
	"fmt"

	"Taper/internal/geometry"
	"Taper/internal/geometry/mesh"
	"Taper/internal/i18n"
)

// Input is the calculator form. Each value is optional text; exactly three must be filled.
type Input struct {
	D          string `json:"D"`
	Ds         string `json:"d"`
	L          string `json:"L"`
	HalfAngle  string `json:"half_angle"`
	Resolution int    `json:"resolution,omitempty"`
}

type Result struct {
	Solved     string            `json:"solved"`
	Value      float64           `json:"value"`
	Unit       string            `json:"unit"`
	Parameters geometry.Solution `json:"parameters"`
	DMS        *geometry.DMS     `json:"dms,omitempty"`
	Mesh       *mesh.Grid        `json:"mesh,omitempty"`
	Message    string            `json:"message,omitempty"`
	DMSMessage string            `json:"dms_message,omitempty"`
}

// Parse reads the four form values.
func (in Input) Parse() (geometry.Parameters, error) {
	var (
		p   geometry.Parameters
		err error
	)
	fields := []struct {
		name string
		text string
		dst  **float64
	}{
		{"D", in.D, &p.D},
		{"d", in.Ds, &p.Ds},
		{"L", in.L, &p.L},
		{"half_angle", in.HalfAngle, &p.HalfAngle},
	}
	for _, f := range fields {
		if *f.dst, err = i18n.ParseNumber(f.text); err != nil {
			return geometry.Parameters{}, fmt.Errorf("%s: %w", f.name, err)
		}
	}
	return p, nil
}

// Solve parses and solves in without building a mesh.
func Solve(in Input) (geometry.Solution, error) {
	p, err := in.Parse()
	if err != nil {
		return geometry.Solution{}, err
	}
	return geometry.Solve(p)
}

// Calculate solves in and, only on success, samples the frustum mesh.
func Calculate(in Input) (Result, error) {
	s, err := Solve(in)
	if err != nil {
		return Result{}, err
	}
	m, err := mesh.FromSolution(s, in.Resolution)
	if err != nil {
		return Result{}, err
	}
	g := m.Grid()
	return Result{
		Solved:     s.Solved.String(),
		Value:      s.Value(),
		Unit:       s.Solved.Unit(),
		Parameters: s,
		DMS:        s.DMS,
		Mesh:       &g,
	}, nil
}

// Messages fills the localized success lines of res.
func (res *Result) Messages(l i18n.LabelSet) {
	s := res.Parameters
	switch s.Solved {
	case geometry.AngleUnknown:
		res.Message = fmt.Sprintf("%s%.2f°", l.AngleResult, s.HalfAngle)
		if s.DMS != nil {
			res.DMSMessage = l.AngleDMS + s.DMS.String()
		}
	case geometry.LengthUnknown:
		res.Message = fmt.Sprintf("%s%.2f mm", l.LengthResult, s.Length)
	case geometry.LargeDiameterUnknown:
		res.Message = fmt.Sprintf("%s%.2f mm", l.BigDResult, s.LargeDiameter)
	case geometry.SmallDiameterUnknown:
		res.Message = fmt.Sprintf("%s%.2f mm", l.SmallDResult, s.SmallDiameter)
	}
}
