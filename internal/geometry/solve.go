package geometry

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrUnderOrOverSpecified = errors.New("exactly one value must be unknown")
	ErrDivisionByZero       = errors.New("division by zero")
	ErrNonPhysical          = errors.New("non-physical cone")
	ErrCalculation          = errors.New("calculation error")
)

// Unknown names the parameter Solve derives from the other three.
type Unknown int

const (
	AngleUnknown Unknown = iota + 1
	LengthUnknown
	LargeDiameterUnknown
	SmallDiameterUnknown
)

func (u Unknown) String() string {
	switch u {
	case AngleUnknown:
		return "half_angle"
	case LengthUnknown:
		return "length"
	case LargeDiameterUnknown:
		return "large_diameter"
	case SmallDiameterUnknown:
		return "small_diameter"
	}
	return "none"
}

func (u Unknown) MarshalText() ([]byte, error) { return []byte(u.String()), nil }

func (u *Unknown) UnmarshalText(b []byte) error {
	for _, v := range [...]Unknown{AngleUnknown, LengthUnknown, LargeDiameterUnknown, SmallDiameterUnknown} {
		if v.String() == string(b) {
			*u = v
			return nil
		}
	}
	return fmt.Errorf("unknown parameter %q", b)
}

// Unit is the display unit of the solved value.
func (u Unknown) Unit() string {
	if u == AngleUnknown {
		return "°"
	}
	return "mm"
}

// Parameters holds the four cone values. A nil field is the unknown.
type Parameters struct {
	D         *float64 `json:"large_diameter_mm,omitempty"`
	Ds        *float64 `json:"small_diameter_mm,omitempty"`
	L         *float64 `json:"length_mm,omitempty"`
	HalfAngle *float64 `json:"half_angle_deg,omitempty"`
}

// Solution is a fully resolved cone.
type Solution struct {
	LargeDiameter float64 `json:"large_diameter_mm"`
	SmallDiameter float64 `json:"small_diameter_mm"`
	Length        float64 `json:"length_mm"`
	HalfAngle     float64 `json:"half_angle_deg"`
	Solved        Unknown `json:"solved"`
	// DMS is set only when the half-angle was solved.
	DMS *DMS `json:"dms,omitempty"`
}

// Value returns the solved quantity.
func (s Solution) Value() float64 {
	switch s.Solved {
	case AngleUnknown:
		return s.HalfAngle
	case LengthUnknown:
		return s.Length
	case LargeDiameterUnknown:
		return s.LargeDiameter
	case SmallDiameterUnknown:
		return s.SmallDiameter
	}
	return math.NaN()
}

// Float returns a pointer to v, for building Parameters literals.
func Float(v float64) *float64 { return &v }

// Classify decides which parameter is missing.
func Classify(p Parameters) (Unknown, error) {
	var (
		missing int
		u       Unknown
	)
	if p.HalfAngle == nil {
		missing++
		u = AngleUnknown
	}
	if p.L == nil {
		missing++
		u = LengthUnknown
	}
	if p.D == nil {
		missing++
		u = LargeDiameterUnknown
	}
	if p.Ds == nil {
		missing++
		u = SmallDiameterUnknown
	}
	if missing != 1 {
		return 0, fmt.Errorf("%w: %d unknown", ErrUnderOrOverSpecified, missing)
	}
	return u, nil
}

// Solve derives the missing parameter from tan(α/2) = (D - d) / 2L.
func Solve(p Parameters) (Solution, error) {
	u, err := Classify(p)
	if err != nil {
		return Solution{}, err
	}
	for _, v := range []*float64{p.D, p.Ds, p.L, p.HalfAngle} {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return Solution{}, fmt.Errorf("%w: non-finite input %v", ErrCalculation, *v)
		}
	}

	s := Solution{Solved: u}
	switch u {
	case AngleUnknown:
		D, d, L := *p.D, *p.Ds, *p.L
		if L == 0 {
			return Solution{}, fmt.Errorf("%w: cone length is zero", ErrDivisionByZero)
		}
		s.LargeDiameter, s.SmallDiameter, s.Length = D, d, L
		s.HalfAngle = degrees(math.Atan((D - d) / (2 * L)))
		dms := ToDMS(s.HalfAngle)
		s.DMS = &dms
	case LengthUnknown:
		D, d, a := *p.D, *p.Ds, *p.HalfAngle
		t := math.Tan(radians(a))
		if t == 0 {
			return Solution{}, fmt.Errorf("%w: half-angle is zero", ErrDivisionByZero)
		}
		s.LargeDiameter, s.SmallDiameter, s.HalfAngle = D, d, a
		s.Length = (D - d) / (2 * t)
	case LargeDiameterUnknown:
		d, L, a := *p.Ds, *p.L, *p.HalfAngle
		s.SmallDiameter, s.Length, s.HalfAngle = d, L, a
		s.LargeDiameter = d + 2*L*math.Tan(radians(a))
	case SmallDiameterUnknown:
		D, L, a := *p.D, *p.L, *p.HalfAngle
		s.LargeDiameter, s.Length, s.HalfAngle = D, L, a
		s.SmallDiameter = D - 2*L*math.Tan(radians(a))
	}
	if err := s.check(); err != nil {
		return Solution{}, err
	}
	return s, nil
}

func (s Solution) check() error {
	if v := s.Value(); math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s is not finite", ErrCalculation, s.Solved)
	}
	switch {
	case s.SmallDiameter < 0:
		return fmt.Errorf("%w: small diameter %.4g mm is negative", ErrNonPhysical, s.SmallDiameter)
	case s.LargeDiameter <= s.SmallDiameter:
		return fmt.Errorf("%w: large diameter %.4g mm must exceed small diameter %.4g mm",
			ErrNonPhysical, s.LargeDiameter, s.SmallDiameter)
	case s.Length <= 0:
		return fmt.Errorf("%w: length %.4g mm must be positive", ErrNonPhysical, s.Length)
	case s.HalfAngle < 0 || s.HalfAngle >= 90:
		return fmt.Errorf("%w: half-angle %.4g° outside [0, 90)", ErrNonPhysical, s.HalfAngle)
	}
	return nil
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
