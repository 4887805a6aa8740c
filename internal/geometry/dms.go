package geometry

import (
	"fmt"
	"math"
)

// DMS is a sexagesimal angle. Components carry the sign of the angle.
type DMS struct {
	Deg     int     `json:"degrees"`
	Minutes int     `json:"minutes"`
	Seconds float64 `json:"seconds"`
}

// ToDMS splits an angle in degrees by truncation. Nothing is rounded.
func ToDMS(angle float64) DMS {
	deg, frac := math.Modf(angle)
	minutes, frac := math.Modf(frac * 60)
	return DMS{
		Deg:     int(deg),
		Minutes: int(minutes),
		Seconds: frac * 60,
	}
}

// Degrees recombines the components into decimal degrees.
func (a DMS) Degrees() float64 {
	return float64(a.Deg) + float64(a.Minutes)/60 + a.Seconds/3600
}

func (a DMS) String() string {
	return fmt.Sprintf("%d° %d' %.2f\"", a.Deg, a.Minutes, a.Seconds)
}
