// Package stats turns segment totals into the figures shown to a runner.
package stats

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/UnknownOlympus/runcraft/internal/models"
)

// Unit is the display unit system.
type Unit string

const (
	UnitKm Unit = "km"
	UnitMi Unit = "mi"
)

const (
	// MilesPerKm converts kilometers to miles.
	MilesPerKm = 0.621371
	// FeetPerMeter converts meters to feet.
	FeetPerMeter = 3.28084
	// PaceMinPerKm is the assumed average running pace.
	PaceMinPerKm = 6.0
	// KcalPerKm is the assumed energy use per kilometer.
	KcalPerKm = 60.0
)

// ErrUnknownUnit is returned by ParseUnit for anything but km or mi.
var ErrUnknownUnit = errors.New("unknown unit")

// ParseUnit reads a unit query value. An empty value means km.
func ParseUnit(s string) (Unit, error) {
	switch Unit(s) {
	case "", UnitKm:
		return UnitKm, nil
	case UnitMi:
		return UnitMi, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownUnit, s)
	}
}

// Totals are sums over a segment list.
type Totals struct {
	DistanceKm float64 `json:"distance_km"`
	ElevationM float64 `json:"elevation_m"`
}

// Sum folds segment distances and elevation gains.
func Sum(segments []*models.Segment) Totals {
	var t Totals
	for _, seg := range segments {
		t.DistanceKm += seg.Distance
		t.ElevationM += seg.Elevation
	}
	return t
}

// Duration is an estimated running time.
type Duration struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// Summary is the presentation form of Totals in one unit system.
type Summary struct {
	Unit          Unit     `json:"unit"`
	Distance      string   `json:"distance"`
	Time          Duration `json:"time"`
	Calories      int      `json:"calories"`
	Elevation     int      `json:"elevation"`
	ElevationUnit string   `json:"elevation_unit"`
}

// Summarize formats totals for display. Time and calories always derive from kilometers.
func Summarize(t Totals, unit Unit) Summary {
	distance := t.DistanceKm
	elevation := t.ElevationM
	elevationUnit := "m"
	if unit == UnitMi {
		distance *= MilesPerKm
		elevation *= FeetPerMeter
		elevationUnit = "ft"
	}

	minutes := t.DistanceKm * PaceMinPerKm

	return Summary{
		Unit:     unit,
		Distance: strconv.FormatFloat(distance, 'f', 2, 64),
		Time: Duration{
			Hours:   int(math.Floor(minutes / 60)),
			Minutes: int(math.Floor(math.Mod(minutes, 60))),
		},
		Calories:      int(math.Floor(t.DistanceKm * KcalPerKm)),
		Elevation:     int(math.Floor(elevation)),
		ElevationUnit: elevationUnit,
	}
}
