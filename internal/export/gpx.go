// Package export renders a route path as GPX or KML documents.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/UnknownOlympus/runcraft/internal/models"
	"github.com/tkrajina/gpxgo/gpx"
)

const (
	// Creator is written to the GPX creator attribute.
	Creator = "RunCraft"
	// RouteName names the exported track.
	RouteName = "RunCraft Route"
)

// ErrEmptyRoute is returned when there is nothing to export.
var ErrEmptyRoute = errors.New("route is empty")

// GPX returns a GPX 1.1 document with one track and one segment holding the points.
// Points carry latitude and longitude only.
func GPX(points []models.Coordinates) ([]byte, error) {
	if len(points) == 0 {
		return nil, ErrEmptyRoute
	}

	trkpts := make([]gpx.GPXPoint, 0, len(points))
	for _, p := range points {
		trkpts = append(trkpts, gpx.GPXPoint{
			Point: gpx.Point{Latitude: p.Latitude, Longitude: p.Longitude},
		})
	}

	doc := &gpx.GPX{
		Version: "1.1",
		Creator: Creator,
		Tracks: []gpx.GPXTrack{{
			Name:     RouteName,
			Segments: []gpx.GPXTrackSegment{{Points: trkpts}},
		}},
	}

	data, err := doc.ToXml(gpx.ToXmlParams{Version: "1.1", Indent: true})
	if err != nil {
		return nil, fmt.Errorf("failed to encode gpx: %w", err)
	}

	return data, nil
}

// FileName is the download name of a GPX export made at t, e.g. runcraft-route-2024-05-01.gpx.
func FileName(t time.Time) string {
	return "runcraft-route-" + t.UTC().Format(time.DateOnly) + ".gpx"
}

// WriteFile writes the GPX export into dir and returns the file path.
func WriteFile(dir string, points []models.Coordinates, t time.Time) (string, error) {
	data, err := GPX(points)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, FileName(t))
	if err = os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write gpx file: %w", err)
	}

	return path, nil
}
