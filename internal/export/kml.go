package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/UnknownOlympus/runcraft/internal/models"
	"github.com/twpayne/go-kml"
)

// KML returns a KML document with the points as a single tessellated LineString.
func KML(points []models.Coordinates) ([]byte, error) {
	if len(points) == 0 {
		return nil, ErrEmptyRoute
	}

	coords := make([]kml.Coordinate, 0, len(points))
	for _, p := range points {
		coords = append(coords, kml.Coordinate{Lon: p.Longitude, Lat: p.Latitude})
	}

	doc := kml.KML(
		kml.Document(
			kml.Name(RouteName),
			kml.Placemark(
				kml.Name(RouteName),
				kml.LineString(
					kml.Tessellate(true),
					kml.Coordinates(coords...),
				),
			),
		),
	)

	var buf bytes.Buffer
	if err := doc.WriteIndent(&buf, "", "  "); err != nil {
		return nil, fmt.Errorf("failed to encode kml: %w", err)
	}

	return buf.Bytes(), nil
}

// KMLFileName is the download name of a KML export made at t.
func KMLFileName(t time.Time) string {
	return strings.TrimSuffix(FileName(t), ".gpx") + ".kml"
}
