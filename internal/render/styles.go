package render

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

type PolygonStyle struct {
	FillColor   string `yaml:"fillColor" json:"fillColor"`
	StrokeColor string `yaml:"strokeColor" json:"strokeColor"`
	LineWidth   int    `yaml:"lineWidth" json:"lineWidth"`
}

type LineStyle struct {
	StrokeColor string `yaml:"strokeColor" json:"strokeColor"`
	LineWidth   int    `yaml:"lineWidth" json:"lineWidth"`
}

// Styles bundles drawing styles and batch tuning. Everything here has a
// default matching the production map client; a YAML file can override any
// of it for demos and load testing.
type Styles struct {
	Polygon        PolygonStyle `yaml:"polygon"`
	Line           LineStyle    `yaml:"line"`
	MarkerBaseSize int          `yaml:"markerBaseSize"`
	BatchSize      int          `yaml:"batchSize"`
	BatchDelayMs   int          `yaml:"batchDelayMs"`
	PolygonStep    int          `yaml:"polygonStep"`
	LineStep       int          `yaml:"lineStep"`
}

func DefaultStyles() Styles {
	return Styles{
		Polygon: PolygonStyle{
			FillColor:   "rgba(0, 128, 255, 0.3)",
			StrokeColor: "rgba(0, 0, 255, 0.6)",
			LineWidth:   1,
		},
		Line: LineStyle{
			StrokeColor: "rgba(255, 0, 0, 0.6)",
			LineWidth:   2,
		},
		MarkerBaseSize: 4,
		BatchSize:      50,
		BatchDelayMs:   100,
		PolygonStep:    5,
		LineStep:       3,
	}
}

// LoadStyles reads a YAML override file on top of the defaults. A missing
// path returns the defaults untouched.
func LoadStyles(path string) (Styles, error) {
	styles := DefaultStyles()
	if path == "" {
		return styles, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return styles, nil
		}
		return styles, fmt.Errorf("reading style file: %w", err)
	}
	if err := yaml.Unmarshal(data, &styles); err != nil {
		return DefaultStyles(), fmt.Errorf("parsing style file: %w", err)
	}
	return styles, nil
}
