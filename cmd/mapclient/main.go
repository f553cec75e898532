package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/GeoFix/GeoFix-Backend/internal/apiclient"
	"github.com/GeoFix/GeoFix-Backend/internal/render"
	"github.com/GeoFix/GeoFix-Backend/internal/shapefile"
	"github.com/joho/godotenv"
	"github.com/paulmach/orb"
)

// consoleSurface stands in for the map widget: it counts what would be
// drawn and logs the final viewport.
type consoleSurface struct {
	polygons int
	lines    int
	markers  int
}

func (s *consoleSurface) AddPolygon(ring orb.Ring, style render.PolygonStyle) { s.polygons++ }
func (s *consoleSurface) AddLine(line orb.LineString, style render.LineStyle) { s.lines++ }
func (s *consoleSurface) AddMarker(pt orb.Point, size int)                    { s.markers++ }
func (s *consoleSurface) Clear()                                              {}
func (s *consoleSurface) Zoom() float64                                       { return 12 }

func (s *consoleSurface) FitBounds(bound orb.Bound) {
	fmt.Printf("viewport: %.4f,%.4f -> %.4f,%.4f\n",
		bound.Min.Lat(), bound.Min.Lon(), bound.Max.Lat(), bound.Max.Lon())
}

func main() {
	_ = godotenv.Load(".env.local")

	dir := flag.String("dir", ".", "directory containing the shapefile set")
	store := flag.Bool("store", false, "forward rendered batches to the feature API")
	flag.Parse()

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatal("Failed to read shapefile directory: ", err)
	}

	var files []shapefile.File
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(*dir, entry.Name()))
		if err != nil {
			log.Fatal("Failed to read file: ", err)
		}
		files = append(files, shapefile.File{Name: entry.Name(), Data: data})
	}

	pipeline := shapefile.NewPipeline()
	pipeline.Progress = func(percent int) {
		fmt.Printf("\rprocessing... %d%%", percent)
	}

	fc, err := pipeline.Ingest(context.Background(), files)
	if err != nil {
		fmt.Println()
		log.Fatal("Ingestion failed: ", err)
	}

	styles, err := render.LoadStyles(os.Getenv("RENDER_STYLE_FILE"))
	if err != nil {
		log.Println("Falling back to default styles:", err)
	}

	renderer := render.NewRenderer(styles)
	if *store {
		renderer.Forwarder = apiclient.NewClient()
	}

	surface := &consoleSurface{}
	<-renderer.Render(context.Background(), fc, surface, func(percent float64) {
		fmt.Printf("\rprocessing... %.0f%%", percent)
	})

	fmt.Printf("\nrendered %d features: %d markers, %d lines, %d polygons\n",
		len(fc.Features), surface.markers, surface.lines, surface.polygons)
}
