package shapefile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	shp "github.com/jonas-p/go-shp"
	"github.com/paulmach/orb/geojson"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Role identifies what part a file plays in a shapefile upload.
type Role string

const (
	RoleGeometry     Role = "geometry"     // .shp
	RoleAttributes   Role = "attributes"   // .dbf
	RoleProjection   Role = "projection"   // .prj
	RoleShapeIndex   Role = "shapeIndex"   // .shx
	RoleSpatialIndex Role = "spatialIndex" // .sbn / .sbx
	RoleEncoding     Role = "encoding"     // .cpg
	RoleMetadata     Role = "metadata"     // .xml
)

var roleByExt = map[string]Role{
	".shp": RoleGeometry,
	".dbf": RoleAttributes,
	".prj": RoleProjection,
	".shx": RoleShapeIndex,
	".sbn": RoleSpatialIndex,
	".sbx": RoleSpatialIndex,
	".cpg": RoleEncoding,
	".xml": RoleMetadata,
}

// File is one member of a multi-file upload, already read into memory.
type File struct {
	Name string
	Data []byte
}

// Pipeline converts an uploaded file set into a geometry collection.
// The size ceiling is fatal; the feature ceiling silently truncates.
type Pipeline struct {
	MaxBytes    int64
	MaxFeatures int

	// Progress receives coarse checkpoints in [0,80]; the renderer owns 80-100.
	Progress func(percent int)
}

const (
	DefaultMaxBytes    = 200 << 20
	DefaultMaxFeatures = 10000
)

func NewPipeline() *Pipeline {
	return &Pipeline{
		MaxBytes:    DefaultMaxBytes,
		MaxFeatures: DefaultMaxFeatures,
	}
}

func (p *Pipeline) progress(percent int) {
	if p.Progress != nil {
		p.Progress(percent)
	}
}

// Ingest parses an upload into a feature collection. On any failure the
// returned collection is nil so no partial state leaks to the caller.
func (p *Pipeline) Ingest(ctx context.Context, files []File) (*geojson.FeatureCollection, error) {
	p.progress(0)

	var total int64
	for _, f := range files {
		total += int64(len(f.Data))
	}
	if total > p.MaxBytes {
		return nil, fmt.Errorf("total file size exceeds %dMB limit", p.MaxBytes>>20)
	}

	byRole := make(map[Role]File)
	for _, f := range files {
		role, ok := roleByExt[strings.ToLower(filepath.Ext(f.Name))]
		if !ok {
			continue
		}
		byRole[role] = f
	}

	geometry, hasGeometry := byRole[RoleGeometry]
	attributes, hasAttributes := byRole[RoleAttributes]
	if !hasGeometry || !hasAttributes {
		return nil, errors.New("both .shp and .dbf files are required")
	}

	p.progress(20)

	decoder := attributeDecoder(byRole)

	reader := shp.SequentialReaderFromExt(
		io.NopCloser(bytes.NewReader(geometry.Data)),
		io.NopCloser(bytes.NewReader(attributes.Data)),
	)
	defer reader.Close()

	p.progress(50)

	fields := reader.Fields()
	collection := geojson.NewFeatureCollection()

	for reader.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		_, shape := reader.Shape()
		geom, ok := shapeToGeometry(shape)
		if !ok {
			continue
		}

		feature := geojson.NewFeature(geom)
		for i, field := range fields {
			name := field.String()
			value := decodeAttribute(decoder, reader.Attribute(i))
			feature.Properties[name] = attributeValue(field, value)
		}
		collection.Append(feature)
	}
	if err := reader.Err(); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parsing shapefile: %w", err)
	}

	p.progress(70)

	if len(collection.Features) > p.MaxFeatures {
		log.Printf("Shapefile contains %d features. Limiting to %d for performance.",
			len(collection.Features), p.MaxFeatures)
		collection.Features = collection.Features[:p.MaxFeatures]
	}

	p.progress(80)
	return collection, nil
}

// attributeDecoder picks a text decoding for DBF strings from the .cpg file.
// Shapefiles without one are overwhelmingly Latin-1 in the wild.
func attributeDecoder(byRole map[Role]File) *encoding.Decoder {
	cpg, ok := byRole[RoleEncoding]
	if !ok {
		return charmap.ISO8859_1.NewDecoder()
	}

	switch normalizeCodePage(string(cpg.Data)) {
	case "utf8", "utf-8", "65001":
		return unicode.UTF8.NewDecoder()
	case "cp1252", "windows-1252", "1252":
		return charmap.Windows1252.NewDecoder()
	case "iso-8859-1", "latin1", "88591":
		return charmap.ISO8859_1.NewDecoder()
	default:
		return charmap.ISO8859_1.NewDecoder()
	}
}

func normalizeCodePage(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func decodeAttribute(decoder *encoding.Decoder, value string) string {
	decoded, err := decoder.String(value)
	if err != nil {
		return value
	}
	return strings.TrimSpace(decoded)
}
