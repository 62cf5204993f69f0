package gen

import (
	"context"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/patdaburu/mothergeo/internal/config"
	"github.com/patdaburu/mothergeo/internal/entity"
	"github.com/patdaburu/mothergeo/internal/geometry"
	"github.com/patdaburu/mothergeo/internal/i18n"
	"github.com/patdaburu/mothergeo/internal/schema"
	"github.com/patdaburu/mothergeo/internal/store/memstore"
	assert "github.com/stretchr/testify/require"
)

func roadClasses(t *testing.T) []*entity.Class {
	t.Helper()

	rel, err := schema.NewRelationInfo("road_centerlines", "srcOID", []*schema.FieldInfo{
		{Name: "srcOID", DataType: schema.DataTypeInt},
		{Name: "srcFullNam", DataType: schema.DataTypeText, Target: schema.Target{Guaranteed: true}},
		{Name: "speed limit", DataType: schema.DataTypeFloat},
		{Name: "srcLastEd", DataType: schema.DataTypeDateTime},
	}, schema.NenaSpec{}, i18n.NewPack(map[string]string{"description": "Road centerline segments."}))
	assert.NoError(t, err)

	f, err := entity.NewFactory(memstore.New())
	assert.NoError(t, err)

	c, err := f.Make(context.Background(), schema.NewFeatureTableInfo(rel, geometry.TypePolyline, nil))
	assert.NoError(t, err)

	return []*entity.Class{c}
}

func TestRender(t *testing.T) {
	src, err := Render("entities", roadClasses(t))
	assert.NoError(t, err)

	_, err = parser.ParseFile(token.NewFileSet(), "entities.go", src, parser.AllErrors)
	assert.NoError(t, err)

	assert.Contains(t, src, "package entities")
	assert.Contains(t, src, "// RoadCenterlines is a row of the public.road_centerlines table. Road centerline segments.")
	assert.Contains(t, src, "type RoadCenterlines struct {")
	assert.Regexp(t, "SrcOID\\s+int64\\s+`db:\"srcoid\"`", src)
	assert.Regexp(t, "SrcFullNam\\s+string\\s+`db:\"srcfullnam\"`", src)
	assert.Regexp(t, "SpeedLimit\\s+\\*float64\\s+`db:\"speed limit\"`", src)
	assert.Regexp(t, "SrcLastEd\\s+\\*time.Time\\s+`db:\"srclasted\"`", src)
	assert.Regexp(t, "Geometry\\s+orb.LineString\\s+`db:\"geometry\"`", src)
	assert.Contains(t, src, `func (RoadCenterlines) TableName() string {`)
	assert.Contains(t, src, `return "public.road_centerlines"`)
	assert.Contains(t, src, `create table if not exists "public"."road_centerlines" (`)
}

func TestRenderCollidingNames(t *testing.T) {
	f, err := entity.NewFactory(memstore.New())
	assert.NoError(t, err)

	var classes []*entity.Class
	for _, name := range []string{"road-lines", "road_lines"} {
		rel, err := schema.NewRelationInfo(name, "id", []*schema.FieldInfo{
			{Name: "id", DataType: schema.DataTypeInt},
		}, schema.NenaSpec{}, nil)
		assert.NoError(t, err)

		c, err := f.Make(context.Background(), rel)
		assert.NoError(t, err)
		classes = append(classes, c)
	}

	src, err := Render("entities", classes)
	assert.NoError(t, err)

	file, err := parser.ParseFile(token.NewFileSet(), "entities.go", src, parser.AllErrors)
	assert.NoError(t, err)

	declared := make(map[string]int)
	for _, decl := range file.Decls {
		if gd, ok := decl.(*ast.GenDecl); ok {
			for _, spec := range gd.Specs {
				switch sp := spec.(type) {
				case *ast.TypeSpec:
					declared[sp.Name.Name]++
				case *ast.ValueSpec:
					for _, n := range sp.Names {
						declared[n.Name]++
					}
				}
			}
		}
	}

	assert.Equal(t, map[string]int{
		"RoadLines":           1,
		"roadLinesCreateSql":  1,
		"RoadLines2":          1,
		"roadLines2CreateSql": 1,
	}, declared)
}

func TestGenerateCode(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Config{Package: config.Package{Path: "internal/entities"}}

	assert.NoError(t, GenerateCode(cfg, dir, roadClasses(t)))

	data, err := os.ReadFile(filepath.Join(dir, "internal", "entities.go"))
	assert.NoError(t, err)
	assert.Contains(t, string(data), "package entities")
}

func TestGoName(t *testing.T) {
	tests := map[string]string{
		"parcels":      "Parcels",
		"srcFullNam":   "SrcFullNam",
		"road_segment": "RoadSegment",
		"speed limit":  "SpeedLimit",
		"2d_area":      "X2dArea",
		"名前":           "名前",
	}

	for in, expected := range tests {
		assert.Equal(t, expected, goName(in), in)
	}
}
