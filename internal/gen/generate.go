// Package gen generates Go structs for synthesized classes.
package gen

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"
	"unicode"

	"github.com/dave/jennifer/jen"
	"github.com/patdaburu/mothergeo/internal/config"
	"github.com/patdaburu/mothergeo/internal/entity"
	"github.com/patdaburu/mothergeo/internal/geometry"
	"github.com/patdaburu/mothergeo/internal/i18n"
)

const (
	pkgOrb  = "github.com/paulmach/orb"
	pkgTime = "time"

	idFuncTableName = "TableName"
	idFuncCreateSql = "CreateSql"

	keyDescription = "description"
)

// localized is implemented by relations that carry localized strings.
type localized interface {
	I18n() *i18n.Pack
}

func GenerateCode(cfg config.Config, workingDir string, classes []*entity.Class) error {
	src, err := Render(path.Base(cfg.Package.Path), classes)
	if err != nil {
		return err
	}

	return writeToFile(src, cfg, workingDir)
}

// Render returns the source of a file in package pkg holding one struct per
// class.
func Render(pkg string, classes []*entity.Class) (string, error) {
	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by mothergeo. DO NOT EDIT.")

	used := make(map[string]bool)
	for _, c := range classes {
		genClass(f, c, uniqueName(goName(c.Name()), used))
	}

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return "", fmt.Errorf(`failed to render package "%s": %w`, pkg, err)
	}

	return buf.String(), nil
}

func genClass(f *jen.File, c *entity.Class, name string) {
	genClassComment(f, c, name)
	f.Type().Id(name).StructFunc(func(g *jen.Group) {
		used := make(map[string]bool)

		for _, col := range c.Columns() {
			fieldName := col.Name
			if col.Field != nil {
				fieldName = col.Field.Name
			}

			g.Id(uniqueName(goName(fieldName), used)).Add(goType(c, col)).Tag(map[string]string{"db": col.Name})
		}
	})
	f.Empty()

	genCreateSqlConstant(f, c, name)
	genTableNameFunc(f, c, name)
	genCreateSqlFunc(f, c, name)
}

func genClassComment(f *jen.File, c *entity.Class, name string) {
	comment := fmt.Sprintf("%s is a row of the %s table.", name, c.TableName())

	if l, ok := c.Relation().(localized); ok {
		if d, ok := l.I18n().Lookup(keyDescription, i18n.DefaultLocale); ok && d != "" {
			comment += " " + d
		}
	}

	f.Comment(comment)
}

func genCreateSqlConstant(f *jen.File, c *entity.Class, name string) {
	f.Const().Id(getSqlConstName(name)).Op("=").Id("`\n" + c.Table().CreateSQL() + "\n`").Empty()
}

func genTableNameFunc(f *jen.File, c *entity.Class, name string) {
	f.Func().Params(
		jen.Id(name),
	).Id(idFuncTableName).Params().String().Block(
		jen.Return(jen.Lit(c.TableName().Qualified().String())),
	).Empty()
}

func genCreateSqlFunc(f *jen.File, c *entity.Class, name string) {
	f.Func().Params(
		jen.Id(name),
	).Id(idFuncCreateSql).Params().String().Block(
		jen.Return(jen.Id(getSqlConstName(name))),
	).Empty()
}

func goType(c *entity.Class, col entity.Column) *jen.Statement {
	if col.Kind == entity.KindGeometry {
		geom, _ := c.Geometry()
		return geometryType(geom.GeometryType)
	}

	var t *jen.Statement
	switch col.Kind {
	case entity.KindText:
		t = jen.String()
	case entity.KindInt:
		t = jen.Int64()
	case entity.KindFloat:
		t = jen.Float64()
	case entity.KindDateTime:
		t = jen.Qual(pkgTime, "Time")
	default:
		t = jen.Interface()
	}

	if col.PrimaryKey || (col.Field != nil && col.Field.Target.Guaranteed) {
		return t
	}

	return jen.Op("*").Add(t)
}

func geometryType(t geometry.Type) *jen.Statement {
	switch t {
	case geometry.TypePoint:
		return jen.Qual(pkgOrb, "Point")
	case geometry.TypePolyline:
		return jen.Qual(pkgOrb, "LineString")
	case geometry.TypePolygon:
		return jen.Qual(pkgOrb, "Polygon")
	}

	return jen.Qual(pkgOrb, "Geometry")
}

// goName turns a relation or column name into an exported identifier:
// "road_centerlines" becomes "RoadCenterlines" and "srcFullNam" becomes
// "SrcFullNam".
func goName(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var b strings.Builder
	for _, p := range parts {
		b.WriteString(firstUpper(p))
	}

	name := b.String()
	if name == "" || !unicode.IsLetter([]rune(name)[0]) {
		name = "X" + name
	}

	return name
}

func uniqueName(name string, used map[string]bool) string {
	candidate := name
	for i := 2; used[candidate]; i++ {
		candidate = name + strconv.Itoa(i)
	}

	used[candidate] = true
	return candidate
}

func writeToFile(src string, cfg config.Config, workingDir string) error {
	filePath := path.Join(workingDir, cfg.Package.Path) + ".go"

	if err := os.MkdirAll(path.Dir(filePath), 0700); err != nil {
		return err
	}

	return os.WriteFile(filePath, []byte(src), 0600)
}

func getSqlConstName(name string) string {
	return fmt.Sprintf("%sCreateSql", firstLower(name))
}

func firstLower(s string) string {
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

func firstUpper(s string) string {
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
