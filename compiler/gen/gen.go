package gen

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/syssam/velq/schema"
	"github.com/syssam/velq/schema/field"

	"github.com/dave/jennifer/jen"
)

const (
	exprPkg   = "github.com/syssam/velq/expr"
	timePkg   = "time"
	uuidPkg   = "github.com/google/uuid"
	generator = "velqgen"
)

// Config configures the generated file.
type Config struct {
	// Package is the name of the generated package.
	Package string
	// Registry is the function of the package returning the registry of
	// the tables. Defaults to "MustRegistry".
	Registry string
}

// GenerationError reports a table that cannot be generated.
type GenerationError struct {
	Table string
	Msg   string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("velq/gen: table %s: %s", e.Table, e.Msg)
}

// Generate returns the file declaring typed references to tables.
func Generate(cfg Config, tables []*schema.Table) (*jen.File, error) {
	if cfg.Package == "" {
		return nil, errors.New("velq/gen: missing package name")
	}
	if cfg.Registry == "" {
		cfg.Registry = "MustRegistry"
	}
	types := make([]*table, len(tables))
	seen := make(map[string]string)
	for i, t := range tables {
		tt, err := newTable(t)
		if err != nil {
			return nil, err
		}
		for _, name := range []string{tt.typeName, tt.funcName} {
			if prev, ok := seen[name]; ok {
				return nil, &GenerationError{Table: t.Name, Msg: fmt.Sprintf("name %s is already used by table %s", name, prev)}
			}
			seen[name] = t.Name
		}
		types[i] = tt
	}
	f := jen.NewFile(cfg.Package)
	f.HeaderComment(fmt.Sprintf("Code generated by %s. DO NOT EDIT.", generator))
	for _, t := range types {
		t.gen(f, cfg)
	}
	return f, nil
}

// Write generates the file and writes it to w.
func Write(w io.Writer, cfg Config, tables []*schema.Table) error {
	f, err := Generate(cfg, tables)
	if err != nil {
		return err
	}
	return f.Render(w)
}

// WriteFile generates the file and writes it to path.
func WriteFile(path string, cfg Config, tables []*schema.Table) (err error) {
	f, err := Generate(cfg, tables)
	if err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	return f.Render(out)
}

// table is a table with the Go names of its generated declarations.
type table struct {
	*schema.Table
	typeName string // ActorTable
	funcName string // Actors
	ctorName string // newActorTable
	fields   []string
}

func newTable(t *schema.Table) (*table, error) {
	name := pascal(t.Name)
	if name == "" {
		return nil, &GenerationError{Table: t.Name, Msg: "name has no letters"}
	}
	tt := &table{
		Table:    t,
		typeName: name + "Table",
		funcName: plural(name),
		ctorName: "new" + name + "Table",
	}
	members := map[string]string{"Source": "embedded source", "As": "method As"}
	for _, c := range t.Columns {
		fn := pascal(c.Name)
		if prev, ok := members[fn]; ok {
			return nil, &GenerationError{Table: t.Name, Msg: fmt.Sprintf("column %s conflicts with %s", c.Name, prev)}
		}
		members[fn] = "column " + c.Name
		tt.fields = append(tt.fields, fn)
	}
	for _, r := range t.Relationships {
		mn := pascal(r.Name)
		if prev, ok := members[mn]; ok {
			return nil, &GenerationError{Table: t.Name, Msg: fmt.Sprintf("relationship %s conflicts with %s", r.Name, prev)}
		}
		members[mn] = "relationship " + r.Name
	}
	return tt, nil
}

func (t *table) gen(f *jen.File, cfg Config) {
	f.Commentf("%s is a typed reference to the %s table.", t.typeName, t.Name)
	f.Type().Id(t.typeName).StructFunc(func(g *jen.Group) {
		g.Op("*").Qual(exprPkg, "Source")
		for i, c := range t.Columns {
			g.Id(t.fields[i]).Qual(exprPkg, "Field").Types(goType(c.Type))
		}
	})
	f.Line()

	f.Commentf("%s returns the %s table under its own name.", t.funcName, t.Name)
	f.Func().Id(t.funcName).Params().Id(t.typeName).Block(
		jen.Return(jen.Id(t.ctorName).Call(
			jen.Qual(exprPkg, "T").Call(jen.Id(cfg.Registry).Call().Dot("MustTable").Call(jen.Lit(t.Name))),
		)),
	)
	f.Line()

	f.Func().Id(t.ctorName).Params(jen.Id("s").Op("*").Qual(exprPkg, "Source")).Id(t.typeName).Block(
		jen.Return(jen.Id(t.typeName).Values(jen.DictFunc(func(d jen.Dict) {
			d[jen.Id("Source")] = jen.Id("s")
			for i, c := range t.Columns {
				d[jen.Id(t.fields[i])] = jen.Qual(exprPkg, "FieldOf").Types(goType(c.Type)).Call(jen.Id("s"), jen.Lit(c.Name))
			}
		}))),
	)
	f.Line()

	f.Comment("As returns the table under a different alias.")
	f.Func().Params(jen.Id("t").Id(t.typeName)).Id("As").Params(jen.Id("alias").String()).Id(t.typeName).Block(
		jen.Return(jen.Id(t.ctorName).Call(jen.Id("t").Dot("Source").Dot("As").Call(jen.Id("alias")))),
	)
	for _, r := range t.Relationships {
		target := "new" + pascal(r.Target.Name) + "Table"
		f.Line()
		f.Commentf("%s navigates the %s relationship to %s.", pascal(r.Name), r.Name, r.Target.Name)
		f.Func().Params(jen.Id("t").Id(t.typeName)).Id(pascal(r.Name)).Params().Id(pascal(r.Target.Name) + "Table").Block(
			jen.Return(jen.Id(target).Call(jen.Id("t").Dot("Nav").Call(jen.Lit(r.Name)))),
		)
	}
}

// goType returns the Go type of the values of a column type.
func goType(t field.Type) jen.Code {
	switch t {
	case field.TypeBool:
		return jen.Bool()
	case field.TypeTime:
		return jen.Qual(timePkg, "Time")
	case field.TypeUUID:
		return jen.Qual(uuidPkg, "UUID")
	case field.TypeBytes:
		return jen.Index().Byte()
	case field.TypeString:
		return jen.String()
	case field.TypeInt, field.TypeInt64:
		return jen.Int64()
	case field.TypeFloat64:
		return jen.Float64()
	}
	return jen.Interface()
}
