// Command velqgen generates typed table references from a YAML schema.
//
//	//go:generate go run github.com/syssam/velq/cmd/velqgen --schema schema.yaml --package sakila --out tables_gen.go
package main

import (
	"fmt"
	"os"

	"github.com/syssam/velq/compiler/gen"
	"github.com/syssam/velq/schema"
	"github.com/syssam/velq/schema/load"

	"github.com/spf13/cobra"
)

func main() {
	if err := newCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCmd() *cobra.Command {
	var (
		schemaPath string
		out        string
		cfg        gen.Config
	)
	cmd := &cobra.Command{
		Use:           "velqgen",
		Short:         "Generate typed table references from a schema file",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defs, err := load.File(schemaPath)
			if err != nil {
				return err
			}
			r := schema.NewRegistry()
			if err := r.Register(defs...); err != nil {
				return err
			}
			if out == "" || out == "-" {
				return gen.Write(cmd.OutOrStdout(), cfg, r.Tables())
			}
			return gen.WriteFile(out, cfg, r.Tables())
		},
	}
	f := cmd.Flags()
	f.StringVar(&schemaPath, "schema", "schema.yaml", "YAML schema file")
	f.StringVarP(&out, "out", "o", "", "output file, stdout when empty")
	f.StringVar(&cfg.Package, "package", "", "name of the generated package")
	f.StringVar(&cfg.Registry, "registry", "MustRegistry", "function of the package returning the schema registry")
	_ = cmd.MarkFlagRequired("package")
	return cmd
}
