package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/offscale/oasir"
	"github.com/offscale/oasir/extract"
	"github.com/offscale/oasir/project"
	"github.com/offscale/oasir/resolver"
	"github.com/offscale/oasir/spec"
)

type extractFlags struct {
	out            string
	allowHTTP      bool
	namedEnums     bool
	keepReserved   bool
	includeSchemas bool
}

func newExtractCmd() *cobra.Command {
	flags := &extractFlags{includeSchemas: true}

	cmd := &cobra.Command{
		Use:   "extract <spec-file>",
		Short: "Extract the operation and type IR from a spec document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "write IR to this file instead of stdout")
	cmd.Flags().BoolVar(&flags.allowHTTP, "http", false, "allow resolving http(s) references")
	cmd.Flags().BoolVar(&flags.namedEnums, "named-enums", false, "project titled enums as named types")
	cmd.Flags().BoolVar(&flags.keepReserved, "keep-reserved-headers", false, "keep Accept/Content-Type/Authorization header parameters")
	cmd.Flags().BoolVar(&flags.includeSchemas, "schemas", true, "include the projected named-schema table")
	return cmd
}

// irDocument is the serialized output of one extraction run.
type irDocument struct {
	Source     string                             `json:"source"`
	Version    string                             `json:"version"`
	Stats      spec.DocumentStats                 `json:"stats"`
	Operations []*extract.OperationRecord         `json:"operations"`
	Types      map[string]*project.TypeDescriptor `json:"types,omitempty"`
}

func runExtract(cmd *cobra.Command, specPath string, flags *extractFlags) error {
	logger := loggerFor(cmd)
	ctx := cmd.Context()

	absPath, err := filepath.Abs(specPath)
	if err != nil {
		return err
	}
	cacheOpts := []resolver.Option{
		resolver.WithLogger(logger),
		resolver.WithBaseDir(filepath.Dir(absPath)),
	}
	if flags.allowHTTP {
		cacheOpts = append(cacheOpts, resolver.WithHTTPFetcher(nil))
	}
	cache := resolver.NewCache(cacheOpts...)

	doc, err := cache.LoadEntry(ctx, absPath)
	if err != nil {
		return err
	}

	extractOpts := []extract.Option{extract.WithLogger(logger)}
	if flags.keepReserved {
		extractOpts = append(extractOpts, extract.WithReservedHeaders())
	}
	result, err := extract.Extract(ctx, doc, cache, extractOpts...)
	if err != nil {
		return err
	}
	for _, warning := range result.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", warning)
	}

	ir := &irDocument{
		Source:     specPath,
		Version:    doc.OASVersion.String(),
		Stats:      doc.Stats,
		Operations: result.Operations,
	}
	if flags.includeSchemas {
		ir.Types = projectSchemas(cmd, doc, cache, result, logger, flags.namedEnums)
	}

	out := cmd.OutOrStdout()
	if flags.out != "" {
		f, err := os.Create(flags.out)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return writeIR(out, ir)
}

// projectSchemas projects every named schema, with cross-references between
// table entries kept as named types.
func projectSchemas(cmd *cobra.Command, doc *spec.Document, cache *resolver.Cache, result *extract.Result, logger oasir.Logger, namedEnums bool) map[string]*project.TypeDescriptor {
	if len(result.Schemas) == 0 {
		return nil
	}

	known := make(map[string]string, len(result.SchemaNames))
	for id, sourceName := range result.SchemaNames {
		known[sourceName] = id
	}
	opts := []project.Option{
		project.WithLogger(logger),
		project.WithKnownTypes(known),
	}
	if namedEnums {
		opts = append(opts, project.WithNamedEnums())
	}
	projector := project.New(doc, cache, opts...)

	types := make(map[string]*project.TypeDescriptor, len(result.Schemas))
	for id, schema := range result.Schemas {
		types[id] = projector.Project(cmd.Context(), schema)
	}
	return types
}

func writeIR(w io.Writer, ir *irDocument) error {
	data, err := gojson.MarshalIndent(ir, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
