package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/c360studio/semdoc/datastore"
	"github.com/c360studio/semdoc/editor"
	"github.com/c360studio/semdoc/export"
)

var errRoundTrip = errors.New("round trip is not a fixed point")

func (a *app) newSession(opts ...editor.Option) *editor.Session {
	opts = append([]editor.Option{
		editor.WithLogger(a.logger),
		editor.WithParseOptions(a.cfg.RDFaOptions()...),
	}, opts...)
	return editor.NewSession(opts...)
}

// load reads the document at path into a fresh session.
func (a *app) load(path string) (*editor.Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s := a.newSession()
	if err := s.Load(f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func (a *app) inputs(patterns []string) ([]string, error) {
	return ResolveInputs(patterns, a.cfg.Watch.Extensions)
}

func (a *app) exporter(ds *datastore.Datastore) *export.Exporter {
	return export.NewExporter(ds,
		export.WithPrefixes(a.cfg.Document.Prefixes),
		export.WithRenderOptions(a.cfg.RDFaOptions()...),
		export.WithLogger(a.logger))
}

func (a *app) parseCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "parse <files or globs...>",
		Short: "Print the triples of documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			paths, err := a.inputs(args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, path := range paths {
				s, err := a.load(path)
				if err != nil {
					return err
				}
				ds := s.Datastore()
				a.logger.Info("Parsed document",
					slog.String("path", path),
					slog.Int("quads", ds.Len()),
					slog.Int("subjects", len(ds.Subjects())))

				rendered, err := a.exporter(ds).Export(f)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				if len(paths) > 1 {
					fmt.Fprintf(out, "# %s\n", path)
				}
				fmt.Fprint(out, rendered)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatNQuads), "Output format (nquads, turtle, jsonld)")
	return cmd
}

func (a *app) serializeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serialize <file>",
		Short: "Print the canonical RDFa serialization of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.load(args[0])
			if err != nil {
				return err
			}
			if err := s.Render(cmd.OutOrStdout()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
}

// roundTrip serializes the document at path twice and reports what differs.
func (a *app) roundTrip(path string) (string, error) {
	first, err := a.load(path)
	if err != nil {
		return "", err
	}
	var s1 bytes.Buffer
	if err := first.Render(&s1); err != nil {
		return "", err
	}

	second := a.newSession()
	if err := second.Load(bytes.NewReader(s1.Bytes())); err != nil {
		return "", err
	}
	var s2 bytes.Buffer
	if err := second.Render(&s2); err != nil {
		return "", err
	}

	switch {
	case !bytes.Equal(s1.Bytes(), s2.Bytes()):
		return "serialization changed", nil
	case !slices.Equal(quadKeys(first.Datastore()), quadKeys(second.Datastore())):
		return "triples changed", nil
	}
	return "", nil
}

func quadKeys(ds *datastore.Datastore) []string {
	var keys []string
	for q := range ds.AsQuads() {
		keys = append(keys, q.Key())
	}
	slices.Sort(keys)
	return keys
}

func (a *app) roundtripCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roundtrip <files or globs...>",
		Short: "Check that documents survive serialization unchanged",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := a.inputs(args)
			if err != nil {
				return err
			}
			failed := 0
			for _, path := range paths {
				reason, err := a.roundTrip(path)
				switch {
				case err != nil:
					return err
				case reason != "":
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %s\n", path, reason)
				default:
					fmt.Fprintf(cmd.OutOrStdout(), "ok   %s\n", path)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%w: %d of %d documents", errRoundTrip, failed, len(paths))
			}
			return nil
		},
	}
}

func (a *app) matchCmd() *cobra.Command {
	var subject, predicate, object string

	cmd := &cobra.Command{
		Use:   "match <file>",
		Short: "Print the triples of a document matching a pattern",
		Long: `Print the triples matching a pattern. Each position takes a concise
term such as <http://example.org/a>, besluit:Besluit, _:b0, "text"@nl or a;
an empty position matches anything.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.load(args[0])
			if err != nil {
				return err
			}
			matched := s.Datastore().Match(pattern(subject), pattern(predicate), pattern(object))
			return writeQuads(cmd.OutOrStdout(), a.exporter(matched))
		},
	}

	cmd.Flags().StringVarP(&subject, "subject", "s", "", "Subject pattern")
	cmd.Flags().StringVarP(&predicate, "predicate", "p", "", "Predicate pattern")
	cmd.Flags().StringVarP(&object, "object", "o", "", "Object pattern")
	return cmd
}

func pattern(s string) any {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return s
}

func writeQuads(out io.Writer, e *export.Exporter) error {
	for _, q := range e.Triples() {
		if _, err := fmt.Fprintln(out, q.String()); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) exportCmd() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export a document as RDF or Markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = a.cfg.Export.Format
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			s, err := a.load(args[0])
			if err != nil {
				return err
			}
			rendered, err := a.exporter(s.Datastore()).Export(f)
			if err != nil {
				return err
			}
			if output == "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), rendered)
				return err
			}
			if err := os.WriteFile(output, []byte(rendered), 0644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			a.logger.Info("Exported document", slog.String("path", output), slog.String("format", string(f)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Export format (nquads, jsonld, turtle, markdown); defaults to export.format")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	return cmd
}
