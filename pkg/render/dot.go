// Package render produces visual representations of the module dependency
// graph for inspection and debugging.
package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/modstack/modstack/pkg/module"
)

// Options configures dependency graph rendering.
type Options struct {
	// Detailed includes version and directory information in node labels.
	// When false, only the module id is shown.
	Detailed bool
}

// ToDOT converts the cached module graph to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG] or [RenderPNG].
//
// Modules participating in a dependency cycle are drawn with dashed outlines;
// declared dependencies absent from the cache appear as grey placeholder
// nodes so broken edges stay visible.
func ToDOT(cache *module.Cache, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph modules {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	records := cache.All()
	missing := map[string]bool{}

	for _, rec := range records {
		label := fmtLabel(rec, opts.Detailed)
		attrs := fmtAttrs(rec, label)
		fmt.Fprintf(&buf, "  %q [%s];\n", rec.ID, strings.Join(attrs, ", "))
		for _, dep := range rec.Invalid.Missing {
			missing[dep] = true
		}
	}
	for _, rec := range records {
		for _, dep := range rec.Dependencies {
			if missing[dep] {
				delete(missing, dep)
				fmt.Fprintf(&buf, "  %q [style=\"rounded,filled,dashed\", fillcolor=lightgrey, fontcolor=grey30];\n", dep)
			}
		}
	}

	buf.WriteString("\n")
	for _, rec := range records {
		for _, dep := range rec.Dependencies {
			fmt.Fprintf(&buf, "  %q -> %q;\n", dep, rec.ID)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(rec module.Record, detailed bool) string {
	if !detailed {
		return rec.ID
	}

	parts := []string{}
	if rec.Version != "" {
		parts = append(parts, "version: "+rec.Version)
	}
	if ext := rec.EffectiveExternalID(); ext != rec.ID {
		parts = append(parts, "dir: "+ext)
	}
	if rec.Official {
		parts = append(parts, "official")
	}
	if len(parts) == 0 {
		return rec.ID
	}
	return rec.ID + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(rec module.Record, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case len(rec.Invalid.Cyclic) > 0:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=mistyrose")
	case rec.Official:
		attrs = append(attrs, "fillcolor=aliceblue")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	return renderFormat(dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return renderFormat(dot, graphviz.PNG)
}

func renderFormat(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
