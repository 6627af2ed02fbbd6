package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/modstack/modstack/pkg/refresh"
	"github.com/modstack/modstack/pkg/render"
)

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		output   string
		format   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Render the dependency graph",
		Long: `Graph scans the installation and renders the module dependency
graph. Cycle participants are drawn dashed; missing dependencies appear
as grey placeholder nodes.

Examples:
  modstack graph                       # DOT to stdout
  modstack graph -o deps.svg           # SVG file
  modstack graph -o deps.png --detailed`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadEnv()
			if err != nil {
				return err
			}

			runner, profile, err := c.newRunner(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer runner.Snapshots.Close()

			if _, err := runner.Refresh(cmd.Context(), refresh.Request{
				Event:    refresh.EventSetup,
				Profile:  profile,
				GamePath: cfg.GamePath,
			}); err != nil {
				return err
			}

			dot := render.ToDOT(runner.Modules, render.Options{Detailed: detailed})

			if format == "" {
				format = formatFromPath(output)
			}

			var data []byte
			switch format {
			case "dot":
				data = []byte(dot)
			case "svg":
				data, err = render.RenderSVG(dot)
			case "png":
				data, err = render.RenderPNG(dot)
			default:
				return fmt.Errorf("unsupported format: %s (dot, svg, png)", format)
			}
			if err != nil {
				return err
			}

			if output == "" {
				fmt.Print(string(data))
				return nil
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess("Rendered dependency graph")
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&format, "format", "", "output format: dot, svg, png (inferred from output file)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include version and directory in node labels")
	return cmd
}

// formatFromPath infers the render format from a file extension.
func formatFromPath(path string) string {
	switch {
	case strings.HasSuffix(path, ".svg"):
		return "svg"
	case strings.HasSuffix(path, ".png"):
		return "png"
	default:
		return "dot"
	}
}
