package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/modstack/modstack/pkg/refresh"
)

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Report cyclic and missing dependencies",
		Long: `Validate scans the installation and reports every module whose
dependencies cannot be satisfied: participants of dependency cycles and
modules declaring dependencies that are not installed.

A broken graph never blocks resolution; this command surfaces what the
resolver had to work around.`,
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

			res, err := runner.Refresh(cmd.Context(), refresh.Request{
				Event:    refresh.EventSetup,
				Profile:  profile,
				GamePath: cfg.GamePath,
			})
			if err != nil {
				return err
			}

			rows := make([][]string, 0)
			for _, id := range res.Ordered {
				v := res.Validation[id]
				if v.IsClean() {
					continue
				}

				finding := ""
				detail := ""
				switch {
				case len(v.Cyclic) > 0:
					finding = StyleError.Render("cycle")
					detail = "with " + strings.Join(v.Cyclic, ", ")
				case len(v.Missing) > 0:
					finding = StyleWarning.Render("missing")
					detail = strings.Join(v.Missing, ", ")
				}
				rows = append(rows, []string{id, finding, detail})
			}

			if len(rows) == 0 {
				printSuccess("All %d modules resolve cleanly", len(res.Ordered))
				return nil
			}

			headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
			t := table.New().
				Border(lipgloss.RoundedBorder()).
				BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
				Headers("Module", "Finding", "Detail").
				Rows(rows...).
				StyleFunc(func(row, col int) lipgloss.Style {
					if row == -1 {
						return headerStyle
					}
					return lipgloss.NewStyle()
				})
			fmt.Println(t.Render())

			printWarning("%d of %d modules have dependency problems", len(rows), len(res.Ordered))
			return nil
		},
	}

	return cmd
}
