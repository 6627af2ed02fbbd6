package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	apperrors "github.com/modstack/modstack/pkg/errors"
	"github.com/modstack/modstack/pkg/refresh"
)

// scanCommand creates the scan command.
func (c *CLI) scanCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Discover and parse module manifests",
		Long: `Scan walks the installation's module tree, parses every manifest it
finds, rebuilds the module cache, and resolves the dependency ordering.

Examples:
  modstack scan --game-path /games/bannerlord
  modstack scan --refresh        # bypass the snapshot cache`,
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

			p := newProgress(loggerFromContext(cmd.Context()))
			spin := newSpinnerWithContext(cmd.Context(), "Scanning module tree...")
			spin.Start()

			res, err := runner.Refresh(cmd.Context(), refresh.Request{
				Event:    refresh.EventSetup,
				Profile:  profile,
				GamePath: cfg.GamePath,
				Force:    force,
			})
			if err != nil {
				if apperrors.Is(err, apperrors.ErrCodeDiscoveryIncomplete) {
					spin.StopWithError("No module tree found")
					printDetail("Set game_path in the config or pass --game-path")
					return err
				}
				spin.StopWithError("Scan failed")
				return err
			}
			if spin.Cancelled() {
				spin.Stop()
				return errors.New("cancelled")
			}
			spin.StopWithSuccess(fmt.Sprintf("Scanned %d modules", len(res.Ordered)))
			p.done(fmt.Sprintf("Resolved %d modules", len(res.Ordered)))

			printModuleTable(runner, res)
			cyclic, missing := countFindings(res)
			printStats(len(res.Ordered), cyclic, missing, res.FromCache)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "refresh", false, "bypass the scan snapshot cache")
	return cmd
}

// printModuleTable renders the resolved modules in load order.
func printModuleTable(runner *refresh.Runner, res *refresh.Result) {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, 0, len(res.Ordered))
	for i, id := range res.Ordered {
		rec, ok := runner.Modules.Lookup(id)
		if !ok {
			continue
		}

		kind := ""
		if rec.Official {
			kind = "official"
		}

		status := StyleSuccess.Render("ok")
		if v := res.Validation[id]; len(v.Cyclic) > 0 {
			status = StyleError.Render("cyclic")
		} else if len(v.Missing) > 0 {
			status = StyleWarning.Render("missing deps")
		}

		rows = append(rows, []string{
			fmt.Sprintf("%d", i),
			rec.ID,
			rec.Version,
			kind,
			status,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Module", "Version", "Type", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			return lipgloss.NewStyle()
		})

	fmt.Println(t.Render())
}

// countFindings tallies modules with cyclic or missing dependencies.
func countFindings(res *refresh.Result) (cyclic, missing int) {
	for _, v := range res.Validation {
		if len(v.Cyclic) > 0 {
			cyclic++
		}
		if len(v.Missing) > 0 {
			missing++
		}
	}
	return cyclic, missing
}
