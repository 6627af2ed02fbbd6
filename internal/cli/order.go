package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/modstack/modstack/pkg/refresh"
)

// orderCommand creates the order command.
func (c *CLI) orderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Show the resolved load order",
		Long: `Order scans the installation and prints the resolved load order,
dependencies before dependents. The persisted per-profile load order is
used to break ties between otherwise unordered modules.`,
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

			for i, id := range res.Ordered {
				marker := " "
				if v := res.Validation[id]; !v.IsClean() {
					marker = StyleWarning.Render("!")
				}
				fmt.Printf("%s %2d  %s\n", marker, i, id)
			}
			return nil
		},
	}

	return cmd
}

// paramsCommand creates the params command.
func (c *CLI) paramsCommand() *cobra.Command {
	var gameMode string

	cmd := &cobra.Command{
		Use:   "params",
		Short: "Print the launch parameter string",
		Long: `Params reconciles the persisted load order with the scanned modules
and prints the parameter string the game executable expects.

Modules without a persisted position fall back to the official launcher's
preferences file when one exists.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadEnv()
			if err != nil {
				return err
			}
			if gameMode == "" {
				gameMode = cfg.GameMode
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

			params, err := runner.LaunchParams(cmd.Context(), profile.ID, gameMode)
			if err != nil {
				return err
			}
			fmt.Println(params)
			return nil
		},
	}

	cmd.Flags().StringVar(&gameMode, "mode", "", "game mode (default from config)")
	return cmd
}
