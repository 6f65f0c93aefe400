package main

import (
	"fmt"
	"strconv"

	"github.com/aretw0/twentyfive/internal/presentation/tui"
	"github.com/aretw0/twentyfive/pkg/domain"
	"github.com/spf13/cobra"
)

func kindOf(cmd *cobra.Command) (domain.Kind, error) {
	kind, _ := cmd.Flags().GetString("kind")
	return domain.ParseKind(kind)
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create (or reset to empty) a list",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := kindOf(cmd)
		if err != nil {
			return err
		}
		app, _, done, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer done()

		if err := app.Service.CreateList(cmd.Context(), app.Config.Instance, kind); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created empty %s list for %s\n", kind, app.Config.Instance)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Print the items of a list in order",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := kindOf(cmd)
		if err != nil {
			return err
		}
		app, _, done, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer done()

		resp, err := app.Service.ListItems(cmd.Context(), app.Config.Instance, kind)
		if err != nil {
			return err
		}
		return tui.PrintList(cmd.OutOrStdout(), app.Config.Instance, kind, resp)
	},
}

var addCmd = &cobra.Command{
	Use:   "add [flags] <item>",
	Short: "Append an item (no-op if already present)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := kindOf(cmd)
		if err != nil {
			return err
		}
		app, _, done, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer done()

		return app.Service.AddItem(cmd.Context(), app.Config.Instance, kind, args[0])
	},
}

var moveCmd = &cobra.Command{
	Use:   "move [flags] <item> <index>",
	Short: "Move an existing item to a 0-based position",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := kindOf(cmd)
		if err != nil {
			return err
		}
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("%w: index %q is not a number", domain.ErrInvalidIndex, args[1])
		}
		app, _, done, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer done()

		return app.Service.MoveItem(cmd.Context(), app.Config.Instance, kind, args[0], index)
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete [flags] <item>",
	Aliases: []string{"rm"},
	Short:   "Remove an existing item",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := kindOf(cmd)
		if err != nil {
			return err
		}
		app, _, done, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer done()

		return app.Service.DeleteItem(cmd.Context(), app.Config.Instance, kind, args[0])
	},
}

var instancesCmd = &cobra.Command{
	Use:   "instances",
	Short: "List the IDs of every stored instance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _, done, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer done()

		ids, err := app.Service.Instances(cmd.Context())
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{createCmd, listCmd, addCmd, moveCmd, deleteCmd} {
		cmd.Flags().StringP("kind", "k", string(domain.KindGoals), "Which list: goals or tasks")
		rootCmd.AddCommand(cmd)
	}
	// Items and indexes may start with '-', so flags must precede them.
	for _, cmd := range []*cobra.Command{addCmd, moveCmd, deleteCmd} {
		cmd.Flags().SetInterspersed(false)
	}
	rootCmd.AddCommand(instancesCmd)
}
