package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/techsalle/inventory/ui"
)

func (c *cli) categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category", "c"},
		Short:   "Manage categories",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := c.context()
			defer cancel()

			screen := ui.NewCategoryScreen(c.client())
			if err := screen.Load(ctx); err != nil {
				return err
			}
			categories := screen.State().Categories
			if len(categories) == 0 {
				fmt.Fprintln(c.out, "No categories found")
				return nil
			}
			tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME")
			for _, cat := range categories {
				fmt.Fprintf(tw, "%d\t%s\n", cat.ID, cat.Name)
			}
			return tw.Flush()
		},
	}

	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.context()
			defer cancel()

			screen := ui.NewCategoryScreen(c.client())
			cat, err := screen.Create(ctx, args[0])
			if err != nil {
				return err
			}
			c.printNotice(screen.State().Notice)
			fmt.Fprintf(c.out, "ID: %d\n", cat.ID)
			return nil
		},
	}

	rename := &cobra.Command{
		Use:   "rename ID NAME",
		Short: "Rename a category and every product's category label",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := c.context()
			defer cancel()

			screen := ui.NewCategoryScreen(c.client())
			if _, err := screen.Rename(ctx, id, args[1]); err != nil {
				return err
			}
			c.printNotice(screen.State().Notice)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a category that no product uses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := c.context()
			defer cancel()

			screen := ui.NewCategoryScreen(c.client())
			if err := screen.Load(ctx); err != nil {
				return err
			}
			deleted, err := screen.Delete(ctx, id, c.confirm)
			if err != nil {
				return err
			}
			if !deleted {
				fmt.Fprintln(c.out, "Cancelled")
				return nil
			}
			c.printNotice(screen.State().Notice)
			return nil
		},
	}

	cmd.AddCommand(list, add, rename, del)
	return cmd
}

func (c *cli) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show inventory statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := c.context()
			defer cancel()

			stats, err := c.client().GetStatistics(ctx)
			if err != nil {
				return err
			}
			average := "n/a"
			if stats.PriceAverage.Valid {
				average = stats.PriceAverage.Decimal.StringFixed(2)
			}
			tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "Products:\t%d\n", stats.TotalProducts)
			fmt.Fprintf(tw, "Units in stock:\t%d\n", stats.StockTotal)
			fmt.Fprintf(tw, "Average price:\t%s\n", average)
			fmt.Fprintf(tw, "Categories in use:\t%d\n", stats.TotalCategories)
			return tw.Flush()
		},
	}
}
