package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/techsalle/inventory/client"
	"github.com/techsalle/inventory/ui"
)

type productFlags struct {
	name        string
	description string
	price       string
	stock       string
	category    string
	supplier    string
	imageURL    string
}

func (f *productFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "product name")
	cmd.Flags().StringVar(&f.description, "description", "", "free-text description")
	cmd.Flags().StringVar(&f.price, "price", "", "unit price, greater than zero")
	cmd.Flags().StringVar(&f.stock, "stock", "", "units in stock")
	cmd.Flags().StringVar(&f.category, "category", "", "category id or name; an unknown name is created")
	cmd.Flags().StringVar(&f.supplier, "supplier", "", "supplier name")
	cmd.Flags().StringVar(&f.imageURL, "image-url", "", "image URL")
}

// apply copies the flags the user set onto form.
func (f *productFlags) apply(cmd *cobra.Command, form *ui.ProductForm) {
	set := func(flag string, dst *string, v string) {
		if cmd.Flags().Changed(flag) {
			*dst = v
		}
	}
	set("name", &form.Name, f.name)
	set("description", &form.Description, f.description)
	set("price", &form.Price, f.price)
	set("stock", &form.Stock, f.stock)
	set("supplier", &form.Supplier, f.supplier)
	set("image-url", &form.ImageURL, f.imageURL)
}

func (c *cli) productsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"product", "p"},
		Short:   "List and edit products",
	}
	cmd.AddCommand(
		c.productsListCmd(),
		c.productsGetCmd(),
		c.productsSaveCmd("add"),
		c.productsSaveCmd("update"),
		c.productsDeleteCmd(),
	)
	return cmd
}

func (c *cli) productsListCmd() *cobra.Command {
	var filters ui.FilterState
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := c.context()
			defer cancel()

			screen := ui.NewProductScreen(c.client())
			if err := screen.ApplyFilters(ctx, filters); err != nil {
				return err
			}
			st := screen.State()
			if st.Filters.Active() {
				fmt.Fprintf(c.out, "Filters: %s\n", st.Filters.Summary())
			}
			c.printProducts(st.Products)
			return nil
		},
	}
	cmd.Flags().StringVar(&filters.Name, "name", "", "name contains (case-insensitive)")
	cmd.Flags().StringVar(&filters.Category, "category", "", "category id or name")
	cmd.Flags().StringVar(&filters.PriceMin, "min", "", "minimum price, inclusive")
	cmd.Flags().StringVar(&filters.PriceMax, "max", "", "maximum price, inclusive")
	return cmd
}

func (c *cli) productsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := c.context()
			defer cancel()

			p, err := c.client().GetProduct(ctx, id)
			if err != nil {
				return err
			}
			c.printProductDetail(p)
			return nil
		},
	}
}

// productsSaveCmd builds "add" and "update"; update starts from the stored
// product and overrides only the flags given.
func (c *cli) productsSaveCmd(verb string) *cobra.Command {
	var flags productFlags
	cmd := &cobra.Command{
		Use:   verb,
		Short: "Create a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.context()
			defer cancel()
			api := c.client()

			var form ui.ProductForm
			if verb == "update" {
				id, err := parseIDArg(args[0])
				if err != nil {
					return err
				}
				existing, err := api.GetProduct(ctx, id)
				if err != nil {
					return err
				}
				form = ui.EditForm(*existing)
			}
			flags.apply(cmd, &form)

			if cmd.Flags().Changed("category") {
				categoryID, newName, err := resolveCategory(ctx, api, flags.category)
				if err != nil {
					return err
				}
				form.CategoryID, form.NewCategory = categoryID, newName
			}

			screen := ui.NewProductScreen(api)
			saved, err := screen.Save(ctx, form)
			if err != nil {
				return err
			}
			c.printNotice(screen.State().Notice)
			c.printProductDetail(saved)
			return nil
		},
	}
	if verb == "update" {
		cmd.Use = "update ID"
		cmd.Short = "Replace a product's fields; unset flags keep their value"
		cmd.Args = cobra.ExactArgs(1)
	}
	flags.register(cmd)
	return cmd
}

func (c *cli) productsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a product after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := c.context()
			defer cancel()

			screen := ui.NewProductScreen(c.client())
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
}

type categoryLister interface {
	ListCategories(ctx context.Context) ([]client.Category, error)
}

// resolveCategory maps a --category value to an existing id, or to a name
// the product form will create.
func resolveCategory(ctx context.Context, api categoryLister, raw string) (uint, string, error) {
	raw = strings.TrimSpace(raw)
	if id, err := strconv.ParseUint(raw, 10, 64); err == nil && id > 0 {
		return uint(id), "", nil
	}
	categories, err := api.ListCategories(ctx)
	if err != nil {
		return 0, "", err
	}
	for _, cat := range categories {
		if strings.EqualFold(cat.Name, raw) {
			return cat.ID, "", nil
		}
	}
	return 0, raw, nil
}

func (c *cli) printProducts(products []client.Product) {
	if len(products) == 0 {
		fmt.Fprintln(c.out, "No products found")
		return
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK\tSUPPLIER")
	for _, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n",
			p.ID, p.Name, p.Category, p.Price.StringFixed(2), p.Stock, p.Supplier)
	}
	_ = tw.Flush()
}

func (c *cli) printProductDetail(p *client.Product) {
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%d\n", p.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", p.Name)
	fmt.Fprintf(tw, "Category:\t%s (#%d)\n", p.Category, p.CategoryID)
	fmt.Fprintf(tw, "Price:\t%s\n", p.Price.StringFixed(2))
	fmt.Fprintf(tw, "Stock:\t%d\n", p.Stock)
	if p.Description != "" {
		fmt.Fprintf(tw, "Description:\t%s\n", p.Description)
	}
	if p.Supplier != "" {
		fmt.Fprintf(tw, "Supplier:\t%s\n", p.Supplier)
	}
	if p.ImageURL != "" {
		fmt.Fprintf(tw, "Image:\t%s\n", p.ImageURL)
	}
	_ = tw.Flush()
}
