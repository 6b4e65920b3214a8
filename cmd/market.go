package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/trainerhub/poketrainer/internal"
	"github.com/trainerhub/poketrainer/internal/catalog"
)

var (
	marketPage  int
	marketOwned bool

	listingName  string
	listingPrice float64
	listingType  string
	listingImage string
)

var marketCmd = &cobra.Command{
	Use:   "market",
	Short: "Trade items on the marketplace",
}

var marketListCmd = &cobra.Command{
	Use:   "list",
	Short: "List marketplace offers",
	Long: `List the items offered on the marketplace, or with --owned the items
you own.`,
	Args: cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		if err := a.guard.RequireUser(cmd.Context()).Error(); err != nil {
			return err
		}

		res := catalog.NewMarket(a.client, a.cfg.PageSize)
		if marketOwned {
			res = catalog.NewOwned(a.client, a.cfg.PageSize)
		}
		page, err := loadPage(cmd.Context(), res, marketPage)
		if err != nil {
			return err
		}
		renderListings(cmd.OutOrStdout(), res, page)
		return nil
	}),
}

var marketBuyCmd = &cobra.Command{
	Use:   "buy <listing-id>",
	Short: "Buy a marketplace offer",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		if err := a.guard.RequireUser(cmd.Context()).Error(); err != nil {
			return err
		}

		res := catalog.NewMarket(a.client, a.cfg.PageSize)
		err := internal.ShowProgress(cmd.Context(), "Buying "+args[0], func(ctx context.Context) error {
			return res.BuyKey(ctx, args[0])
		})
		if err != nil {
			return fmt.Errorf("purchase failed: %w", err)
		}
		a.dropProfileImage()
		internal.PrintSuccess(cmd.OutOrStdout(), "Bought listing "+args[0])
		return nil
	}),
}

var marketAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Offer an item on the marketplace",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		if err := validateRequired(map[string]string{
			"--name":  listingName,
			"--type":  listingType,
			"--image": listingImage,
		}); err != nil {
			return err
		}
		if listingPrice <= 0 {
			return fmt.Errorf("--price must be positive")
		}
		if err := a.guard.RequireUser(cmd.Context()).Error(); err != nil {
			return err
		}

		data, err := os.ReadFile(listingImage)
		if err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}

		err = internal.ShowProgress(cmd.Context(), "Creating listing", func(ctx context.Context) error {
			return a.client.MarketAdd(ctx, internal.NewListing{
				Name:      listingName,
				Type:      listingType,
				Price:     listingPrice,
				ImageName: filepath.Base(listingImage),
				Image:     data,
			})
		})
		if err != nil {
			return fmt.Errorf("failed to create listing: %w", err)
		}
		internal.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Listed %s for %s", listingName, formatCoins(listingPrice)))
		return nil
	}),
}

func renderListings(out io.Writer, res *catalog.Resource[internal.MarketListing], page catalog.Page[internal.MarketListing]) {
	if page.TotalItems == 0 {
		fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("No %s", res.Name())))
		return
	}

	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%d %s", page.TotalItems, res.Name())))
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("Name")+"\t"+titleStyle.Render("Type")+"\t"+titleStyle.Render("Price")+"\t")
	for _, l := range page.Items {
		kind := l.Type
		if kind == "" {
			kind = "—"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n",
			idStyle.Render(l.ID),
			l.Name,
			dimStyle.Render(kind),
			priceStyle.Render(formatCoins(l.Price)))
	}
	_ = w.Flush()

	renderPageFooter(out, page.Number, page.TotalPages)
}

var currencyCmd = &cobra.Command{
	Use:   "currency",
	Short: "Show your coin balance",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		result := a.guard.RequireUser(cmd.Context())
		if err := result.Error(); err != nil {
			return err
		}

		cur, err := internal.Fetch(cmd.Context(), "Loading balance", func(ctx context.Context) (*internal.Currency, error) {
			return a.client.Currency(ctx, result.Session.UserID())
		})
		if err != nil {
			return fmt.Errorf("failed to load balance: %w", err)
		}

		name := cur.CoinName
		if name == "" {
			name = "coins"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", priceStyle.Render(strconv.FormatFloat(cur.CoinValue, 'f', -1, 64)), name)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(marketCmd, currencyCmd)
	marketCmd.AddCommand(marketListCmd, marketBuyCmd, marketAddCmd)

	marketListCmd.Flags().IntVarP(&marketPage, "page", "n", 1, "Page number, starting at 1")
	marketListCmd.Flags().BoolVar(&marketOwned, "owned", false, "List the items you own")

	marketAddCmd.Flags().StringVar(&listingName, "name", "", "Item name")
	marketAddCmd.Flags().Float64Var(&listingPrice, "price", 0, "Asking price in coins")
	marketAddCmd.Flags().StringVar(&listingType, "type", "", "Item type, e.g. card or background")
	marketAddCmd.Flags().StringVar(&listingImage, "image", "", "Path of the item image")
}
