package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/trainerhub/poketrainer/internal"
	"github.com/trainerhub/poketrainer/internal/catalog"
)

var (
	catalogPage int
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	priceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

// newCosmeticsCmd builds the list/buy command tree for one cosmetic family
func newCosmeticsCmd(kind internal.CatalogKind, short string) *cobra.Command {
	parent := &cobra.Command{
		Use:   string(kind) + "s",
		Short: short,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List purchasable %ss", kind),
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			if err := a.guard.RequireUser(cmd.Context()).Error(); err != nil {
				return err
			}
			res := catalog.NewCosmetics(a.client, kind, a.cfg.PageSize)
			page, err := loadPage(cmd.Context(), res, catalogPage)
			if err != nil {
				return err
			}
			renderCosmetics(cmd.OutOrStdout(), res, page)
			return nil
		}),
	}
	listCmd.Flags().IntVarP(&catalogPage, "page", "n", 1, "Page number, starting at 1")

	keyHelp := "name"
	if kind == internal.KindTitle {
		keyHelp = "index"
	}
	buyCmd := &cobra.Command{
		Use:   fmt.Sprintf("buy <%s>", keyHelp),
		Short: fmt.Sprintf("Buy a %s by %s", kind, keyHelp),
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			if err := a.guard.RequireUser(cmd.Context()).Error(); err != nil {
				return err
			}
			res := catalog.NewCosmetics(a.client, kind, a.cfg.PageSize)
			err := internal.ShowProgress(cmd.Context(), fmt.Sprintf("Buying %s %s", kind, args[0]), func(ctx context.Context) error {
				return res.BuyKey(ctx, args[0])
			})
			if err != nil {
				return fmt.Errorf("purchase failed: %w", err)
			}
			a.dropProfileImage()
			internal.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Bought %s %s", kind, args[0]))
			return nil
		}),
	}

	parent.AddCommand(listCmd, buyCmd)
	return parent
}

// loadPage fetches page n of res behind a spinner
func loadPage[T any](ctx context.Context, res *catalog.Resource[T], n int) (catalog.Page[T], error) {
	return internal.Fetch(ctx, "Loading "+res.Name(), func(ctx context.Context) (catalog.Page[T], error) {
		return res.Page(ctx, n)
	})
}

func renderCosmetics(out io.Writer, res *catalog.Resource[internal.CatalogItem], page catalog.Page[internal.CatalogItem]) {
	if page.TotalItems == 0 {
		fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("No %s available", res.Name())))
		return
	}

	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%d %s", page.TotalItems, res.Name())))
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, titleStyle.Render("Key")+"\t"+titleStyle.Render("Name")+"\t"+titleStyle.Render("Price")+"\t")
	for _, item := range page.Items {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t\n",
			idStyle.Render(res.Key(item)),
			item.Name,
			priceStyle.Render(formatCoins(item.Price)))
	}
	_ = w.Flush()

	renderPageFooter(out, page.Number, page.TotalPages)
}

func renderPageFooter(out io.Writer, number, total int) {
	if total <= 1 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("Page %d of %d", number, total)))
	if number < total {
		fmt.Fprintln(out, dimStyle.Render("Next: --page "+strconv.Itoa(number+1)))
	}
}

func formatCoins(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func init() {
	rootCmd.AddCommand(
		newCosmeticsCmd(internal.KindCard, "Browse and buy trainer cards"),
		newCosmeticsCmd(internal.KindBackground, "Browse and buy profile backgrounds"),
		newCosmeticsCmd(internal.KindTitle, "Browse and buy trainer titles"),
	)
}
