package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/trainerhub/poketrainer/internal"
)

var shinyStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("220")).
	Bold(true)

var pokemonCmd = &cobra.Command{
	Use:     "pokemon",
	Aliases: []string{"pokemons"},
	Short:   "Spawn and manage your Pokémon",
}

var pokemonSpawnCmd = &cobra.Command{
	Use:   "spawn",
	Short: "Spawn a new Pokémon",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		if err := a.guard.RequireUser(cmd.Context()).Error(); err != nil {
			return err
		}

		p, err := internal.Fetch(cmd.Context(), "Spawning", a.client.Spawn)
		if err != nil {
			return fmt.Errorf("spawn failed: %w", err)
		}

		out := cmd.OutOrStdout()
		internal.PrintSuccess(out, fmt.Sprintf("A wild %s appeared!", pokemonName(*p)))
		renderPokemonDetail(out, *p)
		return nil
	}),
}

var pokemonListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your Pokémon",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		if err := a.guard.RequireUser(cmd.Context()).Error(); err != nil {
			return err
		}

		pokemons, err := internal.Fetch(cmd.Context(), "Loading Pokémon", a.client.UserPokemons)
		if err != nil {
			return fmt.Errorf("failed to load Pokémon: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(pokemons) == 0 {
			fmt.Fprintln(out, headerStyle.Render("No Pokémon yet"))
			fmt.Fprintln(out, dimStyle.Render("Try 'poketrainer pokemon spawn'"))
			return nil
		}
		fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%d Pokémon", len(pokemons))))
		fmt.Fprintln(out)

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("Name")+"\t"+titleStyle.Render("Level")+"\t"+titleStyle.Render("Types")+"\t")
		for _, p := range pokemons {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n",
				idStyle.Render(p.ID),
				pokemonName(p),
				strconv.Itoa(p.Level),
				dimStyle.Render(strings.Join(p.Types, "/")))
		}
		return w.Flush()
	}),
}

var pokemonReleaseCmd = &cobra.Command{
	Use:     "release <pokemon-id>",
	Aliases: []string{"delete"},
	Short:   "Release one of your Pokémon",
	Args:    cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		if err := a.guard.RequireUser(cmd.Context()).Error(); err != nil {
			return err
		}

		err := internal.ShowProgress(cmd.Context(), "Releasing", func(ctx context.Context) error {
			return a.client.DeletePokemon(ctx, args[0])
		})
		if err != nil {
			return fmt.Errorf("release failed: %w", err)
		}
		internal.PrintSuccess(cmd.OutOrStdout(), "Released "+args[0])
		return nil
	}),
}

func pokemonName(p internal.Pokemon) string {
	if p.Shiny {
		return shinyStyle.Render("★ " + p.Name)
	}
	return p.Name
}

func renderPokemonDetail(out io.Writer, p internal.Pokemon) {
	fmt.Fprintf(out, "  ID:    %s\n", idStyle.Render(p.ID))
	if p.Level > 0 {
		fmt.Fprintf(out, "  Level: %d\n", p.Level)
	}
	if len(p.Types) > 0 {
		fmt.Fprintf(out, "  Types: %s\n", strings.Join(p.Types, "/"))
	}
	if len(p.Stats) == 0 {
		return
	}
	names := make([]string, 0, len(p.Stats))
	for name := range p.Stats {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %-6s %d\n", name+":", p.Stats[name])
	}
}

func init() {
	rootCmd.AddCommand(pokemonCmd)
	pokemonCmd.AddCommand(pokemonSpawnCmd, pokemonListCmd, pokemonReleaseCmd)
}
