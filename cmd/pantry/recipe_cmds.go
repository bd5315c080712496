package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alchemorsel/pantry/internal/application/shoppinglist"
	"github.com/alchemorsel/pantry/internal/domain/recipe"
	"github.com/alchemorsel/pantry/internal/ports/inbound"
)

func newSelectCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select",
		Short: "Manage the ingredient selection",
	}

	show := func(out io.Writer, d deps) {
		max := d.Session.MaxIngredients()
		fmt.Fprintf(out, "Selected (%d/%d): %s\n", d.Selection.Count(), max, strings.Join(d.Selection.Items(), ", "))
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add [ingredients...]",
			Short: "Add ingredients",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runApp(cmd, opts, func(ctx context.Context, d deps) error {
					max := d.Session.MaxIngredients()
					for _, name := range splitArgs(args) {
						if !d.Selection.CanAdd(max) {
							fmt.Fprintf(cmd.ErrOrStderr(), "Limit of %d ingredients reached, skipping %s\n", max, name)
							continue
						}
						d.Selection.Add(ctx, name)
					}
					show(cmd.OutOrStdout(), d)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "remove [ingredients...]",
			Short: "Remove ingredients",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runApp(cmd, opts, func(ctx context.Context, d deps) error {
					for _, name := range splitArgs(args) {
						d.Selection.Remove(ctx, name)
					}
					show(cmd.OutOrStdout(), d)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "toggle [ingredient]",
			Short: "Add the ingredient if absent, remove it otherwise",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runApp(cmd, opts, func(ctx context.Context, d deps) error {
					if !d.Selection.Has(args[0]) && !d.Selection.CanAdd(d.Session.MaxIngredients()) {
						return fmt.Errorf("limit of %d ingredients reached", d.Session.MaxIngredients())
					}
					result := d.Selection.Toggle(ctx, args[0])
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", args[0], result)
					show(cmd.OutOrStdout(), d)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Clear the selection",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runApp(cmd, opts, func(ctx context.Context, d deps) error {
					d.Selection.Clear(ctx)
					show(cmd.OutOrStdout(), d)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "Show the selection",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runApp(cmd, opts, func(ctx context.Context, d deps) error {
					show(cmd.OutOrStdout(), d)
					return nil
				})
			},
		},
	)
	return cmd
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var last bool

	cmd := &cobra.Command{
		Use:   "search [ingredients...]",
		Short: "Generate recipes from the selection or the given ingredients",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd, opts, func(ctx context.Context, d deps) error {
				out := cmd.OutOrStdout()
				if last {
					state := d.Search.State()
					if len(state.LastSearchedIngredients) > 0 {
						fmt.Fprintf(out, "Last search: %s\n\n", strings.Join(state.LastSearchedIngredients, ", "))
					}
					printRecipes(out, state.Recipes)
					return nil
				}

				ingredients := d.Selection.Items()
				if len(args) > 0 {
					ingredients = splitArgs(args)
				}
				if max := d.Session.MaxIngredients(); len(ingredients) > max {
					return fmt.Errorf("at most %d ingredients can be searched at once", max)
				}

				recipes, err := d.Search.Search(ctx, ingredients)
				if err != nil {
					return err
				}
				printRecipes(out, recipes)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&last, "last", false, "show the results of the last search instead")
	return cmd
}

func newFavoritesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "Manage favorite recipes",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List favorite recipes",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runApp(cmd, opts, func(ctx context.Context, d deps) error {
					printRecipes(cmd.OutOrStdout(), d.Favorites.List())
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "toggle [recipe-id]",
			Short: "Toggle a recipe of the last search as favorite",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runApp(cmd, opts, func(ctx context.Context, d deps) error {
					if d.Favorites.Has(args[0]) {
						d.Favorites.Remove(ctx, args[0])
						fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", args[0], inbound.ToggleRemoved)
						return nil
					}
					for _, r := range d.Search.State().Recipes {
						if r.ID == args[0] {
							result := d.Favorites.Toggle(ctx, r)
							fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", r.Name, result)
							return nil
						}
					}
					return fmt.Errorf("recipe %s is not in the last search results", args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "sync",
			Short: "Push favorite ids to the server",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runApp(cmd, opts, func(ctx context.Context, d deps) error {
					return d.Favorites.Sync(ctx)
				})
			},
		},
	)
	return cmd
}

func newShoppingListCmd(opts *rootOptions) *cobra.Command {
	var (
		have          []string
		fromFavorites bool
	)

	cmd := &cobra.Command{
		Use:   "shopping-list",
		Short: "Merge the ingredients of the last search into a shopping list",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd, opts, func(ctx context.Context, d deps) error {
				recipes := d.Search.State().Recipes
				if fromFavorites {
					recipes = d.Favorites.List()
				}

				list := shoppinglist.Build(recipes, have)
				out := cmd.OutOrStdout()
				if list.Len() == 0 {
					fmt.Fprintln(out, "Nothing to buy")
					return nil
				}
				for _, item := range list.Items() {
					fmt.Fprintf(out, "- %s %s %s (%s)\n", item.Quantity, item.Unit, item.Name, strings.Join(item.Sources, ", "))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&have, "have", nil, "ingredients already at home")
	cmd.Flags().BoolVar(&fromFavorites, "favorites", false, "use favorite recipes instead of the last search")
	return cmd
}

func printRecipes(out io.Writer, recipes []recipe.Recipe) {
	if len(recipes) == 0 {
		fmt.Fprintln(out, "No recipes")
		return
	}
	for i, r := range recipes {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "[%s] %s\n", r.ID, r.Name)
		fmt.Fprintf(out, "  %d min, %d servings, %s\n", r.CookingTime, r.Servings, r.Difficulty.Label())
		for _, ingredient := range r.Ingredients {
			fmt.Fprintf(out, "  * %s %s %s\n", ingredient.Quantity, ingredient.Unit, ingredient.Name)
		}
		for _, step := range r.Steps {
			fmt.Fprintf(out, "  %d. %s\n", step.Order, step.Text)
		}
	}
}

func printList(out io.Writer, label string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(out, "%s: %s\n", label, strings.Join(values, ", "))
}
