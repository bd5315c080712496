package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/alchemorsel/pantry/internal/domain/user"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
)

// passwordEnv supplies the password when --password is not given
const passwordEnv = "PANTRY_PASSWORD"

func passwordOrEnv(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv(passwordEnv)
}

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd, opts, func(ctx context.Context, d deps) error {
				if err := d.Session.Login(ctx, email, passwordOrEnv(password)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", d.Session.State().User.Email)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (or "+passwordEnv+")")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newSignupCmd(opts *rootOptions) *cobra.Command {
	var req outbound.SignupRequest

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Password = passwordOrEnv(req.Password)
			return runApp(cmd, opts, func(ctx context.Context, d deps) error {
				if err := d.Session.Signup(ctx, req); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s\n", d.Session.State().User.Name)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "display name")
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "account password (or "+passwordEnv+")")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the session and the ingredient selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd, opts, func(ctx context.Context, d deps) error {
				d.Session.Logout(ctx)
				fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
				return nil
			})
		},
	}
}

func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd, opts, func(ctx context.Context, d deps) error {
				if refresh {
					if err := d.Session.RefreshProfile(ctx); err != nil {
						return err
					}
				}
				state := d.Session.State()
				out := cmd.OutOrStdout()
				if !state.IsAuthenticated || state.User == nil {
					fmt.Fprintln(out, "Not signed in")
					return nil
				}

				plan := "free"
				if d.Session.IsPremium() {
					plan = "premium"
				}
				fmt.Fprintf(out, "%s <%s>\n", state.User.Name, state.User.Email)
				fmt.Fprintf(out, "Plan: %s (up to %d ingredients)\n", plan, d.Session.MaxIngredients())
				printList(out, "Allergies", state.User.Allergies)
				printList(out, "Dietary restrictions", lo.Map(state.User.DietaryRestrictions, func(r user.DietaryRestriction, _ int) string {
					return string(r)
				}))
				printList(out, "Banned ingredients", state.User.BannedIngredients)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "reload the profile from the server first")
	return cmd
}

func newProfileCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update the signed-in user's profile",
	}

	var update user.ProfileUpdate
	set := &cobra.Command{
		Use:   "set",
		Short: "Change name, email or avatar",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd, opts, func(ctx context.Context, d deps) error {
				return d.Session.UpdateProfile(ctx, update)
			})
		},
	}
	set.Flags().StringVar(&update.Name, "name", "", "display name")
	set.Flags().StringVar(&update.Email, "email", "", "account email")
	set.Flags().StringVar(&update.Avatar, "avatar", "", "avatar URL")

	listCmd := func(use, short string, apply func(ctx context.Context, d deps, values []string) error) *cobra.Command {
		return &cobra.Command{
			Use:   use + " [values...]",
			Short: short,
			RunE: func(cmd *cobra.Command, args []string) error {
				values := splitArgs(args)
				return runApp(cmd, opts, func(ctx context.Context, d deps) error {
					return apply(ctx, d, values)
				})
			},
		}
	}

	cmd.AddCommand(
		set,
		listCmd("allergies", "Replace the allergy list", func(ctx context.Context, d deps, values []string) error {
			return d.Session.UpdateAllergies(ctx, values)
		}),
		listCmd("banned", "Replace the banned ingredient list", func(ctx context.Context, d deps, values []string) error {
			return d.Session.UpdateBannedIngredients(ctx, values)
		}),
		listCmd("restrictions", "Replace the dietary restrictions", func(ctx context.Context, d deps, values []string) error {
			return d.Session.UpdateDietaryRestrictions(ctx, lo.Map(values, func(v string, _ int) user.DietaryRestriction {
				return user.DietaryRestriction(v)
			}))
		}),
	)
	return cmd
}

// splitArgs accepts both "a b" and "a,b"
func splitArgs(args []string) []string {
	var out []string
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
