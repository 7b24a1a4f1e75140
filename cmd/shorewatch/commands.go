package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/viperioribus/shorewatch/internal/cascade"
	"github.com/viperioribus/shorewatch/internal/domain"
)

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login [login]",
		Short: "Authenticate and store the session credential",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			login, password, err := promptCredentials(args)
			if err != nil {
				return err
			}

			token, err := a.client.Login(cmd.Context(), login, password)
			if errors.Is(err, domain.ErrUnauthorized) {
				return errors.New("incorrect login or password")
			}
			if err != nil {
				return err
			}
			if err := a.session.SetToken(cmd.Context(), token); err != nil {
				return err
			}

			fmt.Println("Logged in.")
			return nil
		},
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored credential and selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.session.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func newRegisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register [login]",
		Short: "Create a new account on the backend",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			login, password, err := promptCredentials(args)
			if err != nil {
				return err
			}

			if err := a.client.Register(cmd.Context(), login, password); err != nil {
				return err
			}
			fmt.Println("Account created. Run 'shorewatch login' to sign in.")
			return nil
		},
	}
}

func newBeachesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "beaches",
		Short: "List the beaches reports can be filed against",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			beaches, err := a.directory.Beaches(cmd.Context())
			if err != nil {
				return authHint(err)
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.SetStyle(table.StyleRounded)
			tw.AppendHeader(table.Row{"ID", "Name"})
			for _, b := range beaches {
				tw.AppendRow(table.Row{b.ID, b.Name})
			}
			tw.Render()
			return nil
		},
	}
}

func newSelectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select",
		Short: "Choose the beach and watch post reports are filed against",
	}
	cmd.AddCommand(newSelectBeachCmd())
	cmd.AddCommand(newSelectPostCmd())
	return cmd
}

func newSelectBeachCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "beach <id-or-name>",
		Short: "Choose a beach; clears any previous post choice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			beaches, err := a.directory.Beaches(ctx)
			if err != nil {
				return authHint(err)
			}
			beach := findBeach(beaches, args[0])
			if beach == nil {
				return fmt.Errorf("no beach matches %q; run 'shorewatch beaches'", args[0])
			}

			if err := a.cascade.ChooseBeach(ctx, *beach); err != nil {
				return err
			}
			snap, err := a.cascade.WaitSettled(ctx)
			if err != nil {
				return err
			}
			if snap.State == cascade.LoadError {
				return fmt.Errorf("beach chosen, but loading its posts failed: %w", snap.Err)
			}

			fmt.Printf("Beach: %s\n", beach.Name)
			printPosts(snap.Posts)
			return nil
		},
	}
}

func newSelectPostCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "post <id-or-name>",
		Short: "Choose a watch post on the selected beach",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			a.cascade.Restore(ctx)
			snap, err := a.cascade.WaitSettled(ctx)
			if err != nil {
				return err
			}
			switch snap.State {
			case cascade.NoBeach:
				return errors.New("no beach selected; run 'shorewatch select beach' first")
			case cascade.LoadError:
				return fmt.Errorf("loading posts failed: %w", snap.Err)
			}

			post := findPost(snap.Posts, args[0])
			if post == nil {
				return fmt.Errorf("no post matches %q on %s", args[0], snap.Beach.Name)
			}
			if err := a.cascade.ChoosePost(ctx, *post); err != nil {
				return err
			}

			fmt.Printf("Selection: %s - %s\n", snap.Beach.Name, post.Name)
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored session and selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if _, ok := a.session.Token(ctx); ok {
				fmt.Println("Session:   authenticated")
			} else {
				fmt.Println("Session:   not authenticated")
			}

			sel := a.session.LoadSelection(ctx)
			switch {
			case sel.Beach == nil:
				fmt.Println("Selection: none")
			case sel.Post == nil:
				fmt.Printf("Selection: %s (no post chosen)\n", sel.Beach.Name)
			default:
				fmt.Printf("Selection: %s\n", sel.ResolvedName())
			}
			return nil
		},
	}
}

func newIncidencesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "incidences",
		Short: "List the incidence tags accepted on incident reports",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			for _, inc := range domain.Incidences() {
				fmt.Println(inc)
			}
			return nil
		},
	}
}

// authHint rewrites a credential failure into actionable CLI guidance.
func authHint(err error) error {
	if errors.Is(err, domain.ErrUnauthorized) {
		return errors.New("not authenticated; run 'shorewatch login'")
	}
	return err
}

// findBeach matches by ID first, then by exact name.
func findBeach(beaches []domain.Beach, key string) *domain.Beach {
	for i := range beaches {
		if beaches[i].ID == key {
			return &beaches[i]
		}
	}
	for i := range beaches {
		if beaches[i].Name == key {
			return &beaches[i]
		}
	}
	return nil
}

func findPost(posts []domain.BeachPost, key string) *domain.BeachPost {
	for i := range posts {
		if posts[i].ID == key {
			return &posts[i]
		}
	}
	for i := range posts {
		if posts[i].Name == key {
			return &posts[i]
		}
	}
	return nil
}

func printPosts(posts []domain.BeachPost) {
	if len(posts) == 0 {
		fmt.Println("No posts on this beach.")
		return
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "Post"})
	for _, p := range posts {
		tw.AppendRow(table.Row{p.ID, p.Name})
	}
	tw.Render()
}
