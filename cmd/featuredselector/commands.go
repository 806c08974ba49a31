package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"FeaturedSelector/internal/app"
	"FeaturedSelector/internal/editorial"
)

var (
	periodKey    string
	fetchFirst   bool
	jsonOutput   bool
	onlyApproved bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Refresh the item snapshot from the configured feeds",
	Long: `Fetches every configured site, drops repeated links and rewrites the item
snapshot. An empty fetch fails and leaves the previous snapshot untouched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.Application) error {
			snap, err := a.Fetch(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "fetched %d items from %d sources\n", len(snap.Items), len(snap.SourcesUsed))
			return nil
		})
	},
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Select, validate and publish the featured set",
	Long: `Builds the featured set for --period (default: the current ISO week).

Exit status is non-zero when the pool is empty (and no previous set can be kept),
when the price gate leaves no oddities, or when a judgment breaks a vocabulary rule.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.Application) error {
			if fetchFirst {
				if _, err := a.Fetch(ctx); err != nil {
					logger.Warn("fetch failed, building from existing items", "error", err)
				}
			}

			res, err := a.Build(ctx, periodKey)
			if err != nil {
				return err
			}
			hero := "none"
			if res.Featured.Hero != nil {
				hero = res.Featured.Hero.Key()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: hero=%s articles=%d oddities=%d approved=%d\n",
				res.Outcome, res.Featured.Period, hero, len(res.Featured.Articles), len(res.Featured.Oddities), len(res.Approved))
			return nil
		})
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Re-check the published featured set against the vocabulary rules",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.Application) error {
			set, violations, err := a.Validate(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, v := range violations {
				fmt.Fprintln(out, v.Error())
			}
			if len(violations) > 0 {
				return fmt.Errorf("%s: %d vocabulary violations", set.Period, len(violations))
			}
			fmt.Fprintf(out, "%s: %d items pass\n", set.Period, set.Size())
			return nil
		})
	},
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Show how each stored item is classified, judged and scored",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.Application) error {
			rows, err := a.Classify(ctx, periodKey)
			if err != nil {
				return err
			}
			if onlyApproved {
				kept := rows[:0]
				for _, r := range rows {
					if r.Outcome == editorial.Approved {
						kept = append(kept, r)
					}
				}
				rows = kept
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tOUTCOME\tCATEGORY\tSCORE\tLEVEL\tBAND\tJUDGMENT")
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%s\t%s\t%.1f\t%d\t%s\t%s\n",
					r.Item.Key(), r.Outcome, r.Candidate.Category, r.Candidate.Score, r.Candidate.Level, r.Band, r.Candidate.Judgment.Primary)
			}
			return w.Flush()
		})
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Fetch and rebuild on the configured interval until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.Application) error {
			return a.Serve(ctx)
		})
	},
}

func init() {
	buildCmd.Flags().StringVar(&periodKey, "period", "", "period key, e.g. 2026-W43 (default: current ISO week)")
	buildCmd.Flags().BoolVar(&fetchFirst, "fetch", false, "refresh the item snapshot before building")
	classifyCmd.Flags().StringVar(&periodKey, "period", "", "period key used to seed judgment choice")
	classifyCmd.Flags().BoolVar(&jsonOutput, "json", false, "print JSON instead of a table")
	classifyCmd.Flags().BoolVar(&onlyApproved, "approved", false, "hide excluded items")
}
