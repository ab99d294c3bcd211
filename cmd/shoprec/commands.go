package main

import (
	"io"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/engine"
)

func newRootCmd() *cobra.Command {
	opts := &options{}
	var a *app

	root := &cobra.Command{
		Use:           "shoprec",
		Short:         "Product recommendations from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			opts.logOut = cmd.ErrOrStderr()
			var err error
			a, err = newApp(cmd.Context(), opts)
			return err
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a == nil {
				return nil
			}
			return a.Close()
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&opts.configPath, "config", "", "config file (YAML); defaults to $SHOPREC_CONFIG")
	f.StringVar(&opts.fixture, "fixture", "", "YAML catalog used to seed the product and interaction stores")
	f.StringVar(&opts.redisAddr, "redis", "", "redis address for the recommendation cache (in-process cache when empty)")
	f.StringVar(&opts.sqliteDSN, "sqlite", "", "sqlite DSN for the catalog (in-memory catalog when empty)")
	f.IntVar(&opts.limit, "limit", 0, "number of results, clamped to [1,50] (each command has its own default)")

	// 没有显式传 --limit 时交给 engine 按各操作的默认值处理
	limit := func(cmd *cobra.Command) int {
		if !cmd.Flags().Changed("limit") {
			return 0
		}
		return clampLimit(opts.limit)
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "personalized USER",
			Short: "Hybrid collaborative + content recommendations for a user",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				out, err := a.engine.GetPersonalized(cmd.Context(), args[0], limit(cmd))
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), out)
			},
		},
		&cobra.Command{
			Use:   "recommend USER",
			Short: "Personalized recommendations with cold-start fallback",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				out, source, err := a.engine.GetRecommendations(cmd.Context(), args[0], limit(cmd))
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"source":   source,
					"products": out,
				})
			},
		},
		&cobra.Command{
			Use:   "similar PRODUCT",
			Short: "Products in the same category ranked by feature similarity",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				out, err := a.engine.GetSimilar(cmd.Context(), args[0], limit(cmd))
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), out)
			},
		},
		&cobra.Command{
			Use:       "trending [day|week|month]",
			Short:     "Most interacted products in a time window (default week)",
			Args:      cobra.MaximumNArgs(1),
			ValidArgs: []string{"day", "week", "month"},
			RunE: func(cmd *cobra.Command, args []string) error {
				var window core.Window
				if len(args) == 1 {
					window = core.Window(args[0])
				}
				out, err := a.engine.GetTrending(cmd.Context(), window, limit(cmd))
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), out)
			},
		},
		&cobra.Command{
			Use:   "cold-start",
			Short: "Featured, highly rated products for users without history",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				out, err := a.engine.GetColdStart(cmd.Context(), limit(cmd))
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), out)
			},
		},
		&cobra.Command{
			Use:   "recent USER",
			Short: "Products the user viewed recently",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				out, err := a.engine.GetRecentlyViewed(cmd.Context(), args[0], limit(cmd))
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), out)
			},
		},
		&cobra.Command{
			Use:   "stats USER",
			Short: "Interaction counts and category preferences of a user",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				profile, err := a.engine.GetUserStats(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), userStats{
					UserProfile: profile,
					TopCategory: profile.TopCategory(),
					Cold:        profile.IsCold(),
				})
			},
		},
		&cobra.Command{
			Use:   "track USER PRODUCT TYPE",
			Short: "Record an interaction (search, view, like, purchase, addToCart, removeFromCart)",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				in, err := a.engine.TrackInteraction(cmd.Context(), args[0], args[1], core.InteractionType(args[2]))
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), in)
			},
		},
	)
	return root
}

// userStats 是 stats 命令的输出：画像加上两个派生字段。
type userStats struct {
	*core.UserProfile
	TopCategory string `json:"top_category"`
	Cold        bool   `json:"cold"`
}

// clampLimit 命令行是对外边界，越界的 limit 在这里截到 [1,50]，不报错。
func clampLimit(limit int) int {
	return max(1, min(limit, engine.MaxLimit))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
