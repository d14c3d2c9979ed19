package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harou24/cf-cli/internal/app"
	"github.com/harou24/cf-cli/internal/cferr"
	"github.com/harou24/cf-cli/internal/config"
	"github.com/harou24/cf-cli/internal/history"
	"github.com/harou24/cf-cli/internal/providers"
	"github.com/harou24/cf-cli/internal/ui"
)

var (
	wideFlag      bool
	expireFlag    string
	historyFlag   bool
	noPreviewFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "cf <image description>",
	Short: "Generate an image with DALL-E and host it on Cloudflare Images",
	Long: `Generate an image from a natural-language description, upload it to
Cloudflare Images, and print the public URL.

Requires OPENAI_API_KEY, CLOUDFLARE_API_TOKEN and CLOUDFLARE_ACCOUNT_ID in
the environment (a .env file works too).

Examples:
  $ cf a watercolor fox reading a newspaper
  $ cf --wide a panoramic mountain skyline at dawn
  $ cf --expire 24h a one-day-only promo banner
  $ cf --history`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		term := ui.New(cmd.OutOrStdout(), cmd.ErrOrStderr())
		if err := run(cmd, args, term); err != nil {
			term.Error(err)
			return err
		}
		return nil
	},
}

func run(cmd *cobra.Command, args []string, term *ui.UI) error {
	policy, err := history.ParsePolicy(expireFlag)
	if err != nil {
		return err
	}
	if !historyFlag && len(args) == 0 {
		return cferr.New(cferr.Argument, "an image description is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	a := &app.App{
		Generator: providers.NewOpenAI(providers.Config{APIKey: cfg.OpenAIAPIKey}),
		Uploader: providers.NewCloudflare(providers.Config{
			APIKey:    cfg.CloudflareAPIToken,
			AccountID: cfg.CloudflareAccountID,
		}),
		Store: history.NewStore(cfg.HistoryPath),
		UI:    term,
	}

	return a.Run(cmd.Context(), app.Request{
		Prompt:      strings.Join(args, " "),
		Wide:        wideFlag,
		Expire:      policy,
		ShowHistory: historyFlag,
		NoPreview:   noPreviewFlag,
	})
}

func init() {
	rootCmd.Flags().BoolVar(&wideFlag, "wide", false, "request a wide (1792x1024) image instead of a square one")
	rootCmd.Flags().StringVar(&expireFlag, "expire", "", "expiration policy for the upload, e.g. 24h or 30d")
	rootCmd.Flags().BoolVar(&historyFlag, "history", false, "print prior generations and exit")
	rootCmd.Flags().BoolVar(&noPreviewFlag, "no-preview", false, "skip the inline terminal preview")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
