package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/dgallion1/noticegest/internal/config"
	"github.com/dgallion1/noticegest/internal/noticehtml"
	"github.com/dgallion1/noticegest/internal/parser"
	"github.com/dgallion1/noticegest/internal/render"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const appName = "noticectl"

// options are the flags shared by every subcommand.
type options struct {
	heuristicsFile string
	backendURL     string
	badgeIconURL   string
	disableLinks   bool
	verbose        bool

	cfg config.Config
}

func (o *options) renderer() (*render.Renderer, error) {
	h, err := config.LoadHeuristics(o.heuristicsFile)
	if err != nil {
		return nil, err
	}
	slog.Debug("heuristics loaded", "file", o.heuristicsFile, "min_columns", h.MinColumns, "max_columns", h.MaxColumns)
	t := noticehtml.New(noticehtml.Options{Heuristics: h, BadgeIconURL: o.badgeIconURL, DisableLinks: o.disableLinks})
	return render.New(t, nil), nil
}

func (o *options) parserOptions() parser.Options {
	return parser.Options{PDFFallbackPdftotext: o.cfg.PDFFallbackPdftotext}
}

func newRootCmd() *cobra.Command {
	opts := &options{cfg: config.Load()}

	root := &cobra.Command{
		Use:   appName,
		Short: "Render and inspect campus notices",
		Long: color.New(color.FgHiCyan).Sprint("Render notice bodies the way the kiosk shows them, ") +
			"reconstructing tables that were flattened into paragraphs.",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			if opts.backendURL != "" {
				opts.cfg.NoticeAPIBaseURL = opts.backendURL
			}
		},
	}

	root.PersistentFlags().StringVar(&opts.heuristicsFile, "heuristics",
		filepath.Join(xdg.ConfigHome, "noticegest", "heuristics.toml"), "TOML file with table detection thresholds")
	root.PersistentFlags().StringVar(&opts.backendURL, "backend", "", "Notice backend base URL (default $NOTICE_API_BASE_URL)")
	root.PersistentFlags().StringVar(&opts.badgeIconURL, "badge-icon", opts.cfg.BadgeIconURL, "Icon URL of the license badge")
	root.PersistentFlags().BoolVar(&opts.disableLinks, "disable-links", opts.cfg.DisableLinks, "Make links in the rendered notice inert")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output to stderr")

	root.AddCommand(newRenderCmd(opts), newInspectCmd(opts), newListCmd(opts))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
