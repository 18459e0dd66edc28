package main

import (
	"fmt"
	"os"

	"github.com/dgallion1/noticegest/internal/backend"
	"github.com/dgallion1/noticegest/internal/board"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newRenderCmd(o *options) *cobra.Command {
	var (
		target        string
		hasAttachment bool
	)
	cmd := &cobra.Command{
		Use:   "render [file|url|-]",
		Short: "Print the transformed notice HTML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(cmd.Context(), firstArg(args), o)
			if err != nil {
				return err
			}
			r, err := o.renderer()
			if err != nil {
				return err
			}
			out, err := r.Render(doc.HTML, hasAttachment)
			if err != nil {
				return err
			}
			if out.Skipped {
				color.New(color.Faint).Fprintln(os.Stderr, "empty body next to an attachment, nothing to show")
			}
			if target == "" {
				fmt.Fprintln(cmd.OutOrStdout(), out.HTML)
				return nil
			}
			return os.WriteFile(target, []byte(out.HTML+"\n"), 0o644)
		},
	}
	cmd.Flags().StringVarP(&target, "target", "t", "", "Write the HTML to this path instead of stdout")
	cmd.Flags().BoolVar(&hasAttachment, "attachment", false, "Treat the notice as carrying an attachment")
	return cmd
}

func newInspectCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [file|url|-]",
		Short: "Show the tables detected in a notice",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(cmd.Context(), firstArg(args), o)
			if err != nil {
				return err
			}
			r, err := o.renderer()
			if err != nil {
				return err
			}
			res, err := r.Transformer().Transform(doc.HTML)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(res.Tables) == 0 {
				color.New(color.Faint).Fprintln(w, "no tables detected")
				return nil
			}
			for i, t := range res.Tables {
				if i > 0 {
					fmt.Fprintln(w)
				}
				writeTable(w, i+1, t)
			}
			return nil
		},
	}
}

func newListCmd(o *options) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:       "list <board>",
		Short:     "List a board in kiosk order",
		Args:      cobra.ExactArgs(1),
		ValidArgs: backend.BoardNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, ok := backend.LookupBoard(args[0])
			if !ok {
				return fmt.Errorf("%w: %s (known: %v)", backend.ErrUnknownBoard, args[0], backend.BoardNames())
			}
			client := backend.NewClient(o.cfg.NoticeAPIBaseURL, o.cfg.NoticeAPIKey)
			defer client.Close()

			notices, err := client.ListNotices(cmd.Context(), b.Name)
			if err != nil {
				return err
			}
			items := board.Order(notices, b.PostBase)
			pages := board.Pages(items, board.PageSize)
			if page > 0 {
				if page > len(pages) {
					return fmt.Errorf("page %d out of range (%d pages)", page, len(pages))
				}
				items = pages[page-1]
			}
			writeNotices(cmd.OutOrStdout(), items)
			return nil
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 0, "Only show this kiosk page (1-based)")
	return cmd
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
