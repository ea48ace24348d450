package commands

import (
	"context"
	"fmt"

	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/spf13/cobra"
)

func newPreviewClosingCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "preview-closing <year>",
		Short: "Show the closing entries a fiscal year would get, without writing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseYearArg(args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				preview, err := a.services.Closing.PreviewClosing(ctx, year)
				if err != nil {
					return err
				}
				return opts.print(dto.ToClosingPreviewResponse(preview))
			})
		},
	}
}

func newCloseYearCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "close-year <year>",
		Short: "Post the closing entries of a fiscal year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseYearArg(args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				result, err := a.services.Closing.CloseYear(ctx, year, opts.userID)
				if err != nil {
					return err
				}
				if len(result.JournalIDs) == 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "fiscal year %d has no revenue or expense activity, nothing posted\n", year)
				}
				return opts.print(dto.ToClosingResultResponse(result))
			})
		},
	}
}

func newReverseClosingCommand(opts *rootOptions) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "reverse-closing <year>",
		Short: "Void the closing entries of a fiscal year so it can be closed again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseYearArg(args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				voided, err := a.services.Closing.ReverseClosing(ctx, year, reason, opts.userID)
				if err != nil {
					return err
				}
				return opts.print(dto.ReverseClosingResponse{Year: year, Voided: voided})
			})
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "reason recorded on each voided entry (required)")
	_ = cmd.MarkFlagRequired("reason")

	return cmd
}
