package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hisabkitab/hisab/internal/assistant"
)

func askCmd() *cobra.Command {
	var (
		userID     int64
		cashbookID int64
	)

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask the assistant a question from the command line",
		Example: `  hisab ask --user 1 "mar inflow"
  hisab ask --user 1 --cashbook 2 "spent last 7 days"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, store, err := newAssistant(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			answer, err := a.Answer(ctx, assistant.Request{
				UserID:            userID,
				Question:          strings.Join(args, " "),
				CurrentCashbookID: cashbookID,
			})
			if err != nil {
				return err
			}

			fmt.Println(answer)
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 1, "user id to answer for")
	cmd.Flags().Int64Var(&cashbookID, "cashbook", 0, "current cashbook id")

	return cmd
}
