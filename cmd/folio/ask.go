package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"folio/internal/agent"
)

var (
	askVerbose    bool
	askIterations int
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the portfolio agent a single question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		app, err := buildApp()
		if err != nil {
			return err
		}

		var opts []agent.Option
		if askVerbose {
			opts = append(opts, agent.WithEmit(printEvent))
		}
		session := app.newAgent(askIterations, opts...)

		res, err := session.Ask(cmd.Context(), query)
		if err != nil {
			return err
		}
		printAnswer(res)
		if askVerbose {
			for _, u := range res.Usage {
				printStatus(fmt.Sprintf("iteration %d", u.Iteration),
					"in=%d out=%d total=%d tokens", u.InputTokens, u.OutputTokens, u.TotalTokens)
			}
		}
		return nil
	},
}

func init() {
	askCmd.Flags().BoolVarP(&askVerbose, "verbose", "v", false, "show tool calls and token usage")
	askCmd.Flags().IntVar(&askIterations, "max-iterations", 0, "override the iteration cap for this question")
}
