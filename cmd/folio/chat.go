package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"folio/internal/agent"
)

var chatVerbose bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat with the portfolio agent",
	Long: `Interactive chat with the portfolio agent.

Commands inside the session:
  /reset   clear the conversation history
  /exit    leave the chat`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp()
		if err != nil {
			return err
		}

		var opts []agent.Option
		if chatVerbose {
			opts = append(opts, agent.WithEmit(printEvent))
		}
		session := app.newAgent(0, opts...)

		fmt.Printf("Chatting about %s's portfolio (%s). /reset clears history, /exit quits.\n",
			app.doc.Profile.Name, app.cfg.DefaultLLM)

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print(colorize(colorBold, "> "))
			if !scanner.Scan() {
				fmt.Println()
				return scanner.Err()
			}
			line := strings.TrimSpace(scanner.Text())

			switch line {
			case "":
				continue
			case "/exit", "/quit":
				return nil
			case "/reset":
				session.Reset()
				printStep("history cleared")
				continue
			}

			res, err := session.Ask(cmd.Context(), line)
			if err != nil {
				printError("%v", err)
				continue
			}
			printAnswer(res)
		}
	},
}

func init() {
	chatCmd.Flags().BoolVarP(&chatVerbose, "verbose", "v", false, "show tool calls as they happen")
}

func printAnswer(res *agent.Result) {
	if res.Inconclusive {
		printWarning("reached the iteration limit, answer may be incomplete")
	}
	if res.Answer == "" {
		printWarning("no answer produced")
		return
	}
	fmt.Println(res.Answer)
}

func printEvent(ev agent.Event) {
	switch ev.Type {
	case agent.EventToolCall:
		if d, ok := ev.Data.(map[string]string); ok {
			printStep("calling %s %s", d["name"], d["arguments"])
		}
	case agent.EventToolResult:
		if d, ok := ev.Data.(map[string]string); ok {
			printStatus(d["name"], "%s", d["content"])
		}
	case agent.EventError:
		printError("%v", ev.Data)
	}
}
