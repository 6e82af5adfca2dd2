package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	askQuestion string
	askJSON     bool
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Answer a single question",
	Long: `Run the question-answering pipeline once and print the answer.

Examples:
  finagent ask -q "What is the price of gold yesterday?"
  finagent ask -q "What is the tariff situation between the US and the EU?" --json`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askQuestion, "question", "q", "", "question to answer (required)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output answer and route as JSON")
	askCmd.MarkFlagRequired("question")
}

func runAsk(cmd *cobra.Command, args []string) error {
	p, closeKB, err := buildPipeline(GetConfig(), GetRootDir())
	if err != nil {
		return err
	}
	defer closeKB()

	state, err := p.Run(cmd.Context(), askQuestion)
	if err != nil {
		return fmt.Errorf("pipeline failed: %w", err)
	}

	if askJSON {
		out, _ := json.MarshalIndent(map[string]string{
			"route":  state.Route.String(),
			"answer": state.Generation,
		}, "", "  ")
		fmt.Println(string(out))
		return nil
	}

	fmt.Println(state.Generation)
	return nil
}
