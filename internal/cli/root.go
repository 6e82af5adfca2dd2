package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"finagent/config"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
)

var rootCmd = &cobra.Command{
	Use:   "finagent",
	Short: "Agentic RAG over news events with a financial price lookup branch",
	Long: `finagent answers natural-language questions by routing them through one
of two retrieval strategies: semantic search over a news-event knowledge
base, or a structured market-data price lookup. A generation model then
synthesizes a grounded answer from the gathered evidence.

Example usage:
  finagent index ./exports          # Build the knowledge base from news JSON
  finagent ask -q "Wheat price yesterday?"
  finagent serve                    # Start the HTTP API`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./agent.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}
