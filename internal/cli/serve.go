package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"finagent/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP question-answering API",
	Long: `Start the HTTP server exposing POST /chat ({"question": ...} ->
{"answer": ...}) and the static frontend.

Example:
  finagent serve --addr :8080`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	p, closeKB, err := buildPipeline(cfg, GetRootDir())
	if err != nil {
		return err
	}
	defer closeKB()

	fmt.Printf("Listening on %s\n", cfg.Server.Addr)
	return server.New(p, cfg.Server).Run()
}
