package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/finsolve/deskagent/internal/cli"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "deskagentd",
		Short: "DeskAgent - department-routed knowledge assistant for FinSolve Technologies",
		Long: `DeskAgent answers employee questions by routing them to the right
department's knowledge base, retrieving relevant documents with hybrid
vector and keyword search, and synthesizing an answer.

Environment variables use the DESKAGENT_ prefix, e.g.:
  DESKAGENT_DATABASE_URL     PostgreSQL connection string (required)
  DESKAGENT_OPENAI_API_KEY   OpenAI API key (required)
  DESKAGENT_COHERE_API_KEY   Cohere API key for reranking (optional)`,
		Version: version,
	}

	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.IndexCmd())
	rootCmd.AddCommand(cli.IngestCmd())

	cli.AddHelpJSONFlag(rootCmd)
	cli.CheckHelpJSON(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
