// Command lumina runs the SQL access policy gateway and its helper tools.
package main

import (
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "lumina",
	Short: "SQL access policy gateway for conversational analytics",
	Long: `lumina sits between a chat frontend and project databases. It resolves
the caller's role, exposes only permitted schema to the SQL generation
service, vets the generated statement, injects row-level ownership
predicates, and audits every decision.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "path to an optional .env file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(checkPermsCmd)
}

func main() {
	Execute()
}
