// Command zapdesk is the operational CLI: serve runs the HTTP service,
// migrate applies the schema.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zapdesk-io/zapdesk/internal/config"
	"github.com/zapdesk-io/zapdesk/internal/database"
	"github.com/zapdesk-io/zapdesk/internal/server"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "zapdesk",
		Short: "Omnichannel ticket routing engine",
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")

	root.AddCommand(serveCmd(), migrateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return server.Run(configPath)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Load(configPath); err != nil {
				return err
			}
			db, err := database.Connect(&config.Get().Database)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := database.Migrate(db); err != nil {
				return err
			}
			fmt.Println("schema up to date")
			return nil
		},
	}
}
