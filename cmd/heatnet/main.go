package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/fernwaerme/heatnet/internal/server"
	"github.com/fernwaerme/heatnet/internal/store"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "heatnet",
		Short: "District heating network pipe sizing engine",
	}

	rootCmd.AddCommand(sizeCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(costCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func sizeCmd() *cobra.Command {
	var jsonOut bool
	var archivePath string

	cmd := &cobra.Command{
		Use:   "size [project-path]",
		Short: "Run the full sizing pipeline against a network project",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runSize(args[0], jsonOut, archivePath)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit the full result document as JSON")
	cmd.Flags().StringVar(&archivePath, "archive", "", "SQLite database to archive the run into")
	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [project-path]",
		Short: "Check a network project without sizing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runValidate(args[0])
		},
	}
}

func costCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cost [project-path]",
		Short: "Size the network and display the capital cost estimate",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runCost(args[0])
		},
	}
}

func serveCmd() *cobra.Command {
	var port int
	var archivePath string

	cmd := &cobra.Command{
		Use:   "serve [project-path]",
		Short: "Start the local HTTP server for the project",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			srv := server.New(args[0], port)
			if archivePath != "" {
				db, err := store.NewDB(archivePath)
				if err != nil {
					return err
				}
				defer db.Close()
				srv.WithArchive(db)
			}
			return srv.Start()
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 3000, "HTTP server port")
	cmd.Flags().StringVar(&archivePath, "archive", "", "SQLite database for the run archive")
	return cmd
}
