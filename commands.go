package fernet

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

// CLICommand is a command handler executed against a constructed application.
type CLICommand func(*Application, *cobra.Command, []string) error

// Command wraps a CLICommand so it runs with a freshly constructed
// Application built from opts.
func Command(command CLICommand, opts ...Option) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := New(opts...)
		if err != nil {
			return err
		}
		return command(app, cmd, args)
	}
}

// Commands returns the framework's root CLI command, with serve, plugins and
// options subcommands bound against opts.
func Commands(opts ...Option) *cobra.Command {
	root := &cobra.Command{Use: "fernet"}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve HTTP requests through the pipeline",
		RunE: Command(func(app *Application, cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			app.Logger().Infof("booting %s on %s", app.Name, addr)
			return http.ListenAndServe(addr, Handler(app))
		}, opts...),
	}
	serve.Flags().String("addr", ":9999", "listen address")

	plugins := &cobra.Command{
		Use:   "plugins",
		Short: "List registered plugins and the manifest in effect",
		RunE: Command(func(app *Application, cmd *cobra.Command, args []string) error {
			fmt.Printf("manifest: %s\n", app.PluginManifestPath())
			for pos, identifier := range app.Plugins().Identifiers() {
				fmt.Printf("\t%d. %s\n", pos+1, identifier)
			}
			return nil
		}, opts...),
	}

	options := &cobra.Command{
		Use:   "options",
		Short: "Dump the resolved option table",
		RunE: Command(func(app *Application, cmd *cobra.Command, args []string) error {
			app.Options().Each(func(name string, value interface{}) {
				fmt.Printf("%s = %v\n", name, value)
			})
			return nil
		}, opts...),
	}

	root.AddCommand(serve, plugins, options)
	return root
}

// Run executes the CLI, printing the failure and exiting non-zero on error.
func Run(opts ...Option) {
	if err := Commands(opts...).Execute(); err != nil {
		fmt.Printf("Application Error: %s\n", err)
		os.Exit(1)
	}
}
