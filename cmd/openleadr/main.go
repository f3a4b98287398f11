// Command openleadr bundles the OpenADR 3 VTN server and a sample VEN
// client behind one binary.
package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// version is stamped by the build.
var version = "dev"

func main() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	log.Logger = log.With().Str("service", "openleadr").Logger()
	if os.Getenv("ENV") == "dev" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	}

	root := &cobra.Command{
		Use:           "openleadr",
		Short:         "OpenADR 3 VTN server and VEN client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(vtnCmd(), venCmd(), discoverCmd(), versionCmd())

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("fatal error")
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(version)
		},
	}
}
