package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/openleadr/openleadr-go/client"
)

func venCmd() *cobra.Command {
	var (
		vtnURL       string
		clientID     string
		clientSecret string
		programName  string
	)

	cmd := &cobra.Command{
		Use:   "ven",
		Short: "Run a sample VEN client against a VTN",
		Long: "Connects to a VTN (directly or via mDNS discovery), lists the " +
			"visible programs, and prints the composed timeline of one program.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if vtnURL == "" {
				vtns, err := client.DiscoverVtns(client.DiscoverOptions{Limit: 1})
				if err != nil {
					return fmt.Errorf("discovering VTNs: %w", err)
				}
				if len(vtns) == 0 {
					return errors.New("no VTN found via mDNS; pass --url")
				}
				vtnURL = vtns[0].URL.String()
				log.Info().Str("url", vtnURL).Msg("discovered VTN")
			}

			var creds *client.Credentials
			if clientID != "" {
				creds = client.NewCredentials(clientID, clientSecret)
			}
			c, err := client.New(vtnURL, creds)
			if err != nil {
				return err
			}

			programs, err := c.GetAllPrograms(ctx, client.NoFilter)
			if err != nil {
				return fmt.Errorf("listing programs: %w", err)
			}
			for _, p := range programs {
				cmd.Printf("program %s (%s)\n", p.Program().ProgramName, p.ID())
			}

			if programName == "" {
				return nil
			}
			program, err := c.GetProgramByName(ctx, programName)
			if err != nil {
				return err
			}
			timeline, err := program.Timeline(ctx)
			if err != nil {
				return err
			}
			for _, interval := range timeline.Intervals() {
				cmd.Printf("  %s .. %s priority=%s payloads=%d\n",
					interval.Range.Start.Format(time.RFC3339),
					interval.Range.End.Format(time.RFC3339),
					interval.Priority, len(interval.Payloads))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&vtnURL, "url", "", "VTN base URL (skips mDNS discovery)")
	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth client id")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "OAuth client secret")
	cmd.Flags().StringVar(&programName, "program", "", "print the timeline of this program")
	return cmd
}

func discoverCmd() *cobra.Command {
	var (
		serviceType string
		timeout     time.Duration
		limit       int
	)

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Browse the local network for VTNs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			vtns, err := client.DiscoverVtns(client.DiscoverOptions{
				ServiceType: serviceType,
				Timeout:     timeout,
				Limit:       limit,
			})
			if err != nil {
				return err
			}
			if len(vtns) == 0 {
				cmd.Println("no VTNs found")
				return nil
			}
			for _, vtn := range vtns {
				cmd.Printf("%s\tversion=%s\tbase_path=%q\t%s\n",
					vtn.InstanceName, vtn.Version, vtn.BasePath, vtn.URL)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&serviceType, "service-type", "_openadr3._tcp", "mDNS service type to browse")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Second, "how long to browse")
	cmd.Flags().IntVar(&limit, "limit", 0, "stop after this many VTNs (0 = no limit)")
	return cmd
}
