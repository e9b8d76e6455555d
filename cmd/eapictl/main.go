// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

// Command eapictl runs CLI commands against an EOS device over eAPI.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/netascode/go-eapi"
	"github.com/spf13/cobra"
)

var (
	host         string
	profile      string
	username     string
	password     string
	enableSecret string
	transport    string
	port         int
	timeout      time.Duration
	verbose      bool

	encoding string
)

func newClient() (*eapi.Client, error) {
	var opts []func(*eapi.Client)
	if username != "" {
		opts = append(opts, eapi.Username(username))
	}
	if password != "" {
		opts = append(opts, eapi.Password(password))
	}
	if enableSecret != "" {
		opts = append(opts, eapi.EnableSecret(enableSecret))
	}
	if transport != "" {
		opts = append(opts, eapi.Transport(transport))
	}
	if port != 0 {
		opts = append(opts, eapi.Port(port))
	}
	if timeout > 0 {
		opts = append(opts, eapi.Timeout(timeout))
	}
	if verbose {
		opts = append(opts, eapi.WithLogger(eapi.NewDefaultLogger(eapi.LogLevelDebug)))
	}

	if profile != "" {
		return eapi.ConnectTo(profile, opts...)
	}
	if host == "" {
		return nil, fmt.Errorf("either --host or --profile is required")
	}
	return eapi.NewClient(host, opts...)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "eapictl",
		Short:         "Run CLI commands against an EOS device over eAPI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&host, "host", "", "device address")
	flags.StringVar(&profile, "profile", "", "connection profile from eapi.conf")
	flags.StringVarP(&username, "username", "u", "", "eAPI username")
	flags.StringVarP(&password, "password", "p", "", "eAPI password")
	flags.StringVar(&enableSecret, "enable", "", "enable mode password")
	flags.StringVar(&transport, "transport", "", "transport (http, https, https_certs, http_local, socket)")
	flags.IntVar(&port, "port", 0, "eAPI port (0 = transport default)")
	flags.DurationVar(&timeout, "timeout", 0, "request timeout")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newRunCmd(), newConfigCmd(), newSectionCmd(), newVersionCmd())
	return rootCmd
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <command>...",
		Short: "Run show commands in enable mode",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			results, err := client.Enable(cmd.Context(), args, eapi.Encoding(encoding))
			if err != nil {
				return err
			}
			for _, res := range results {
				fmt.Printf("### %s\n", res.Command)
				if res.Encoding == eapi.EncodingText {
					fmt.Println(res.Output())
				} else {
					fmt.Println(res.JSON())
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&encoding, "encoding", eapi.EncodingJSON, "output encoding (json or text)")
	return cmd
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config <command>...",
		Short: "Apply configuration commands",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			commands := make([]any, len(args))
			for i, arg := range args {
				commands[i] = arg
			}
			if _, err := client.Config(cmd.Context(), commands); err != nil {
				return err
			}
			fmt.Printf("applied %d commands\n", len(args))
			return nil
		},
	}
}

func newSectionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "section <pattern>",
		Short: "Print the first running-config section matching a pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			section, err := client.Section(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Print(section)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show device software version and model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			version, err := client.Version(cmd.Context())
			if err != nil {
				return err
			}
			model, err := client.Model(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("version: %s\nmodel:   %s\n", version, model)
			return nil
		},
	}
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
