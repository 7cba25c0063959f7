/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Command mediator runs the DIDComm v2 routing mediator's HTTP transport
// adapter over the core envelope dispatcher.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/adorsys/didcomm-mediator/internal/bootstrap"
	"github.com/adorsys/didcomm-mediator/internal/config"
	"github.com/adorsys/didcomm-mediator/internal/log"
	connectioncmd "github.com/adorsys/didcomm-mediator/pkg/controller/command/connection"
	connectionrest "github.com/adorsys/didcomm-mediator/pkg/controller/rest/connection"
	"github.com/adorsys/didcomm-mediator/pkg/plugin"
	"github.com/adorsys/didcomm-mediator/pkg/repository/memory"
	transporthttp "github.com/adorsys/didcomm-mediator/pkg/transport/http"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var logger = log.New("cmd/mediator")

var configPath string

func main() {
	root := newRootCommand()

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mediator",
		Short: "Run the DIDComm v2 routing mediator",
		RunE:  runServe,
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a mediator config file (optional)")
	cmd.Flags().String("listen-addr", "", "override the configured listen address")
	cmd.Flags().String("public-endpoint", "", "override the configured public endpoint")

	_ = viper.BindPFlag("listen_addr", cmd.Flags().Lookup("listen-addr"))
	_ = viper.BindPFlag("public_endpoint", cmd.Flags().Lookup("public-endpoint"))

	return cmd
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	if addr := viper.GetString("listen_addr"); addr != "" {
		cfg.ListenAddr = addr
	}

	if ep := viper.GetString("public_endpoint"); ep != "" {
		cfg.PublicEndpoint = ep
	}

	repo := memory.New()

	mediator, err := bootstrap.New(cfg, repo, []*plugin.Plugin{})
	if err != nil {
		return fmt.Errorf("bootstrapping mediator: %w", err)
	}

	logger.Infof("mediator did: %s", mediator.OwnDID())

	connCmd := connectioncmd.New(repo, mediator.Resolver())
	connOp := connectionrest.New(connCmd)

	inboundHandler := mediator.InboundHandler()

	server := transporthttp.New(inboundHandler.HandleInboundEnvelope, connOp)

	logger.Infof("listening on %s", cfg.ListenAddr)

	return http.ListenAndServe(cfg.ListenAddr, server.Router())
}
