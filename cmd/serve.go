// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"reportcheck/internal/web"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the validation HTTP API",
		Long: `Start the reportcheck HTTP API.

Endpoints:
  GET  /health    - Liveness and build information
  POST /validate  - Validate uploaded documents (multipart field "files")
  GET  /rules     - Effective rule set (YAML, or JSON with ?format=json)
  POST /export    - Render validation results in another format
  GET  /formats   - Supported export formats

When the port is busy the next nine ports are tried.

Examples:
  reportcheck serve                # Start on the configured port (default 8080)
  reportcheck serve --port 3000    # Start on a custom port`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{logOperations: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("port") {
				port = a.cfg.Server.Port
			}
			if port < 1 || port > 65535 {
				return fmt.Errorf("invalid port %d: must be between 1 and 65535", port)
			}

			processor, err := a.newProcessor(a.settings, nil)
			if err != nil {
				return err
			}
			server := web.NewWebServer(port, processor, a.observer)

			errCh := make(chan error, 1)
			go func() { errCh <- server.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
			}

			a.observer.Logger().Info().Msg("shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutting down server: %w", err)
			}
			return <-errCh
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "port to listen on")
	return cmd
}
