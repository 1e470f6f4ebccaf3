package cmd

import (
	"context"

	"github.com/quarterlog/quarterlog/internal/server"
	"github.com/quarterlog/quarterlog/logging"
)

// ServeCmd serves the TUI over SSH
type ServeCmd struct {
	Host string `help:"Host to bind to (overrides settings)"`
	Port int    `help:"Port to listen on (overrides settings)"`
}

// Run starts the SSH server and blocks until shutdown
func (s *ServeCmd) Run(cli *CLI) error {
	host := s.Host
	if host == "" {
		host = cli.Container.Settings.ResolveServerHost()
	}
	port := s.Port
	if port == 0 {
		port = cli.Container.Settings.ResolveServerPort()
	}

	// The server process owns the timer; re-adopt any active workblock
	if err := cli.Container.Service.Restore(context.Background()); err != nil {
		logging.Logger.Warn("Failed to restore active workblock", "error", err)
	}

	srv, err := server.NewServer(
		host,
		port,
		cli.Container.Service,
		cli.Container.UISink,
		cli.Container.Settings.GraceWindow(),
	)
	if err != nil {
		return err
	}

	return srv.Start()
}
