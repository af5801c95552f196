package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/argonsync/argon/internal/core"
	"github.com/argonsync/argon/internal/project"
	"github.com/argonsync/argon/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Load the project, watch the filesystem, and serve it over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := project.Load(projectPath)
		if err != nil {
			return fmt.Errorf("load project: %w", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		c, err := core.New(ctx, p, true)
		if err != nil {
			return fmt.Errorf("start core: %w", err)
		}

		host := p.Host
		if host == "" {
			host = "localhost"
		}
		port := p.Port
		if port == 0 {
			port = 8000
		}

		addr := fmt.Sprintf("%s:%d", host, port)
		srv := &http.Server{Addr: addr, Handler: server.New(c)}

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

		serveErr := make(chan error, 1)
		go func() {
			fmt.Printf("Serving %s on %s\n", p.Name, addr)
			serveErr <- srv.ListenAndServe()
		}()

		select {
		case err := <-serveErr:
			if err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("serve: %w", err)
			}
		case <-sig:
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = srv.Shutdown(shutdownCtx)
		}

		return nil
	},
}
