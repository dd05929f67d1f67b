package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/cedit/session"
	"github.com/dhamidi/cedit/ui"
)

func newUICmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Start the web editor API",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := commonlog.GetLogger("cedit.cmd")
			if addr == "" {
				addr = cfg.Server.Addr
			}

			opened, err := openStore()
			if err != nil {
				return err
			}
			defer opened.Close()
			log.Infof("loaded %s session", opened.loaded.Status)
			opened.store.OnChange(func(s *session.Session) {
				log.Debugf("session changed: %d projects", len(s.Projects))
			})

			server, err := ui.NewServer(opened.store)
			if err != nil {
				return err
			}
			httpServer := &http.Server{
				Addr:              addr,
				Handler:           server,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				httpServer.Shutdown(shutdownCtx)
			}()

			fmt.Printf("Starting server on http://%s\n", addr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")

	return cmd
}
