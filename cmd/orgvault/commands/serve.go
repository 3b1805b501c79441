package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/orgvault/orgvault/server"
)

type ServeCmd struct {
	vaultFlags
	Addr    string `help:"Listen address" env:"ORGVAULT_ADDR"`
	NoWatch bool   `help:"Serve without watching the vault for changes" name:"no-watch"`
}

func (c *ServeCmd) Run(cli *cliCtx) error {
	cfg, err := c.resolve()
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.Addr = c.Addr
	}

	svc, closer, err := c.openService(cli)
	if err != nil {
		return err
	}
	defer closer()

	ctx, stop := signal.NotifyContext(cli, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := svc.Refresh(ctx); err != nil {
		return err
	}

	srv := server.NewServer(cli.Logger)
	server.NewHandler(srv, svc, cli.Logger)

	if !c.NoWatch {
		go func() {
			if err := svc.Watch(ctx); err != nil && ctx.Err() == nil {
				cli.Logger.Error("watcher stopped", "error", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(cfg.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
