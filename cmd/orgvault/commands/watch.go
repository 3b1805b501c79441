package commands

import (
	"os/signal"
	"syscall"
)

type WatchCmd struct {
	vaultFlags
}

func (c *WatchCmd) Run(cli *cliCtx) error {
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
	cli.Logger.Info("watching vault for changes")
	if err := svc.Watch(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
