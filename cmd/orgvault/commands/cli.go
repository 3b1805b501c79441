package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/orgvault/orgvault"
	"github.com/orgvault/orgvault/pkg/config"
	"github.com/orgvault/orgvault/pkg/settings"
	"github.com/orgvault/orgvault/pkg/vault"
)

type cliCtx struct {
	Debug  bool
	Logger *slog.Logger
	context.Context
}

type cli struct {
	Scan    ScanCmd          `cmd:"" help:"Scan the vault and print the canonical team records"`
	Tree    TreeCmd          `cmd:"" help:"Print the organization tree"`
	Members MembersCmd       `cmd:"" help:"Print the members of the team owning a path"`
	Team    TeamCmd          `cmd:"" help:"Create and extend teams"`
	Watch   WatchCmd         `cmd:"" help:"Watch the vault and keep records current"`
	Serve   ServeCmd         `cmd:"" help:"Serve the structure over HTTP"`
	Debug   bool             `help:"Enable debug logging" short:"v"`
	Version kong.VersionFlag `help:"Show version"`
}

func Execute(version string) {
	var cli cli
	ctx := kong.Parse(&cli,
		kong.UsageOnError(),
		kong.Name("orgvault"),
		kong.Description("orgvault recovers team structure from vault naming conventions"),
		kong.Vars{"version": version},
	)

	level := slog.LevelInfo
	if cli.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	err := ctx.Run(&cliCtx{
		Debug:   cli.Debug,
		Logger:  logger,
		Context: context.Background(),
	})
	ctx.FatalIfErrorf(err)
}

// vaultFlags are the flags shared by every command that opens a vault.
// Flag values override the config file and ORGVAULT_* environment
// variables.
type vaultFlags struct {
	Vault  string `help:"Vault root directory" env:"ORGVAULT_VAULT"`
	DB     string `help:"BoltDB file for canonical records (default in-memory)" env:"ORGVAULT_DB"`
	Config string `help:"Config file" default:".orgvault"`
}

// resolve merges the config file with the flag values.
func (f *vaultFlags) resolve() (config.Config, error) {
	cfg, err := config.Load(f.Config)
	if err != nil {
		return config.Config{}, err
	}
	if f.Vault != "" {
		cfg.VaultPath = f.Vault
	}
	if f.DB != "" {
		cfg.DBPath = f.DB
	}
	return cfg, nil
}

// openService builds a service over the configured vault and store. The
// returned closer releases the bolt file handle when one is in use.
func (f *vaultFlags) openService(ctx *cliCtx) (*orgvault.Service, func() error, error) {
	cfg, err := f.resolve()
	if err != nil {
		return nil, nil, err
	}
	v, err := vault.NewFSVault(cfg.VaultPath, ctx.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("opening vault at %q: %w", cfg.VaultPath, err)
	}

	closer := func() error { return nil }
	var store settings.Store = settings.NewMemoryStore()
	if cfg.DBPath != "" {
		bolt, err := settings.NewBoltStore(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening record store at %q: %w", cfg.DBPath, err)
		}
		store = bolt
		closer = bolt.Close
	}

	svc := orgvault.New(v, store,
		orgvault.WithLogger(ctx.Logger),
		orgvault.WithDebounce(cfg.Debounce),
	)
	if err := svc.Load(ctx); err != nil {
		closer()
		return nil, nil, err
	}
	return svc, closer, nil
}
