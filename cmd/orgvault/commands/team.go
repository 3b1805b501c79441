package commands

import (
	"fmt"

	"github.com/orgvault/orgvault/pkg/ops"
	"github.com/orgvault/orgvault/pkg/vault"
)

type TeamCmd struct {
	Create  TeamCreateCmd  `cmd:"" help:"Create a team with the standard resource tree"`
	Promote TeamPromoteCmd `cmd:"" help:"Promote a team to an organization"`
	Add     TeamAddCmd     `cmd:"" help:"Add teams under an organization"`
	AddSub  TeamAddSubCmd  `cmd:"" help:"Add subteams under a team"`
}

// openOps opens the configured vault for the mutation commands, which
// do not need the record store.
func openOps(ctx *cliCtx, f *vaultFlags) (*ops.Ops, error) {
	cfg, err := f.resolve()
	if err != nil {
		return nil, err
	}
	v, err := vault.NewFSVault(cfg.VaultPath, ctx.Logger)
	if err != nil {
		return nil, fmt.Errorf("opening vault at %q: %w", cfg.VaultPath, err)
	}
	return ops.New(v, ctx.Logger), nil
}

type TeamCreateCmd struct {
	vaultFlags
	Name   string `arg:"" help:"Team display name"`
	Code   string `help:"Six-character team code (generated when omitted)"`
	PathID string `help:"Disambiguating path id" name:"path-id"`
	Parent string `help:"Parent folder inside the vault"`
	NoSeed bool   `help:"Create files empty instead of seeding content" name:"no-seed"`
}

func (c *TeamCreateCmd) Run(ctx *cliCtx) error {
	o, err := openOps(ctx, &c.vaultFlags)
	if err != nil {
		return err
	}
	root, err := o.CreateTeam(ctx, ops.CreateTeamRequest{
		Name:       c.Name,
		Code:       c.Code,
		PathID:     c.PathID,
		ParentPath: c.Parent,
		Seed:       !c.NoSeed,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Created team at %s\n", root)
	return nil
}

type TeamPromoteCmd struct {
	vaultFlags
	Path  string `arg:"" help:"Root folder of the team to promote"`
	Name  string `help:"New organization name (defaults to the current name)"`
	Teams int    `help:"Number of initial child teams to create" default:"1"`
}

func (c *TeamPromoteCmd) Run(ctx *cliCtx) error {
	o, err := openOps(ctx, &c.vaultFlags)
	if err != nil {
		return err
	}
	root, err := o.PromoteToOrganization(ctx, c.Path, c.Name, c.Teams)
	if err != nil {
		return err
	}
	fmt.Printf("Promoted to organization at %s\n", root)
	return nil
}

type TeamAddCmd struct {
	vaultFlags
	Org   string   `arg:"" help:"Root folder of the organization"`
	Names []string `arg:"" help:"Display names of the teams to add"`
}

func (c *TeamAddCmd) Run(ctx *cliCtx) error {
	o, err := openOps(ctx, &c.vaultFlags)
	if err != nil {
		return err
	}
	paths, err := o.AddTeams(ctx, c.Org, c.Names)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Printf("Created %s\n", p)
	}
	return nil
}

type TeamAddSubCmd struct {
	vaultFlags
	Team  string   `arg:"" help:"Root folder of the parent team"`
	Names []string `arg:"" help:"Display names of the subteams to add"`
}

func (c *TeamAddSubCmd) Run(ctx *cliCtx) error {
	o, err := openOps(ctx, &c.vaultFlags)
	if err != nil {
		return err
	}
	paths, err := o.AddSubteams(ctx, c.Team, c.Names)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Printf("Created %s\n", p)
	}
	return nil
}
