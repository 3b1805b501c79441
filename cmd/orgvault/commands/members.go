package commands

import (
	"fmt"

	"github.com/orgvault/orgvault/pkg/model"
)

type MembersCmd struct {
	vaultFlags
	Path string `arg:"" help:"Vault path to resolve"`
}

func (c *MembersCmd) Run(ctx *cliCtx) error {
	svc, closer, err := c.openService(ctx)
	if err != nil {
		return err
	}
	defer closer()

	if err := svc.Refresh(ctx); err != nil {
		return err
	}
	team, ok := svc.TeamForPath(c.Path)
	if !ok {
		return fmt.Errorf("no team owns %q", c.Path)
	}
	_, buckets, _ := svc.TeamMembersForPath(c.Path)

	fmt.Printf("Team: %s\n", team.DisplayName)
	printBucket("Members", buckets.TeamMembers)
	printBucket("Internal member delegates", buckets.InternalMemberDelegates)
	printBucket("Internal team delegates", buckets.InternalTeamDelegates)
	printBucket("External delegates", buckets.ExternalDelegates)
	return nil
}

func printBucket(title string, members []model.MemberRecord) {
	if len(members) == 0 {
		return
	}
	fmt.Printf("%s:\n", title)
	for _, m := range members {
		fmt.Printf("  %s (%s)\n", m.DisplayName, m.Alias)
	}
}
