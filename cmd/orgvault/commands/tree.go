package commands

import (
	"fmt"
	"strings"

	"github.com/orgvault/orgvault/pkg/model"
)

type TreeCmd struct {
	vaultFlags
}

func (c *TreeCmd) Run(ctx *cliCtx) error {
	svc, closer, err := c.openService(ctx)
	if err != nil {
		return err
	}
	defer closer()

	if err := svc.Refresh(ctx); err != nil {
		return err
	}
	st := svc.OrgStructure()

	for _, org := range st.Organizations {
		printNode(org, 0)
	}
	if len(st.Teams) > 0 {
		fmt.Println("Teams without an organization:")
		for _, team := range st.Teams {
			printNode(team, 1)
		}
	}
	if len(st.Organizations) == 0 && len(st.Teams) == 0 {
		fmt.Println("No teams found")
	}
	return nil
}

func printNode(node model.TeamNode, depth int) {
	fmt.Printf("%s%s (%s)\n", strings.Repeat("  ", depth), node.DisplayName, node.Slug)
	for _, child := range node.Teams {
		printNode(child, depth+1)
	}
}
