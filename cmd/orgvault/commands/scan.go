package commands

import (
	"encoding/json"
	"fmt"
	"os"
)

type ScanCmd struct {
	vaultFlags
}

func (c *ScanCmd) Run(ctx *cliCtx) error {
	svc, closer, err := c.openService(ctx)
	if err != nil {
		return err
	}
	defer closer()

	if err := svc.Refresh(ctx); err != nil {
		return err
	}
	records := svc.Records()
	fmt.Printf("Found %d teams\n", len(records))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
