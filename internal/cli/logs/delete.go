package logs

import (
	"context"
	"fmt"

	"github.com/julianstephens/hourlog/internal/cli"
	"github.com/julianstephens/hourlog/internal/errors"
	"github.com/julianstephens/hourlog/internal/forms"
)

type DeleteCmd struct {
	ID int64 `arg:"" help:"Log ID."`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	entry, err := ctx.Reconciler().Delete(context.Background(), c.ID)
	if err != nil {
		if errors.IsNotFound(err) {
			fmt.Printf("No log with ID %d, nothing to do\n", c.ID)
			return nil
		}
		return err
	}
	fmt.Printf("✓ Deleted log %d: %s\n", entry.ID, entry.Text)
	return nil
}

type ClearCmd struct {
	Yes bool `short:"y" help:"Skip the confirmation prompt."`
}

func (c *ClearCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if !c.Yes {
		confirmed := false
		if err := forms.NewConfirmForm("Delete ALL logs? This cannot be undone.", &confirmed).Run(); err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Cancelled")
			return nil
		}
	}
	ctx.PerformAutomaticBackup(bg)
	if err := ctx.Reconciler().Clear(bg); err != nil {
		return fmt.Errorf("failed to clear logs: %w", err)
	}
	fmt.Println("✓ All logs cleared")
	return nil
}
