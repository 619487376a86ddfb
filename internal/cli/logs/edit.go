package logs

import (
	"context"
	"fmt"

	"github.com/julianstephens/hourlog/internal/cli"
	"github.com/julianstephens/hourlog/internal/errors"
	"github.com/julianstephens/hourlog/internal/models"
)

type EditCmd struct {
	ID       int64   `arg:"" help:"Log ID."`
	Text     *string `short:"t" help:"New text."`
	Category *string `short:"c" help:"New category."`
}

func (c *EditCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	logs, err := ctx.Aggregates.Logs(bg)
	if err != nil {
		return fmt.Errorf("failed to get logs: %w", err)
	}
	var current *models.LogEntry
	for i := range logs {
		if logs[i].ID == c.ID {
			current = &logs[i]
			break
		}
	}
	if current == nil {
		fmt.Printf("No log with ID %d, nothing to do\n", c.ID)
		return nil
	}
	if c.Text == nil && c.Category == nil {
		fmt.Println("No changes specified. Use --text or --category.")
		return nil
	}

	text, category := current.Text, current.Category
	if c.Text != nil {
		text = *c.Text
	}
	if c.Category != nil {
		category = *c.Category
	}

	if _, err := ctx.Reconciler().Update(bg, c.ID, text, category); err != nil {
		if errors.IsNotFound(err) {
			fmt.Printf("No log with ID %d, nothing to do\n", c.ID)
			return nil
		}
		return err
	}
	fmt.Printf("✓ Log %d updated\n", c.ID)
	return nil
}
