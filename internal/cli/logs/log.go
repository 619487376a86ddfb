package logs

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/hourlog/internal/cli"
	"github.com/julianstephens/hourlog/internal/constants"
	"github.com/julianstephens/hourlog/internal/forms"
	"github.com/julianstephens/hourlog/internal/models"
)

type LogCmd struct {
	Text        []string `arg:"" optional:"" help:"What you worked on."`
	Category    string   `short:"c" help:"Category name. Defaults to the first category."`
	Template    string   `short:"t" help:"Template name whose text starts the entry."`
	Interactive bool     `short:"i" help:"Open the entry form."`
}

func (c *LogCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	text := strings.Join(c.Text, " ")

	if c.Template != "" {
		templates, err := ctx.Aggregates.Templates(bg)
		if err != nil {
			return fmt.Errorf("failed to get templates: %w", err)
		}
		idx := models.FindTemplate(templates, c.Template)
		if idx < 0 {
			return fmt.Errorf("unknown template %q", c.Template)
		}
		text = templates[idx].Text + text
	}

	categories, err := ctx.Aggregates.Categories(bg)
	if err != nil {
		return fmt.Errorf("failed to get categories: %w", err)
	}
	category := c.Category
	if category == "" {
		category = defaultCategory(categories)
	}

	if c.Interactive {
		fm := &forms.EntryFormModel{Text: text, Category: category}
		if err := c.runForm(bg, ctx, fm, categories); err != nil {
			return err
		}
		text, category = fm.Text, fm.Category
	}

	entry, err := ctx.Reconciler().Append(bg, text, category)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Log saved (ID: %d)\n", entry.ID)
	return nil
}

func (c *LogCmd) runForm(bg context.Context, ctx *cli.Context, fm *forms.EntryFormModel, categories []models.Category) error {
	if fm.Text == "" {
		templates, err := ctx.Aggregates.Templates(bg)
		if err != nil {
			return fmt.Errorf("failed to get templates: %w", err)
		}
		if len(templates) > 0 {
			if err := forms.NewTemplateForm(&fm.Text, templates).Run(); err != nil {
				return err
			}
		}
	}
	if models.FindCategory(categories, fm.Category) < 0 {
		fm.Category = defaultCategory(categories)
	}
	return forms.NewEntryForm(fm, categories).Run()
}

// defaultCategory is the first category, like the preselected option of
// the entry form.
func defaultCategory(categories []models.Category) string {
	if len(categories) == 0 {
		return constants.FallbackCategory
	}
	return categories[0].Name
}
