package settings

import (
	"context"
	"fmt"

	"github.com/gosuri/uitable"

	"github.com/julianstephens/hourlog/internal/cli"
	"github.com/julianstephens/hourlog/internal/models"
	"github.com/julianstephens/hourlog/internal/validation"
)

type CategoryAddCmd struct {
	Name  string `arg:"" help:"Category name."`
	Emoji string `arg:"" optional:"" help:"Emoji shown next to the name."`
}

func (c *CategoryAddCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	categories, err := ctx.Aggregates.Categories(bg)
	if err != nil {
		return fmt.Errorf("failed to get categories: %w", err)
	}
	category, err := validation.NewCategory(categories, c.Name, c.Emoji)
	if err != nil {
		return err
	}
	if err := ctx.Aggregates.SaveCategories(bg, append(categories, category)); err != nil {
		return fmt.Errorf("failed to save categories: %w", err)
	}
	fmt.Printf("✓ Added category %s %s\n", category.Emoji, category.Name)
	return nil
}

type CategoryRemoveCmd struct {
	Name string `arg:"" help:"Category name."`
}

func (c *CategoryRemoveCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	categories, err := ctx.Aggregates.Categories(bg)
	if err != nil {
		return fmt.Errorf("failed to get categories: %w", err)
	}
	idx := models.FindCategory(categories, c.Name)
	if idx < 0 {
		fmt.Printf("No category named %q, nothing to do\n", c.Name)
		return nil
	}
	remaining := append(categories[:idx:idx], categories[idx+1:]...)
	if err := ctx.Aggregates.SaveCategories(bg, remaining); err != nil {
		return fmt.Errorf("failed to save categories: %w", err)
	}
	fmt.Printf("✓ Removed category %s (existing logs keep it)\n", c.Name)
	return nil
}

type CategoryListCmd struct{}

func (c *CategoryListCmd) Run(ctx *cli.Context) error {
	categories, err := ctx.Aggregates.Categories(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get categories: %w", err)
	}
	if len(categories) == 0 {
		fmt.Println("No categories")
		return nil
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	for _, cat := range categories {
		tbl.AddRow(cat.Emoji, cat.Name)
	}
	fmt.Println(tbl)
	return nil
}

type TemplateAddCmd struct {
	Name string `arg:"" help:"Template name."`
	Text string `arg:"" help:"Text the template starts a log with."`
}

func (c *TemplateAddCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	template, err := validation.NewTemplate(c.Name, c.Text)
	if err != nil {
		return err
	}
	templates, err := ctx.Aggregates.Templates(bg)
	if err != nil {
		return fmt.Errorf("failed to get templates: %w", err)
	}
	if err := ctx.Aggregates.SaveTemplates(bg, append(templates, template)); err != nil {
		return fmt.Errorf("failed to save templates: %w", err)
	}
	fmt.Printf("✓ Added template %s\n", template.Name)
	return nil
}

type TemplateRemoveCmd struct {
	Name string `arg:"" help:"Template name."`
}

func (c *TemplateRemoveCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	templates, err := ctx.Aggregates.Templates(bg)
	if err != nil {
		return fmt.Errorf("failed to get templates: %w", err)
	}
	idx := models.FindTemplate(templates, c.Name)
	if idx < 0 {
		fmt.Printf("No template named %q, nothing to do\n", c.Name)
		return nil
	}
	remaining := append(templates[:idx:idx], templates[idx+1:]...)
	if err := ctx.Aggregates.SaveTemplates(bg, remaining); err != nil {
		return fmt.Errorf("failed to save templates: %w", err)
	}
	fmt.Printf("✓ Removed template %s\n", c.Name)
	return nil
}

type TemplateListCmd struct{}

func (c *TemplateListCmd) Run(ctx *cli.Context) error {
	templates, err := ctx.Aggregates.Templates(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get templates: %w", err)
	}
	if len(templates) == 0 {
		fmt.Println("No templates")
		return nil
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("NAME", "TEXT")
	for _, t := range templates {
		tbl.AddRow(t.Name, fmt.Sprintf("%q", t.Text))
	}
	fmt.Println(tbl)
	return nil
}
