package system

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/hourlog/internal/cli"
	"github.com/julianstephens/hourlog/internal/logger"
	"github.com/julianstephens/hourlog/internal/storage"
	"github.com/julianstephens/hourlog/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	watchCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var events <-chan storage.Event
	if ch, err := ctx.Store.Watch(watchCtx); err != nil {
		logger.Warn("Live reload disabled", "error", err)
	} else {
		events = ch
	}

	p := tea.NewProgram(tui.NewModel(ctx.Aggregates, events), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
