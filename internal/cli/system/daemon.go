package system

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/julianstephens/hourlog/internal/cli"
	"github.com/julianstephens/hourlog/internal/constants"
	"github.com/julianstephens/hourlog/internal/daemon"
	"github.com/julianstephens/hourlog/internal/notifier"
)

type DaemonCmd struct {
	DryRun      bool   `help:"Print notifications to stdout instead of sending them to the tray app."`
	OpenCommand string `help:"Command run when a reminder asks to log now, e.g. 'hourlog-term -e hourlog log -i'." env:"HOURLOG_OPEN_COMMAND"`
}

func (c *DaemonCmd) Run(ctx *cli.Context) error {
	var sender notifier.Sender = notifier.NewTrayNotifier()
	if c.DryRun {
		sender = &notifier.LogNotifier{Out: os.Stdout}
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d := daemon.New(daemon.Options{
		Store:        ctx.Aggregates,
		Sender:       sender,
		Open:         daemon.CommandOpener(c.OpenCommand),
		LockfilePath: ctx.DaemonLockfilePath(),
	})
	fmt.Printf("%s daemon running, press Ctrl+C to stop\n", constants.AppName)
	return d.Run(sigCtx)
}

// NotifyActionCmd forwards a notification interaction to the running
// daemon. The tray app invokes it when the user clicks a reminder.
type NotifyActionCmd struct {
	Action         string `arg:"" help:"Interaction (click|button)." enum:"click,button"`
	Index          int    `arg:"" optional:"" help:"Button index: 0 logs now, 1 snoozes."`
	NotificationID string `name:"id" help:"Notification the interaction came from." default:"hourlog-reminder"`
}

func (c *NotifyActionCmd) Run(ctx *cli.Context) error {
	in := daemon.Interaction{
		NotificationID: c.NotificationID,
		Action:         c.Action,
		Index:          c.Index,
	}
	return daemon.SendInteraction(context.Background(), ctx.DaemonLockfilePath(), in)
}
