package notifier

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/julianstephens/hourlog/internal/logger"
)

// LogNotifier prints notifications instead of showing them. Used for
// --dry-run and on hosts without the tray application.
type LogNotifier struct {
	Out io.Writer
}

func (n *LogNotifier) Notify(_ context.Context, notification Notification) error {
	logger.Info("Notification", "id", notification.ID, "title", notification.Title, "silent", notification.Silent)
	if n.Out == nil {
		return nil
	}
	line := fmt.Sprintf("🔔 %s: %s", notification.Title, notification.Message)
	if len(notification.Buttons) > 0 {
		line += " [" + strings.Join(notification.Buttons, "] [") + "]"
	}
	_, err := fmt.Fprintln(n.Out, line)
	return err
}

func (n *LogNotifier) Clear(_ context.Context, id string) error {
	logger.Info("Notification cleared", "id", id)
	return nil
}
