package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/julianstephens/hourlog/internal/constants"
)

// Notification is a desktop notification with optional action buttons.
type Notification struct {
	ID       string
	Title    string
	Message  string
	Buttons  []string
	Priority int
	Silent   bool
}

// Sender raises and dismisses notifications.
type Sender interface {
	Notify(ctx context.Context, n Notification) error
	Clear(ctx context.Context, id string) error
}

// WebhookPayload is the body the tray application accepts.
type WebhookPayload struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Text       string   `json:"text"`
	Buttons    []string `json:"buttons,omitempty"`
	Priority   int      `json:"priority"`
	Silent     bool     `json:"silent"`
	DurationMs uint32   `json:"duration_ms"`
	// Interactions are posted back to CallbackURL with the secret in the
	// X-Hourlog-Secret header.
	CallbackURL    string `json:"callback_url,omitempty"`
	CallbackSecret string `json:"callback_secret,omitempty"`
}

type clearPayload struct {
	ID string `json:"id"`
}

// TrayNotifier delivers notifications to the hourlog tray application.
type TrayNotifier struct {
	callbackURL    string
	callbackSecret string
	client         *http.Client
	lockfilePath   func() (string, error)
}

func NewTrayNotifier() *TrayNotifier {
	return &TrayNotifier{
		client: &http.Client{Timeout: 5 * time.Second},
		lockfilePath: func() (string, error) {
			dir, err := GetTrayAppConfigDir()
			if err != nil {
				return "", err
			}
			return filepath.Join(dir, constants.NotifierLockfileName), nil
		},
	}
}

// SetCallback tells the tray where to report clicks and button presses.
func (n *TrayNotifier) SetCallback(url, secret string) {
	n.callbackURL = url
	n.callbackSecret = secret
}

func (n *TrayNotifier) endpoint() (Endpoint, error) {
	path, err := n.lockfilePath()
	if err != nil {
		return Endpoint{}, err
	}
	return FindEndpoint(path, constants.TrayExecutablePrefix)
}

func (n *TrayNotifier) Notify(ctx context.Context, notification Notification) error {
	ep, err := n.endpoint()
	if err != nil {
		return err
	}

	payload := WebhookPayload{
		ID:             notification.ID,
		Title:          notification.Title,
		Text:           notification.Message,
		Buttons:        notification.Buttons,
		Priority:       notification.Priority,
		Silent:         notification.Silent,
		DurationMs:     constants.NotificationDurationMs,
		CallbackURL:    n.callbackURL,
		CallbackSecret: n.callbackSecret,
	}
	return n.post(ctx, ep.URL()+"/", ep.Secret, payload)
}

func (n *TrayNotifier) Clear(ctx context.Context, id string) error {
	ep, err := n.endpoint()
	if err != nil {
		return err
	}
	return n.post(ctx, ep.URL()+"/clear", ep.Secret, clearPayload{ID: id})
}

func (n *TrayNotifier) post(ctx context.Context, url, secret string, payload interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(constants.SecretHeader, secret)

	res, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}

	body, _ := io.ReadAll(res.Body)
	return fmt.Errorf("notification failed with status %d: %s", res.StatusCode, string(body))
}
