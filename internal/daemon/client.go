package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/julianstephens/hourlog/internal/constants"
	"github.com/julianstephens/hourlog/internal/notifier"
)

var client = &http.Client{
	Timeout:   5 * time.Second,
	Transport: &http.Transport{DisableKeepAlives: true},
}

// SendInteraction delivers an interaction to the daemon advertised by the
// lockfile at lockfilePath.
func SendInteraction(ctx context.Context, lockfilePath string, in Interaction) error {
	ep, err := notifier.FindEndpoint(lockfilePath, constants.DaemonExecutablePrefix)
	if err != nil {
		return err
	}
	return PostInteraction(ctx, ep, in)
}

// PostInteraction delivers an interaction to a known endpoint.
func PostInteraction(ctx context.Context, ep notifier.Endpoint, in Interaction) error {
	if err := in.validate(); err != nil {
		return err
	}
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.URL()+constants.CallbackPath, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(constants.SecretHeader, ep.Secret)

	res, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("daemon unreachable: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}
	msg, _ := io.ReadAll(res.Body)
	return fmt.Errorf("daemon rejected interaction with status %d: %s", res.StatusCode, bytes.TrimSpace(msg))
}
