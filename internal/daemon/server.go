package daemon

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/julianstephens/hourlog/internal/constants"
	"github.com/julianstephens/hourlog/internal/logger"
)

const maxInteractionBytes = 4 << 10

// Interaction actions.
const (
	ActionClick  = "click"
	ActionButton = "button"
)

// Interaction is the body posted to the callback server when the user
// clicks a notification or one of its buttons.
type Interaction struct {
	NotificationID string `json:"notificationId"`
	Action         string `json:"action"`
	Index          int    `json:"index,omitempty"`
}

func (in Interaction) validate() error {
	switch in.Action {
	case ActionClick:
		return nil
	case ActionButton:
		if in.Index != constants.ButtonIndexLogNow && in.Index != constants.ButtonIndexSnooze {
			return fmt.Errorf("unknown button index %d", in.Index)
		}
		return nil
	default:
		return fmt.Errorf("unknown action %q", in.Action)
	}
}

// Handler serves the interaction callback.
func (d *Daemon) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+constants.CallbackPath, d.handleInteraction)
	return mux
}

func (d *Daemon) handleInteraction(w http.ResponseWriter, r *http.Request) {
	got := r.Header.Get(constants.SecretHeader)
	if subtle.ConstantTimeCompare([]byte(got), []byte(d.secret)) != 1 {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var in Interaction
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxInteractionBytes)).Decode(&in); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := in.validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var err error
	if in.Action == ActionClick {
		err = d.handler.OnClicked(r.Context(), in.NotificationID)
	} else {
		err = d.handler.OnButtonClicked(r.Context(), in.NotificationID, in.Index)
	}
	if err != nil {
		logger.Warn("Notification interaction failed", "action", in.Action, "index", in.Index, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
