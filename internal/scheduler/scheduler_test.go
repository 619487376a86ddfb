package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/hourlog/internal/constants"
	"github.com/julianstephens/hourlog/internal/models"
	"github.com/julianstephens/hourlog/internal/notifier"
)

type fakeTimers struct {
	mu      sync.Mutex
	active  map[string]TimerSpec
	creates int
}

func newFakeTimers() *fakeTimers {
	return &fakeTimers{active: map[string]TimerSpec{}}
}

func (f *fakeTimers) Create(key string, spec TimerSpec) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active[key] = spec
	f.creates++
	return nil
}

func (f *fakeTimers) Clear(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.active[key]
	delete(f.active, key)
	return ok
}

type fakeSender struct {
	mu       sync.Mutex
	notified []notifier.Notification
	cleared  []string
}

func (f *fakeSender) Notify(_ context.Context, n notifier.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notified = append(f.notified, n)
	return nil
}

func (f *fakeSender) Clear(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = append(f.cleared, id)
	return nil
}

type staticSettings struct {
	settings models.Settings
	err      error
}

func (s staticSettings) Settings(context.Context) (models.Settings, error) {
	return s.settings, s.err
}

func TestArmIsIdempotent(t *testing.T) {
	timers := newFakeTimers()
	s := New(timers, staticSettings{settings: models.DefaultSettings()}, &fakeSender{})

	settings := models.DefaultSettings()
	settings.ReminderInterval = 30
	for i := 0; i < 2; i++ {
		if err := s.Arm(settings); err != nil {
			t.Fatalf("Arm failed: %v", err)
		}
	}

	if len(timers.active) != 1 {
		t.Fatalf("expected exactly one active timer, got %v", timers.active)
	}
	spec := timers.active[constants.TimerPrimary]
	if spec.Period != 30*time.Minute || spec.Delay != 0 {
		t.Errorf("unexpected primary spec %+v", spec)
	}
}

func TestArmDefaultsInvalidInterval(t *testing.T) {
	timers := newFakeTimers()
	s := New(timers, staticSettings{}, &fakeSender{})
	if err := s.Arm(models.Settings{ReminderInterval: 0}); err != nil {
		t.Fatalf("Arm failed: %v", err)
	}
	if got := timers.active[constants.TimerPrimary].Period; got != time.Hour {
		t.Errorf("expected 1h default period, got %v", got)
	}
}

func TestOnFirePrimary(t *testing.T) {
	settings := models.DefaultSettings()
	settings.QuietHoursEnabled = true
	settings.QuietHoursStart = "22:00"
	settings.QuietHoursEnd = "08:00"
	settings.NotificationSound = false

	sender := &fakeSender{}
	s := New(newFakeTimers(), staticSettings{settings: settings}, sender)
	ctx := context.Background()

	outcome, err := s.OnFire(ctx, constants.TimerPrimary, at(23, 30))
	if err != nil || outcome != OutcomeSuppressed {
		t.Fatalf("OnFire at 23:30 = %v, %v; want suppressed", outcome, err)
	}
	if len(sender.notified) != 0 {
		t.Fatalf("suppressed tick must not notify")
	}

	outcome, err = s.OnFire(ctx, constants.TimerPrimary, at(9, 0))
	if err != nil || outcome != OutcomeNotified {
		t.Fatalf("OnFire at 09:00 = %v, %v; want notified", outcome, err)
	}
	n := sender.notified[0]
	if n.Title != constants.ReminderTitle || len(n.Buttons) != 2 {
		t.Errorf("unexpected notification %+v", n)
	}
	if n.Buttons[0] != constants.ButtonLogNow || n.Buttons[1] != constants.ButtonSnooze {
		t.Errorf("unexpected buttons %v", n.Buttons)
	}
	if !n.Silent {
		t.Error("notification should be silent when sound is off")
	}
}

func TestOnFireSnoozeIgnoresQuietHours(t *testing.T) {
	settings := models.DefaultSettings()
	settings.QuietHoursEnabled = true
	settings.QuietHoursStart = "00:00"
	settings.QuietHoursEnd = "00:00"

	sender := &fakeSender{}
	s := New(newFakeTimers(), staticSettings{settings: settings}, sender)

	outcome, err := s.OnFire(context.Background(), constants.TimerSnooze, at(3, 0))
	if err != nil || outcome != OutcomeNotified {
		t.Fatalf("OnFire(snooze) = %v, %v; want notified", outcome, err)
	}
	if sender.notified[0].Title != constants.SnoozedTitle || len(sender.notified[0].Buttons) != 0 {
		t.Errorf("unexpected snoozed notification %+v", sender.notified[0])
	}
}

func TestOnFireSettingsErrorFallsBackToDefaults(t *testing.T) {
	sender := &fakeSender{}
	s := New(newFakeTimers(), staticSettings{err: errors.New("disk gone")}, sender)

	outcome, err := s.OnFire(context.Background(), constants.TimerPrimary, at(23, 0))
	if err != nil || outcome != OutcomeNotified {
		t.Fatalf("OnFire = %v, %v; want notified with defaults", outcome, err)
	}
	if sender.notified[0].Silent {
		t.Error("default settings enable sound")
	}
}

func TestOnFireUnknownKey(t *testing.T) {
	sender := &fakeSender{}
	s := New(newFakeTimers(), staticSettings{settings: models.DefaultSettings()}, sender)
	outcome, err := s.OnFire(context.Background(), "mystery", at(12, 0))
	if err != nil || outcome != OutcomeIgnored {
		t.Errorf("OnFire(unknown) = %v, %v", outcome, err)
	}
	if outcome.String() != "ignored" {
		t.Errorf("unexpected String() %q", outcome.String())
	}
}

func TestOnSnoozeRequested(t *testing.T) {
	timers := newFakeTimers()
	sender := &fakeSender{}
	s := New(timers, staticSettings{settings: models.DefaultSettings()}, sender)

	if err := s.OnSnoozeRequested(context.Background(), constants.ReminderNotificationID); err != nil {
		t.Fatalf("OnSnoozeRequested failed: %v", err)
	}
	spec, ok := timers.active[constants.TimerSnooze]
	if !ok || spec.Delay != 15*time.Minute || spec.Period != 0 {
		t.Errorf("unexpected snooze timer %+v (present=%v)", spec, ok)
	}
	if len(sender.cleared) != 1 || sender.cleared[0] != constants.ReminderNotificationID {
		t.Errorf("expected notification to be cleared, got %v", sender.cleared)
	}
}

func TestHandler(t *testing.T) {
	timers := newFakeTimers()
	sender := &fakeSender{}
	s := New(timers, staticSettings{settings: models.DefaultSettings()}, sender)

	opened := 0
	h := NewHandler(s, func(context.Context) error {
		opened++
		return nil
	})
	ctx := context.Background()

	if err := h.OnClicked(ctx, constants.ReminderNotificationID); err != nil {
		t.Fatal(err)
	}
	if err := h.OnButtonClicked(ctx, constants.ReminderNotificationID, 0); err != nil {
		t.Fatal(err)
	}
	if opened != 2 {
		t.Errorf("expected logger opened twice, got %d", opened)
	}
	if _, ok := timers.active[constants.TimerSnooze]; ok {
		t.Fatal("no snooze expected yet")
	}

	if err := h.OnButtonClicked(ctx, constants.ReminderNotificationID, 1); err != nil {
		t.Fatal(err)
	}
	if _, ok := timers.active[constants.TimerSnooze]; !ok {
		t.Error("button 1 should arm the snooze timer")
	}
	if opened != 2 {
		t.Error("snooze must not open the logger")
	}

	if err := h.OnButtonClicked(ctx, constants.ReminderNotificationID, 5); err == nil {
		t.Error("expected error for unknown button")
	}
}
