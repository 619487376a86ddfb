// Package daemon runs the background reminder process: the timer loop, the
// settings change feed and the loopback callback server that receives
// notification interactions.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/hourlog/internal/constants"
	"github.com/julianstephens/hourlog/internal/logger"
	"github.com/julianstephens/hourlog/internal/models"
	"github.com/julianstephens/hourlog/internal/notifier"
	"github.com/julianstephens/hourlog/internal/scheduler"
	"github.com/julianstephens/hourlog/internal/storage"
)

// Options configures a Daemon.
type Options struct {
	Store  *storage.Aggregates
	Sender notifier.Sender
	// Open runs when the user asks to log from a notification. Nil only logs.
	Open scheduler.OpenFunc
	// LockfilePath advertises the callback server. Empty disables the lockfile.
	LockfilePath string
}

type callbackSetter interface {
	SetCallback(url, secret string)
}

// Daemon owns the reminder schedule for one store.
type Daemon struct {
	store        *storage.Aggregates
	sender       notifier.Sender
	timers       *scheduler.ClockTimers
	scheduler    *scheduler.Scheduler
	handler      *scheduler.Handler
	lockfilePath string
	secret       string
	now          func() time.Time

	mu    sync.Mutex
	armed models.Settings
}

func New(opts Options) *Daemon {
	timers := scheduler.NewClockTimers()
	sched := scheduler.New(timers, opts.Store, opts.Sender)
	open := opts.Open
	if open == nil {
		open = func(context.Context) error {
			logger.Info("Open requested but no open command is configured")
			return nil
		}
	}
	return &Daemon{
		store:        opts.Store,
		sender:       opts.Sender,
		timers:       timers,
		scheduler:    sched,
		handler:      scheduler.NewHandler(sched, open),
		lockfilePath: opts.LockfilePath,
		secret:       uuid.NewString(),
		now:          time.Now,
	}
}

// Secret is the value interaction requests must carry in the secret header.
func (d *Daemon) Secret() string {
	return d.secret
}

// Armed returns the settings the primary timer was last armed with.
func (d *Daemon) Armed() models.Settings {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.armed
}

// Run arms the reminder and serves until ctx is canceled.
func (d *Daemon) Run(ctx context.Context) error {
	defer d.timers.Stop()

	if err := d.store.EnsureDefaults(ctx); err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	settings, err := d.store.Settings(ctx)
	if err != nil {
		logger.Warn("Failed to read settings, using defaults", "error", err)
		settings = models.DefaultSettings()
	}
	d.arm(settings)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("failed to start callback server: %w", err)
	}
	port := strconv.Itoa(ln.Addr().(*net.TCPAddr).Port)
	ep := notifier.Endpoint{Port: port, PID: os.Getpid(), Secret: d.secret}
	if cb, ok := d.sender.(callbackSetter); ok {
		cb.SetCallback(ep.URL()+constants.CallbackPath, d.secret)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	changes, err := d.store.Provider().Watch(gctx)
	if err != nil {
		ln.Close()
		return fmt.Errorf("failed to watch store: %w", err)
	}

	if d.lockfilePath != "" {
		if err := notifier.WriteLockfile(d.lockfilePath, ep); err != nil {
			ln.Close()
			return err
		}
		defer os.Remove(d.lockfilePath)
	}
	logger.Info("Daemon started", "port", port, "store", d.store.Provider().GetConfigPath())

	srv := &http.Server{
		Handler:           d.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("callback server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return d.fireLoop(gctx)
	})
	g.Go(func() error {
		return d.watchLoop(gctx, changes)
	})

	err = g.Wait()
	logger.Info("Daemon stopped")
	return err
}

func (d *Daemon) arm(settings models.Settings) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.scheduler.Arm(settings); err != nil {
		logger.Warn("Failed to arm reminder", "error", err)
		return
	}
	d.armed = settings
}

func (d *Daemon) fireLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case key := <-d.timers.Fired():
			d.handleFire(ctx, key)
		}
	}
}

func (d *Daemon) handleFire(ctx context.Context, key string) {
	outcome, err := d.scheduler.OnFire(ctx, key, d.now())
	if err != nil {
		logger.Warn("Failed to deliver reminder", "timer", key, "error", err)
		return
	}
	logger.Info("Timer fired", "timer", key, "outcome", outcome)
}

func (d *Daemon) watchLoop(ctx context.Context, changes <-chan storage.Event) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-changes:
			if !ok {
				return nil
			}
			if ev.Touches(storage.KeySettings) {
				d.reload(ctx)
			}
		}
	}
}

// reload re-arms the primary timer when the stored settings differ from the
// ones it was armed with.
func (d *Daemon) reload(ctx context.Context) {
	settings, err := d.store.Settings(ctx)
	if err != nil {
		logger.Warn("Failed to reload settings", "error", err)
		return
	}
	if settings == d.Armed() {
		return
	}
	logger.Debug("Settings changed, re-arming")
	d.arm(settings)
}
