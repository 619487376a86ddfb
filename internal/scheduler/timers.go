package scheduler

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// TimerSpec describes a named timer. A positive Period makes it recurring;
// the first fire happens after Delay, or after Period when Delay is zero.
type TimerSpec struct {
	Delay  time.Duration
	Period time.Duration
}

// Timers is the named-timer facility the scheduler drives. Creating a timer
// under an existing key replaces it.
type Timers interface {
	Create(key string, spec TimerSpec) error
	Clear(key string) bool
}

type clockTimer struct {
	timer *time.Timer
	gen   uint64
}

// delivery is a fired key waiting for a reader on Fired.
type delivery struct {
	cancel chan struct{}
	done   chan struct{}
}

// ClockTimers runs named timers on the process clock and delivers the key
// of each timer that fires on Fired.
type ClockTimers struct {
	mu       sync.Mutex
	timers   map[string]*clockTimer
	inflight map[string]*delivery
	gen      uint64
	fired  chan string
	done   chan struct{}
	once   sync.Once
}

func NewClockTimers() *ClockTimers {
	return &ClockTimers{
		timers:   make(map[string]*clockTimer),
		inflight: make(map[string]*delivery),
		fired:    make(chan string),
		done:     make(chan struct{}),
	}
}

// Fired delivers timer keys as they fire. Once Create or Clear returns, no
// tick of the timer it replaced or cleared is delivered.
func (c *ClockTimers) Fired() <-chan string {
	return c.fired
}

func (c *ClockTimers) Create(key string, spec TimerSpec) error {
	if spec.Delay < 0 || spec.Period < 0 {
		return fmt.Errorf("timer %q: negative duration", key)
	}
	first := spec.Delay
	if first == 0 {
		first = spec.Period
	}
	if first == 0 {
		return fmt.Errorf("timer %q: needs a delay or a period", key)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.done:
		return fmt.Errorf("timers stopped")
	default:
	}

	if existing, ok := c.timers[key]; ok {
		existing.timer.Stop()
	}
	c.withdraw(key)
	c.gen++
	ct := &clockTimer{gen: c.gen}
	ct.timer = time.AfterFunc(first, func() { c.fire(key, ct.gen, spec.Period) })
	c.timers[key] = ct
	return nil
}

func (c *ClockTimers) fire(key string, gen uint64, period time.Duration) {
	c.mu.Lock()
	ct, ok := c.timers[key]
	if !ok || ct.gen != gen {
		// Cleared or replaced after this fire was scheduled.
		c.mu.Unlock()
		return
	}
	if period > 0 {
		ct.timer = time.AfterFunc(period, func() { c.fire(key, gen, period) })
	} else {
		delete(c.timers, key)
	}
	if d, ok := c.inflight[key]; ok && !isClosed(d.done) {
		// The previous tick is still unread; this one folds into it.
		c.mu.Unlock()
		return
	}
	d := &delivery{cancel: make(chan struct{}), done: make(chan struct{})}
	c.inflight[key] = d
	c.mu.Unlock()

	defer close(d.done)
	select {
	case c.fired <- key:
	case <-d.cancel:
	case <-c.done:
	}
}

// withdraw drops an undelivered tick for key. It returns once the delivering
// goroutine has either handed the key over or given up. Callers hold c.mu.
func (c *ClockTimers) withdraw(key string) {
	d, ok := c.inflight[key]
	if !ok {
		return
	}
	close(d.cancel)
	<-d.done
	delete(c.inflight, key)
}

func isClosed(ch chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

// Clear cancels the named timer. It reports whether one was active.
func (c *ClockTimers) Clear(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.withdraw(key)
	ct, ok := c.timers[key]
	if !ok {
		return false
	}
	ct.timer.Stop()
	delete(c.timers, key)
	return true
}

// Active returns the keys of all pending timers, sorted.
func (c *ClockTimers) Active() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.timers))
	for k := range c.timers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Stop cancels every timer and releases goroutines blocked on delivery.
func (c *ClockTimers) Stop() {
	c.once.Do(func() {
		c.mu.Lock()
		for k, ct := range c.timers {
			ct.timer.Stop()
			delete(c.timers, k)
		}
		close(c.done)
		for k := range c.inflight {
			delete(c.inflight, k)
		}
		c.mu.Unlock()
	})
}
