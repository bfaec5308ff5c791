package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/carlodandan/todoit/internal/model"
	"github.com/carlodandan/todoit/internal/storage"
)

var (
	ErrNotSupported  = errors.New("push: device notifications not supported")
	ErrNotSubscribed = errors.New("push: not subscribed")
)

// Notifier is the capability interface for device-level notification
// delivery. Support is detected once at construction; an unsupported
// environment surfaces as a disabled feature, not an error path.
type Notifier interface {
	IsSupported() bool
	Subscribe(ctx context.Context) error
	Unsubscribe(ctx context.Context) error
	Schedule(task model.Task) error
	Cancel(taskID string)
}

// Subscription is the opaque blob persisted under the subscription key.
type Subscription struct {
	Endpoint  string    `json:"endpoint"`
	CreatedAt time.Time `json:"createdAt"`
}

// DesktopNotifier delivers through the host's notification command
// (notify-send on Linux, osascript on macOS).
type DesktopNotifier struct {
	mu        sync.Mutex
	kv        storage.KV
	logger    *log.Logger
	supported bool
	sub       *Subscription
}

func NewDesktopNotifier(ctx context.Context, kv storage.KV, logger *log.Logger) *DesktopNotifier {
	if logger == nil {
		logger = log.Default()
	}
	n := &DesktopNotifier{
		kv:        kv,
		logger:    logger,
		supported: detectSupport(),
	}
	n.loadSubscription(ctx)
	return n
}

func detectSupport() bool {
	switch runtime.GOOS {
	case "linux":
		_, err := exec.LookPath("notify-send")
		return err == nil
	case "darwin":
		_, err := exec.LookPath("osascript")
		return err == nil
	default:
		return false
	}
}

func (n *DesktopNotifier) IsSupported() bool {
	return n.supported
}

func (n *DesktopNotifier) Subscribe(ctx context.Context) error {
	if !n.supported {
		return ErrNotSupported
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sub != nil {
		return nil
	}
	sub := &Subscription{
		Endpoint:  fmt.Sprintf("desktop:%s", runtime.GOOS),
		CreatedAt: time.Now().UTC(),
	}
	raw, err := json.Marshal(sub)
	if err != nil {
		return err
	}
	if err := n.kv.Set(ctx, storage.KeySubscription, raw); err != nil {
		n.logger.Error("persist subscription", "err", err)
		return err
	}
	n.sub = sub
	return nil
}

func (n *DesktopNotifier) Unsubscribe(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sub == nil {
		return nil
	}
	if err := n.kv.Delete(ctx, storage.KeySubscription); err != nil {
		n.logger.Error("remove subscription", "err", err)
		return err
	}
	n.sub = nil
	return nil
}

// Schedule hands one due task to the device notification mechanism. Only
// scheduling success is reported; delivery, retries, and click routing
// belong to the host system.
func (n *DesktopNotifier) Schedule(task model.Task) error {
	if !n.supported {
		return ErrNotSupported
	}
	n.mu.Lock()
	subscribed := n.sub != nil
	n.mu.Unlock()
	if !subscribed {
		return ErrNotSubscribed
	}
	title := fmt.Sprintf("%q is due now!", task.Text)
	return send(title, "Complete your task now!")
}

func (n *DesktopNotifier) Cancel(taskID string) {
	// Delivery is fire-and-forget once handed to the host; there is
	// nothing pending to tear down.
	_ = taskID
}

func (n *DesktopNotifier) loadSubscription(ctx context.Context) {
	raw, err := n.kv.Get(ctx, storage.KeySubscription)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			n.logger.Error("load subscription", "err", err)
		}
		return
	}
	var sub Subscription
	if err := json.Unmarshal(raw, &sub); err != nil {
		n.logger.Error("decode subscription", "err", err)
		return
	}
	n.sub = &sub
}

func send(title, body string) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("notify-send", title, body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(body), escapeAppleScript(title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return ErrNotSupported
	}
}

func escapeAppleScript(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

// Disabled is the no-op fallback for hosts without a notification command.
type Disabled struct{}

func (Disabled) IsSupported() bool                 { return false }
func (Disabled) Subscribe(context.Context) error   { return ErrNotSupported }
func (Disabled) Unsubscribe(context.Context) error { return nil }
func (Disabled) Schedule(model.Task) error         { return ErrNotSupported }
func (Disabled) Cancel(string)                     {}
