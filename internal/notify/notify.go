package notify

import (
	"sync"
	"time"

	"github.com/hquan/babytrack/internal/util"
)

// Permission mirrors the platform notification permission tri-state.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Banner is the in-app alert the UI shell observes.
type Banner struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	At    int64  `json:"at"` // Milliseconds since epoch
}

// PlatformChannel delivers a platform notification. Only used when
// permission is granted.
type PlatformChannel interface {
	Push(title, body string) error
}

// Notifier fans an alert out to the in-app banner and, permission
// allowing, the platform channel. It satisfies the scheduler's alert sink.
type Notifier struct {
	mu         sync.RWMutex
	permission Permission
	platform   PlatformChannel
	banner     *Banner
}

func NewNotifier(platform PlatformChannel) *Notifier {
	return &Notifier{
		permission: PermissionDefault,
		platform:   platform,
	}
}

// FeedingDue raises the feeding alert. The banner is always set; the
// platform channel fires only under granted permission.
func (n *Notifier) FeedingDue(at time.Time) {
	banner := &Banner{
		Title: "Feeding time",
		Body:  "It's time for the next feeding (" + util.FormatClock(at) + ")",
		At:    at.UnixMilli(),
	}

	n.mu.Lock()
	n.banner = banner
	permission := n.permission
	platform := n.platform
	n.mu.Unlock()

	if permission == PermissionGranted && platform != nil {
		if err := platform.Push(banner.Title, banner.Body); err != nil {
			util.LogWarnf("Platform notification failed: %v", err)
		}
	}
}

// Banner returns the most recent alert banner, if one was raised.
func (n *Notifier) Banner() (Banner, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.banner == nil {
		return Banner{}, false
	}
	return *n.banner, true
}

// ClearBanner drops the banner after the user dismissed it.
func (n *Notifier) ClearBanner() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.banner = nil
}

// SetPermission records the permission the platform reported.
func (n *Notifier) SetPermission(p Permission) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.permission = p
}

// Permission returns the current permission state.
func (n *Notifier) Permission() Permission {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.permission
}

// LogChannel is a PlatformChannel that only writes to the application log.
// Stands in when no OS-level notifier is wired up.
type LogChannel struct{}

func (LogChannel) Push(title, body string) error {
	util.LogInfof("Notification: %s - %s", title, body)
	return nil
}
