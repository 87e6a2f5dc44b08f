// Package automation defines the capabilities the navigator needs from a UI
// automation backend. Implementations live outside this module (XCUITest bridges,
// WebDriverAgent, Appium clients); pkg/automation/mock provides an in-memory one.
package automation

import (
	"context"
	"errors"
	"time"
)

// Locator identifies an element on screen. Its syntax belongs to the driver.
type Locator string

// GestureKind enumerates the gestures a driver must support.
type GestureKind string

const (
	GestureTap        GestureKind = "tap"
	GestureLongPress  GestureKind = "long_press"
	GestureSwipeLeft  GestureKind = "swipe_left"
	GestureSwipeRight GestureKind = "swipe_right"
	GestureSwipeUp    GestureKind = "swipe_up"
	GestureSwipeDown  GestureKind = "swipe_down"
	GestureTypeText   GestureKind = "type_text"
)

// Gesture is one interaction with an element.
type Gesture struct {
	Kind GestureKind
	// Duration applies to long presses. Zero lets the driver choose.
	Duration time.Duration
	// Text applies to GestureTypeText.
	Text string
}

func (g Gesture) String() string {
	if g.Kind == GestureTypeText {
		return string(g.Kind) + "(" + g.Text + ")"
	}
	return string(g.Kind)
}

// ErrElementNotFound is returned by Perform when the locator matches nothing.
var ErrElementNotFound = errors.New("element not found")

// Driver is the minimal automation capability: check for an element and act on it.
// Perform is fire-and-forget from the navigator's point of view; success is
// established by verifying the next screen, not by Perform's return value.
type Driver interface {
	Exists(ctx context.Context, loc Locator) (bool, error)
	Perform(ctx context.Context, loc Locator, g Gesture) error
}

// ValueReader is implemented by drivers that can read an element's value
// (text field contents, switch state).
type ValueReader interface {
	Value(ctx context.Context, loc Locator) (string, error)
}

// DeviceControl covers coarse device operations used during session setup.
type DeviceControl interface {
	Home(ctx context.Context) error
	Relaunch(ctx context.Context, args ...string) error
}

// ParseDirection maps "left", "right", "up" and "down" to swipe gestures.
func ParseDirection(dir string) (GestureKind, bool) {
	switch dir {
	case "left":
		return GestureSwipeLeft, true
	case "right":
		return GestureSwipeRight, true
	case "up":
		return GestureSwipeUp, true
	case "down":
		return GestureSwipeDown, true
	}
	return "", false
}
