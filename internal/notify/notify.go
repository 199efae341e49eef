// Package notify holds the outward capabilities the reminder loop talks to:
// platform notifications gated by a permission, and in-app toasts.
package notify

import (
	"errors"
	"sync"
)

type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Notifier is a platform notification channel. Show replaces any live
// notification that carries the same tag wherever the platform tool can
// address one; see Desktop for the exception.
type Notifier interface {
	Permission() Permission
	Request() Permission
	Show(title, body, tag string) error
}

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Toaster receives fire-and-forget in-app messages.
type Toaster interface {
	Toast(title, message string, sev Severity)
}

// ToastFunc adapts a plain function to Toaster.
type ToastFunc func(title, message string, sev Severity)

func (f ToastFunc) Toast(title, message string, sev Severity) { f(title, message, sev) }

var ErrUnavailable = errors.New("notifications unavailable")

// Nop never shows anything. Its permission stays denied.
type Nop struct{}

func (Nop) Permission() Permission    { return PermissionDenied }
func (Nop) Request() Permission       { return PermissionDenied }
func (Nop) Show(_, _, _ string) error { return ErrUnavailable }

// Toast is one recorded in-app message.
type Toast struct {
	Title    string
	Message  string
	Severity Severity
}

// Recorder is a Toaster that keeps every toast it receives.
type Recorder struct {
	mu     sync.Mutex
	toasts []Toast
}

func (r *Recorder) Toast(title, message string, sev Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, Toast{Title: title, Message: message, Severity: sev})
}

func (r *Recorder) Toasts() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Toast(nil), r.toasts...)
}
