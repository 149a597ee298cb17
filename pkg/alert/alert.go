package alert

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Notification is one high-gap opportunity pushed to alert destinations.
type Notification struct {
	Keyword       string   `json:"keyword"`
	Category      string   `json:"category"`
	GapScore      float64  `json:"gap_score"`
	Momentum      float64  `json:"momentum"`
	Supply        float64  `json:"supply"`
	Phase         string   `json:"phase"`
	Confidence    string   `json:"confidence"`
	VelocityTrend string   `json:"velocity_trend,omitempty"`
	Platforms     int      `json:"platforms"`
	Highlights    []string `json:"highlights,omitempty"`
}

// Summary is the one-line body shared by all destinations.
func (n *Notification) Summary() string {
	parts := []string{
		fmt.Sprintf("gap %.1f", n.GapScore),
		fmt.Sprintf("momentum %.0f vs supply %.0f", n.Momentum, n.Supply),
		fmt.Sprintf("phase %s", n.Phase),
	}
	if n.VelocityTrend != "" {
		parts = append(parts, n.VelocityTrend)
	}
	return strings.Join(parts, " | ")
}

// Notifier delivers alerts to a specific destination.
type Notifier interface {
	Name() string
	Send(ctx context.Context, n *Notification) error
}

// Manager broadcasts notifications to all registered notifiers.
type Manager struct {
	notifiers []Notifier
}

// NewManager creates a new alert manager.
func NewManager(notifiers []Notifier) *Manager {
	return &Manager{notifiers: notifiers}
}

// HasNotifiers returns true if at least one notifier is configured.
func (m *Manager) HasNotifiers() bool {
	return len(m.notifiers) > 0
}

// Broadcast sends a notification to all registered notifiers.
func (m *Manager) Broadcast(ctx context.Context, n *Notification) error {
	var errs []error
	for _, notifier := range m.notifiers {
		if err := notifier.Send(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", notifier.Name(), err))
		}
	}
	return errors.Join(errs...)
}
