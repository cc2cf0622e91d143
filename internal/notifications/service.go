package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"spotwatch/internal/analysis"
	"spotwatch/internal/config"
)

const userAgent = "spotwatch/0.1.0"

// Service defines the notification surface used by the CLI and watcher.
type Service interface {
	NotifyRunCompleted(ctx context.Context, summary analysis.Summary) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// message is a transport-neutral notification.
type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type sender interface {
	send(ctx context.Context, msg message) error
}

// NewService builds a notification service from configuration. A noop
// implementation is returned when no transport is configured.
func NewService(cfg *config.Config) Service {
	var senders []sender
	if topic := strings.TrimSpace(cfg.Notifications.NtfyTopic); topic != "" {
		timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
		senders = append(senders, newNtfySender(topic, timeout))
	}
	if cfg.Email.Enabled {
		senders = append(senders, newEmailSender(cfg.Email))
	}
	if len(senders) == 0 {
		return noopService{}
	}
	return &service{
		senders:      senders,
		runCompleted: cfg.Notifications.RunCompleted,
		errors:       cfg.Notifications.Errors,
	}
}

type service struct {
	senders      []sender
	runCompleted bool
	errors       bool
}

func (s *service) NotifyRunCompleted(ctx context.Context, summary analysis.Summary) error {
	if !s.runCompleted || summary.Empty() {
		return nil
	}
	return s.publish(ctx, runCompletedMessage(summary))
}

func (s *service) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !s.errors {
		return nil
	}
	return s.publish(ctx, errorMessage(err, contextLabel))
}

func (s *service) TestNotification(ctx context.Context) error {
	return s.publish(ctx, message{
		title:    "Spotwatch - Test",
		body:     "🧪 Notification system test",
		tags:     []string{"spotwatch", "test"},
		priority: "low",
	})
}

// publish sends to every transport and joins their failures.
func (s *service) publish(ctx context.Context, msg message) error {
	var errs []error
	for _, snd := range s.senders {
		if err := snd.send(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func runCompletedMessage(summary analysis.Summary) message {
	duration := summary.Duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📺 %s detections across %s recordings for %s spots in %s",
		humanize.Comma(int64(summary.Detections)),
		humanize.Comma(int64(summary.Recordings)),
		humanize.Comma(int64(summary.Spots)),
		duration,
	)
	for _, spot := range summary.PerSpot {
		if spot.Detections == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s: %d (%d exact)", spot.SpotName, spot.Detections, spot.Exact)
	}
	if summary.RunID != "" {
		fmt.Fprintf(&b, "\nRun: %s", summary.RunID)
	}

	title := "Spotwatch - Analysis Complete"
	if summary.Detections == 0 {
		title = "Spotwatch - Analysis Complete (no airings)"
	}
	return message{
		title: title,
		body:  b.String(),
		tags:  []string{"spotwatch", "analysis", "completed"},
	}
}

func errorMessage(err error, contextLabel string) message {
	var builder strings.Builder
	builder.WriteString("❌ Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}
	return message{
		title:    "Spotwatch - Error",
		body:     builder.String(),
		tags:     []string{"spotwatch", "error", "alert"},
		priority: "high",
	}
}

type noopService struct{}

func (noopService) NotifyRunCompleted(context.Context, analysis.Summary) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error          { return nil }
func (noopService) TestNotification(context.Context) error                    { return nil }
