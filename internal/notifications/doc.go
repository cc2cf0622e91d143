// Package notifications delivers analysis events to operators.
//
// Messages go to ntfy when a topic is configured and to SMTP email when the
// [email] section is enabled; with both configured every message is fanned
// out to each transport. With neither, NewService returns a no-op so callers
// never need to check whether notifications are on.
package notifications
