package testsupport

import (
	"context"
	"testing"

	"spotwatch/internal/config"
	"spotwatch/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// AddSpot stores a spot for tests using the provided store.
func AddSpot(t testing.TB, st *store.Store, name, content string) *store.Spot {
	t.Helper()

	spot, _, err := st.AddSpot(context.Background(), name, content)
	if err != nil {
		t.Fatalf("store.AddSpot: %v", err)
	}
	return spot
}

// AddRecording stores a recording for tests. startsAt is the HH:MM:SS day
// anchor; the end time is left at the start.
func AddRecording(t testing.TB, st *store.Store, fileName, channel, date, startsAt, content string) *store.Recording {
	t.Helper()

	rec, _, err := st.AddRecording(context.Background(), store.Recording{
		FileName:    fileName,
		ChannelCode: channel,
		RecordedOn:  date,
		StartsAt:    startsAt,
		EndsAt:      startsAt,
		Content:     content,
	})
	if err != nil {
		t.Fatalf("store.AddRecording: %v", err)
	}
	return rec
}
