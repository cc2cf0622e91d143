package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"spotwatch/internal/ingest"
	"spotwatch/internal/store"
)

const dateLayout = "2006-01-02"

// parseIDs converts ID arguments into int64 values.
func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
		if err != nil || id < 1 {
			return nil, fmt.Errorf("invalid id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// validateDateRange checks optional inclusive YYYY-MM-DD bounds.
func validateDateRange(from, to string) error {
	for _, value := range []string{from, to} {
		if value == "" {
			continue
		}
		if _, err := time.Parse(dateLayout, value); err != nil {
			return fmt.Errorf("invalid date %q (want YYYY-MM-DD)", value)
		}
	}
	if from != "" && to != "" && from > to {
		return fmt.Errorf("--from %s is after --to %s", from, to)
	}
	return nil
}

// resolveSpotIDs accepts spot IDs or names.
func resolveSpotIDs(ctx context.Context, st *store.Store, refs []string) ([]int64, error) {
	ids := make([]int64, 0, len(refs))
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
			ids = append(ids, id)
			continue
		}
		spot, err := st.GetSpotByName(ctx, ref)
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("spot %q not found", ref)
		}
		if err != nil {
			return nil, err
		}
		ids = append(ids, spot.ID)
	}
	return ids, nil
}

// reportImport prints an import summary and turns failures into an error so
// the exit status reflects them.
func reportImport(out io.Writer, kind string, summary ingest.ImportSummary) error {
	fmt.Fprintf(out, "Imported %s %s", humanize.Comma(int64(summary.Added)), plural(summary.Added, kind))
	if summary.Skipped > 0 {
		fmt.Fprintf(out, " (%s already present)", humanize.Comma(int64(summary.Skipped)))
	}
	fmt.Fprintln(out)
	for _, f := range summary.Failures {
		fmt.Fprintf(out, "  failed: %s: %v\n", f.Path, f.Err)
	}
	if n := len(summary.Failures); n > 0 {
		return fmt.Errorf("%d %s could not be imported", n, plural(n, "file"))
	}
	return nil
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04")
}
