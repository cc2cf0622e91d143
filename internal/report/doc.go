// Package report aggregates stored detections into the three broadcast
// report views and renders them as terminal tables, CSV, Markdown or HTML.
package report
