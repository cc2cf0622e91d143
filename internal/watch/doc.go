// Package watch runs the scheduled inbox scanner.
//
// On every tick the Watcher imports the .srt files dropped into the spot and
// recording inbox directories, archives them under the processed directory,
// and analyzes what changed: new recordings against every spot, or everything
// when new spots arrived. Run outcomes and failures are sent through the
// notifications service.
package watch
