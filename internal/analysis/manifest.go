package analysis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"spotwatch/internal/config"
	"spotwatch/internal/detection"
	"spotwatch/internal/ingest"
	"spotwatch/internal/srt"
)

// Manifest lists files for a database-free run. Relative paths resolve
// against BaseDir, which LoadManifest sets to the manifest's directory.
//
//	spots:
//	  - spots/promo-alpha.srt
//	recordings:
//	  - file: TF1_2024-03-01_06-00-00_07-00-00.srt
//	  - file: capture.srt
//	    day_anchor: "06:00:00"
type Manifest struct {
	Spots      []string            `yaml:"spots"`
	Recordings []ManifestRecording `yaml:"recordings"`
	Matching   *ManifestMatching   `yaml:"matching,omitempty"`
	BaseDir    string              `yaml:"-"`
}

// ManifestRecording is one recording file. DayAnchor may be omitted when the
// file name follows the recording naming convention.
type ManifestRecording struct {
	File      string `yaml:"file"`
	DayAnchor string `yaml:"day_anchor,omitempty"`
}

// ManifestMatching overrides matching settings for one manifest.
type ManifestMatching struct {
	Threshold            *float64 `yaml:"threshold,omitempty"`
	ClusterWindowSeconds *float64 `yaml:"cluster_window_seconds,omitempty"`
}

// ManifestDetection is a detection labelled with the file names it came from.
type ManifestDetection struct {
	Spot      string `json:"spot"`
	Recording string `json:"recording"`
	detection.Detection
}

// LoadManifest reads a YAML manifest. Unknown keys are rejected.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	m.BaseDir = filepath.Dir(path)
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return &m, nil
}

// Validate checks that the manifest names at least one spot and recording
// and that every recording has a usable day anchor.
func (m *Manifest) Validate() error {
	if len(m.Spots) == 0 {
		return errors.New("at least one spot is required")
	}
	if len(m.Recordings) == 0 {
		return errors.New("at least one recording is required")
	}
	for _, rec := range m.Recordings {
		if strings.TrimSpace(rec.File) == "" {
			return errors.New("recording file is required")
		}
		if _, err := rec.anchor(); err != nil {
			return err
		}
	}
	if m.Matching != nil && m.Matching.Threshold != nil {
		if t := *m.Matching.Threshold; t < 0 || t > 100 {
			return fmt.Errorf("matching.threshold must be within 0-100, got %v", t)
		}
	}
	return nil
}

func (r ManifestRecording) anchor() (string, error) {
	if anchor := strings.TrimSpace(r.DayAnchor); anchor != "" {
		if _, err := srt.ParseClock(anchor); err != nil {
			return "", fmt.Errorf("recording %s: %w", r.File, err)
		}
		return anchor, nil
	}
	name, err := ingest.ParseRecordingName(r.File)
	if err != nil {
		return "", fmt.Errorf("recording %s: set day_anchor or use the recording naming convention: %w", r.File, err)
	}
	return name.StartsAt, nil
}

// ParseRecordingArg parses FILE or FILE@HH:MM:SS.
func ParseRecordingArg(arg string) ManifestRecording {
	if at := strings.LastIndex(arg, "@"); at > 0 {
		return ManifestRecording{File: arg[:at], DayAnchor: arg[at+1:]}
	}
	return ManifestRecording{File: arg}
}

func (m *Manifest) resolve(path string) string {
	if filepath.IsAbs(path) || m.BaseDir == "" {
		return path
	}
	return filepath.Join(m.BaseDir, path)
}

// RunManifest matches every manifest spot against every manifest recording.
// Spot and recording IDs in the result are 1-based positions in the
// manifest.
func RunManifest(ctx context.Context, cfg *config.Config, m *Manifest, logger *slog.Logger) ([]ManifestDetection, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	matching := *cfg
	if m.Matching != nil {
		if m.Matching.Threshold != nil {
			matching.Matching.Threshold = *m.Matching.Threshold
		}
		if m.Matching.ClusterWindowSeconds != nil {
			matching.Matching.ClusterWindowSeconds = *m.Matching.ClusterWindowSeconds
		}
	}
	detector := NewDetector(&matching, logger)

	recordings := make([]detection.Recording, len(m.Recordings))
	for i, rec := range m.Recordings {
		content, err := ingest.ReadFile(m.resolve(rec.File))
		if err != nil {
			return nil, fmt.Errorf("read recording: %w", err)
		}
		anchor, _ := rec.anchor()
		recordings[i] = detection.Recording{ID: int64(i + 1), Content: content, DayAnchor: anchor}
	}
	prepared := detector.Prepare(recordings)

	var out []ManifestDetection
	for i, spotPath := range m.Spots {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		content, err := ingest.ReadFile(m.resolve(spotPath))
		if err != nil {
			return out, fmt.Errorf("read spot: %w", err)
		}
		spotName := ingest.SpotName(spotPath)
		for _, d := range detector.DetectPrepared(int64(i+1), content, prepared) {
			out = append(out, ManifestDetection{
				Spot:      spotName,
				Recording: filepath.Base(m.Recordings[d.RecordingID-1].File),
				Detection: d,
			})
		}
	}
	return out, nil
}
