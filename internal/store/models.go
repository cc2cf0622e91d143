package store

import "time"

// Channel is a broadcaster. Code is the short identifier used in recording
// file names; Name is the display label.
type Channel struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// Spot is an advertising clip transcript.
type Spot struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Content   string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Recording is a broadcast capture transcript. RecordedOn is YYYY-MM-DD and
// StartsAt/EndsAt are HH:MM:SS times of day; StartsAt is the day anchor used
// by the detector.
type Recording struct {
	ID          int64     `json:"id"`
	FileName    string    `json:"file_name"`
	ChannelCode string    `json:"channel_code"`
	ChannelName string    `json:"channel_name"`
	RecordedOn  string    `json:"recorded_on"`
	StartsAt    string    `json:"starts_at"`
	EndsAt      string    `json:"ends_at"`
	Content     string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// RecordingFilter narrows ListRecordings. Empty fields match everything;
// From and To are inclusive YYYY-MM-DD bounds.
type RecordingFilter struct {
	IDs          []int64
	ChannelCodes []string
	From         string
	To           string
}

// Detection is a stored detection joined with its spot and recording.
type Detection struct {
	ID           int64     `json:"id"`
	RunID        string    `json:"run_id,omitempty"`
	SpotID       int64     `json:"spot_id"`
	SpotName     string    `json:"spot_name"`
	RecordingID  int64     `json:"recording_id"`
	FileName     string    `json:"file_name"`
	ChannelCode  string    `json:"channel_code"`
	ChannelName  string    `json:"channel_name"`
	RecordedOn   string    `json:"recorded_on"`
	StartTime    string    `json:"start_time"`
	EndTime      string    `json:"end_time"`
	StartSeconds float64   `json:"start_seconds"`
	EndSeconds   float64   `json:"end_seconds"`
	Confidence   float64   `json:"confidence"`
	Kind         string    `json:"kind"`
	DetectedAt   time.Time `json:"detected_at"`
}

// Duration returns the estimated airing length in seconds.
func (d Detection) Duration() float64 {
	return d.EndSeconds - d.StartSeconds
}

// DetectionFilter narrows ListDetections. Empty fields match everything.
type DetectionFilter struct {
	SpotIDs       []int64
	ChannelCodes  []string
	From          string
	To            string
	Kind          string
	MinConfidence float64
	RunID         string
}

// RunStatus is the lifecycle state of an analysis run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
	RunCancelled RunStatus = "cancelled"
)

// Run records one analysis pass.
type Run struct {
	ID             string     `json:"id"`
	Status         RunStatus  `json:"status"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
	SpotCount      int        `json:"spot_count"`
	RecordingCount int        `json:"recording_count"`
	DetectionCount int        `json:"detection_count"`
	Error          string     `json:"error,omitempty"`
}

// Stats summarizes database contents.
type Stats struct {
	Channels          int     `json:"channels"`
	Spots             int     `json:"spots"`
	Recordings        int     `json:"recordings"`
	Detections        int     `json:"detections"`
	ExactDetections   int     `json:"exact_detections"`
	FuzzyDetections   int     `json:"fuzzy_detections"`
	AverageConfidence float64 `json:"average_confidence"`
	FirstRecording    string  `json:"first_recording,omitempty"`
	LastRecording     string  `json:"last_recording,omitempty"`
	LastRun           *Run    `json:"last_run,omitempty"`
}
