package detection

import (
	"reflect"
	"testing"
)

func at(start, confidence float64) Detection {
	return Detection{RecordingID: 1, StartSeconds: start, EndSeconds: start + 30, Confidence: confidence, Kind: KindFor(confidence)}
}

func TestDeduplicate(t *testing.T) {
	tests := []struct {
		name   string
		in     []Detection
		window float64
		want   []Detection
	}{
		{
			name:   "empty",
			in:     nil,
			window: 30,
			want:   nil,
		},
		{
			name:   "earliest wins over more confident",
			in:     []Detection{at(101.2, 100), at(100.0, 90)},
			window: 30,
			want:   []Detection{at(100.0, 90)},
		},
		{
			name:   "ties prefer higher confidence",
			in:     []Detection{at(50, 88), at(50, 97), at(52, 100)},
			window: 30,
			want:   []Detection{at(50, 97)},
		},
		{
			name:   "separate airings survive",
			in:     []Detection{at(0, 100), at(29.9, 100), at(30, 100), at(95, 90)},
			window: 30,
			want:   []Detection{at(0, 100), at(30, 100), at(95, 90)},
		},
		{
			name:   "cluster measured from head",
			in:     []Detection{at(0, 100), at(20, 100), at(40, 100)},
			window: 30,
			want:   []Detection{at(0, 100), at(40, 100)},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Deduplicate(tc.in, tc.window)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Deduplicate() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestDeduplicateIsIdempotent(t *testing.T) {
	in := []Detection{at(10, 90), at(12, 100), at(45, 95), at(46, 85), at(80, 100), at(200, 99)}
	once := Deduplicate(in, 30)
	twice := Deduplicate(once, 30)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("second pass changed result: %+v vs %+v", once, twice)
	}
	for i := 1; i < len(once); i++ {
		if once[i].StartSeconds-once[i-1].StartSeconds < 30 {
			t.Fatalf("kept detections %+v and %+v are inside one window", once[i-1], once[i])
		}
	}
}

func TestDeduplicateLeavesInputUntouched(t *testing.T) {
	in := []Detection{at(20, 90), at(10, 100)}
	Deduplicate(in, 30)
	if in[0].StartSeconds != 20 || in[1].StartSeconds != 10 {
		t.Fatalf("input reordered: %+v", in)
	}
}
