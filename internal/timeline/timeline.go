package timeline

import "fmt"

// Timeline is the ordered schedule driving frame generation. It is produced
// by an external phoneme/audio aligner; this package only carries and
// validates it.
type Timeline struct {
	Version string  `yaml:"version"`
	FPS     float64 `yaml:"fps,omitempty"`
	Entries []Entry `yaml:"entries"`
}

// Entry schedules one pose+viseme pair for a run of identical frames.
type Entry struct {
	Pose   int `yaml:"pose"`
	Viseme int `yaml:"viseme"`
	Frames int `yaml:"frames"`
}

// TotalFrames returns the number of output frames the timeline describes.
func (t *Timeline) TotalFrames() int {
	total := 0
	for _, e := range t.Entries {
		total += e.Frames
	}
	return total
}

// Duration returns the playback length in seconds at the given frame rate.
func (t *Timeline) Duration(fps float64) float64 {
	if fps <= 0 {
		return 0
	}
	return float64(t.TotalFrames()) / fps
}

// Validate checks structural sanity: at least one entry, positive frame
// counts, non-negative indices. Whether the referenced assets exist is the
// assembler's pre-pass, not a timeline concern.
func (t *Timeline) Validate() error {
	if len(t.Entries) == 0 {
		return fmt.Errorf("timeline has no entries")
	}
	for i, e := range t.Entries {
		if e.Frames <= 0 {
			return fmt.Errorf("entries[%d]: frame count must be > 0, got %d", i, e.Frames)
		}
		if e.Pose < 0 || e.Viseme < 0 {
			return fmt.Errorf("entries[%d]: pose and viseme indices must be >= 0", i)
		}
	}
	return nil
}
