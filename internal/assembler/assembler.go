// Package assembler drives the viseme timeline: it resolves each entry to a
// (pose, mouth, transform) triple, composes one frame per entry and streams
// the frames, in timeline order, to the video encoder.
package assembler

import (
	"context"
	"fmt"
	"image"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/liptoon/internal/assets"
	"github.com/ivlev/liptoon/internal/compose"
	"github.com/ivlev/liptoon/internal/sprite"
	"github.com/ivlev/liptoon/internal/timeline"
)

type Assembler struct {
	Catalog *assets.Catalog

	// Background, when set, is drawn under every frame. It must match the
	// pose canvas size.
	Background *image.RGBA

	// Workers > 1 prerenders timeline entries in parallel (compose is a pure
	// function of its inputs); frames are re-serialized into timeline order
	// before they reach the encoder. Zero or one keeps rendering lazy and
	// fully sequential.
	Workers int
}

// Stream validates every timeline reference up front and returns a
// single-pass frame sequence. A missing pose, mouth or transform fails here,
// before any frame is produced, so a broken timeline never yields partial
// output. The stream is not restartable; call Stream again to replay.
func (a *Assembler) Stream(ctx context.Context, tl *timeline.Timeline) (*FrameStream, error) {
	if err := tl.Validate(); err != nil {
		return nil, err
	}
	if a.Background != nil && a.Background.Bounds() != a.Catalog.Canvas() {
		return nil, fmt.Errorf("background %v does not match pose canvas %v",
			a.Background.Bounds(), a.Catalog.Canvas())
	}

	for _, e := range tl.Entries {
		if _, err := a.Catalog.Pose(e.Pose); err != nil {
			return nil, err
		}
		if _, err := a.Catalog.Transform(e.Pose, e.Viseme); err != nil {
			return nil, err
		}
		if _, err := a.Catalog.Mouth(e.Viseme); err != nil {
			return nil, err
		}
	}

	s := &FrameStream{asm: a, entries: tl.Entries}
	if a.Workers > 1 {
		if err := s.prerender(ctx, a.Workers); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// renderEntry composes the single frame an entry repeats. Deterministic for
// fixed inputs, so repeats reuse it instead of recomputing.
func (a *Assembler) renderEntry(e timeline.Entry) (*image.RGBA, error) {
	pose, err := a.Catalog.Pose(e.Pose)
	if err != nil {
		return nil, err
	}
	mouth, err := a.Catalog.Mouth(e.Viseme)
	if err != nil {
		return nil, err
	}
	t, err := a.Catalog.Transform(e.Pose, e.Viseme)
	if err != nil {
		return nil, err
	}

	spr, err := sprite.Transform(mouth.Image, t)
	if err != nil {
		return nil, err
	}

	frame := compose.Compose(pose.Image, spr, t)
	if a.Background != nil {
		frame = compose.Over(a.Background, frame)
	}
	return frame, nil
}

// FrameStream is a lazy, finite, single-pass frame sequence. It implements
// the encoder's frame source: Next returns io.EOF after the last frame.
type FrameStream struct {
	asm     *Assembler
	entries []timeline.Entry

	entryIdx int
	emitted  int
	current  *image.RGBA

	rendered []*image.RGBA // entry frames in timeline order, parallel mode only
}

func (s *FrameStream) Next() (image.Image, error) {
	for s.entryIdx < len(s.entries) {
		e := s.entries[s.entryIdx]

		if s.emitted < e.Frames {
			if s.current == nil {
				frame, err := s.entryFrame(s.entryIdx)
				if err != nil {
					return nil, err
				}
				s.current = frame
			}
			s.emitted++
			return s.current, nil
		}

		s.entryIdx++
		s.emitted = 0
		s.current = nil
	}
	return nil, io.EOF
}

func (s *FrameStream) entryFrame(i int) (*image.RGBA, error) {
	if s.rendered != nil {
		return s.rendered[i], nil
	}
	return s.asm.renderEntry(s.entries[i])
}

// prerender composes every entry frame ahead of time with a bounded worker
// pool. Output order stays strictly the timeline order regardless of which
// worker finishes first.
func (s *FrameStream) prerender(ctx context.Context, workers int) error {
	rendered := make([]*image.RGBA, len(s.entries))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range s.entries {
		g.Go(func() error {
			frame, err := s.asm.renderEntry(s.entries[i])
			if err != nil {
				return err
			}
			rendered[i] = frame
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.rendered = rendered
	return nil
}
