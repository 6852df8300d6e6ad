package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"
)

// FrameSource is a single-pass, ordered sequence of frames. Next returns
// io.EOF after the last frame.
type FrameSource interface {
	Next() (image.Image, error)
}

// VideoEncoder writes an ordered frame sequence to a video file at a fixed
// frame rate.
type VideoEncoder interface {
	Encode(ctx context.Context, frames FrameSource, fps float64, outputPath string) error
}

// EncodeError reports an encoding failure: a frame whose dimensions do not
// match the stream, or an I/O failure in the underlying encoder.
type EncodeError struct {
	Path  string
	Frame int
	Err   error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: frame %d: %v", e.Path, e.Frame, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// FFmpegEncoder streams raw RGBA frames to an ffmpeg process over stdin.
type FFmpegEncoder struct {
	EncoderName string // h264 encoder; empty means libx264
	Quality     int    // CRF for libx264, encoder-specific otherwise
	AudioPath   string // optional audio track muxed into the output
}

// Encode consumes frames in order and writes them at the given frame rate.
// The ffmpeg process is started lazily on the first frame (its dimensions
// fix the stream size) and is always reaped before returning, so a failed
// encode never leaves a dangling process or an open pipe. Cancelling ctx
// aborts the encode; segments already flushed by ffmpeg stay intact.
func (e *FFmpegEncoder) Encode(ctx context.Context, frames FrameSource, fps float64, outputPath string) error {
	if fps <= 0 {
		return &EncodeError{Path: outputPath, Err: fmt.Errorf("frame rate must be > 0, got %g", fps)}
	}

	first, err := frames.Next()
	if err == io.EOF {
		return &EncodeError{Path: outputPath, Err: fmt.Errorf("frame source is empty")}
	}
	if err != nil {
		return err
	}

	width, height := first.Bounds().Dx(), first.Bounds().Dy()
	args := e.buildFFmpegArgs(width, height, fps, outputPath)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var ffmpegLog bytes.Buffer
	cmd.Stdout = &ffmpegLog
	cmd.Stderr = &ffmpegLog

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return &EncodeError{Path: outputPath, Err: fmt.Errorf("stdin pipe: %w", err)}
	}

	if err := cmd.Start(); err != nil {
		return &EncodeError{Path: outputPath, Err: fmt.Errorf("ffmpeg start: %w", err)}
	}

	abort := func() {
		stdin.Close()
		if cmd.Process != nil {
			cmd.Process.Kill()
		}
		cmd.Wait()
	}

	img := first
	count := 0
	for {
		if img.Bounds().Dx() != width || img.Bounds().Dy() != height {
			abort()
			return &EncodeError{Path: outputPath, Frame: count, Err: fmt.Errorf(
				"frame size %dx%d does not match stream %dx%d",
				img.Bounds().Dx(), img.Bounds().Dy(), width, height)}
		}
		if err := writeRawRGBA(stdin, img); err != nil {
			abort()
			return &EncodeError{Path: outputPath, Frame: count, Err: fmt.Errorf("write raw: %w", err)}
		}
		count++

		img, err = frames.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			abort()
			return err
		}
	}

	stdin.Close()
	if err := cmd.Wait(); err != nil {
		return &EncodeError{Path: outputPath, Frame: count, Err: fmt.Errorf(
			"ffmpeg: %w, output: %s", err, ffmpegLog.String())}
	}
	return nil
}

func (e *FFmpegEncoder) buildFFmpegArgs(width, height int, fps float64, outputPath string) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", width, height),
		"-framerate", fmt.Sprintf("%g", fps),
		"-i", "-",
	}

	if e.AudioPath != "" {
		args = append(args, "-i", e.AudioPath)
	}

	encoderName := e.EncoderName
	if encoderName == "" {
		encoderName = "libx264"
	}
	args = append(args, "-c:v", encoderName, "-pix_fmt", "yuv420p")

	quality := e.Quality
	switch encoderName {
	case "h264_videotoolbox":
		args = append(args, "-b:v", fmt.Sprintf("%dk", quality*100))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", quality))
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", quality), "-preset", "medium")
	}

	if e.AudioPath != "" {
		args = append(args, "-c:a", "aac", "-b:a", "192k", "-shortest")
	}

	args = append(args, outputPath)
	return args
}

func writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Rect, img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}
