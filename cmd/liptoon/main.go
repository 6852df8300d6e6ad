package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/ivlev/liptoon/internal/assembler"
	"github.com/ivlev/liptoon/internal/assets"
	"github.com/ivlev/liptoon/internal/background"
	"github.com/ivlev/liptoon/internal/config"
	"github.com/ivlev/liptoon/internal/overlay"
	"github.com/ivlev/liptoon/internal/system"
	"github.com/ivlev/liptoon/internal/timeline"
	"github.com/ivlev/liptoon/internal/video"
)

var buildVersion = "dev"

func main() {
	system.InitResourceLimits()

	assetsPtr := flag.String("assets", "assets", "Asset directory (poses/, mouths/, mouth_coordinates.json)")
	timelinePtr := flag.String("timeline", "", "Timeline YAML from the audio aligner")
	outputPtr := flag.String("output", "", "Output video path (auto-generated in output/ when empty)")
	fpsPtr := flag.Float64("fps", 24, "Frame rate")
	audioPtr := flag.String("audio", "", "Audio track to mux (optional, latest file in input/audio/ when omitted)")
	bgPtr := flag.String("background", "", "Backdrop: image file or PDF (optional)")
	bgPagePtr := flag.Int("bg-page", 0, "PDF page for the backdrop, zero-based")
	bgDPIPtr := flag.Int("bg-dpi", 150, "Render DPI for PDF backdrops")
	qrPtr := flag.String("qr", "", "URL stamped as a QR watermark onto every pose (optional)")
	qrSizePtr := flag.Int("qr-size", 96, "QR watermark edge length in pixels")
	workersPtr := flag.Int("workers", runtime.NumCPU(), "Parallel prerender workers (1 = sequential)")
	qualityPtr := flag.Int("quality", 0, "Video quality (0 - auto, x264: CRF 1-51)")
	statsPtr := flag.Bool("stats", false, "Print a performance report")

	flag.Parse()

	if *timelinePtr == "" {
		log.Fatalf("[-] A -timeline file is required")
	}

	tl, err := timeline.Read(*timelinePtr)
	if err != nil {
		log.Fatalf("[-] Timeline error: %v", err)
	}

	fps := *fpsPtr
	fpsSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "fps" {
			fpsSet = true
		}
	})
	if tl.FPS > 0 && !fpsSet {
		fps = tl.FPS
	}

	catalog := assets.NewCatalog(*assetsPtr)
	if err := catalog.LoadAll(); err != nil {
		log.Fatalf("[-] Asset error: %v", err)
	}

	if *qrPtr != "" {
		// Poses returns the catalog's backing slice, so stamping in place
		// updates what the assembler will composite.
		poses := catalog.Poses()
		for i := range poses {
			stamped, err := overlay.StampQR(poses[i].Image, *qrPtr, *qrSizePtr)
			if err != nil {
				log.Fatalf("[-] Watermark error: %v", err)
			}
			poses[i].Image = stamped
		}
		fmt.Printf("[*] QR watermark applied to %d poses\n", len(poses))
	}

	var backdrop *image.RGBA
	if *bgPtr != "" {
		src, err := background.Open(*bgPtr, *bgPagePtr)
		if err != nil {
			log.Fatalf("[-] Background error: %v", err)
		}
		img, err := src.Render(*bgDPIPtr)
		src.Close()
		if err != nil {
			log.Fatalf("[-] Background error: %v", err)
		}
		backdrop = background.Fit(img, catalog.Canvas())
	}

	audioPath := *audioPtr
	if audioPath == "" {
		if latest, err := system.FindLatestAudio(filepath.Join("input", "audio")); err == nil {
			audioPath = latest
			fmt.Printf("[*] Audio selected: %s\n", audioPath)
		}
	}
	if audioPath != "" {
		if audioDur, err := system.GetAudioDuration(audioPath); err == nil {
			if diff := math.Abs(audioDur - tl.Duration(fps)); diff > 0.25 {
				fmt.Printf("[!] Timeline runs %.2fs but audio runs %.2fs\n", tl.Duration(fps), audioDur)
			}
		}
	}

	finalOutput := *outputPtr
	if finalOutput == "" {
		os.MkdirAll("output", 0755)
		base := strings.TrimSuffix(filepath.Base(*timelinePtr), filepath.Ext(*timelinePtr))
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		finalOutput = filepath.Join("output", fmt.Sprintf("%s_%s.mp4", base, timestamp))
	}

	encoderName := system.GetBestH264Encoder()
	if encoderName != "libx264" {
		fmt.Printf("[*] Hardware encoder detected: %s\n", encoderName)
	}

	quality := *qualityPtr
	if quality == 0 {
		switch encoderName {
		case "h264_videotoolbox":
			quality = 75
		case "h264_nvenc":
			quality = 28
		default:
			quality = 23
		}
	}

	cfg := &config.Config{
		AssetsDir:      *assetsPtr,
		TimelinePath:   *timelinePtr,
		OutputVideo:    finalOutput,
		FPS:            fps,
		AudioPath:      audioPath,
		BackgroundPath: *bgPtr,
		BackgroundPage: *bgPagePtr,
		BackgroundDPI:  *bgDPIPtr,
		WatermarkURL:   *qrPtr,
		WatermarkSize:  *qrSizePtr,
		Workers:        *workersPtr,
		VideoEncoder:   encoderName,
		Quality:        quality,
		ShowStats:      *statsPtr,
		BuildVersion:   buildVersion,
	}

	canvas := catalog.Canvas()
	fmt.Printf("[*] Poses: %d | Mouths: %d | Canvas: %dx%d\n",
		len(catalog.Poses()), len(catalog.Mouths()), canvas.Dx(), canvas.Dy())
	fmt.Printf("[*] Timeline: %d entries, %d frames @ %g FPS (%.2fs)\n",
		len(tl.Entries), tl.TotalFrames(), cfg.FPS, tl.Duration(cfg.FPS))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	asm := &assembler.Assembler{
		Catalog:    catalog,
		Background: backdrop,
		Workers:    cfg.Workers,
	}

	stream, err := asm.Stream(ctx, tl)
	if err != nil {
		log.Fatalf("[-] Assembly error: %v", err)
	}

	bar := progressbar.Default(int64(tl.TotalFrames()), "encoding")
	enc := &video.FFmpegEncoder{
		EncoderName: cfg.VideoEncoder,
		Quality:     cfg.Quality,
		AudioPath:   cfg.AudioPath,
	}

	start := time.Now()
	err = enc.Encode(ctx, &progressSource{src: stream, bar: bar}, cfg.FPS, cfg.OutputVideo)
	bar.Finish()
	if err != nil {
		log.Fatalf("[-] Encode error: %v", err)
	}

	if cfg.ShowStats {
		system.RunStats{
			BuildVersion: cfg.BuildVersion,
			Frames:       tl.TotalFrames(),
			Elapsed:      time.Since(start),
		}.Report()
	}

	fmt.Printf("[+++] Done! Result: %s\n", cfg.OutputVideo)
}

// progressSource ticks the progress bar as the encoder pulls frames.
type progressSource struct {
	src video.FrameSource
	bar *progressbar.ProgressBar
}

func (p *progressSource) Next() (image.Image, error) {
	img, err := p.src.Next()
	if err == nil {
		p.bar.Add(1)
	}
	return img, err
}
