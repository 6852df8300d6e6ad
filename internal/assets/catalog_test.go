package assets

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, w, h int, c color.RGBA) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

func writeAssetDir(t *testing.T, transforms string) string {
	t.Helper()

	dir := t.TempDir()
	os.MkdirAll(filepath.Join(dir, "poses"), 0755)
	os.MkdirAll(filepath.Join(dir, "mouths"), 0755)

	for _, name := range []string{"1.png", "2.png", "10.png"} {
		writePNG(t, filepath.Join(dir, "poses", name), 60, 90, color.RGBA{200, 200, 200, 255})
	}
	for _, name := range []string{"0.png", "1.png", "3.png"} {
		writePNG(t, filepath.Join(dir, "mouths", name), 8, 4, color.RGBA{255, 0, 0, 255})
	}

	if transforms != "" {
		if err := os.WriteFile(filepath.Join(dir, "mouth_coordinates.json"), []byte(transforms), 0644); err != nil {
			t.Fatalf("write transforms: %v", err)
		}
	}

	return dir
}

const validTransforms = `{"transforms": [
	{"pose": 1, "viseme": 0, "x": 10, "y": 20, "scale_x": 1, "scale_y": 1, "flip_x": false, "rotation": 0},
	{"pose": 1, "viseme": 3, "x": 5, "y": 5, "scale_x": 0.5, "scale_y": 0.5, "flip_x": true, "rotation": -15}
]}`

func TestNumericFilenameSort(t *testing.T) {
	dir := writeAssetDir(t, validTransforms)
	c := NewCatalog(dir)

	poses, err := c.LoadPoses()
	if err != nil {
		t.Fatalf("LoadPoses failed: %v", err)
	}

	// 2.png must sort before 10.png, not lexicographically after it.
	want := []int{1, 2, 10}
	if len(poses) != len(want) {
		t.Fatalf("Expected %d poses, got %d", len(want), len(poses))
	}
	for i, p := range poses {
		if p.Index != want[i] {
			t.Errorf("Pose %d: expected index %d, got %d", i, want[i], p.Index)
		}
	}

	mouths, err := c.LoadMouths()
	if err != nil {
		t.Fatalf("LoadMouths failed: %v", err)
	}
	wantMouths := []int{0, 1, 3}
	for i, m := range mouths {
		if m.Index != wantMouths[i] {
			t.Errorf("Mouth %d: expected index %d, got %d", i, wantMouths[i], m.Index)
		}
	}
}

func TestTransformCoordinateScaling(t *testing.T) {
	dir := writeAssetDir(t, validTransforms)
	c := NewCatalog(dir)

	transforms, err := c.LoadTransforms()
	if err != nil {
		t.Fatalf("LoadTransforms failed: %v", err)
	}

	// Raw x=10, y=20 must come back with the 3x base-resolution correction.
	tr, ok := transforms[TransformKey{Pose: 1, Viseme: 0}]
	if !ok {
		t.Fatal("Expected transform for pose 1, viseme 0")
	}
	if tr.X != 30 || tr.Y != 60 {
		t.Errorf("Expected anchor (30, 60), got (%v, %v)", tr.X, tr.Y)
	}

	// Non-anchor fields are not scaled.
	tr2 := transforms[TransformKey{Pose: 1, Viseme: 3}]
	if tr2.ScaleX != 0.5 || tr2.ScaleY != 0.5 || !tr2.FlipX || tr2.Rotation != -15 {
		t.Errorf("Unexpected transform fields: %+v", tr2)
	}
}

func TestNonNumericFilenameFails(t *testing.T) {
	dir := writeAssetDir(t, validTransforms)
	writePNG(t, filepath.Join(dir, "poses", "face.png"), 60, 90, color.RGBA{0, 0, 0, 255})

	c := NewCatalog(dir)
	_, err := c.LoadPoses()
	if err == nil {
		t.Fatal("Expected error for non-numeric filename")
	}

	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Expected *LoadError, got %T: %v", err, err)
	}
	if loadErr.Path == "" {
		t.Error("LoadError should identify the offending path")
	}
}

func TestMissingDirectoryFails(t *testing.T) {
	c := NewCatalog(filepath.Join(t.TempDir(), "nope"))

	var loadErr *LoadError
	if _, err := c.LoadPoses(); !errors.As(err, &loadErr) {
		t.Errorf("Expected *LoadError for missing poses dir, got %v", err)
	}
	if _, err := c.LoadTransforms(); !errors.As(err, &loadErr) {
		t.Errorf("Expected *LoadError for missing transform table, got %v", err)
	}
}

func TestMalformedTransformTable(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad json", `{"transforms": [`},
		{"empty table", `{"transforms": []}`},
		{"zero scale", `{"transforms": [{"pose": 1, "viseme": 0, "x": 1, "y": 1, "scale_x": 0, "scale_y": 1}]}`},
		{"negative scale", `{"transforms": [{"pose": 1, "viseme": 0, "x": 1, "y": 1, "scale_x": 1, "scale_y": -2}]}`},
		{"rotation out of range", `{"transforms": [{"pose": 1, "viseme": 0, "x": 1, "y": 1, "scale_x": 1, "scale_y": 1, "rotation": 400}]}`},
		{"duplicate pair", `{"transforms": [
			{"pose": 1, "viseme": 0, "x": 1, "y": 1, "scale_x": 1, "scale_y": 1},
			{"pose": 1, "viseme": 0, "x": 2, "y": 2, "scale_x": 1, "scale_y": 1}
		]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeAssetDir(t, tt.body)
			c := NewCatalog(dir)

			var loadErr *LoadError
			if _, err := c.LoadTransforms(); !errors.As(err, &loadErr) {
				t.Errorf("Expected *LoadError, got %v", err)
			}
		})
	}
}

func TestAnchorOutsideCanvasFails(t *testing.T) {
	// Raw x=100 becomes 300 after the 3x correction, past the 60px canvas.
	body := `{"transforms": [{"pose": 1, "viseme": 0, "x": 100, "y": 1, "scale_x": 1, "scale_y": 1}]}`
	dir := writeAssetDir(t, body)

	c := NewCatalog(dir)
	err := c.LoadAll()
	if err == nil {
		t.Fatal("Expected error for anchor outside canvas")
	}

	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Expected *LoadError, got %T: %v", err, err)
	}
}

func TestMissingTransformLookup(t *testing.T) {
	dir := writeAssetDir(t, validTransforms)
	c := NewCatalog(dir)
	if err := c.LoadAll(); err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}

	if _, err := c.Transform(1, 0); err != nil {
		t.Errorf("Expected transform for pose 1, viseme 0, got %v", err)
	}

	_, err := c.Transform(1, 9)
	var missing *MissingTransformError
	if !errors.As(err, &missing) {
		t.Fatalf("Expected *MissingTransformError, got %T: %v", err, err)
	}
	if missing.Pose != 1 || missing.Viseme != 9 {
		t.Errorf("Error should name the pair (1, 9), got (%d, %d)", missing.Pose, missing.Viseme)
	}
}

func TestPoseCanvasMismatchFails(t *testing.T) {
	dir := writeAssetDir(t, validTransforms)
	writePNG(t, filepath.Join(dir, "poses", "3.png"), 30, 30, color.RGBA{0, 0, 0, 255})

	c := NewCatalog(dir)
	if _, err := c.LoadPoses(); err == nil {
		t.Fatal("Expected error for mismatched pose canvas sizes")
	}
}
