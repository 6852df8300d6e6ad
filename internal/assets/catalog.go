package assets

import (
	"encoding/json"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// coordScale corrects the base-resolution mismatch between the coordinate
// table and the actual pose images: anchors in mouth_coordinates.json are
// authored against 1/3-resolution art. Applied once, at load time.
const coordScale = 3.0

const (
	posesDir       = "poses"
	mouthsDir      = "mouths"
	transformsFile = "mouth_coordinates.json"
)

// Catalog resolves and loads pose images, mouth images and the per-pose
// mouth transform table from a single asset directory. It is pure lookup:
// no geometry happens here, and nothing is ever defaulted.
type Catalog struct {
	dir        string
	poses      []Pose
	mouths     []Mouth
	transforms map[TransformKey]MouthTransform
	canvas     image.Rectangle
}

func NewCatalog(dir string) *Catalog {
	return &Catalog{dir: dir}
}

// LoadAll loads poses, mouths and transforms in dependency order, so the
// transform table is bounds-checked against the pose canvas.
func (c *Catalog) LoadAll() error {
	if _, err := c.LoadPoses(); err != nil {
		return err
	}
	if _, err := c.LoadMouths(); err != nil {
		return err
	}
	_, err := c.LoadTransforms()
	return err
}

// LoadPoses loads poses/{index}.{ext}, sorted numerically by index
// (2.png before 10.png). All poses must share one canvas size.
func (c *Catalog) LoadPoses() ([]Pose, error) {
	imgs, err := c.loadImageDir(posesDir)
	if err != nil {
		return nil, err
	}

	poses := make([]Pose, 0, len(imgs))
	for _, it := range imgs {
		if it.img.Bounds() != imgs[0].img.Bounds() {
			return nil, &LoadError{Path: it.path, Err: fmt.Errorf(
				"pose canvas %v does not match %v", it.img.Bounds(), imgs[0].img.Bounds())}
		}
		poses = append(poses, Pose{Index: it.index, Image: it.img})
	}

	c.poses = poses
	c.canvas = imgs[0].img.Bounds()
	return poses, nil
}

// LoadMouths loads mouths/{index}.{ext} with the same numeric sort rule.
func (c *Catalog) LoadMouths() ([]Mouth, error) {
	imgs, err := c.loadImageDir(mouthsDir)
	if err != nil {
		return nil, err
	}

	mouths := make([]Mouth, 0, len(imgs))
	for _, it := range imgs {
		mouths = append(mouths, Mouth{Index: it.index, Image: it.img})
	}

	c.mouths = mouths
	return mouths, nil
}

// LoadTransforms parses the transform table, applies the coordScale
// correction to the anchor fields and validates every entry. Bounds are
// checked against the pose canvas when poses have been loaded first.
func (c *Catalog) LoadTransforms() (map[TransformKey]MouthTransform, error) {
	path := filepath.Join(c.dir, transformsFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	var doc struct {
		Transforms []struct {
			Pose   int `json:"pose"`
			Viseme int `json:"viseme"`
			MouthTransform
		} `json:"transforms"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	if len(doc.Transforms) == 0 {
		return nil, &LoadError{Path: path, Field: "transforms", Err: fmt.Errorf("table is empty")}
	}

	transforms := make(map[TransformKey]MouthTransform, len(doc.Transforms))
	for i, e := range doc.Transforms {
		field := func(name string) string { return fmt.Sprintf("transforms[%d].%s", i, name) }

		key := TransformKey{Pose: e.Pose, Viseme: e.Viseme}
		if _, dup := transforms[key]; dup {
			return nil, &LoadError{Path: path, Field: fmt.Sprintf("transforms[%d]", i), Err: fmt.Errorf(
				"duplicate entry for pose %d, viseme %d", e.Pose, e.Viseme)}
		}
		if e.ScaleX <= 0 {
			return nil, &LoadError{Path: path, Field: field("scale_x"), Err: fmt.Errorf("must be > 0, got %v", e.ScaleX)}
		}
		if e.ScaleY <= 0 {
			return nil, &LoadError{Path: path, Field: field("scale_y"), Err: fmt.Errorf("must be > 0, got %v", e.ScaleY)}
		}
		if e.Rotation < -360 || e.Rotation > 360 {
			return nil, &LoadError{Path: path, Field: field("rotation"), Err: fmt.Errorf("must be in [-360, 360], got %v", e.Rotation)}
		}

		t := e.MouthTransform
		t.X *= coordScale
		t.Y *= coordScale

		if !c.canvas.Empty() {
			if t.X < float64(c.canvas.Min.X) || t.X >= float64(c.canvas.Max.X) ||
				t.Y < float64(c.canvas.Min.Y) || t.Y >= float64(c.canvas.Max.Y) {
				return nil, &LoadError{Path: path, Field: field("x/y"), Err: fmt.Errorf(
					"anchor (%v, %v) outside pose canvas %v", t.X, t.Y, c.canvas)}
			}
		}

		transforms[key] = t
	}

	c.transforms = transforms
	return transforms, nil
}

// Poses returns the loaded poses in numeric order.
func (c *Catalog) Poses() []Pose { return c.poses }

// Mouths returns the loaded mouths in numeric order.
func (c *Catalog) Mouths() []Mouth { return c.mouths }

// Canvas returns the shared pose canvas bounds.
func (c *Catalog) Canvas() image.Rectangle { return c.canvas }

// Pose returns the pose with the given index.
func (c *Catalog) Pose(index int) (Pose, error) {
	for _, p := range c.poses {
		if p.Index == index {
			return p, nil
		}
	}
	return Pose{}, fmt.Errorf("pose %d is not in the catalog", index)
}

// Mouth returns the mouth with the given viseme index.
func (c *Catalog) Mouth(index int) (Mouth, error) {
	for _, m := range c.mouths {
		if m.Index == index {
			return m, nil
		}
	}
	return Mouth{}, fmt.Errorf("mouth %d is not in the catalog", index)
}

// Transform returns the transform for a (pose, viseme) pair.
func (c *Catalog) Transform(pose, viseme int) (MouthTransform, error) {
	t, ok := c.transforms[TransformKey{Pose: pose, Viseme: viseme}]
	if !ok {
		return MouthTransform{}, &MissingTransformError{Pose: pose, Viseme: viseme}
	}
	return t, nil
}

type indexedImage struct {
	index int
	path  string
	img   *image.RGBA
}

func (c *Catalog) loadImageDir(sub string) ([]indexedImage, error) {
	dir := filepath.Join(c.dir, sub)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &LoadError{Path: dir, Err: err}
	}

	var imgs []indexedImage
	seen := make(map[int]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		base := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		index, err := strconv.Atoi(base)
		if err != nil {
			return nil, &LoadError{Path: path, Err: fmt.Errorf("filename index %q is not numeric", base)}
		}
		if prev, dup := seen[index]; dup {
			return nil, &LoadError{Path: path, Err: fmt.Errorf("index %d already used by %s", index, prev)}
		}
		seen[index] = path

		img, err := loadRGBA(path)
		if err != nil {
			return nil, &LoadError{Path: path, Err: err}
		}
		imgs = append(imgs, indexedImage{index: index, path: path, img: img})
	}

	if len(imgs) == 0 {
		return nil, &LoadError{Path: dir, Err: fmt.Errorf("no image files found")}
	}

	// Numeric order, so 2.png sorts before 10.png.
	sort.Slice(imgs, func(i, j int) bool { return imgs[i].index < imgs[j].index })
	return imgs, nil
}

// loadRGBA decodes an image file and normalizes it to *image.RGBA with
// zero-origin bounds, preserving the alpha channel.
func loadRGBA(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}

	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba, nil
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Rect, img, b.Min, draw.Src)
	return rgba, nil
}
