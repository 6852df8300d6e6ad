package assets

import "image"

// Pose is a base body/face image variant. All poses of one animation share
// a single canvas size; mouths are composited onto it per frame.
type Pose struct {
	Index int
	Image *image.RGBA
}

// Mouth is one viseme shape with an alpha channel used as the paste mask.
type Mouth struct {
	Index int
	Image *image.RGBA
}

// MouthTransform describes how a mouth image is placed onto a pose: the
// anchor point (X, Y) is the sprite center in pose-canvas coordinates,
// Rotation is counter-clockwise-positive degrees. One transform exists per
// (pose, viseme) pair.
type MouthTransform struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	ScaleX   float64 `json:"scale_x"`
	ScaleY   float64 `json:"scale_y"`
	FlipX    bool    `json:"flip_x"`
	Rotation float64 `json:"rotation"`
}

// TransformKey identifies a transform table entry.
type TransformKey struct {
	Pose   int
	Viseme int
}
