package config

type Config struct {
	AssetsDir      string
	TimelinePath   string
	OutputVideo    string
	FPS            float64
	AudioPath      string
	BackgroundPath string
	BackgroundPage int
	BackgroundDPI  int
	WatermarkURL   string
	WatermarkSize  int
	Workers        int
	VideoEncoder   string
	Quality        int
	ShowStats      bool
	BuildVersion   string
}
