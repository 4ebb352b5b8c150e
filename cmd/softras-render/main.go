// softras-render - headless software rasterizer
// Renders a scene config (or mesh files over the default scene) to PNG, BMP
// or WebP.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/taigrr/softras/internal/assets"
	"github.com/taigrr/softras/internal/config"
	"github.com/taigrr/softras/internal/logger"
	"github.com/taigrr/softras/pkg/render"
)

var (
	flags     = config.RegisterFlags(flag.CommandLine)
	output    = flag.String("o", "", "Output image (.png, .bmp, .webp)")
	scale     = flag.Int("scale", 0, "Upscale the saved image by this factor")
	frames    = flag.Int("frames", 0, "Number of frames to render")
	depthOnly = flag.Bool("depth", false, "Write the depth buffer as grey")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "softras-render - headless software rasterizer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: softras-render [options] [model.obj|model.glb ...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	o := flags.Overrides(flag.Args())
	o.Output, o.Scale, o.Frames = *output, *scale, *frames

	cfg, err := config.LoadWithOverrides(*flags.Config, o)
	if err != nil {
		return err
	}
	if *depthOnly {
		cfg.Render.DepthAsColor = true
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return err
	}
	defer logger.Sync()

	baseDir := ""
	if *flags.Config != "" {
		baseDir = filepath.Dir(*flags.Config)
	}
	scene, err := assets.NewLoader(baseDir, logger.Named("assets")).BuildScene(cfg)
	if err != nil {
		return fmt.Errorf("build scene: %w", err)
	}

	backend, err := render.ParseBackend(cfg.Render.Backend)
	if err != nil {
		return err
	}
	fb := render.NewFramebuffer(cfg.Render.Width, cfg.Render.Height)
	r, err := render.NewRenderer(backend, fb, logger.Named("raster"))
	if err != nil {
		return err
	}

	for i := range cfg.Output.Frames {
		if i > 0 {
			scene.Update(cfg.Output.FrameStep)
		}
		r.Render(scene)

		path := framePath(cfg.Output.Path, i, cfg.Output.Frames)
		if err := render.SaveImage(path, fb.Scaled(cfg.Output.Scale)); err != nil {
			return err
		}

		fields := []zap.Field{zap.String("path", path), zap.Int("frame", i)}
		if ras, ok := r.(*render.Rasterizer); ok {
			st := ras.Stats()
			fields = append(fields,
				zap.Int("triangles", st.Triangles),
				zap.Int("clipped", st.TrianglesCut),
				zap.Int("pixels", st.PixelsCovered),
			)
		}
		logger.Info("frame saved", fields...)
	}
	return nil
}

// framePath numbers the output when more than one frame is written:
// frame.png becomes frame-000.png, frame-001.png and so on.
func framePath(path string, i, n int) string {
	if n <= 1 {
		return path
	}
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s-%03d%s", strings.TrimSuffix(path, ext), i, ext)
}
