package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"flag"
	"fmt"
	"net/http"
	"os"

	dimaging "github.com/disintegration/imaging"

	"github.com/ironsheep/flag-check-mcp/internal/classify"
	"github.com/ironsheep/flag-check-mcp/internal/geometry"
	"github.com/ironsheep/flag-check-mcp/internal/imaging"
	"github.com/ironsheep/flag-check-mcp/internal/overlay"
	"github.com/ironsheep/flag-check-mcp/internal/synth"
	"github.com/ironsheep/flag-check-mcp/internal/validate"
)

// parseOrUsage parses args and maps every flag error to errUsage; the flag
// package has already printed the problem.
func parseOrUsage(fs *flag.FlagSet, args []string) ([]string, error) {
	pos, err := parseInterspersed(fs, args)
	if err != nil {
		return nil, errUsage
	}
	return pos, nil
}

func runValidate(ctx context.Context, env *cliEnv, args []string) (int, error) {
	fs := newFlagSet(env, "validate", "<image> [-config file] [-export dir]")
	cfgPath := fs.String("config", "", "YAML or JSON threshold overrides")
	exportDir := fs.String("export", "", "directory to write <name>_flag_validation.json into")
	pos, err := parseOrUsage(fs, args)
	if err != nil {
		return exitError, err
	}
	path, err := onePositional(fs, pos, "image")
	if err != nil {
		return exitError, err
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return exitError, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return exitError, err
	}

	v, closeFn, err := buildValidator(ctx, cfg, env.log)
	if err != nil {
		return exitError, err
	}
	defer closeFn()

	out, err := v.Validate(ctx, data)
	if err != nil {
		return exitError, err
	}
	body, err := out.Report.JSON()
	if err != nil {
		return exitError, err
	}
	fmt.Fprintf(env.stdout, "%s\n", body)

	if *exportDir != "" {
		dest := validate.ExportPath(path, *exportDir)
		if err := os.WriteFile(dest, body, 0o644); err != nil {
			return exitError, fmt.Errorf("export report: %w", err)
		}
		env.log.Info("report exported", "path", dest)
	}

	if !out.Passed() {
		return exitFailed, nil
	}
	return exitOK, nil
}

func runMask(_ context.Context, env *cliEnv, args []string) (int, error) {
	fs := newFlagSet(env, "mask", "<image> -o out.png [-scale f] [-config file]")
	outPath := fs.String("o", "", "output PNG path (required)")
	scale := fs.Float64("scale", 1.0, "output scale factor")
	cfgPath := fs.String("config", "", "YAML or JSON threshold overrides")
	pos, err := parseOrUsage(fs, args)
	if err != nil {
		return exitError, err
	}
	path, err := onePositional(fs, pos, "image")
	if err != nil {
		return exitError, err
	}
	if *outPath == "" {
		fs.Usage()
		return exitError, errUsage
	}
	if *scale <= 0 {
		return exitError, fmt.Errorf("scale must be positive, got %g", *scale)
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return exitError, err
	}
	buf, err := decodeFile(path, cfg.MaxImageBytes)
	if err != nil {
		return exitError, err
	}

	layout := geometry.SplitBands(buf.Width, buf.Height)
	res, err := imaging.RenderMask(buf, layout.Middle, classify.New(cfg.Hue).Keep, *scale)
	if err != nil {
		return exitError, err
	}
	data, err := base64.StdEncoding.DecodeString(res.ImageBase64)
	if err != nil {
		return exitError, err
	}
	if err := os.WriteFile(*outPath, data, 0o644); err != nil {
		return exitError, err
	}
	fmt.Fprintf(env.stdout, "%s: %d emblem pixels, %dx%d\n", *outPath, res.PixelCount, res.Width, res.Height)
	return exitOK, nil
}

func runOverlay(_ context.Context, env *cliEnv, args []string) (int, error) {
	fs := newFlagSet(env, "overlay", "<image> -o out.svg [-labels=false] [-embed] [-config file]")
	outPath := fs.String("o", "", "output SVG path (required)")
	labels := fs.Bool("labels", true, "print check verdicts on the drawing")
	embed := fs.Bool("embed", false, "embed the source image beneath the overlay")
	cfgPath := fs.String("config", "", "YAML or JSON threshold overrides")
	pos, err := parseOrUsage(fs, args)
	if err != nil {
		return exitError, err
	}
	path, err := onePositional(fs, pos, "image")
	if err != nil {
		return exitError, err
	}
	if *outPath == "" {
		fs.Usage()
		return exitError, errUsage
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return exitError, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return exitError, err
	}
	buf, err := imaging.Decode(data, cfg.MaxImageBytes)
	if err != nil {
		return exitError, err
	}
	res, err := validate.Run(buf, cfg)
	if err != nil {
		return exitError, err
	}

	opts := overlay.Options{Width: buf.Width, Height: buf.Height, Config: cfg, Labels: *labels}
	if *embed {
		opts.Background = "data:" + http.DetectContentType(data) + ";base64," + base64.StdEncoding.EncodeToString(data)
	}

	var svg bytes.Buffer
	if err := overlay.Render(&svg, res, opts); err != nil {
		return exitError, err
	}
	if err := os.WriteFile(*outPath, svg.Bytes(), 0o644); err != nil {
		return exitError, err
	}
	fmt.Fprintf(env.stdout, "%s: %d spokes drawn\n", *outPath, res.Report.ChakraSpokes.Detected)
	return exitOK, nil
}

func runRender(_ context.Context, env *cliEnv, args []string) (int, error) {
	d := synth.DefaultOptions()
	fs := newFlagSet(env, "render", "-o flag.png [-width n] [-spokes n] [-soften r] [-noise a -seed s]")
	outPath := fs.String("o", "", "output image path, format from extension (required)")
	width := fs.Int("width", d.Width, "image width in pixels")
	height := fs.Int("height", 0, "image height in pixels (0 = width/1.5)")
	spokes := fs.Int("spokes", d.Spokes, "number of spokes")
	rotation := fs.Float64("rotation", 0, "spoke rotation in degrees")
	diameter := fs.Float64("diameter", d.DiameterFraction, "emblem diameter over middle band height")
	soften := fs.Float64("soften", 0, "Gaussian blur radius")
	noise := fs.Int("noise", 0, "uniform noise amplitude per channel")
	seed := fs.Uint64("seed", 1, "noise seed")
	noEmblem := fs.Bool("no-emblem", false, "leave the emblem out")
	pos, err := parseOrUsage(fs, args)
	if err != nil {
		return exitError, err
	}
	if len(pos) != 0 || *outPath == "" {
		fs.Usage()
		return exitError, errUsage
	}

	o := d
	o.Width = *width
	o.Height = *height
	o.Spokes = *spokes
	o.Rotation = *rotation
	o.DiameterFraction = *diameter
	o.Soften = *soften
	o.OmitEmblem = *noEmblem

	img := synth.Render(o)
	if *noise > 0 {
		img = synth.AddNoise(img, *noise, *seed)
	}
	if err := dimaging.Save(img, *outPath); err != nil {
		return exitError, err
	}
	b := img.Bounds()
	fmt.Fprintf(env.stdout, "%s: %dx%d, %d spokes\n", *outPath, b.Dx(), b.Dy(), o.Spokes)
	return exitOK, nil
}

func decodeFile(path string, maxBytes int) (*imaging.PixelBuffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return imaging.Decode(data, maxBytes)
}
