// Command gouge cuts tapered grooves along sketch curves into a solid body
// and writes the result as STL, images and G-code.
//
// Usage:
//
//	gouge -job job.json -out out/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/soypat/gouge"
	"github.com/soypat/gouge/gcode"
	"github.com/soypat/gouge/kernel"
	"github.com/soypat/gouge/render"
)

func main() {
	var (
		jobPath  = flag.String("job", "-", "JSON job file, - for standard input")
		cutBody  = flag.Bool("cut", true, "cut the grooves into the body; when false only profiles, sketches and G-code are written")
		outDir   = flag.String("out", ".", "output directory")
		cells    = flag.Int("cells", 200, "marching cubes cells along the longest side of the body")
		samples  = flag.Int("samples", 24, "tool samples between stations")
		preview  = flag.Bool("preview", true, "write a shaded PNG preview of the cut body")
		sketches = flag.Bool("sketch", true, "write station profile sketches and depth plots for every cut")
		gcodeOut = flag.Bool("gcode", false, "write a G-code program following every cut")
		safeZ    = flag.Float64("rapid-clearance", 5, "Z height of rapid moves in the G-code program")
		verbose  = flag.Bool("v", false, "log debug output")
	)
	flag.Parse()
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	gouge.SetLogger(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	err := run(ctx, runOptions{
		jobPath:  *jobPath,
		outDir:   *outDir,
		cells:    *cells,
		samples:  *samples,
		preview:  *preview,
		sketches: *sketches,
		gcode:    *gcodeOut,
		safeZ:    *safeZ,
		debug:    *verbose,
		cut:      *cutBody,
	}, log)
	if err != nil {
		log.Error("gouge failed", slog.Any("err", err))
		os.Exit(1)
	}
}

type runOptions struct {
	jobPath  string
	outDir   string
	cells    int
	samples  int
	preview  bool
	sketches bool
	gcode    bool
	safeZ    float64
	debug    bool
	cut      bool
}

func run(ctx context.Context, opts runOptions, log *slog.Logger) error {
	var r io.Reader = os.Stdin
	if opts.jobPath != "-" {
		fp, err := os.Open(opts.jobPath)
		if err != nil {
			return err
		}
		defer fp.Close()
		r = fp
	}
	j, err := decodeJob(r)
	if err != nil {
		return err
	}
	cfg, err := j.Tool.config()
	if err != nil {
		return err
	}
	cfg.Debug = cfg.Debug || opts.debug
	sel, err := j.selection()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(opts.outDir, 0o777); err != nil {
		return err
	}

	k := kernel.New()
	k.Samples = opts.samples
	k.EdgeRadius = j.Tool.EdgeRadius
	var cutter gouge.Kernel
	if opts.cut {
		cutter = k
	}
	report, err := gouge.Run(ctx, sel, cutter, cfg)
	if report == nil {
		return err
	}
	runErr := err
	var failed int
	for _, e := range report.Errors {
		if errors.Is(e, gouge.ErrCutWarning) {
			log.Warn("cut warning", slog.Any("err", e))
			continue
		}
		failed++
		log.Error("curve not cut", slog.Any("err", e))
	}

	var program gcode.Program
	for _, cut := range report.Cuts {
		name := cut.Feature.Name
		if name == "" {
			name = fmt.Sprintf("Profile%d", cut.Curve+1)
		}
		if opts.sketches {
			if err := writeSketches(opts.outDir, name, cut.Profile); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			strip, err := k.Loft(cut.Profile)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			path := filepath.Join(opts.outDir, name+"_strip.stl")
			if err := render.CreateSTL(path, render.NewSliceRenderer(render.StripTriangles(strip, 1e-12))); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
		program.Add(cut.Profile, opts.samples, 1e-3*cut.Profile.Radius)
	}

	if len(report.Cuts) > 0 && opts.gcode {
		gopt := gcode.DefaultOptions()
		gopt.SafeZ = opts.safeZ
		if err := writeGcode(filepath.Join(opts.outDir, "gouge.nc"), &program, gopt); err != nil {
			return err
		}
	}
	if len(report.Cuts) > 0 && opts.cut {
		stl := filepath.Join(opts.outDir, "body.stl")
		mc, err := render.NewMarchingCubes(report.Body, opts.cells)
		if err != nil {
			return err
		}
		if err := render.CreateSTL(stl, mc); err != nil {
			return err
		}
		log.Info("wrote body", slog.String("path", stl))
		if opts.preview {
			png := filepath.Join(opts.outDir, "body.png")
			if err := render.PreviewPNG(stl, png, render.DefaultView()); err != nil {
				return err
			}
		}
	}
	log.Info("done", slog.Int("cuts", len(report.Cuts)), slog.Int("failed", failed))
	if runErr != nil {
		return runErr
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d curves failed", failed, len(sel.Sketches[0].Curves))
	}
	return nil
}

func writeSketches(dir, name string, p *gouge.Profile) error {
	fp, err := os.Create(filepath.Join(dir, name+"_profiles.svg"))
	if err != nil {
		return err
	}
	defer fp.Close()
	if err := render.WriteSketchSVG(fp, p); err != nil {
		return err
	}
	if err := fp.Close(); err != nil {
		return err
	}
	if err := render.SketchPNG(filepath.Join(dir, name+"_profiles.png"), p, 900, 300); err != nil {
		return err
	}
	return render.PlotDepth(filepath.Join(dir, name+"_depth.png"), p)
}

func writeGcode(path string, pg *gcode.Program, opt gcode.Options) error {
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fp.Close()
	if err := pg.Write(fp, opt); err != nil {
		return err
	}
	return fp.Close()
}
