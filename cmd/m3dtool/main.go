// m3dtool is a CLI utility for inspecting Model 3D (.m3d) files.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/m3d/internal/assets"
	"github.com/Faultbox/m3d/internal/config"
	"github.com/Faultbox/m3d/internal/logger"
	"github.com/Faultbox/m3d/pkg/m3d"
)

func main() {
	flag.Usage = printUsage
	config.ParseFlags()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	command, args := args[0], args[1:]
	logger.Debug("starting", zap.String("command", command), zap.Strings("search_paths", cfg.Assets.SearchPaths))

	var code int
	switch command {
	case "info":
		code = cmdInfo(cfg, args)
	case "materials", "mtl":
		code = cmdMaterials(cfg, args)
	case "faces":
		code = cmdFaces(cfg, args)
	case "preview":
		code = cmdPreview(cfg, args)
	case "validate", "check":
		code = cmdValidate(cfg, args)
	case "config":
		code = cmdConfig(cfg, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		code = 1
	}

	logger.Sync()
	os.Exit(code)
}

func printUsage() {
	fmt.Println(`m3dtool - Model 3D file utility

Usage:
  m3dtool [flags] <command> [options]

Commands:
  info <file.m3d>                Show header, field widths and table sizes
  materials <file.m3d>           List materials and their properties
  faces [-n N] <file.m3d>        List faces (optional limit)
  preview <file.m3d> [out.png]   Show or extract the embedded preview
  validate <file.m3d>...         Decode files and report problems
  config [-save] [path]          Print or save the effective config

Flags:
  -config <path>    Config file (default ./m3dtool.yaml or user config dir)
  -debug            Enable debug logging
  -vertex-max       Decode vertex-max parameter groups
  -path <dir>       Add a model search directory (repeatable)
  -workers <n>      Concurrent decodes for validate

Examples:
  m3dtool info cube.m3d
  m3dtool -path assets faces -n 10 props/crate.m3d
  m3dtool validate models/*.m3d`)
}

func newManager(cfg *config.Config) (*assets.Manager, error) {
	loader := assets.NewDirLoader(cfg.Assets.SearchPaths...)
	return assets.NewManager(loader, assets.Options{
		CacheSize: cfg.Assets.CacheSize,
		Workers:   cfg.Assets.Workers,
		VertexMax: cfg.Decode.VertexMax,
		Logger:    logger.Log,
	})
}

// loadModel decodes a single file named on the command line.
func loadModel(cfg *config.Config, path string) (*m3d.Model, bool) {
	mgr, err := newManager(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil, false
	}
	defer mgr.Close()

	model, err := mgr.Model(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil, false
	}
	return model, true
}

func cmdInfo(cfg *config.Config, args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: m3dtool info <file.m3d>")
		return 1
	}

	model, ok := loadModel(cfg, args[0])
	if !ok {
		return 1
	}
	h := model.Header

	fmt.Printf("File:        %s\n", args[0])
	fmt.Printf("Title:       %s\n", h.Title)
	fmt.Printf("Author:      %s\n", h.Author)
	fmt.Printf("License:     %s\n", h.License)
	fmt.Printf("Description: %s\n", h.Description)
	fmt.Printf("Scale:       %g\n", h.Scale)
	if model.Preview != nil {
		fmt.Printf("Preview:     %d bytes\n", len(model.Preview.Data))
	}
	fmt.Println()

	fmt.Printf("Field widths (0x%08x):\n", h.Descriptor)
	fmt.Println(h.Widths)
	fmt.Println()

	st := model.Stats()
	fmt.Println("Tables:")
	fmt.Printf("  %-12s %d\n", "colors", st.Colors)
	fmt.Printf("  %-12s %d\n", "texcoords", st.TexCoords)
	fmt.Printf("  %-12s %d\n", "vertices", st.Vertices)
	fmt.Printf("  %-12s %d\n", "materials", st.Materials)
	fmt.Printf("  %-12s %d\n", "textures", st.Textures)
	fmt.Printf("  %-12s %d\n", "faces", st.Faces)
	fmt.Printf("  %-12s %d\n", "parameters", st.Parameters)

	if st.Vertices > 0 {
		lo, hi := model.Bounds()
		fmt.Printf("\nBounds: (%.4f, %.4f, %.4f) - (%.4f, %.4f, %.4f)\n", lo[0], lo[1], lo[2], hi[0], hi[1], hi[2])
	}

	if len(h.StringTable) > 0 {
		fmt.Printf("\nString table: %d entries\n", len(h.StringTable))
	}

	if len(model.Skipped) > 0 {
		fmt.Println("\nSkipped chunks:")
		for _, s := range model.Skipped {
			fmt.Printf("  %s at %d (%d bytes)\n", s.Tag, s.Offset, s.Length)
		}
	}
	printWarnings(model)
	return 0
}

func printWarnings(model *m3d.Model) {
	if len(model.Warnings) == 0 {
		return
	}
	fmt.Printf("\nWarnings (%d):\n", len(model.Warnings))
	for _, w := range model.Warnings {
		fmt.Printf("  %v\n", w)
	}
}

func cmdMaterials(cfg *config.Config, args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: m3dtool materials <file.m3d>")
		return 1
	}

	model, ok := loadModel(cfg, args[0])
	if !ok {
		return 1
	}

	if len(model.Materials) == 0 {
		fmt.Println("No materials")
		return 0
	}

	for i, mat := range model.Materials {
		fmt.Printf("[%d] %s\n", i, mat.Name)
		for _, p := range mat.Properties {
			key := p.Key
			if key == "" {
				key = fmt.Sprintf("map_%d", p.ID)
			}
			switch p.Format {
			case m3d.PropertyMap:
				fmt.Printf("    %-10s %s (texture %s)\n", key, p.TextureName, p.Texture)
			default:
				fmt.Printf("    %-10s %v\n", key, p.Value())
			}
		}
	}

	if len(model.Textures) > 0 {
		fmt.Println("\nTextures:")
		for i, tex := range model.Textures {
			fmt.Printf("  [%d] %s\n", i, tex.Name)
		}
	}
	return 0
}

func cmdFaces(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("faces", flag.ExitOnError)
	limit := fs.Int("n", 0, "Limit output to N faces (0 = all)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: m3dtool faces [-n N] <file.m3d>")
		return 1
	}

	model, ok := loadModel(cfg, fs.Arg(0))
	if !ok {
		return 1
	}

	materialName := func(idx m3d.Index) string {
		if i, ok := idx.Get(); ok {
			return model.Materials[i].Name
		}
		return "-"
	}

	for i, f := range model.Faces {
		if *limit > 0 && i >= *limit {
			fmt.Printf("... and %d more\n", len(model.Faces)-i)
			break
		}
		fmt.Printf("%6d  v=%v  t=%v  n=%v  mtl=%s",
			i, f.Vertices, f.TexCoords, f.Normals, materialName(f.Material))
		if p, ok := f.Param.Get(); ok {
			fmt.Printf("  param=%s vmax=%v", model.Parameters[p].Name, f.VertexMax)
		}
		fmt.Println()
	}
	fmt.Printf("\nTotal: %d faces\n", len(model.Faces))
	return 0
}

func cmdPreview(cfg *config.Config, args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: m3dtool preview <file.m3d> [out.png]")
		return 1
	}

	model, ok := loadModel(cfg, args[0])
	if !ok {
		return 1
	}
	if model.Preview == nil {
		fmt.Fprintln(os.Stderr, "Error: file has no preview image")
		return 1
	}

	if len(args) > 1 {
		if err := os.WriteFile(args[1], model.Preview.Data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Printf("Wrote %s (%d bytes)\n", args[1], len(model.Preview.Data))
		return 0
	}

	img, err := model.Preview.Image()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: decoding preview: %v\n", err)
		return 1
	}
	b := img.Bounds()
	fmt.Printf("Preview: %dx%d PNG, %d bytes\n", b.Dx(), b.Dy(), len(model.Preview.Data))
	return 0
}

func cmdValidate(cfg *config.Config, args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: m3dtool validate <file.m3d>...")
		return 1
	}

	mgr, err := newManager(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer mgr.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := mgr.DecodeAll(ctx, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	failed, warned := 0, 0
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
			fmt.Printf("FAIL  %s: %v\n", r.Path, r.Err)
		case len(r.Model.Warnings) > 0:
			warned++
			fmt.Printf("WARN  %s: %d warnings\n", r.Path, len(r.Model.Warnings))
			for _, w := range r.Model.Warnings {
				fmt.Printf("        %v\n", w)
			}
		default:
			fmt.Printf("OK    %s\n", r.Path)
		}
	}

	fmt.Printf("\n%d files, %d failed, %d with warnings\n", len(results), failed, warned)
	if failed > 0 {
		return 1
	}
	return 0
}

func cmdConfig(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	save := fs.Bool("save", false, "Save to the user config directory")
	fs.Parse(args)

	if *save {
		if err := cfg.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Printf("Saved config to %s\n", config.ConfigDir())
		return 0
	}
	if fs.NArg() > 0 {
		if err := cfg.SaveTo(fs.Arg(0)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Printf("Saved config to %s\n", fs.Arg(0))
		return 0
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Printf("# config dir: %s\n%s", config.ConfigDir(), data)
	return 0
}
