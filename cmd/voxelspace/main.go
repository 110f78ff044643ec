package main

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"voxelspace/internal/batch"
	"voxelspace/internal/camera"
	"voxelspace/internal/config"
	"voxelspace/internal/export"
	"voxelspace/internal/frame"
	"voxelspace/internal/logging"
	"voxelspace/internal/metrics"
	"voxelspace/internal/raster"
	"voxelspace/internal/terrain"
)

const defaultPath = "wwwwwwww aaaa wwwwwwww dddd wwww rrrr wwww ffff tt gg"

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config file (.json, .yaml)")
	heightMap := flag.String("height", "", "Height map image (default: generated terrain)")
	colorMap := flag.String("color", "", "Color map image (default: generated terrain)")
	outputDir := flag.String("output", "", "Output directory (default: frames)")
	pathKeys := flag.String("path", defaultPath, "Movement keys: w/s move, a/d turn, r/f look, t/g pitch")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	format := flag.String("format", "", "Output format: webp or png (default: webp)")
	seed := flag.Int64("seed", 0, "Terrain generator seed (default: 1)")
	metricsAddr := flag.String("metrics", "", "Serve Prometheus metrics on this address, e.g. :2112")
	tick := flag.Int("tick", 0, "Simulated milliseconds per movement step (default: 50)")
	logLevel := flag.String("log", "", "Log level: debug, info, warn, error")
	settle := flag.Bool("settle", false, "Wait for preloading before every step")

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		HeightMap:   *heightMap,
		ColorMap:    *colorMap,
		OutputDir:   *outputDir,
		Format:      *format,
		Workers:     *workers,
		Seed:        *seed,
		TickMS:      *tick,
		MetricsAddr: *metricsAddr,
		LogLevel:    *logLevel,
	})

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logging.SetLevel(level)

	outFormat, err := export.ParseFormat(cfg.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	path, err := camera.ParseSymbols(*pathKeys)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing path: %v\n", err)
		os.Exit(1)
	}

	background, err := cfg.BackgroundColor()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	hm, cm, err := loadTerrain(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading terrain: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Terrain: %dx%d\n", hm.Width, hm.Height)

	renderer, err := raster.NewRenderer(hm, cm, cfg.Screen(), raster.Options{
		Workers:    cfg.Workers,
		Background: background,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	collector := metrics.New(reg)
	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler(reg))
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("metrics server: %v", err)
			}
		}()
		fmt.Printf("Metrics: http://%s/metrics\n", cfg.MetricsAddr)
	}

	cache := frame.New(renderer, cfg.StartPose(), frame.Options{
		Tick:        cfg.Tick(),
		AutoPreload: true,
		Metrics:     collector,
	})
	defer cache.Close()
	cache.Preload()

	fmt.Printf("Voxel space fly-through → %s\n", outFormat)
	fmt.Printf("Screen: %dx%d (cell %d), Steps: %d, Workers: %d\n",
		cfg.ScreenWidth, cfg.ScreenHeight, cfg.CellSize, len(path), cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	results := batch.Run(batch.Config{
		OutputDir: cfg.OutputDir,
		Format:    outFormat,
		CellSize:  cfg.CellSize,
		Workers:   cfg.Workers,
		Settle:    *settle,
		Progress:  os.Stdout,
	}, cache, path)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, failed := 0, 0
	var errs []batch.Result
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failed++
			errs = append(errs, r)
		}
	}

	snap := collector.Snapshot()
	fmt.Printf("Frames: %d/%d\n", success, len(results))
	fmt.Printf("Cache: %d hits, %d misses, %d rendered (%d preloaded)\n",
		snap.Hits, snap.Misses, snap.Rendered, snap.Preloaded)

	if len(errs) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		limit := min(len(errs), 20)
		for _, e := range errs[:limit] {
			fmt.Printf("  frame %d (%s): %s\n", e.Index, e.Symbol, e.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	os.MkdirAll(cfg.OutputDir, 0755)
	if err := batch.WriteManifest(manifestPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 {
		cache.Close()
		os.Exit(1)
	}
}

// loadTerrain reads the configured maps, or generates terrain when none are set.
func loadTerrain(cfg *config.Config) (*terrain.HeightMap, *terrain.ColorMap, error) {
	if !cfg.Maps() {
		if cfg.HeightMap != "" || cfg.ColorMap != "" {
			return nil, nil, fmt.Errorf("both -height and -color are required")
		}
		logging.Info("generating %dx%d terrain, seed %d", cfg.MapSize, cfg.MapSize, cfg.Seed)
		return terrain.Generate(cfg.MapSize, cfg.Seed)
	}

	return terrain.LoadMaps(cfg.HeightMap, cfg.ColorMap, terrain.LoadOptions{Fit: cfg.FitMaps})
}
