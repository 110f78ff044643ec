package batch

import (
	"fmt"
	"image"
	"io"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"voxelspace/internal/camera"
	"voxelspace/internal/export"
	"voxelspace/internal/logging"
	"voxelspace/internal/postprocess"
)

// Source is the camera-side view of a frame cache.
type Source interface {
	Current() *image.NRGBA
	CommitSymbol(sym camera.Symbol) *image.NRGBA
	Pose() camera.Pose
	Wait()
}

// Config holds the output settings for a fly-through.
type Config struct {
	OutputDir string
	Format    export.Format
	CellSize  int
	Workers   int
	// Settle waits for background preloading before each step.
	Settle bool
	// Progress receives periodic progress lines; nil disables them.
	Progress      io.Writer
	ProgressEvery time.Duration
	Logger        *logging.Logger
}

// Result holds the outcome of one frame.
type Result struct {
	Index   int
	Symbol  camera.Symbol
	Pose    camera.Pose
	Image   string
	Success bool
	Error   string
}

type job struct {
	idx int
	img *image.NRGBA
}

// Run renders the committed frame and then one frame per symbol of path,
// committing each move on src. Rendering is sequential; scaling and
// encoding run on a worker pool. Results are in path order, index 0 being
// the starting frame.
func Run(cfg Config, src Source, path []camera.Symbol) []Result {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.ProgressEvery <= 0 {
		cfg.ProgressEvery = 2 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}

	total := len(path) + 1
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	if cfg.Progress != nil {
		go func() {
			ticker := time.NewTicker(cfg.ProgressEvery)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					p := processed.Load()
					if p > 0 {
						elapsed := time.Since(start).Seconds()
						rate := float64(p) / elapsed
						fmt.Fprintf(cfg.Progress, "  [%d/%d] %.1f frames/sec\n", p, total, rate)
					}
				}
			}
		}()
	}

	// Worker pool
	jobs := make(chan job, cfg.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				name, err := saveFrame(cfg, j.idx, j.img)
				r := &results[j.idx]
				r.Image = name
				if err != nil {
					r.Error = err.Error()
					cfg.Logger.Warn("batch: frame %d: %v", j.idx, err)
				} else {
					r.Success = true
				}
				processed.Add(1)
			}
		}()
	}

	// Render in path order; each frame's pose depends on the previous commit.
	// Results are written by exactly one side before the job is queued.
	results[0] = Result{Index: 0, Symbol: camera.None, Pose: src.Pose()}
	jobs <- job{idx: 0, img: src.Current()}
	for i, sym := range path {
		if cfg.Settle {
			src.Wait()
		}
		img := src.CommitSymbol(sym)
		results[i+1] = Result{Index: i + 1, Symbol: sym, Pose: src.Pose()}
		jobs <- job{idx: i + 1, img: img}
	}
	close(jobs)

	wg.Wait()
	close(done)

	return results
}

// FrameName is the file name of frame idx relative to the output directory.
func FrameName(idx int, f export.Format) string {
	return fmt.Sprintf("%05d%s", idx, f.Ext())
}

func saveFrame(cfg Config, idx int, img *image.NRGBA) (string, error) {
	name := FrameName(idx, cfg.Format)
	if cfg.CellSize > 1 {
		img = postprocess.Upscale(img, cfg.CellSize)
	}
	if err := export.Save(filepath.Join(cfg.OutputDir, name), img, cfg.Format); err != nil {
		return name, err
	}
	return name, nil
}
