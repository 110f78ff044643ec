package raster

import (
	"image/color"
	"sync"
)

// Run is a vertical span [RowStart, RowEnd) of one color in one column.
type Run struct {
	Column   int
	RowStart int
	RowEnd   int
	Color    color.NRGBA
}

// Reconstruct fills the gaps the projector leaves between depth slices.
// Scanning each column top to bottom, the last written id is carried down
// until a new one appears; the result is coalesced into runs. Rows above the
// first written sample are left to the background.
//
// Columns are split into at most workers bands, one goroutine per band.
// Each band only writes its own result slot, and the output is ordered by
// column regardless of scheduling.
func Reconstruct(cb *ColumnBuffer, reg *ColorRegistry, workers int) []Run {
	if workers < 1 {
		workers = 1
	}
	bands := workers
	if bands > cb.Width {
		bands = cb.Width
	}
	if bands == 0 {
		return nil
	}

	results := make([][]Run, bands)
	var wg sync.WaitGroup
	for b := 0; b < bands; b++ {
		lo := b * cb.Width / bands
		hi := (b + 1) * cb.Width / bands
		wg.Add(1)
		go func() {
			defer wg.Done()
			var out []Run
			for col := lo; col < hi; col++ {
				out = columnRuns(col, cb.Column(col), reg, out)
			}
			results[b] = out
		}()
	}
	wg.Wait()

	n := 0
	for _, r := range results {
		n += len(r)
	}
	runs := make([]Run, 0, n)
	for _, r := range results {
		runs = append(runs, r...)
	}
	return runs
}

func columnRuns(col int, cells []ColorID, reg *ColorRegistry, out []Run) []Run {
	var cur ColorID
	start := 0
	for row, id := range cells {
		if id == 0 || id == cur {
			continue
		}
		if cur != 0 {
			out = append(out, newRun(col, start, row, cur, reg))
		}
		cur, start = id, row
	}
	if cur != 0 {
		out = append(out, newRun(col, start, len(cells), cur, reg))
	}
	return out
}

func newRun(col, start, end int, id ColorID, reg *ColorRegistry) Run {
	c, _ := reg.Lookup(id)
	return Run{Column: col, RowStart: start, RowEnd: end, Color: c}
}
