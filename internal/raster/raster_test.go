package raster

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelspace/internal/camera"
	"voxelspace/internal/terrain"
)

var (
	sky   = color.NRGBA{R: 130, G: 180, B: 230, A: 255}
	grass = color.NRGBA{R: 40, G: 160, B: 40, A: 255}
	dirt  = color.NRGBA{R: 120, G: 90, B: 50, A: 255}
	sand  = color.NRGBA{R: 210, G: 190, B: 130, A: 255}
	rock  = color.NRGBA{R: 90, G: 90, B: 100, A: 255}
)

// exampleMaps is a 2x2 world with a single raised cell at (1,1).
func exampleMaps(t *testing.T) (*terrain.HeightMap, *terrain.ColorMap) {
	t.Helper()
	hm, err := terrain.NewHeightMap(2, 2, []uint16{0, 0, 0, 10})
	require.NoError(t, err)
	cm, err := terrain.NewColorMap(2, 2, []color.NRGBA{grass, dirt, sand, rock})
	require.NoError(t, err)
	return hm, cm
}

func generated(t *testing.T) (*terrain.HeightMap, *terrain.ColorMap) {
	t.Helper()
	hm, cm, err := terrain.Generate(64, 11)
	require.NoError(t, err)
	return hm, cm
}

func examplePose() camera.Pose {
	// Above cell (0,0), looking toward cell (1,1).
	return camera.Pose{X: 0.5, Y: 0.5, Z: 20, Angle: 225, ZFar: 1.5}
}

func exampleScreen() Screen {
	return Screen{Width: 4, Height: 40, FieldOfView: 90, Scale: 1}
}

func topRow(cb *ColumnBuffer, col int) int {
	for row, id := range cb.Column(col) {
		if id != 0 {
			return row
		}
	}
	return -1
}

func TestProjectExampleScenario(t *testing.T) {
	hm, cm := exampleMaps(t)
	cb, reg := Project(hm, cm, examplePose(), exampleScreen())

	// Column 2 is the one whose ray crosses the raised cell.
	assert.Equal(t, 10, topRow(cb, 2))
	assert.Equal(t, Pack(rock), cb.At(2, 10))
	for _, col := range []int{0, 1, 3} {
		assert.Equal(t, 20, topRow(cb, col), "col %d", col)
		assert.Less(t, topRow(cb, 2), topRow(cb, col))
	}
	assert.Equal(t, Pack(dirt), cb.At(0, 20))
	assert.Equal(t, Pack(sand), cb.At(3, 20))

	got, ok := reg.Lookup(Pack(rock))
	require.True(t, ok)
	assert.Equal(t, rock, got)
}

func TestReconstructExampleScenarioFillsToBottom(t *testing.T) {
	hm, cm := exampleMaps(t)
	cb, reg := Project(hm, cm, examplePose(), exampleScreen())

	runs := Reconstruct(cb, reg, 2)
	require.Len(t, runs, 4)
	assert.Equal(t, Run{Column: 2, RowStart: 10, RowEnd: 40, Color: rock}, runs[2])
	assert.Equal(t, Run{Column: 0, RowStart: 20, RowEnd: 40, Color: dirt}, runs[0])

	r, err := NewRenderer(hm, cm, exampleScreen(), Options{Workers: 2, Background: sky})
	require.NoError(t, err)
	img := r.Render(examplePose())
	for row := 0; row < 40; row++ {
		want := sky
		if row >= 10 {
			want = rock
		}
		assert.Equal(t, want, img.NRGBAAt(2, row), "row %d", row)
	}
}

func TestOcclusionNearerSliceWins(t *testing.T) {
	hm, cm := generated(t)
	screen := Screen{Width: 48, Height: 36, FieldOfView: 90, Scale: 60, MaxDistance: 200}
	pose := camera.Pose{X: 10, Y: 10, Z: 180, Angle: 30, Horizon: 10}

	cb := NewColumnBuffer(screen.Width, screen.Height)
	p := newProjection(cb, NewColorRegistry(), hm, cm, pose, screen)

	prevY := make([]int, screen.Width)
	prevCells := make([]ColorID, len(cb.Cells))
	slices := 0
	for z, dz := depthStart, depthStep; z < p.far; z, dz = z+dz, dz+depthStepGrowth {
		copy(prevY, p.ybuf)
		copy(prevCells, cb.Cells)
		p.slice(z)
		slices++

		for col := 0; col < screen.Width; col++ {
			require.LessOrEqual(t, p.ybuf[col], prevY[col], "col %d z %.2f", col, z)
			// Nothing at or below the previous claim may change.
			for row := max(prevY[col], 0); row < screen.Height; row++ {
				i := col*screen.Height + row
				require.Equal(t, prevCells[i], cb.Cells[i], "col %d row %d z %.2f", col, row, z)
			}
		}
	}
	assert.Greater(t, slices, 100)
}

func TestReconstructFillsEveryGap(t *testing.T) {
	hm, cm := generated(t)
	screen := Screen{Width: 64, Height: 48, FieldOfView: 70, Scale: 80, MaxDistance: 300}
	pose := camera.Pose{X: 5, Y: 40, Z: 200, Angle: 120, Horizon: 12}

	cb, reg := Project(hm, cm, pose, screen)
	runs := Reconstruct(cb, reg, 4)

	byCol := make(map[int][]Run)
	for _, r := range runs {
		byCol[r.Column] = append(byCol[r.Column], r)
	}

	painted := 0
	for col := 0; col < screen.Width; col++ {
		first := topRow(cb, col)
		cr := byCol[col]
		if first < 0 {
			assert.Empty(t, cr, "col %d has no samples", col)
			continue
		}
		painted++
		require.NotEmpty(t, cr)
		assert.Equal(t, first, cr[0].RowStart)
		assert.Equal(t, screen.Height, cr[len(cr)-1].RowEnd)
		for i, r := range cr {
			assert.Less(t, r.RowStart, r.RowEnd)
			c, ok := reg.Lookup(cb.At(col, r.RowStart))
			require.True(t, ok)
			assert.Equal(t, c, r.Color)
			if i > 0 {
				assert.Equal(t, cr[i-1].RowEnd, r.RowStart, "gap in col %d", col)
				assert.NotEqual(t, cr[i-1].Color, r.Color)
			}
		}
	}
	assert.Greater(t, painted, 0)
}

func TestReconstructIsIndependentOfWorkers(t *testing.T) {
	hm, cm := generated(t)
	screen := Screen{Width: 37, Height: 29, Scale: 50, MaxDistance: 150}
	cb, reg := Project(hm, cm, camera.Pose{X: 1, Y: 2, Z: 160, Angle: 300}, screen)

	want := Reconstruct(cb, reg, 1)
	for _, w := range []int{0, 2, 3, 8, 64} {
		assert.Equal(t, want, Reconstruct(cb, reg, w), "workers %d", w)
	}
}

func TestReconstructLeavesEmptyColumnsAlone(t *testing.T) {
	cb := NewColumnBuffer(3, 5)
	reg := NewColorRegistry()
	id := Pack(grass)
	reg.Register(id, grass)
	cb.Set(1, 2, id)

	runs := Reconstruct(cb, reg, 3)
	assert.Equal(t, []Run{{Column: 1, RowStart: 2, RowEnd: 5, Color: grass}}, runs)
}

func TestRenderIsDeterministic(t *testing.T) {
	hm, cm := generated(t)
	screen := Screen{Width: 80, Height: 60, Scale: 90, MaxDistance: 250}
	r, err := NewRenderer(hm, cm, screen, Options{Workers: 4, Background: sky})
	require.NoError(t, err)

	pose := camera.Pose{X: 12.3, Y: 45.6, Z: 190, Angle: 77, Horizon: 20, Pitch: 5}
	a := r.Render(pose)
	b := r.Render(pose)
	assert.Equal(t, a.Pix, b.Pix)
}

func TestOffscreenRowsAreDropped(t *testing.T) {
	hm, cm := generated(t)
	screen := Screen{Width: 16, Height: 12, Scale: 100, MaxDistance: 100}

	// Terrain projects entirely below the screen.
	cb, reg := Project(hm, cm, camera.Pose{Z: 100000}, screen)
	assert.Equal(t, make([]ColorID, len(cb.Cells)), cb.Cells)
	assert.Zero(t, reg.Len())

	// Camera underground: every row is negative.
	cb, _ = Project(hm, cm, camera.Pose{Z: -100000}, screen)
	assert.Equal(t, make([]ColorID, len(cb.Cells)), cb.Cells)
}

func TestPitchShiftsTerrainDown(t *testing.T) {
	flat, err := terrain.NewHeightMap(1, 1, []uint16{0})
	require.NoError(t, err)
	cm, err := terrain.NewColorMap(1, 1, []color.NRGBA{grass})
	require.NoError(t, err)
	screen := Screen{Width: 4, Height: 200, Scale: 100, MaxDistance: 300}

	level, _ := Project(flat, cm, camera.Pose{Z: 50}, screen)
	up, _ := Project(flat, cm, camera.Pose{Z: 50, Pitch: 10}, screen)

	assert.Greater(t, topRow(up, 0), topRow(level, 0))
	assert.Greater(t, topRow(level, 0), 0)
}

func TestTransparentCellsAreHoles(t *testing.T) {
	for _, hole := range []color.NRGBA{{}, {R: 200, G: 10, B: 40, A: 0}} {
		hm, err := terrain.NewHeightMap(1, 1, []uint16{0})
		require.NoError(t, err)
		cm, err := terrain.NewColorMap(1, 1, []color.NRGBA{hole})
		require.NoError(t, err)

		r, err := NewRenderer(hm, cm, Screen{Width: 4, Height: 8, Scale: 10, MaxDistance: 50}, Options{Background: sky})
		require.NoError(t, err)
		img := r.Render(camera.Pose{Z: 5})
		for y := 0; y < 8; y++ {
			for x := 0; x < 4; x++ {
				assert.Equal(t, sky, img.NRGBAAt(x, y), "hole %v at %d,%d", hole, x, y)
			}
		}
	}
}

func TestFartherTerrainShowsThroughHoles(t *testing.T) {
	// Looking along -Y from cell 3: the raised cell 2 is transparent, so the
	// ground at cell 1 is the nearest thing drawn in the column.
	hm, err := terrain.NewHeightMap(1, 4, []uint16{0, 0, 25, 0})
	require.NoError(t, err)
	hidden := color.NRGBA{R: 255}
	cm, err := terrain.NewColorMap(1, 4, []color.NRGBA{grass, grass, hidden, grass})
	require.NoError(t, err)

	screen := Screen{Width: 1, Height: 80, FieldOfView: 10, Scale: 2}
	pose := camera.Pose{X: 0.5, Y: 3.5, Z: 20, Horizon: 20, ZFar: 3}
	cb, reg := Project(hm, cm, pose, screen)

	// An opaque cell 2 would claim row 10; the ground behind it lands on 40.
	assert.Equal(t, 40, topRow(cb, 0))
	assert.Equal(t, Pack(grass), cb.At(0, 40))
	_, ok := reg.Lookup(Pack(hidden))
	assert.False(t, ok)
}

func TestNewRendererValidation(t *testing.T) {
	hm, cm := exampleMaps(t)

	_, err := NewRenderer(nil, cm, exampleScreen(), Options{})
	assert.ErrorIs(t, err, ErrNilMap)
	_, err = NewRenderer(hm, nil, exampleScreen(), Options{})
	assert.ErrorIs(t, err, ErrNilMap)

	for _, s := range []Screen{
		{Width: 0, Height: 10},
		{Width: 10, Height: -1},
		{Width: 10, Height: 10, FieldOfView: 180},
		{Width: 10, Height: 10, Scale: -2},
	} {
		_, err = NewRenderer(hm, cm, s, Options{})
		assert.ErrorIs(t, err, ErrInvalidScreen, "%+v", s)
	}
}

func TestScreenResolvesPoseOverrides(t *testing.T) {
	s := Screen{Width: 1, Height: 1, MaxDistance: 500, FieldOfView: 60, Scale: 100}

	assert.Equal(t, 500.0, s.far(camera.Pose{}))
	assert.Equal(t, 200.0, s.far(camera.Pose{ZFar: 200}))
	assert.Equal(t, 500.0, s.far(camera.Pose{ZFar: 900}))
	assert.Equal(t, 900.0, Screen{}.far(camera.Pose{ZFar: 900}))
	assert.Equal(t, DefaultDistance, Screen{}.far(camera.Pose{}))

	assert.Equal(t, 60.0, s.fov(camera.Pose{}))
	assert.Equal(t, 75.0, s.fov(camera.Pose{FieldOfView: 75}))
	for _, bad := range []float64{180, 200, 360} {
		assert.Equal(t, 60.0, s.fov(camera.Pose{FieldOfView: bad}), "pose fov %v", bad)
	}
	assert.Equal(t, DefaultFieldOfView, Screen{}.fov(camera.Pose{}))

	assert.Equal(t, 100.0, s.scale(camera.Pose{}))
	assert.Equal(t, 40.0, s.scale(camera.Pose{Scale: 40}))
	assert.Equal(t, DefaultScale, Screen{}.scale(camera.Pose{}))
}
