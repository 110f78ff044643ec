package raster

import "image/color"

// ColorID is a packed ARGB color. Zero means "nothing written".
type ColorID uint32

// Pack packs c as A<<24 | R<<16 | G<<8 | B.
func Pack(c color.NRGBA) ColorID {
	return ColorID(c.A)<<24 | ColorID(c.R)<<16 | ColorID(c.G)<<8 | ColorID(c.B)
}

// ColumnBuffer holds the projected color id per screen cell.
// Storage is column-major so one column is a contiguous slice.
type ColumnBuffer struct {
	Width  int
	Height int
	Cells  []ColorID
}

// NewColumnBuffer allocates an all-zero buffer.
func NewColumnBuffer(w, h int) *ColumnBuffer {
	return &ColumnBuffer{Width: w, Height: h, Cells: make([]ColorID, w*h)}
}

// Reset zeroes every cell.
func (cb *ColumnBuffer) Reset() {
	clear(cb.Cells)
}

// Column returns the cells of column col, top row first.
func (cb *ColumnBuffer) Column(col int) []ColorID {
	off := col * cb.Height
	return cb.Cells[off : off+cb.Height]
}

func (cb *ColumnBuffer) At(col, row int) ColorID {
	return cb.Cells[col*cb.Height+row]
}

func (cb *ColumnBuffer) Set(col, row int, id ColorID) {
	cb.Cells[col*cb.Height+row] = id
}

// ColorRegistry resolves color ids seen during one render.
// Writes happen only during projection; reconstruction reads it concurrently.
type ColorRegistry struct {
	colors map[ColorID]color.NRGBA
}

func NewColorRegistry() *ColorRegistry {
	return &ColorRegistry{colors: make(map[ColorID]color.NRGBA)}
}

// Register records c under id. Registering an id twice is a no-op.
func (r *ColorRegistry) Register(id ColorID, c color.NRGBA) {
	if _, ok := r.colors[id]; !ok {
		r.colors[id] = c
	}
}

// Lookup returns the color registered for id.
func (r *ColorRegistry) Lookup(id ColorID) (color.NRGBA, bool) {
	c, ok := r.colors[id]
	return c, ok
}

func (r *ColorRegistry) Len() int {
	return len(r.colors)
}
