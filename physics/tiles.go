package physics

type tileRect struct {
	x, y, w, h int
}

// mergeTiles greedily covers the non-zero tiles with rectangles: each
// unprocessed solid tile grows right as far as possible, then down while the
// whole row span stays solid.
func mergeTiles(tiles []int, cols, rows int) []tileRect {
	processed := make([]bool, cols*rows)
	var out []tileRect
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			idx := y*cols + x
			if processed[idx] {
				continue
			}
			if tiles[idx] == 0 {
				processed[idx] = true
				continue
			}

			w := 1
			for x+w < cols {
				idx2 := y*cols + (x + w)
				if processed[idx2] || tiles[idx2] == 0 {
					break
				}
				w++
			}

			h := 1
		heightLoop:
			for y+h < rows {
				for xi := x; xi < x+w; xi++ {
					idx2 := (y+h)*cols + xi
					if processed[idx2] || tiles[idx2] == 0 {
						break heightLoop
					}
				}
				h++
			}

			for yy := y; yy < y+h; yy++ {
				for xx := x; xx < x+w; xx++ {
					processed[yy*cols+xx] = true
				}
			}
			out = append(out, tileRect{x: x, y: y, w: w, h: h})
		}
	}
	return out
}
