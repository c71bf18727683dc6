package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeTiles(t *testing.T) {
	cases := []struct {
		name  string
		tiles []int
		cols  int
		rows  int
		want  []tileRect
	}{
		{
			name:  "empty",
			tiles: []int{0, 0, 0, 0},
			cols:  2, rows: 2,
		},
		{
			name:  "solid_block",
			tiles: []int{1, 1, 1, 1, 1, 1},
			cols:  3, rows: 2,
			want: []tileRect{{x: 0, y: 0, w: 3, h: 2}},
		},
		{
			name: "l_shape",
			tiles: []int{
				1, 0, 0,
				1, 0, 0,
				1, 1, 1,
			},
			cols: 3, rows: 3,
			want: []tileRect{
				{x: 0, y: 0, w: 1, h: 3},
				{x: 1, y: 2, w: 2, h: 1},
			},
		},
		{
			name: "row_span_stops_at_gap",
			tiles: []int{
				1, 1, 1,
				1, 0, 1,
			},
			cols: 3, rows: 2,
			want: []tileRect{
				{x: 0, y: 0, w: 3, h: 1},
				{x: 0, y: 1, w: 1, h: 1},
				{x: 2, y: 1, w: 1, h: 1},
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := mergeTiles(c.tiles, c.cols, c.rows)
			assert.Equal(t, c.want, got)

			covered := 0
			for _, r := range got {
				covered += r.w * r.h
			}
			solid := 0
			for _, v := range c.tiles {
				if v != 0 {
					solid++
				}
			}
			assert.Equal(t, solid, covered, "every solid tile is covered exactly once")
		})
	}
}
