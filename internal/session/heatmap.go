// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package session

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// FullScale is the largest raw reading the insole ADC reports.
const FullScale = 1023.0

// Heat map canvas size in pixels.
const (
	HeatmapWidth  = 206
	HeatmapHeight = 262
)

var heatmapBackground = color.RGBA{0x3a, 0x3a, 0x3c, 0xff}

type zone struct {
	label  string
	cx, cy float64
	r      float64
}

// drawn back to front: heel, arch, toe
var zones = [3]zone{
	{label: "TOE", cx: 90, cy: 100, r: 45},
	{label: "ARCH", cx: 150, cy: 100, r: 45},
	{label: "HEEL", cx: 135, cy: 220, r: 45},
}

var drawOrder = [3]int{2, 1, 0}

// ZoneColor maps a raw zone reading to its heat map colour: red for a
// heavily loaded zone (low reading) through yellow for an unloaded one.
func ZoneColor(v float64) color.RGBA {
	raw := math.Min(math.Max(v/FullScale, 0), 1)
	if math.IsNaN(raw) {
		raw = 1
	}
	hue := raw * 60
	// HSL(hue, 100%, 50%) with hue in [0, 60] is (1, hue/60, 0) in RGB.
	return color.RGBA{R: 0xff, G: uint8(math.Round(255 * hue / 60)), B: 0, A: 0xff}
}

// RenderHeatmap draws the three zone averages (toe, arch, heel) as radial
// blobs on a dark card with zone labels.
func RenderHeatmap(pressure [3]int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, HeatmapWidth, HeatmapHeight))
	draw.Draw(img, img.Bounds(), &image.Uniform{heatmapBackground}, image.Point{}, draw.Src)

	for _, i := range drawOrder {
		z := zones[i]
		c := ZoneColor(float64(pressure[i]))
		paintBlob(img, z, c)
	}

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{color.White},
		Face: basicfont.Face7x13,
	}
	for _, z := range zones {
		w := drawer.MeasureString(z.label)
		drawer.Dot = fixed.Point26_6{
			X: fixed.I(int(z.cx)) - w/2,
			Y: fixed.I(int(z.cy) + 4),
		}
		drawer.DrawString(z.label)
	}
	return img
}

// EncodeHeatmapPNG renders the heat map and writes it as PNG.
func EncodeHeatmapPNG(w io.Writer, pressure [3]int) error {
	return png.Encode(w, RenderHeatmap(pressure))
}

// paintBlob composites c over img with opacity falling linearly from the
// centre to the zone radius.
func paintBlob(img *image.RGBA, z zone, c color.RGBA) {
	x0 := int(math.Max(0, z.cx-z.r))
	x1 := int(math.Min(float64(HeatmapWidth), z.cx+z.r+1))
	y0 := int(math.Max(0, z.cy-z.r))
	y1 := int(math.Min(float64(HeatmapHeight), z.cy+z.r+1))

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			d := math.Hypot(float64(x)-z.cx, float64(y)-z.cy)
			a := 1 - d/z.r
			if a <= 0 {
				continue
			}
			dst := img.RGBAAt(x, y)
			img.SetRGBA(x, y, color.RGBA{
				R: mix(dst.R, c.R, a),
				G: mix(dst.G, c.G, a),
				B: mix(dst.B, c.B, a),
				A: 0xff,
			})
		}
	}
}

func mix(dst, src uint8, a float64) uint8 {
	return uint8(math.Round(float64(dst)*(1-a) + float64(src)*a))
}
