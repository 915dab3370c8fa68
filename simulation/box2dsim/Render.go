package box2dsim

import (
	"fmt"

	"github.com/fogleman/gg"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	ViewportW int = 600
	ViewportH int = 400
)

// worldToPixelCoord converts a scene (y, z) coordinate to a pixel
// coordinate of the rendered side view
func (w *World) worldToPixelCoord(p r3.Vec) (float64, float64) {
	pixelsPerMetre := float64(ViewportW) / (2 * w.camera.distance)

	pixelX := float64(ViewportW)/2 + (p.Y-w.camera.target.Y)*pixelsPerMetre
	pixelY := float64(ViewportH)/2 - (p.Z-w.camera.target.Z)*pixelsPerMetre

	return pixelX, pixelY
}

// Render draws a side view of the scene (the y-z plane) looking down the
// x axis and saves it as a PNG image at filename. Nothing is drawn while
// rendering is suppressed. Render returns whether a frame was saved.
func (w *World) Render(filename string) (bool, error) {
	if !w.render {
		return false, nil
	}

	dc := gg.NewContext(ViewportW, ViewportH)
	dc.SetRGB(0.12, 0.12, 0.12)
	dc.Clear()

	pixelsPerMetre := float64(ViewportW) / (2 * w.camera.distance)
	for _, b := range w.bodies {
		pos := w.BasePosition(b.name)
		px, py := w.worldToPixelCoord(pos)

		dc.Push()
		dc.Translate(px, py)
		dc.Rotate(-b.b.GetAngle())
		width := 2 * b.halfExtents.Y * pixelsPerMetre
		height := 2 * b.halfExtents.Z * pixelsPerMetre
		dc.DrawRectangle(-width/2, -height/2, width, height)
		dc.SetRGBA(b.rgba[0], b.rgba[1], b.rgba[2], b.rgba[3])
		dc.Fill()
		dc.Pop()
	}

	if err := dc.SavePNG(filename); err != nil {
		return false, fmt.Errorf("render: could not save frame: %v", err)
	}
	return true, nil
}
