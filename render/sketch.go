package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/gogpu/gg"
	"github.com/soypat/gouge"
	"honnef.co/go/curve"
)

// sketchTolerance is the flattening tolerance of circle outlines relative
// to the tool radius.
const sketchTolerance = 1e-3

// sheetStation is one station profile laid out on the sketch sheet.
type sheetStation struct {
	circle  curve.Circle
	contact curve.Point
	surface curve.Point // on-curve point, where the surface is.
}

// sheet lays out the profile circles of p left to right in station order.
// Each station is drawn in its own plane with the surface normal pointing
// up the sheet.
func sheet(p *gouge.Profile) ([]sheetStation, curve.Rect, error) {
	if p == nil || len(p.Circles) == 0 {
		return nil, curve.Rect{}, errors.New("profile has no circles")
	}
	var rmax float64
	for _, c := range p.Circles {
		rmax = math.Max(rmax, c.Radius)
	}
	spacing := 3 * rmax
	stations := make([]sheetStation, len(p.Circles))
	var bb curve.Rect
	for i, c := range p.Circles {
		off := float64(i) * spacing
		toSheet := func(pt curve.Point) curve.Point { return curve.Pt(off+pt.Y, pt.X) }
		sc := c.Sketch()
		st := sheetStation{
			circle:  curve.Circle{Center: toSheet(sc.Center), Radius: sc.Radius},
			contact: toSheet(c.Plane.ToSketch(c.Contact)),
			surface: toSheet(c.Plane.ToSketch(p.Stations[i].P)),
		}
		stations[i] = st
		box := st.circle.BoundingBox().
			UnionPoint(st.surface.Translate(curve.Vec(-rmax, 0))).
			UnionPoint(st.surface.Translate(curve.Vec(rmax, 0)))
		if i == 0 {
			bb = box
		} else {
			bb = bb.Union(box)
		}
	}
	return stations, bb, nil
}

// WriteSketchSVG writes the station profiles of p as an SVG document.
// Circles are black, surface lines grey and rail contact points red.
func WriteSketchSVG(w io.Writer, p *gouge.Profile) error {
	stations, bb, err := sheet(p)
	if err != nil {
		return err
	}
	margin := 0.1 * math.Max(bb.Width(), bb.Height())
	stroke := p.Radius / 50
	opts := curve.SVGOptions{MaxPrecision: 6}
	var b bytes.Buffer
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%g %g %g %g">`+"\n",
		bb.X0-margin, -bb.Y1-margin, bb.Width()+2*margin, bb.Height()+2*margin)
	fmt.Fprintf(&b, `<g transform="scale(1,-1)" fill="none" stroke-width="%g">`+"\n", stroke)
	for _, st := range stations {
		b.WriteString(`<path stroke="black" d="`)
		curve.WriteSVG(&b, st.circle.PathElements(sketchTolerance*st.circle.Radius), opts)
		b.WriteString(`"/>` + "\n")

		var line curve.BezPath
		line.MoveTo(st.surface.Translate(curve.Vec(-st.circle.Radius*2, 0)))
		line.LineTo(st.surface.Translate(curve.Vec(st.circle.Radius*2, 0)))
		b.WriteString(`<path stroke="grey" d="`)
		curve.WriteSVG(&b, line.Elements(), opts)
		b.WriteString(`"/>` + "\n")

		fmt.Fprintf(&b, `<circle cx="%g" cy="%g" r="%g" fill="red" stroke="none"/>`+"\n",
			st.contact.X, st.contact.Y, 2*stroke)
	}
	b.WriteString("</g>\n</svg>\n")
	_, err = w.Write(b.Bytes())
	return err
}

// SketchPNG draws the station profiles of p to a width by height PNG image.
func SketchPNG(path string, p *gouge.Profile, width, height int) (err error) {
	stations, bb, err := sheet(p)
	if err != nil {
		return err
	}
	if width <= 0 || height <= 0 {
		return errors.New("image size must be positive")
	}
	dc := gg.NewContext(width, height)
	defer func() {
		if cerr := dc.Close(); err == nil {
			err = cerr
		}
	}()
	dc.ClearWithColor(gg.White)

	scale := 0.9 * math.Min(float64(width)/bb.Width(), float64(height)/bb.Height())
	cx, cy := (bb.X0+bb.X1)/2, (bb.Y0+bb.Y1)/2
	toImage := func(pt curve.Point) (x, y float64) {
		return float64(width)/2 + (pt.X-cx)*scale, float64(height)/2 - (pt.Y-cy)*scale
	}
	var errs []error
	dc.SetLineWidth(2)
	for _, st := range stations {
		x, y := toImage(st.circle.Center)
		dc.SetRGB(0, 0, 0)
		dc.DrawCircle(x, y, st.circle.Radius*scale)
		errs = append(errs, dc.Stroke())

		x0, y0 := toImage(st.surface.Translate(curve.Vec(-2*st.circle.Radius, 0)))
		x1, y1 := toImage(st.surface.Translate(curve.Vec(2*st.circle.Radius, 0)))
		dc.SetRGB(0.5, 0.5, 0.5)
		dc.DrawLine(x0, y0, x1, y1)
		errs = append(errs, dc.Stroke())

		x, y = toImage(st.contact)
		dc.SetRGB(0.8, 0.1, 0.1)
		dc.DrawCircle(x, y, 4)
		errs = append(errs, dc.Fill())
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	return dc.SavePNG(path)
}
