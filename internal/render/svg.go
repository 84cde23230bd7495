package render

import (
	"fmt"
	"io"
	"time"

	svg "github.com/ajstarks/svgo"

	"tradejournal/internal/core"
)

const (
	chartW   = 720
	chartH   = 320
	marginL  = 56
	marginR  = 24
	marginT  = 40
	marginB  = 48
	cellW    = 96
	cellH    = 56
	calLeftW = 96
	calTopH  = 56
)

func textStyle(c string, size int, extra string) string {
	return fmt.Sprintf("fill:%s;font-size:%dpx;font-family:sans-serif%s", c, size, extra)
}

// CalendarSVG draws the month heatmap. A month without amounts gets the
// title and a notice instead of a blank grid.
func CalendarSVG(w io.Writer, cal Calendar) error {
	width := calLeftW + 7*cellW + 16
	height := calTopH + len(cal.Weeks)*cellH + 16
	if cal.Empty {
		height = calTopH + cellH
	}
	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	canvas.Text(16, 24, fmt.Sprintf("%s %d", MonthName(cal.Month), cal.Year), textStyle(css(colorText), 16, ";font-weight:bold"))
	if cal.Empty {
		canvas.Text(width/2, calTopH+cellH/2, EmptyMonthNotice, textStyle(css(colorSubtle), 14, ";text-anchor:middle"))
		canvas.End()
		return nil
	}

	for i, d := range Weekdays {
		canvas.Text(calLeftW+i*cellW+cellW/2, calTopH-10, d, textStyle(css(colorSubtle), 13, ";text-anchor:middle"))
	}
	for wi, week := range cal.Weeks {
		y := calTopH + wi*cellH
		canvas.Text(12, y+cellH/2+4, cal.WeekLabel(wi), textStyle(css(colorSubtle), 12, ""))
		for di, c := range week {
			if !c.InMonth {
				continue
			}
			x := calLeftW + di*cellW
			canvas.Rect(x, y, cellW, cellH, fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", c.Color, css(colorBorder)))
			canvas.Text(x+cellW/2, y+22, fmt.Sprint(c.Date.Day()), textStyle(css(colorText), 13, ";text-anchor:middle"))
			if c.HasData {
				f, _ := c.Net.Float64()
				canvas.Text(x+cellW/2, y+42, fmt.Sprintf("%+.2f€", f), textStyle(css(colorText), 12, ";text-anchor:middle;font-weight:bold"))
			}
		}
	}
	canvas.End()
	return nil
}

// TrendSVG draws the cumulative compliance line.
func TrendSVG(w io.Writer, points []TrendPoint) error {
	canvas := svg.New(w)
	canvas.Start(chartW, chartH)
	canvas.Rect(0, 0, chartW, chartH, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	canvas.Text(marginL, 24, "Évolution du respect du plan", textStyle(css(colorLine), 15, ";font-weight:bold"))
	if len(points) == 0 {
		canvas.Text(chartW/2, chartH/2, "Aucune session enregistrée", textStyle(css(colorSubtle), 13, ";text-anchor:middle"))
		canvas.End()
		return nil
	}

	xs, ys := trendSeries(points)
	sx, sy := frame(xs, ys)
	drawYGrid(canvas, sy)

	px := make([]int, len(xs))
	py := make([]int, len(ys))
	for i := range xs {
		px[i], py[i] = int(sx.at(xs[i])), int(sy.at(ys[i]))
	}
	canvas.Polyline(px, py, fmt.Sprintf("fill:none;stroke:%s;stroke-width:2", css(colorLine)))
	for i := range px {
		canvas.Circle(px[i], py[i], 3, fmt.Sprintf("fill:%s", css(colorLine)))
	}
	first, last := points[0].Date, points[len(points)-1].Date
	canvas.Text(marginL, chartH-marginB+20, first.Format("2006-01-02"), textStyle(css(colorSubtle), 11, ""))
	canvas.Text(chartW-marginR, chartH-marginB+20, last.Format("2006-01-02"), textStyle(css(colorSubtle), 11, ";text-anchor:end"))
	canvas.End()
	return nil
}

// BarsSVG draws horizontal bars, one per count.
func BarsSVG(w io.Writer, title string, counts []core.Count) error {
	const rowH, labelW = 28, 320
	height := marginT + max(1, len(counts))*rowH + 16
	canvas := svg.New(w)
	canvas.Start(chartW, height)
	canvas.Rect(0, 0, chartW, height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	canvas.Text(16, 24, title, textStyle(css(colorText), 15, ";font-weight:bold"))
	if len(counts) == 0 {
		canvas.Text(chartW/2, marginT+16, "Aucune donnée", textStyle(css(colorSubtle), 13, ";text-anchor:middle"))
		canvas.End()
		return nil
	}
	top := 0
	for _, c := range counts {
		top = max(top, c.N)
	}
	scale := linear{0, float64(top), 0, float64(chartW - labelW - 64)}
	for i, c := range counts {
		y := marginT + i*rowH
		canvas.Text(16, y+18, c.Label, textStyle(css(colorText), 12, ""))
		bw := int(scale.at(float64(c.N)))
		canvas.Rect(labelW, y+4, max(bw, 1), rowH-8, fmt.Sprintf("fill:%s", css(colorBar)))
		canvas.Text(labelW+bw+6, y+18, fmt.Sprint(c.N), textStyle(css(colorSubtle), 12, ""))
	}
	canvas.End()
	return nil
}

// ScatterSVG plots points with an optional fitted line.
func ScatterSVG(w io.Writer, title string, pts []core.Point, fit *core.Fit) error {
	canvas := svg.New(w)
	canvas.Start(chartW, chartH)
	canvas.Rect(0, 0, chartW, chartH, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	canvas.Text(marginL, 24, title, textStyle(css(colorText), 15, ";font-weight:bold"))
	if len(pts) == 0 {
		canvas.Text(chartW/2, chartH/2, "Aucune donnée", textStyle(css(colorSubtle), 13, ";text-anchor:middle"))
		canvas.End()
		return nil
	}
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p.X, p.Y
	}
	sx, sy := frame(xs, ys)
	drawYGrid(canvas, sy)
	for i := range pts {
		canvas.Circle(int(sx.at(xs[i])), int(sy.at(ys[i])), 4, fmt.Sprintf("fill:%s;fill-opacity:0.7", css(colorLine)))
	}
	if fit != nil {
		x0, x1 := sx.d0, sx.d1
		canvas.Line(int(sx.at(x0)), int(sy.at(fit.At(x0))), int(sx.at(x1)), int(sy.at(fit.At(x1))),
			fmt.Sprintf("stroke:%s;stroke-width:2;stroke-dasharray:6,4", css(colorFit)))
	}
	canvas.End()
	return nil
}

func drawYGrid(canvas *svg.SVG, sy linear) {
	for i := 0; i <= 4; i++ {
		v := sy.d0 + (sy.d1-sy.d0)*float64(i)/4
		y := int(sy.at(v))
		canvas.Line(marginL, y, chartW-marginR, y, fmt.Sprintf("stroke:%s;stroke-width:1", css(colorGrid)))
		canvas.Text(marginL-8, y+4, fmt.Sprintf("%.0f", v), textStyle(css(colorSubtle), 11, ";text-anchor:end"))
	}
}

func trendSeries(points []TrendPoint) (xs, ys []float64) {
	xs = make([]float64, len(points))
	ys = make([]float64, len(points))
	for i, p := range points {
		xs[i] = float64(p.Date.Unix())
		ys[i] = float64(p.Cumulative)
	}
	return xs, ys
}

func frame(xs, ys []float64) (sx, sy linear) {
	x0, x1 := pad(bounds(xs))
	y0, y1 := pad(bounds(ys))
	sx = linear{x0, x1, marginL, chartW - marginR}
	sy = linear{y0, y1, chartH - marginB, marginT}
	return sx, sy
}

var monthNames = []string{
	"Janvier", "Février", "Mars", "Avril", "Mai", "Juin",
	"Juillet", "Août", "Septembre", "Octobre", "Novembre", "Décembre",
}

// MonthName returns the French month name.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}
