package render

import (
	"fmt"
	"io"
	"strings"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font/basicfont"
)

// The bitmap face only covers ASCII, so PNG labels avoid accents and the
// euro sign.

var ascii = strings.NewReplacer("é", "e", "û", "u")

// TrendPNG draws the cumulative compliance line as a PNG image.
func TrendPNG(w io.Writer, points []TrendPoint) error {
	dc := gg.NewContext(chartW, chartH)
	dc.SetColor(colorBackdrop)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(colorLine)
	dc.DrawStringAnchored("Evolution du respect du plan", marginL, 20, 0, 0.5)

	if len(points) == 0 {
		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored("Aucune session enregistree", chartW/2, chartH/2, 0.5, 0.5)
		return dc.EncodePNG(w)
	}

	xs, ys := trendSeries(points)
	sx, sy := frame(xs, ys)
	dc.SetLineWidth(1)
	for i := 0; i <= 4; i++ {
		v := sy.d0 + (sy.d1-sy.d0)*float64(i)/4
		y := sy.at(v)
		dc.SetColor(colorGrid)
		dc.DrawLine(marginL, y, chartW-marginR, y)
		dc.Stroke()
		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored(fmt.Sprintf("%.0f", v), marginL-8, y, 1, 0.5)
	}

	dc.SetColor(colorLine)
	dc.SetLineWidth(2)
	dc.NewSubPath()
	for i := range xs {
		x, y := sx.at(xs[i]), sy.at(ys[i])
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.Stroke()
	for i := range xs {
		dc.DrawCircle(sx.at(xs[i]), sy.at(ys[i]), 3)
		dc.Fill()
	}

	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(points[0].Date.Format("2006-01-02"), marginL, chartH-marginB+16, 0, 0.5)
	dc.DrawStringAnchored(points[len(points)-1].Date.Format("2006-01-02"), chartW-marginR, chartH-marginB+16, 1, 0.5)
	return dc.EncodePNG(w)
}

// CalendarPNG draws the month heatmap as a PNG image.
func CalendarPNG(w io.Writer, cal Calendar) error {
	width := calLeftW + 7*cellW + 16
	height := calTopH + len(cal.Weeks)*cellH + 16
	if cal.Empty {
		height = calTopH + cellH
	}
	dc := gg.NewContext(width, height)
	dc.SetColor(colorBackdrop)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	dc.SetColor(colorText)
	dc.DrawStringAnchored(fmt.Sprintf("%s %d", ascii.Replace(MonthName(cal.Month)), cal.Year), 16, 20, 0, 0.5)
	dc.SetColor(colorSubtle)
	if cal.Empty {
		dc.DrawStringAnchored(ascii.Replace(EmptyMonthNotice), float64(width)/2, calTopH+cellH/2, 0.5, 0.5)
		return dc.EncodePNG(w)
	}
	for i, d := range Weekdays {
		dc.DrawStringAnchored(d, float64(calLeftW+i*cellW+cellW/2), calTopH-14, 0.5, 0.5)
	}

	for wi, week := range cal.Weeks {
		y := float64(calTopH + wi*cellH)
		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored(cal.WeekLabel(wi), 12, y+cellH/2, 0, 0.5)
		for di, c := range week {
			if !c.InMonth {
				continue
			}
			x := float64(calLeftW + di*cellW)
			dc.DrawRectangle(x, y, cellW, cellH)
			dc.SetColor(parseHex(c.Color))
			dc.FillPreserve()
			dc.SetColor(colorBorder)
			dc.SetLineWidth(1)
			dc.Stroke()

			dc.SetColor(colorText)
			dc.DrawStringAnchored(fmt.Sprint(c.Date.Day()), x+cellW/2, y+18, 0.5, 0.5)
			if c.HasData {
				f, _ := c.Net.Float64()
				dc.DrawStringAnchored(fmt.Sprintf("%+.2f", f), x+cellW/2, y+38, 0.5, 0.5)
			}
		}
	}
	return dc.EncodePNG(w)
}
