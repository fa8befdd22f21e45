package pdf

import "github.com/jung-kurt/gofpdf"

const (
	cellPadding = 1.5
	cellLineH   = 4.0
)

// rowStyle controls how a single grid row is drawn. fillGray of zero means
// no fill; header rows use 240 for section bars and 220 for column heads.
type rowStyle struct {
	bold     bool
	fontSize float64
	fillGray int
	aligns   []string
	pad      float64
}

func (st rowStyle) padding() float64 {
	if st.pad > 0 {
		return st.pad
	}
	return cellPadding
}

// drawGridRow draws one bordered row, wrapping text inside each cell, and
// returns the y coordinate just below it. The row grows to fit the tallest
// cell.
func drawGridRow(doc *gofpdf.Fpdf, tr func(string) string, x, y float64, widths []float64, cells []string, st rowStyle) float64 {
	style := ""
	if st.bold {
		style = "B"
	}
	size := st.fontSize
	if size == 0 {
		size = 9
	}
	doc.SetFont("Helvetica", style, size)
	pad := st.padding()

	lines := make([][]string, len(cells))
	height := cellLineH + 2*pad
	for i, cell := range cells {
		lines[i] = doc.SplitText(tr(cell), widths[i]-2*pad)
		if h := float64(len(lines[i]))*cellLineH + 2*pad; h > height {
			height = h
		}
	}

	cx := x
	for i := range cells {
		if st.fillGray > 0 {
			doc.SetFillColor(st.fillGray, st.fillGray, st.fillGray)
			doc.Rect(cx, y, widths[i], height, "FD")
		} else {
			doc.Rect(cx, y, widths[i], height, "D")
		}

		align := "L"
		if st.aligns != nil && st.aligns[i] != "" {
			align = st.aligns[i]
		}

		ty := y + pad + cellLineH - 1
		for _, line := range lines[i] {
			tx := cx + pad
			switch align {
			case "C":
				tx = cx + (widths[i]-doc.GetStringWidth(line))/2
			case "R":
				tx = cx + widths[i] - pad - doc.GetStringWidth(line)
			}
			doc.Text(tx, ty, line)
			ty += cellLineH
		}
		cx += widths[i]
	}

	return y + height
}

// drawSectionBar draws the numbered section header rows on the marks page.
func drawSectionBar(doc *gofpdf.Fpdf, tr func(string) string, x, y float64, number, title string) float64 {
	return drawGridRow(doc, tr, x, y, []float64{10, tableWidth - 10}, []string{number, title}, rowStyle{
		bold:     true,
		fontSize: 10,
		fillGray: 240,
		pad:      2,
	})
}

// multilineText wraps text to the given width and draws it line by line,
// returning the y of the last baseline drawn.
func multilineText(doc *gofpdf.Fpdf, tr func(string) string, x, y, width, lineH float64, text string) float64 {
	lines := doc.SplitText(tr(text), width)
	for i, line := range lines {
		doc.Text(x, y+float64(i)*lineH, line)
	}
	if len(lines) == 0 {
		return y
	}
	return y + float64(len(lines)-1)*lineH
}

func centeredText(doc *gofpdf.Fpdf, tr func(string) string, centerX, y float64, text string) {
	s := tr(text)
	doc.Text(centerX-doc.GetStringWidth(s)/2, y, s)
}
