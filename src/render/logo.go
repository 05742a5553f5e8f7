package render

import (
	"fmt"
	"image"
	"io"
	"os"

	"github.com/fogleman/gg"
)

// LogoSize 内置 logo 的边长(像素)
const LogoSize = 240

// Logo 绘制内置 logo: 一辆自行车与三根柱状条
func Logo(size int) image.Image {
	s := float64(size)
	dc := gg.NewContext(size, size)

	dc.SetHexColor("#f4f8fc")
	dc.DrawRoundedRectangle(0, 0, s, s, s*0.12)
	dc.Fill()

	// 柱状条
	dc.SetHexColor("#ff8c00")
	for i, h := range []float64{0.18, 0.28, 0.4} {
		x := s*0.56 + float64(i)*s*0.12
		dc.DrawRectangle(x, s*0.45-s*h, s*0.08, s*h)
	}
	dc.Fill()

	// 车轮
	dc.SetHexColor("#00008b")
	dc.SetLineWidth(s * 0.035)
	r := s * 0.15
	back, front := gg.Point{X: s * 0.28, Y: s * 0.7}, gg.Point{X: s * 0.72, Y: s * 0.7}
	dc.DrawCircle(back.X, back.Y, r)
	dc.DrawCircle(front.X, front.Y, r)
	dc.Stroke()

	// 车架
	dc.SetHexColor("#0000ff")
	pedal := gg.Point{X: s * 0.48, Y: s * 0.7}
	seat := gg.Point{X: s * 0.4, Y: s * 0.5}
	bar := gg.Point{X: s * 0.64, Y: s * 0.5}
	dc.MoveTo(back.X, back.Y)
	dc.LineTo(pedal.X, pedal.Y)
	dc.LineTo(bar.X, bar.Y)
	dc.LineTo(seat.X, seat.Y)
	dc.LineTo(back.X, back.Y)
	dc.MoveTo(pedal.X, pedal.Y)
	dc.LineTo(seat.X, seat.Y)
	dc.MoveTo(bar.X, bar.Y)
	dc.LineTo(front.X, front.Y)
	dc.Stroke()

	return dc.Image()
}

// WriteLogo 输出 logo PNG; path 非空时直接使用该文件
func WriteLogo(w io.Writer, path string) error {
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open logo: %w", err)
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err
	}

	dc := gg.NewContextForImage(Logo(LogoSize))
	return dc.EncodePNG(w)
}
