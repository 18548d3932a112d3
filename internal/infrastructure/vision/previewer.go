//go:build gocv
// +build gocv

package vision

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"

	"gocv.io/x/gocv"

	"xray-insights/internal/domain/port"
)

var ErrPreviewUnavailable = errors.New("preview is not available")

type GoCVPreviewer struct {
	MaxSide int
	Quality int
}

// NewGoCVPreviewer создаёт генератор превью с ограничением стороны в пикселях.
func NewGoCVPreviewer(maxSide int) *GoCVPreviewer {
	return &GoCVPreviewer{
		MaxSide: maxSide,
		Quality: 85,
	}
}

// Preview уменьшает изображение до MaxSide по большей стороне и кодирует в JPEG.
func (p *GoCVPreviewer) Preview(imageData []byte) ([]byte, error) {
	mat, err := decodeToMat(imageData)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	if mat.Cols() > p.MaxSide || mat.Rows() > p.MaxSide {
		scale := float64(p.MaxSide) / float64(maxInt(mat.Cols(), mat.Rows()))
		newW := maxInt(1, int(float64(mat.Cols())*scale))
		newH := maxInt(1, int(float64(mat.Rows())*scale))
		resized := gocv.NewMat()
		gocv.Resize(mat, &resized, image.Pt(newW, newH), 0, 0, gocv.InterpolationArea)
		mat.Close()
		mat = resized
	}

	img, err := mat.ToImage()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.Quality}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func decodeToMat(imageData []byte) (gocv.Mat, error) {
	mat, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err == nil && !mat.Empty() {
		return mat, nil
	}
	if !mat.Empty() {
		mat.Close()
	}
	return gocv.NewMat(), errors.New("failed to decode image")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

var _ port.Previewer = (*GoCVPreviewer)(nil)
