//go:build !gocv
// +build !gocv

package vision

import (
	"errors"

	"xray-insights/internal/domain/port"
)

var ErrPreviewUnavailable = errors.New("preview is not available")

type GoCVPreviewer struct {
	MaxSide int
	Quality int
}

// NewGoCVPreviewer создаёт генератор-заглушку (без OpenCV).
func NewGoCVPreviewer(maxSide int) *GoCVPreviewer {
	return &GoCVPreviewer{
		MaxSide: maxSide,
		Quality: 85,
	}
}

// Preview возвращает ошибку, если сборка без тега gocv.
func (p *GoCVPreviewer) Preview(imageData []byte) ([]byte, error) {
	_ = imageData
	return nil, ErrPreviewUnavailable
}

var _ port.Previewer = (*GoCVPreviewer)(nil)
