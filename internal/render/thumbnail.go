package render

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// Thumbnail scales a rendered PNG down to fit width x height.
func Thumbnail(pngData []byte, width, height int) ([]byte, error) {
	if len(pngData) == 0 {
		return nil, fmt.Errorf("thumbnail: empty image")
	}
	img, err := imaging.Decode(bytes.NewReader(pngData))
	if err != nil {
		return nil, fmt.Errorf("decode plot: %w", err)
	}

	thumb := imaging.Thumbnail(img, width, height, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
