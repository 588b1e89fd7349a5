// Package imaging decodes image uploads into pixels for the in-process
// quality checks. JPEG and PNG cover what browsers and phone cameras send.
package imaging

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// ErrNotAnImage means the payload could not be decoded by any registered
// image format.
var ErrNotAnImage = errors.New("imaging: unsupported or corrupt image data")

// Decode parses raw upload bytes into an image.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrNotAnImage
	}
	return img, nil
}
