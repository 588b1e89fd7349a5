package liveness

import (
	"image"
	"image/color"
	"testing"
)

func flatImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// checkerImage alternates two colours per pixel, maximising local contrast.
func checkerImage(w, h int, a, b color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.SetRGBA(x, y, a)
			} else {
				img.SetRGBA(x, y, b)
			}
		}
	}
	return img
}

func TestScoreFlatGrayIsZero(t *testing.T) {
	img := flatImage(32, 32, color.RGBA{R: 128, G: 128, B: 128, A: 255})
	if got := Score(img); got != 0 {
		t.Fatalf("expected 0 for a flat gray image, got %v", got)
	}
}

func TestScoreTinyImageIsZero(t *testing.T) {
	img := flatImage(2, 2, color.RGBA{R: 200, G: 10, B: 10, A: 255})
	if got := Score(img); got != 0 {
		t.Fatalf("expected 0 for a sub-3x3 image, got %v", got)
	}
}

func TestScoreSaturatedBeatsGray(t *testing.T) {
	gray := flatImage(32, 32, color.RGBA{R: 120, G: 120, B: 120, A: 255})
	red := flatImage(32, 32, color.RGBA{R: 200, G: 20, B: 20, A: 255})

	if Score(red) <= Score(gray) {
		t.Fatalf("expected saturated image to outscore gray: red=%v gray=%v", Score(red), Score(gray))
	}
}

func TestScoreIsClamped(t *testing.T) {
	// Maximum contrast and full saturation push the raw score past the
	// weights' range in both directions; the result must stay in [0,1].
	imgs := []image.Image{
		checkerImage(32, 32, color.RGBA{R: 255, A: 255}, color.RGBA{B: 255, A: 255}),
		checkerImage(32, 32, color.RGBA{R: 255, G: 255, B: 255, A: 255}, color.RGBA{A: 255}),
		flatImage(32, 32, color.RGBA{A: 255}),
	}
	for i, img := range imgs {
		got := Score(img)
		if got < 0 || got > 1 {
			t.Fatalf("image %d: score %v out of range", i, got)
		}
	}
}

func TestLaplacianVarianceDetectsEdges(t *testing.T) {
	flat := flatImage(16, 16, color.RGBA{R: 77, G: 77, B: 77, A: 255})
	edges := checkerImage(16, 16, color.RGBA{R: 255, G: 255, B: 255, A: 255}, color.RGBA{A: 255})

	flatGray, _ := grayAndSaturation(flat)
	edgeGray, _ := grayAndSaturation(edges)

	if v := laplacianVariance(flatGray); v != 0 {
		t.Fatalf("expected zero variance on flat image, got %v", v)
	}
	if v := laplacianVariance(edgeGray); v <= 0 {
		t.Fatalf("expected positive variance on checkerboard, got %v", v)
	}
}
