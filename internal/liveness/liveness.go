// Package liveness scores how much a selfie looks like a live camera capture
// rather than a flat reproduction. The heuristic combines sharpness, colour
// saturation, and a high-frequency penalty for screen recaptures. It is a
// quality proxy, not spoof-resistant anti-spoofing.
package liveness

import (
	"image"
	"math"
)

const (
	sharpnessWeight  = 0.6
	saturationWeight = 0.3
	penaltyWeight    = 0.3

	// Laplacian variance at which an image counts as fully sharp.
	sharpnessNorm = 150.0
	// Mean absolute blur residual at which the recapture penalty saturates.
	penaltyNorm = 32.0
)

// Score rates an image in 0..1. Images too small to carry texture score 0.
func Score(img image.Image) float64 {
	gray, sat := grayAndSaturation(img)
	if gray == nil {
		return 0
	}

	sharp := math.Min(1.0, laplacianVariance(gray)/sharpnessNorm)
	penalty := math.Min(1.0, blurResidual(gray)/penaltyNorm)

	score := sharpnessWeight*sharp + saturationWeight*sat - penaltyWeight*penalty
	return clamp01(score)
}

type grayImage struct {
	pix  []float64
	w, h int
}

func (g *grayImage) at(x, y int) float64 {
	return g.pix[y*g.w+x]
}

// grayAndSaturation converts to a luma plane and computes the mean HSV
// saturation in one pass. Returns nil for images under 3x3.
func grayAndSaturation(img image.Image) (*grayImage, float64) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w < 3 || h < 3 {
		return nil, 0
	}

	gray := &grayImage{pix: make([]float64, w*h), w: w, h: h}
	satSum := 0.0

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r16, g16, b16, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			r := float64(r16 >> 8)
			g := float64(g16 >> 8)
			b := float64(b16 >> 8)

			gray.pix[y*w+x] = 0.299*r + 0.587*g + 0.114*b

			maxC := math.Max(r, math.Max(g, b))
			minC := math.Min(r, math.Min(g, b))
			if maxC > 0 {
				satSum += (maxC - minC) / maxC
			}
		}
	}

	return gray, satSum / float64(w*h)
}

// laplacianVariance applies the 4-neighbour Laplacian over interior pixels
// and returns the variance of the response.
func laplacianVariance(g *grayImage) float64 {
	n := 0
	sum := 0.0
	sumSq := 0.0

	for y := 1; y < g.h-1; y++ {
		for x := 1; x < g.w-1; x++ {
			v := g.at(x-1, y) + g.at(x+1, y) + g.at(x, y-1) + g.at(x, y+1) - 4*g.at(x, y)
			sum += v
			sumSq += v * v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	mean := sum / float64(n)
	return sumSq/float64(n) - mean*mean
}

// blurResidual measures high-frequency content as the mean absolute
// difference between the image and its 3x3 box blur.
func blurResidual(g *grayImage) float64 {
	n := 0
	sum := 0.0

	for y := 1; y < g.h-1; y++ {
		for x := 1; x < g.w-1; x++ {
			acc := 0.0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					acc += g.at(x+dx, y+dy)
				}
			}
			sum += math.Abs(g.at(x, y) - acc/9.0)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
