package faceengine

import "context"

// Face is a detected face together with its recognition embedding. The
// embedding is L2-normalised by the engine.
type Face struct {
	Embedding []float32
	// Bounding box in pixel coordinates: x1, y1, x2, y2.
	Box   [4]int
	Score float32
}

// Word is a single OCR token with its recognition confidence in 0..100.
type Word struct {
	Text       string
	Confidence float32
}

// Client exposes the subset of the inference engine used by the KYC flow.
// Detection, embedding, and text recognition all run on the engine side;
// callers only interpret the returned values.
type Client interface {
	// DetectAndEmbed returns the largest face found on the image, or nil
	// when the engine detects no face at all.
	DetectAndEmbed(ctx context.Context, imageBytes []byte) (*Face, error)

	// RecognizeText runs free-text OCR over the whole image.
	RecognizeText(ctx context.Context, imageBytes []byte) ([]Word, error)

	// ReadMRZLines locates and reads the machine-readable zone. An empty
	// slice means no MRZ strip was found; this is not an error.
	ReadMRZLines(ctx context.Context, imageBytes []byte) ([]string, error)
}
