package grpcclient

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/example/kyc-api/internal/faceengine"
	"github.com/example/kyc-api/internal/logging"
	pb "github.com/example/kyc-api/proto"
)

// DialFaceEngine returns a ready-to-use client for the inference engine.
func DialFaceEngine(ctx context.Context, addr string, logger *zap.Logger) (faceengine.Client, *grpc.ClientConn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	conn, err := grpc.DialContext(
		dialCtx,
		addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
	)
	if err != nil {
		wrapped := logging.NewOperationError("grpcclient.dial_face_engine", "", err)
		logger.Error("failed to dial face engine", zap.Error(wrapped), zap.String("addr", addr))
		return nil, nil, wrapped
	}
	client := pb.NewFaceEngineClient(conn)
	return &grpcFaceEngine{client: client, logger: logger}, conn, nil
}

type grpcFaceEngine struct {
	client pb.FaceEngineClient
	logger *zap.Logger
}

func (g *grpcFaceEngine) DetectAndEmbed(ctx context.Context, imageBytes []byte) (*faceengine.Face, error) {
	resp, err := g.client.DetectAndEmbed(ctx, &pb.ImageRequest{ImageData: imageBytes})
	if err != nil {
		wrapped := logging.NewOperationError("grpcclient.detect_and_embed", "", err)
		g.logger.Error("face engine detect call failed", zap.Error(wrapped))
		return nil, wrapped
	}
	if !resp.GetFound() {
		return nil, nil
	}
	return &faceengine.Face{
		Embedding: resp.GetEmbedding(),
		Box:       [4]int{int(resp.GetX1()), int(resp.GetY1()), int(resp.GetX2()), int(resp.GetY2())},
		Score:     resp.GetScore(),
	}, nil
}

func (g *grpcFaceEngine) RecognizeText(ctx context.Context, imageBytes []byte) ([]faceengine.Word, error) {
	resp, err := g.client.RecognizeText(ctx, &pb.ImageRequest{ImageData: imageBytes})
	if err != nil {
		wrapped := logging.NewOperationError("grpcclient.recognize_text", "", err)
		g.logger.Error("face engine ocr call failed", zap.Error(wrapped))
		return nil, wrapped
	}
	words := make([]faceengine.Word, 0, len(resp.GetWords()))
	for _, w := range resp.GetWords() {
		words = append(words, faceengine.Word{Text: w.GetText(), Confidence: w.GetConfidence()})
	}
	return words, nil
}

func (g *grpcFaceEngine) ReadMRZLines(ctx context.Context, imageBytes []byte) ([]string, error) {
	resp, err := g.client.ReadMrz(ctx, &pb.ImageRequest{ImageData: imageBytes})
	if err != nil {
		wrapped := logging.NewOperationError("grpcclient.read_mrz", "", err)
		g.logger.Error("face engine mrz call failed", zap.Error(wrapped))
		return nil, wrapped
	}
	return resp.GetLines(), nil
}
