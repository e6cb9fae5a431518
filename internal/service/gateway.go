package service

import (
	"context"

	"aion/internal/models"
)

// ChatMessage is one turn of model input, in replay order.
type ChatMessage struct {
	Role models.Role
	Text string
}

// GenerateRequest describes a single call to the hosted model.
type GenerateRequest struct {
	Model             string
	SystemInstruction string
	Temperature       float64
	Messages          []ChatMessage
}

type GenerateResponse struct {
	Text string
}

// Gateway abstracts the generative model behind the agents. The engines
// only see raw text back; structured output is negotiated through the
// system instruction and parsed by the caller.
type Gateway interface {
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)
}
