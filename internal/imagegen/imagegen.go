// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package imagegen synthesizes a product image for a priced item. Failures
// never propagate; the caller simply gets no image.
package imagegen

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pdiddy/price-scout/internal/gemini"
	"github.com/pdiddy/price-scout/internal/metrics"
)

// DefaultModel is used when no image model is configured.
const DefaultModel = "imagen-3.0-generate-002"

const defaultMimeType = "image/jpeg"

// Synthesizer asks an Imagen model for a single studio-style product photo.
type Synthesizer struct {
	Client  *gemini.Client
	Model   string
	Metrics *metrics.Metrics
}

// New returns a Synthesizer on the shared transport.
func New(client *gemini.Client, model string) *Synthesizer {
	if model == "" {
		model = DefaultModel
	}
	return &Synthesizer{Client: client, Model: model}
}

// Configured reports whether an API key is set. A nil Synthesizer is
// unconfigured, which disables enrichment.
func (s *Synthesizer) Configured() bool {
	return s != nil && s.Client.Configured()
}

type predictRequest struct {
	Instances  []instance `json:"instances"`
	Parameters parameters `json:"parameters"`
}

type instance struct {
	Prompt string `json:"prompt"`
}

type parameters struct {
	SampleCount    int    `json:"sampleCount"`
	OutputMimeType string `json:"outputMimeType"`
}

type predictResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		MimeType           string `json:"mimeType"`
	} `json:"predictions"`
}

// Synthesize returns a data URI for itemName, or "" when no image could be
// produced. Missing credentials return "" without a network call.
func (s *Synthesizer) Synthesize(ctx context.Context, itemName string) string {
	if !s.Configured() {
		return ""
	}

	req := predictRequest{
		Instances: []instance{{Prompt: Prompt(itemName)}},
		Parameters: parameters{
			SampleCount:    1,
			OutputMimeType: defaultMimeType,
		},
	}

	var resp predictResponse
	if err := s.Client.Call(ctx, s.Model, "predict", req, &resp); err != nil {
		slog.Debug("image synthesis failed", "item", itemName, "error", err)
		s.Metrics.Upstream(metrics.ServiceImage, metrics.OutcomeError)
		return ""
	}
	if len(resp.Predictions) == 0 || resp.Predictions[0].BytesBase64Encoded == "" {
		slog.Debug("image synthesis returned no image bytes", "item", itemName)
		s.Metrics.Upstream(metrics.ServiceImage, metrics.OutcomeNotFound)
		return ""
	}

	p := resp.Predictions[0]
	mime := p.MimeType
	if mime == "" {
		mime = defaultMimeType
	}
	s.Metrics.Upstream(metrics.ServiceImage, metrics.OutcomeOK)
	return "data:" + mime + ";base64," + p.BytesBase64Encoded
}

// Prompt is the image prompt for one item.
func Prompt(itemName string) string {
	return fmt.Sprintf("A clear, professional, well-lit studio product photo of %q on a plain white or light neutral background. The item should be the main focus. Cropped to the product.", itemName)
}
