// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pricing

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/pdiddy/price-scout/internal/gemini"
	"github.com/pdiddy/price-scout/pkg/types"
)

// DefaultModel is used when no price model is configured.
const DefaultModel = "gemini-2.5-flash"

// pricePromptTmpl instructs the model to answer with exactly one JSON object
// or the bare word null.
var pricePromptTmpl = template.Must(template.New("price").Parse(`You are a retail price lookup assistant. The user wants the item "{{.Query}}".
Look only at the store "{{.StoreName}}"{{if .StoreAddress}} (around {{.StoreAddress}}){{end}}.
The user is searching within {{.RadiusMiles}} miles of their location, but this answer must be about THIS store only.

Use Google Search to find the current price and availability of "{{.Query}}" at "{{.StoreName}}".

Answer in exactly one of two ways:

1. If the item and its price are found at this store, respond ONLY with a single JSON object:
{
  "fullItemName": string,
  "storeName": "{{.StoreName}}",
  "storeAddress": "{{.StoreAddress}}",
  "price": number,
  "currency": string,
  "productUrl": string or null (a full URL; if you have a Markdown link, give only the URL),
  "imageUrl": string or null,
  "lastUpdated": string or null (date or phrase describing when the price was last seen),
  "notes": string or null
}
Example:
{"fullItemName": "Chiquita Bananas, Organic, 2lb Bag", "storeName": "{{.StoreName}}", "storeAddress": "{{.StoreAddress}}", "price": 3.99, "currency": "USD", "productUrl": "https://example.com/product", "imageUrl": null, "lastUpdated": "2024-08-01", "notes": "Price per bag."}

2. If the item is not sold at this store, or its price cannot be determined, respond ONLY with the word null (lowercase, no quotes, no Markdown).

Do not add explanations, apologies or any other text.
`))

// LookupRequest is one price question about one location.
type LookupRequest struct {
	Query        string
	StoreName    string
	StoreAddress string
	RadiusMiles  float64
}

// LookupResponse is the raw answer plus the web sources the service cited.
type LookupResponse struct {
	Text      string           `json:"text"`
	Citations []types.Citation `json:"citations,omitempty"`
}

// GeminiBackend asks a Gemini model, grounded with Google Search, for the
// price of an item at one store.
type GeminiBackend struct {
	Client *gemini.Client
	Model  string
}

// NewGeminiBackend builds a backend on a shared transport.
func NewGeminiBackend(client *gemini.Client, model string) *GeminiBackend {
	if model == "" {
		model = DefaultModel
	}
	return &GeminiBackend{Client: client, Model: model}
}

// Configured reports whether the transport has an API key.
func (g *GeminiBackend) Configured() bool { return g.Client.Configured() }

// generateRequest is the request body for models.generateContent.
type generateRequest struct {
	Contents         []content        `json:"contents"`
	Tools            []tool           `json:"tools,omitempty"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text,omitempty"`
}

type tool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
}

// generateResponse is the response body from models.generateContent.
type generateResponse struct {
	Candidates []struct {
		Content           content            `json:"content"`
		GroundingMetadata *groundingMetadata `json:"groundingMetadata"`
	} `json:"candidates"`
}

type groundingMetadata struct {
	GroundingChunks []struct {
		Web *struct {
			URI   string `json:"uri"`
			Title string `json:"title"`
		} `json:"web"`
	} `json:"groundingChunks"`
}

// Lookup sends the price prompt and returns the model's text and citations.
func (g *GeminiBackend) Lookup(ctx context.Context, lr LookupRequest) (LookupResponse, error) {
	prompt, err := renderPrompt(lr)
	if err != nil {
		return LookupResponse{}, fmt.Errorf("rendering prompt: %w", err)
	}

	req := generateRequest{
		Contents:         []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		Tools:            []tool{{GoogleSearch: &struct{}{}}},
		GenerationConfig: generationConfig{Temperature: 0.1},
	}

	var resp generateResponse
	if err := g.Client.Call(ctx, g.Model, "generateContent", req, &resp); err != nil {
		return LookupResponse{}, err
	}
	if len(resp.Candidates) == 0 {
		return LookupResponse{}, fmt.Errorf("AI API returned no candidates")
	}
	cand := resp.Candidates[0]

	out := LookupResponse{Citations: citationsFrom(cand.GroundingMetadata)}
	for _, p := range cand.Content.Parts {
		if p.Text != "" {
			out.Text = p.Text
			break
		}
	}
	return out, nil
}

// citationsFrom keeps web chunks that carry a URI. The title defaults to the URI.
func citationsFrom(md *groundingMetadata) []types.Citation {
	if md == nil {
		return nil
	}
	var out []types.Citation
	for _, chunk := range md.GroundingChunks {
		if chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		title := chunk.Web.Title
		if title == "" {
			title = chunk.Web.URI
		}
		out = append(out, types.Citation{URI: chunk.Web.URI, Title: title})
	}
	return out
}

// renderPrompt executes the price prompt template.
func renderPrompt(lr LookupRequest) (string, error) {
	var buf bytes.Buffer
	if err := pricePromptTmpl.Execute(&buf, lr); err != nil {
		return "", err
	}
	return buf.String(), nil
}
