// Package ai wraps the generative backend used for media transcription and
// caption refinement.
package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/nobita6986/BatchTranscriber/internal/constants"
	"github.com/nobita6986/BatchTranscriber/internal/domain"
	"github.com/nobita6986/BatchTranscriber/internal/logger"
)

const transcribeInstruction = "Transcribe this media file verbatim. " +
	"Output only the spoken text, with no commentary, timestamps, or speaker labels. " +
	"If no speech is present, output exactly: [No Speech Detected]"

const refineInstruction = "Add punctuation, capitalization, and paragraph breaks to the following raw transcript. " +
	"Do not summarize, rephrase, or alter the content in any way. Output only the formatted text.\n\n"

type Client struct {
	httpClient *http.Client
	logger     *logger.Logger
	endpoint   string
	model      string
}

func NewClient(model string, log *logger.Logger) *Client {
	if model == "" {
		model = constants.DefaultGeminiModel
	}
	if log == nil {
		log = logger.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: constants.TranscribeTimeout},
		logger:     log.WithComponent("ai"),
		endpoint:   fmt.Sprintf(constants.GeminiEndpoint, model),
		model:      model,
	}
}

// NewClientAt targets a specific endpoint instead of the default backend.
func NewClientAt(endpoint string, log *logger.Logger) *Client {
	c := NewClient("", log)
	c.endpoint = endpoint
	return c
}

type generatePart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateRequest struct {
	Contents []struct {
		Parts []generatePart `json:"parts"`
	} `json:"contents"`
	GenerationConfig struct {
		Temperature float64 `json:"temperature"`
	} `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// TranscribeMedia submits raw media bytes with a fixed verbatim-transcription
// instruction at low sampling temperature.
func (c *Client) TranscribeMedia(ctx context.Context, data []byte, mimeType string, apiKey string) (string, error) {
	if apiKey == "" {
		return "", domain.ErrMissingCredential
	}

	parts := []generatePart{
		{InlineData: &inlineData{
			MimeType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(data),
		}},
		{Text: transcribeInstruction},
	}

	text, err := c.generate(ctx, parts, apiKey)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", domain.ErrEmptyResult
	}
	return text, nil
}

// RefineText polishes raw caption text into punctuated prose. Refinement is
// best-effort: every failure degrades to the input unchanged, never an error.
func (c *Client) RefineText(ctx context.Context, raw string, apiKey string) string {
	if apiKey == "" || strings.TrimSpace(raw) == "" {
		return raw
	}

	input := raw
	if len(input) > constants.MaxRefineInputChars {
		input = input[:constants.MaxRefineInputChars]
	}

	parts := []generatePart{{Text: refineInstruction + input}}
	text, err := c.generate(ctx, parts, apiKey)
	if err != nil || text == "" {
		c.logger.Warn("Refinement failed, keeping raw text", "error", err)
		return raw
	}
	return text
}

func (c *Client) generate(ctx context.Context, parts []generatePart, apiKey string) (string, error) {
	var payload generateRequest
	payload.Contents = make([]struct {
		Parts []generatePart `json:"parts"`
	}, 1)
	payload.Contents[0].Parts = parts
	payload.GenerationConfig.Temperature = 0.1

	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		return "", fmt.Errorf("encode request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, buf)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", c.decodeAPIError(resp)
	}

	var response generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return "", domain.ErrEmptyResult
	}

	var out strings.Builder
	for _, p := range response.Candidates[0].Content.Parts {
		out.WriteString(p.Text)
	}
	return strings.TrimSpace(out.String()), nil
}

// decodeAPIError turns a non-2xx response into a failure. 4xx on a media
// request is heuristically a payload problem; everything else keeps the
// backend's own message.
func (c *Client) decodeAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var apiErr generateResponse
	msg := ""
	if err := json.Unmarshal(body, &apiErr); err == nil {
		msg = apiErr.Error.Message
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return domain.ErrCredentialRejected
	}
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		if msg != "" {
			return fmt.Errorf("%w: %s", domain.ErrRequestTooLarge, msg)
		}
		return domain.ErrRequestTooLarge
	}
	if msg != "" {
		return fmt.Errorf("backend error (status %d): %s", resp.StatusCode, msg)
	}
	return fmt.Errorf("backend error (status %d)", resp.StatusCode)
}
