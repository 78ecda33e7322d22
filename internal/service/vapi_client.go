package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/farhansajid/visamock/config"
	"github.com/farhansajid/visamock/internal/apperror"
	"github.com/rs/zerolog/log"
)

// VapiMessage is one structured turn from the voice vendor. Older call
// records carry the text under "message" instead of "content".
type VapiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content,omitempty"`
	Message string `json:"message,omitempty"`
}

// Text returns the turn text regardless of which field the vendor used.
func (m VapiMessage) Text() string {
	if m.Content != "" {
		return m.Content
	}
	return m.Message
}

type VapiArtifact struct {
	Transcript         string        `json:"transcript"`
	Messages           []VapiMessage `json:"messages"`
	RecordingURL       string        `json:"recordingUrl"`
	StereoRecordingURL string        `json:"stereoRecordingUrl"`
}

// VapiCall is the vendor's record of a session, terminal or in flight.
type VapiCall struct {
	ID          string       `json:"id"`
	Status      string       `json:"status"`
	EndedReason string       `json:"endedReason"`
	Duration    *float64     `json:"duration"`
	Artifact    VapiArtifact `json:"artifact"`
}

// HasContent reports whether post-processing produced usable text.
func (c *VapiCall) HasContent() bool {
	return c.Artifact.Transcript != "" || len(c.Artifact.Messages) > 0
}

// VapiClient fetches terminal call records from the voice vendor.
type VapiClient interface {
	GetCall(ctx context.Context, callID, privateKey string) (*VapiCall, error)
}

type vapiClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewVapiClient(cfg *config.Config) VapiClient {
	return &vapiClient{
		baseURL:    cfg.Vapi.BaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *vapiClient) GetCall(ctx context.Context, callID, privateKey string) (*VapiCall, error) {
	url := fmt.Sprintf("%s/call/%s", c.baseURL, callID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+privateKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperror.Upstreamf("vapi call fetch failed: %s", err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.Upstreamf("vapi response read failed: %s", err.Error())
	}
	if resp.StatusCode != http.StatusOK {
		log.Error().Int("status", resp.StatusCode).Str("body", string(body)).Str("callID", callID).Msg("Vapi returned non-200")
		return nil, apperror.Upstreamf("vapi returned status %d", resp.StatusCode)
	}

	var call VapiCall
	if err := json.Unmarshal(body, &call); err != nil {
		return nil, apperror.Upstreamf("vapi response malformed: %s", err.Error())
	}
	return &call, nil
}
