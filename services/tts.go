package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pomnim/backend/config"
	"github.com/pomnim/backend/errs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultTTSLanguage = "ru-RU"

// SpeechRequest represents the request payload for the synthesis API
type SpeechRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// SpeechResponse represents the response from the synthesis API
type SpeechResponse struct {
	AudioURL string `json:"audioUrl"`
}

type speechErrorResponse struct {
	Message string `json:"message"`
}

// SpeechService calls an external text-to-speech provider that synthesizes
// narration audio and hosts the result at a durable URL. Only the URL ever
// enters this system.
type SpeechService struct {
	apiURL string
	apiKey string
	client *http.Client
	logger zerolog.Logger
}

// NewSpeechService reads TTS_API_URL and TTS_API_KEY from the environment.
func NewSpeechService(cfg map[string]string) (*SpeechService, error) {
	apiURL := config.GetString(cfg, "TTS_API_URL", "")
	if apiURL == "" {
		return nil, fmt.Errorf("TTS_API_URL environment variable is required")
	}

	timeout := time.Duration(config.GetInt(cfg, "TTS_TIMEOUT_SECONDS", 60)) * time.Second

	return &SpeechService{
		apiURL: apiURL,
		apiKey: config.GetString(cfg, "TTS_API_KEY", ""),
		client: &http.Client{Timeout: timeout},
		logger: log.With().Str("serviceName", "speechService").Logger(),
	}, nil
}

// Synthesize converts text to speech and returns the audio URL reported by
// the provider. No retry: a failure surfaces to the caller as an upstream
// error.
func (s *SpeechService) Synthesize(ctx context.Context, text, language string) (string, error) {
	if text == "" {
		return "", errs.NewMissingRequiredFieldError("text")
	}
	if language == "" {
		language = defaultTTSLanguage
	}

	payload, err := json.Marshal(SpeechRequest{Text: text, Language: language})
	if err != nil {
		return "", errs.NewInternalErrorWithCause("marshaling speech request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", errs.NewInternalErrorWithCause("building speech request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error().Err(err).Msg("speech synthesis request failed")
		return "", errs.NewUpstreamError("speech synthesis", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errs.NewUpstreamError("speech synthesis", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp speechErrorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
			s.logger.Error().Int("status", resp.StatusCode).Str("message", errResp.Message).Msg("speech synthesis provider error")
			return "", errs.NewUpstreamError("speech synthesis", fmt.Errorf("provider returned %d: %s", resp.StatusCode, errResp.Message))
		}
		return "", errs.NewUpstreamError("speech synthesis", fmt.Errorf("provider returned %d", resp.StatusCode))
	}

	var speechResp SpeechResponse
	if err := json.Unmarshal(body, &speechResp); err != nil {
		return "", errs.NewUpstreamError("speech synthesis", fmt.Errorf("malformed provider response: %w", err))
	}
	if speechResp.AudioURL == "" {
		return "", errs.NewUpstreamError("speech synthesis", fmt.Errorf("provider response missing audio URL"))
	}

	s.logger.Debug().Str("language", language).Int("textLength", len(text)).Msg("speech synthesized")
	return speechResp.AudioURL, nil
}
