package generation

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"server/internal/datauri"
	"server/internal/infra"
	"server/internal/providers/gemini"
)

// ImageGenerator is the remote-model call the service orchestrates. The
// Gemini client satisfies it; tests substitute stubs.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string, image []byte, mediaType string) gemini.Outcome
}

// Recorder persists a successful generation.
type Recorder interface {
	Persist(image []byte, mediaType string, settings SettingsUsed, prompt string) (Record, error)
}

// Service runs the generation pipeline: validate, build prompt, decode
// image, call the model, persist, and map every path onto the uniform
// response envelope. Nothing escapes as a raw error.
type Service struct {
	generator ImageGenerator
	recorder  Recorder
	logger    *infra.Logger
}

func NewService(generator ImageGenerator, recorder Recorder, logger *infra.Logger) *Service {
	return &Service{generator: generator, recorder: recorder, logger: logger}
}

// Handle processes one generation request and returns the HTTP status code
// together with the response envelope.
func (s *Service) Handle(ctx context.Context, req Request) (int, Response) {
	if req.Settings == nil || req.Settings.Model == nil || req.Settings.Environment == nil {
		return http.StatusBadRequest, Failure("model and environment settings are required")
	}
	if strings.TrimSpace(req.ImageData) == "" {
		return http.StatusBadRequest, Failure("imageData is required")
	}

	settings := SettingsUsed{Model: *req.Settings.Model, Environment: *req.Settings.Environment}
	prompt := BuildPrompt(settings.Model, settings.Environment)

	mediaType, image, err := datauri.Decode(req.ImageData)
	if err != nil {
		if !errors.Is(err, datauri.ErrFormat) {
			s.logger.Error().Err(err).Msg("generation: unexpected image decode failure")
		}
		return http.StatusBadRequest, Failure("imageData must be a base64 data URI for a JPEG, PNG, or WebP image")
	}

	outcome := s.generator.Generate(ctx, prompt, image, mediaType)
	switch outcome.Kind {
	case gemini.KindImage:
		record, err := s.recorder.Persist(outcome.Image, outcome.MediaType, settings, prompt)
		if err != nil {
			// The expensive remote call succeeded, but a result we cannot
			// serve back later counts as a failure to the caller.
			s.logger.Error().Err(err).Msg("generation: failed to save generated image")
			return http.StatusInternalServerError, Failure("failed to save generated image")
		}
		return http.StatusOK, Response{Success: true, ImageURL: record.ImagePath, PromptUsed: prompt}

	case gemini.KindBlocked:
		s.logger.Warn().
			Str("reason", outcome.BlockReason).
			Str("detail", outcome.BlockDetail).
			Msg("generation: request blocked by the model")
		message := "the model declined to generate this image"
		if outcome.BlockReason != "" {
			message += " (" + outcome.BlockReason + ")"
		}
		return http.StatusUnprocessableEntity, Failure(message)

	case gemini.KindTimeout:
		return http.StatusGatewayTimeout, Failure("image generation took too long, please try again")

	case gemini.KindEmpty:
		message := "the model returned no image"
		if outcome.Caption != "" {
			message += ": " + outcome.Caption
		}
		return http.StatusBadGateway, Failure(message)

	case gemini.KindTransport:
		return transportStatus(outcome.ErrTag), Failure(transportMessage(outcome.ErrTag))
	}

	s.logger.Error().Str("kind", string(outcome.Kind)).Msg("generation: unhandled outcome kind")
	return http.StatusInternalServerError, Failure("image generation failed")
}

func transportStatus(tag gemini.ErrorTag) int {
	switch tag {
	case gemini.TagTimeout:
		return http.StatusGatewayTimeout
	case gemini.TagPermission:
		return http.StatusForbidden
	case gemini.TagSafety:
		return http.StatusUnprocessableEntity
	case gemini.TagCredential:
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

func transportMessage(tag gemini.ErrorTag) string {
	switch tag {
	case gemini.TagTimeout:
		return "image generation took too long, please try again"
	case gemini.TagPermission:
		return "the image service denied access to the requested model"
	case gemini.TagSafety:
		return "the request was rejected by the image service's content policy"
	case gemini.TagCredential:
		return "the image service rejected the configured API credential"
	default:
		return "failed to reach the image generation service"
	}
}
