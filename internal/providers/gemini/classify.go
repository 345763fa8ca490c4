package gemini

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// classifyResponse maps a structurally-received generate response to an
// Outcome. The rules, in order: no candidate means blocked; a finish reason
// other than STOP means blocked; no parts means empty; an inline image part
// means success (the first one wins, captions ride along); anything else is
// empty with the caption kept for diagnostics.
func classifyResponse(resp *genai.GenerateContentResponse) Outcome {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		out := Outcome{Kind: KindBlocked, BlockReason: "no candidates returned"}
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			out.BlockReason = string(resp.PromptFeedback.BlockReason)
			out.BlockDetail = resp.PromptFeedback.BlockReasonMessage
		}
		return out
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason != "" && candidate.FinishReason != genai.FinishReasonStop {
		return Outcome{
			Kind:        KindBlocked,
			BlockReason: string(candidate.FinishReason),
			BlockDetail: summarizeSafetyRatings(candidate.SafetyRatings),
		}
	}

	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return Outcome{Kind: KindEmpty}
	}

	var caption string
	var image []byte
	var mediaType string
	for _, part := range candidate.Content.Parts {
		if part == nil {
			continue
		}
		if text := strings.TrimSpace(part.Text); text != "" && caption == "" {
			caption = text
		}
		if image != nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		mime := strings.TrimSpace(part.InlineData.MIMEType)
		if mime == "" {
			mime = "image/png"
		}
		if !strings.HasPrefix(mime, "image/") {
			continue
		}
		image = part.InlineData.Data
		mediaType = mime
	}

	if image == nil {
		return Outcome{Kind: KindEmpty, Caption: caption}
	}
	return Outcome{Kind: KindImage, Image: image, MediaType: mediaType, Caption: caption}
}

// classifyError tags a transport-level failure. Status codes from the API
// error are authoritative; message substrings cover errors that surface
// without a structured code.
func classifyError(err error) Outcome {
	out := Outcome{Kind: KindTransport, ErrTag: TagGeneric, Err: err.Error()}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 401:
			out.ErrTag = TagCredential
			return out
		case 403, 404:
			out.ErrTag = TagPermission
			return out
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		out.ErrTag = TagTimeout
	case strings.Contains(msg, "api key") || strings.Contains(msg, "credential") || strings.Contains(msg, "unauthenticated"):
		out.ErrTag = TagCredential
	case strings.Contains(msg, "permission") || strings.Contains(msg, "not found"):
		out.ErrTag = TagPermission
	case strings.Contains(msg, "safety") || strings.Contains(msg, "content policy") || strings.Contains(msg, "blocked"):
		out.ErrTag = TagSafety
	}
	return out
}

func summarizeSafetyRatings(ratings []*genai.SafetyRating) string {
	if len(ratings) == 0 {
		return ""
	}
	parts := make([]string, 0, len(ratings))
	for _, rating := range ratings {
		if rating == nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%s", rating.Category, rating.Probability))
	}
	return strings.Join(parts, ", ")
}
