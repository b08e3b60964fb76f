package poem

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
	"github.com/sirupsen/logrus"

	poemModel "github.com/zhouzirui/poem-studio/backend/internal/model/poem"
	"github.com/zhouzirui/poem-studio/backend/internal/service/ai"
)

const (
	DefaultStyle = "free verse"
	DefaultMood  = "neutral"

	Temperature = 0.8
	MaxTokens   = 500
)

// Request is the user's generation input.
type Request struct {
	Theme string `json:"theme"`
	Style string `json:"style,omitempty"`
	Mood  string `json:"mood,omitempty"`
}

// Service turns a theme, style and mood into a poem with one chat-model call.
type Service struct {
	chatModel model.BaseChatModel
	catalog   *Catalog
	template  prompt.ChatTemplate
	now       func() time.Time
	log       *logrus.Entry
}

// NewService creates a generation service backed by chatModel.
func NewService(chatModel model.BaseChatModel, catalog *Catalog) (*Service, error) {
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}
	if catalog == nil {
		catalog = DefaultCatalog()
	}

	return &Service{
		chatModel: chatModel,
		catalog:   catalog,
		template: prompt.FromMessages(
			schema.FString,
			schema.SystemMessage("{system}"),
			schema.UserMessage("{query}"),
		),
		now: time.Now,
		log: logrus.WithField("component", "poem"),
	}, nil
}

// Catalog returns the style and mood catalogue used for prompts.
func (s *Service) Catalog() *Catalog {
	return s.catalog
}

// Generate validates req, asks the chat model for a poem and returns it.
// An empty theme fails with *ValidationError before any upstream call;
// provider failures surface as *UpstreamError. Nothing is retried.
func (s *Service) Generate(ctx context.Context, req Request) (poemModel.Poem, error) {
	theme := strings.TrimSpace(req.Theme)
	if theme == "" {
		return poemModel.Poem{}, &ValidationError{Field: "theme", Message: "theme required"}
	}

	style := strings.TrimSpace(req.Style)
	if style == "" {
		style = DefaultStyle
	}
	mood := strings.TrimSpace(req.Mood)
	if mood == "" {
		mood = DefaultMood
	}

	messages, err := s.template.Format(ctx, map[string]any{
		"system": buildSystemPrompt(style, mood),
		"query":  buildUserPrompt(theme, style, mood, s.catalog.Guidance(style)),
	})
	if err != nil {
		return poemModel.Poem{}, fmt.Errorf("format poem prompt: %w", err)
	}

	response, err := s.chatModel.Generate(ctx, messages,
		model.WithTemperature(Temperature),
		model.WithMaxTokens(MaxTokens),
	)
	if err != nil {
		upstreamErr := toUpstreamError(err)
		s.log.WithFields(logrus.Fields{
			"status": upstreamErr.Status,
			"reason": upstreamErr.Reason,
		}).WithError(err).Warn("poem generation failed")
		return poemModel.Poem{}, upstreamErr
	}

	if response == nil || strings.TrimSpace(response.Content) == "" {
		s.log.Warn("chat model returned no poem content")
		return poemModel.Poem{}, &UpstreamError{Reason: ReasonInvalidShape}
	}

	p := poemModel.New(response.Content, theme, style, mood, s.now())
	s.log.WithFields(logrus.Fields{
		"id":     p.ID,
		"style":  p.Style,
		"mood":   p.Mood,
		"length": len(p.Content),
	}).Info("poem generated")
	return p, nil
}

func toUpstreamError(err error) *UpstreamError {
	if errors.Is(err, ai.ErrInvalidResponse) {
		return &UpstreamError{Reason: ReasonInvalidShape, Err: err}
	}

	var statusErr *ai.StatusError
	if errors.As(err, &statusErr) {
		return &UpstreamError{
			Reason: ReasonRequestFailed,
			Status: statusErr.StatusCode,
			Body:   statusErr.Body,
			Err:    err,
		}
	}

	// Transport errors name the upstream URL; that stays in the log only.
	return &UpstreamError{Reason: ReasonUnreachable, Body: ReasonUnreachable, Err: err}
}
