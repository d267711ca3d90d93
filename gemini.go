package partyhistory

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiProvider generates content with Google's Gemini API
type GeminiProvider struct {
	client     *genai.Client
	model      string
	transcript *Transcript
	logger     *zap.Logger
}

// NewGeminiProvider creates a Gemini client from cfg.
func NewGeminiProvider(ctx context.Context, cfg ProviderConfig) (*GeminiProvider, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}

	return &GeminiProvider{
		client:     client,
		model:      model,
		transcript: cfg.Transcript,
		logger:     orNop(cfg.Logger),
	}, nil
}

// Name returns the provider name.
func (g *GeminiProvider) Name() string {
	return fmt.Sprintf("%s:%s", ProviderGemini, g.model)
}

var questionSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"id":       {Type: genai.TypeInteger},
			"question": {Type: genai.TypeString},
			"options": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"correctOptionIndex": {Type: genai.TypeInteger, Description: "Index of the correct option (0-3)"},
			"explanation":        {Type: genai.TypeString, Description: "Brief explanation of why the answer is correct"},
		},
		Required: []string{"id", "question", "options", "correctOptionIndex", "explanation"},
	},
}

var timelineSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"year":         {Type: genai.TypeString},
			"title":        {Type: genai.TypeString},
			"description":  {Type: genai.TypeString},
			"significance": {Type: genai.TypeString},
		},
		Required: []string{"year", "title", "description", "significance"},
	},
}

// FetchQuestions asks Gemini for n questions in JSON mode.
func (g *GeminiProvider) FetchQuestions(ctx context.Context, n int) ([]Question, error) {
	text, err := g.generateJSON(ctx, "questions", questionsPrompt(n), questionSchema)
	if err != nil {
		return nil, err
	}
	return decodeList[Question](text)
}

// FetchTimeline asks Gemini for n chronological milestones.
func (g *GeminiProvider) FetchTimeline(ctx context.Context, n int) ([]TimelineEvent, error) {
	text, err := g.generateJSON(ctx, "timeline", timelinePrompt(n), timelineSchema)
	if err != nil {
		return nil, err
	}
	return decodeList[TimelineEvent](text)
}

func (g *GeminiProvider) generateJSON(ctx context.Context, operation, prompt string, schema *genai.Schema) (string, error) {
	g.transcript.LogRequest(operation, prompt)
	g.logger.Debug("Gemini request", zap.String("operation", operation), zap.String("model", g.model))

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	})
	if err != nil {
		g.transcript.LogFailure(operation, err)
		return "", fmt.Errorf("%w: %w", ErrProviderRequest, err)
	}

	text := resp.Text()
	g.transcript.LogResponse(operation, text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// ChatReply continues the tutor conversation. history holds the transcript
// before message.
func (g *GeminiProvider) ChatReply(ctx context.Context, history []ChatMessage, message string) (string, error) {
	contents := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		var role genai.Role = genai.RoleUser
		if m.Role == RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Text, role))
	}

	chat, err := g.client.Chats.Create(ctx, g.model, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(tutorSystemInstruction, genai.RoleUser),
	}, contents)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrProviderRequest, err)
	}

	g.transcript.LogRequest("chat", message)
	resp, err := chat.SendMessage(ctx, genai.Part{Text: message})
	if err != nil {
		g.transcript.LogFailure("chat", err)
		return "", fmt.Errorf("%w: %w", ErrProviderRequest, err)
	}

	text := resp.Text()
	g.transcript.LogResponse("chat", text)
	return text, nil
}
