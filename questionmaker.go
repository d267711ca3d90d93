package partyhistory

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIProvider generates content with OpenAI chat completions, using forced
// tool calls for structured output.
type OpenAIProvider struct {
	client     *openai.Client
	model      string
	transcript *Transcript
	logger     *zap.Logger
}

// NewOpenAIProvider creates a new provider with an OpenAI client
func NewOpenAIProvider(cfg ProviderConfig) *OpenAIProvider {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4o
	}

	return &OpenAIProvider{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      model,
		transcript: cfg.Transcript,
		logger:     orNop(cfg.Logger),
	}
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return fmt.Sprintf("%s:%s", ProviderOpenAI, p.model)
}

var submitQuestionsTool = openai.Tool{
	Type: openai.ToolTypeFunction,
	Function: &openai.FunctionDefinition{
		Name:        "submit_questions",
		Description: "Submit generated quiz questions",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"questions": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"id": map[string]interface{}{
								"type": "integer",
							},
							"question": map[string]interface{}{
								"type":        "string",
								"description": "The question text",
							},
							"options": map[string]interface{}{
								"type": "array",
								"items": map[string]interface{}{
									"type": "string",
								},
								"description": "Array of 4 multiple choice options",
							},
							"correctOptionIndex": map[string]interface{}{
								"type":        "integer",
								"description": "0-based index of the correct answer",
							},
							"explanation": map[string]interface{}{
								"type":        "string",
								"description": "Brief explanation of why the answer is correct",
							},
						},
						"required": []string{"id", "question", "options", "correctOptionIndex", "explanation"},
					},
				},
			},
			"required": []string{"questions"},
		},
	},
}

var submitEventsTool = openai.Tool{
	Type: openai.ToolTypeFunction,
	Function: &openai.FunctionDefinition{
		Name:        "submit_events",
		Description: "Submit timeline events in chronological order",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"events": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"year":         map[string]interface{}{"type": "string"},
							"title":        map[string]interface{}{"type": "string"},
							"description":  map[string]interface{}{"type": "string"},
							"significance": map[string]interface{}{"type": "string"},
						},
						"required": []string{"year", "title", "description", "significance"},
					},
				},
			},
			"required": []string{"events"},
		},
	},
}

// FetchQuestions generates n questions through the submit_questions tool
func (p *OpenAIProvider) FetchQuestions(ctx context.Context, n int) ([]Question, error) {
	p.logger.Debug("Generating questions", zap.Int("count", n), zap.String("model", p.model))

	var toolArgs struct {
		Questions []Question `json:"questions"`
	}
	if err := p.callTool(ctx, "questions", questionsPrompt(n), submitQuestionsTool, &toolArgs); err != nil {
		return nil, err
	}
	if len(toolArgs.Questions) == 0 {
		return nil, ErrEmptyResponse
	}

	p.logger.Debug("Generated questions", zap.Int("count", len(toolArgs.Questions)))
	return toolArgs.Questions, nil
}

// FetchTimeline generates n events through the submit_events tool
func (p *OpenAIProvider) FetchTimeline(ctx context.Context, n int) ([]TimelineEvent, error) {
	var toolArgs struct {
		Events []TimelineEvent `json:"events"`
	}
	if err := p.callTool(ctx, "timeline", timelinePrompt(n), submitEventsTool, &toolArgs); err != nil {
		return nil, err
	}
	if len(toolArgs.Events) == 0 {
		return nil, ErrEmptyResponse
	}
	return toolArgs.Events, nil
}

func (p *OpenAIProvider) callTool(ctx context.Context, operation, prompt string, tool openai.Tool, out interface{}) error {
	p.transcript.LogRequest(operation, prompt)

	resp, err := p.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: p.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: tutorSystemInstruction,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Tools: []openai.Tool{tool},
			ToolChoice: openai.ToolChoice{
				Type: openai.ToolTypeFunction,
				Function: openai.ToolFunction{
					Name: tool.Function.Name,
				},
			},
		},
	)
	if err != nil {
		p.transcript.LogFailure(operation, err)
		return fmt.Errorf("%w: %w", ErrProviderRequest, err)
	}

	if len(resp.Choices) == 0 {
		return fmt.Errorf("%w: no choices in response", ErrEmptyResponse)
	}

	choice := resp.Choices[0]
	if len(choice.Message.ToolCalls) == 0 {
		return fmt.Errorf("%w: no tool calls in response", ErrMalformedResponse)
	}

	toolCall := choice.Message.ToolCalls[0]
	p.transcript.LogResponse(operation, toolCall.Function.Arguments)
	if toolCall.Function.Name != tool.Function.Name {
		return fmt.Errorf("%w: unexpected tool call: %s", ErrMalformedResponse, toolCall.Function.Name)
	}

	if err := json.Unmarshal([]byte(toolCall.Function.Arguments), out); err != nil {
		return fmt.Errorf("%w: failed to parse tool arguments: %v", ErrMalformedResponse, err)
	}
	return nil
}

// ChatReply continues the tutor conversation with a plain completion
func (p *OpenAIProvider) ChatReply(ctx context.Context, history []ChatMessage, message string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: tutorSystemInstruction,
	})
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleModel {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Text})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	p.transcript.LogRequest("chat", message)
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    p.model,
		Messages: messages,
	})
	if err != nil {
		p.transcript.LogFailure("chat", err)
		return "", fmt.Errorf("%w: %w", ErrProviderRequest, err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}

	text := resp.Choices[0].Message.Content
	p.transcript.LogResponse("chat", text)
	return text, nil
}
