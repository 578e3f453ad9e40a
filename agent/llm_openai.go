package agent

import (
	"context"
	"errors"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
)

// OpenAILLM implements ModelClient using the official openai-go SDK (chat
// completions with function tools). DeepSeek and other OpenAI-compatible
// endpoints work through BaseURL.
type OpenAILLM struct {
	Model string
	Opts  []option.RequestOption
}

// NewOpenAILLMFromConfig builds the client from provider settings.
func NewOpenAILLMFromConfig(cfg *ModelSettings) (*OpenAILLM, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key missing")
	}
	if cfg.Model == "" {
		return nil, errors.New("llm model is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAILLM{Model: cfg.Model, Opts: opts}, nil
}

// Complete issues a chat completion and translates choices into ordered
// parts. OpenAI has no native web-search tool here, so EnableWebSearch is
// ignored.
func (o *OpenAILLM) Complete(ctx context.Context, req *Request) (*Response, error) {
	client := openai.NewClient(o.Opts...)

	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.System != "" {
		msgs = append(msgs, openai.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		msgs = append(msgs, encodeOpenAIMessage(m)...)
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	params := openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(o.Model),
		Messages:            msgs,
		MaxCompletionTokens: openai.Int(int64(maxTokens)),
		Temperature:         openai.Float(req.Temperature),
	}
	for _, def := range req.Tools {
		params.Tools = append(params.Tools, openai.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
			Name:        def.Name,
			Description: openai.String(def.Description),
			Parameters:  shared.FunctionParameters(def.InputSchema),
		}))
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai: empty choices")
	}

	choice := resp.Choices[0]
	out := &Response{StopReason: string(choice.FinishReason)}
	if choice.Message.Content != "" {
		out.Parts = append(out.Parts, TextPart{Text: choice.Message.Content})
	}
	for _, call := range choice.Message.ToolCalls {
		out.Parts = append(out.Parts, ToolUsePart{
			ID:    call.ID,
			Name:  call.Function.Name,
			Input: []byte(call.Function.Arguments),
		})
	}
	return out, nil
}

// encodeOpenAIMessage maps one conversation turn onto the chat-completions
// shapes: assistant tool invocations become tool_calls, tool results become
// role=tool messages keyed by call ID.
func encodeOpenAIMessage(m Message) []openai.ChatCompletionMessageParamUnion {
	var out []openai.ChatCompletionMessageParamUnion
	switch m.Role {
	case RoleAssistant:
		assistant := openai.ChatCompletionAssistantMessageParam{}
		var text string
		for _, part := range m.Parts {
			switch v := part.(type) {
			case TextPart:
				if text != "" {
					text += "\n"
				}
				text += v.Text
			case ToolUsePart:
				assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
					OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
						ID: v.ID,
						Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
							Name:      v.Name,
							Arguments: string(v.Input),
						},
					},
				})
			}
		}
		if text != "" {
			assistant.Content.OfString = openai.String(text)
		}
		out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
	default:
		var text string
		for _, part := range m.Parts {
			switch v := part.(type) {
			case TextPart:
				if text != "" {
					text += "\n"
				}
				text += v.Text
			case ToolResultPart:
				out = append(out, openai.ToolMessage(v.Content, v.ToolUseID))
			}
		}
		if text != "" {
			out = append(out, openai.UserMessage(text))
		}
	}
	return out
}
