package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/polderlab/actornet/pkg/ai"

	"github.com/openai/openai-go/v3"
)

// GenerateCompletionWithFormat sends a prompt to the chat model and
// unmarshals the response into the provided output struct, using a JSON
// schema derived from the struct to enforce structure. Used by the
// similarity judge, which needs a numeric score back rather than prose.
func (c *ScorerOpenAIClient) GenerateCompletionWithFormat(
	ctx context.Context,
	name string,
	description string,
	prompt string,
	out any,
	opts ...ai.GenerateOption,
) error {
	if c.ChatClient == nil {
		return fmt.Errorf("no chat endpoint configured")
	}

	schema := ai.GenerateSchema(out)
	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        name,
		Description: openai.String(description),
		Schema:      schema,
		Strict:      openai.Bool(true),
	}

	options := ai.GenerateOptions{
		Model:       c.chatModel,
		Temperature: 0.1,
	}
	for _, o := range opts {
		o(&options)
	}

	msgs := []openai.ChatCompletionMessageParamUnion{}
	for _, sp := range options.SystemPrompts {
		msgs = append(msgs, openai.SystemMessage(sp))
	}
	msgs = append(msgs, openai.UserMessage(prompt))

	body := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(options.Model),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: schemaParam,
			},
		},
		Messages:    msgs,
		Temperature: openai.Float(options.Temperature),
	}

	rCtx, cancel := context.WithTimeout(ctx, time.Minute*time.Duration(c.timeoutMin))
	defer cancel()

	if err := c.reqLock.Acquire(rCtx, 1); err != nil {
		return err
	}
	defer c.reqLock.Release(1)

	start := time.Now()
	response, err := c.ChatClient.Chat.Completions.New(rCtx, body)
	if err != nil {
		return err
	}
	duration := time.Since(start).Milliseconds()

	metrics := ai.ModelMetrics{
		InputTokens:  int(response.Usage.PromptTokens),
		OutputTokens: int(response.Usage.CompletionTokens),
		TotalTokens:  int(response.Usage.TotalTokens),
		DurationMs:   duration,
	}
	c.modifyMetrics(metrics)

	if len(response.Choices) == 0 {
		return fmt.Errorf("chat model returned no choices")
	}

	return ai.UnmarshalFlexible(response.Choices[0].Message.Content, out)
}
