package confirmation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// BedrockConverseAPI is the subset of the Bedrock runtime client we call.
type BedrockConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

const bedrockMaxTokens = 300

// BedrockGenerator implements TextGenerator with the Bedrock Converse API.
type BedrockGenerator struct {
	api     BedrockConverseAPI
	modelID string
}

func NewBedrockGenerator(api BedrockConverseAPI, modelID string) (*BedrockGenerator, error) {
	if api == nil {
		return nil, errors.New("confirmation: bedrock client is required")
	}
	if strings.TrimSpace(modelID) == "" {
		return nil, errors.New("confirmation: bedrock model id is required")
	}
	return &BedrockGenerator{api: api, modelID: modelID}, nil
}

func (b *BedrockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	out, err := b.api.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId: aws.String(b.modelID),
		Messages: []brtypes.Message{{
			Role:    brtypes.ConversationRoleUser,
			Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: prompt}},
		}},
		InferenceConfig: &brtypes.InferenceConfiguration{
			MaxTokens: aws.Int32(bedrockMaxTokens),
		},
	})
	if err != nil {
		return "", fmt.Errorf("confirmation: bedrock converse: %w", err)
	}
	return bedrockOutputText(out)
}

func bedrockOutputText(out *bedrockruntime.ConverseOutput) (string, error) {
	if out == nil {
		return "", errors.New("confirmation: bedrock response is nil")
	}
	msg, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return "", errors.New("confirmation: bedrock response did not include a message")
	}

	var text strings.Builder
	for _, block := range msg.Value.Content {
		if t, ok := block.(*brtypes.ContentBlockMemberText); ok {
			text.WriteString(t.Value)
		}
	}
	result := strings.TrimSpace(text.String())
	if result == "" {
		return "", ErrEmptyResponse
	}
	return result, nil
}
