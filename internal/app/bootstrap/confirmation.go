package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	appconfig "github.com/wolfman30/chamber-scheduler/internal/config"
	"github.com/wolfman30/chamber-scheduler/internal/confirmation"
	"github.com/wolfman30/chamber-scheduler/pkg/logging"
)

// Confirmation providers accepted in CONFIRMATION_PROVIDER.
const (
	ProviderGemini  = "gemini"
	ProviderBedrock = "bedrock"
	ProviderNone    = "none"
)

// BuildConfirmationGenerator wires the optional text generator behind
// confirmation messages. A nil generator means the fixed template is used.
func BuildConfirmationGenerator(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, loadAWS AWSConfigLoader) (confirmation.TextGenerator, func(), error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	noop := func() {}

	switch cfg.ConfirmationProvider {
	case "", ProviderGemini:
		if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
			logger.Warn("gemini api key not set; confirmations use the fixed template")
			return nil, noop, nil
		}
		gen, err := confirmation.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap: gemini client: %w", err)
		}
		logger.Info("confirmation generator enabled", "provider", ProviderGemini, "model", cfg.GeminiModelID)
		return gen, func() { _ = gen.Close() }, nil

	case ProviderBedrock:
		model := strings.TrimSpace(cfg.BedrockModelID)
		if model == "" {
			logger.Warn("bedrock selected but model id empty; confirmations use the fixed template")
			return nil, noop, nil
		}
		if loadAWS == nil {
			return nil, nil, fmt.Errorf("bootstrap: aws config loader is required for bedrock")
		}
		awsCfg, err := loadAWS(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap: load aws config: %w", err)
		}
		gen, err := confirmation.NewBedrockGenerator(bedrockruntime.NewFromConfig(awsCfg), model)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("confirmation generator enabled", "provider", ProviderBedrock, "model", model)
		return gen, noop, nil

	case ProviderNone:
		return nil, noop, nil

	default:
		return nil, nil, fmt.Errorf("bootstrap: unknown confirmation provider %q", cfg.ConfirmationProvider)
	}
}
