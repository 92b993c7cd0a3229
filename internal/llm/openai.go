package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"backend/internal/criteria"
	"backend/internal/ratelimit"
)

const (
	gradeSystemPrompt = "Always only answer with 'acceptable' or 'unacceptable'. Do not provide any explanation or additional text."
	genericGradeLead  = "Is this statement acceptable or unacceptable?"

	perturbSystemPrompt = "You rewrite text according to an instruction. Respond with the rewritten text only, no explanation."

	batchPerturbInstruction = "Each numbered line contains a rewriting instruction followed by a statement. " +
		"Rewrite each statement according to its instruction. Reply with one numbered line per item, keeping the same numbers."
	batchGradeInstruction = "For each numbered statement below, reply with one line per item in the form " +
		"'{number}. acceptable' or '{number}. unacceptable'. No other text."

	minGeneratedLen = 10
	maxExamples     = 10
)

// OpenAIConfig configures an OpenAI-compatible provider. BaseURL may point at
// any compatible endpoint (e.g. Groq); APIKey is mandatory.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
}

// OpenAIProvider implements Provider over the chat completions API.
// Every outbound call passes through the shared rate limiter; transient
// failures are retried exactly once after a rate-limit-aware backoff.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float32
	limiter     *ratelimit.Limiter
	logger      *zap.Logger
}

// NewOpenAIProvider builds a provider or fails fast when credentials are
// missing. A provider without credentials must never reach the network.
func NewOpenAIProvider(cfg OpenAIConfig, limiter *ratelimit.Limiter, logger *zap.Logger) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
		logger.Warn("LLM model not configured, using default", zap.String("model", model))
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.6
	}
	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       model,
		temperature: temperature,
		limiter:     limiter,
		logger:      logger,
	}, nil
}

// complete performs one rate-limited chat completion with a single retry.
// The retry backoff honors a parsed "retry after N ms" hint when the
// provider supplies one, else the limiter's own interval.
func (p *OpenAIProvider) complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: p.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}
	if maxTokens > 0 {
		req.MaxTokens = maxTokens
	}

	text, err := p.send(ctx, req)
	if err == nil {
		return text, nil
	}

	backoff := p.limiter.RetryAfter(err)
	p.logger.Warn("Provider call failed, retrying once",
		zap.Error(err), zap.Duration("backoff", backoff))
	select {
	case <-time.After(backoff):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	text, err = p.send(ctx, req)
	if err != nil {
		return "", fmt.Errorf("provider call failed after retry: %w", err)
	}
	return text, nil
}

func (p *OpenAIProvider) send(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", err
	}
	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("provider returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Grade implements Provider. Failures degrade to DecisionUnknown.
func (p *OpenAIProvider) Grade(ctx context.Context, statement, topicPrompt string) Decision {
	lead := topicPrompt
	if lead == "" {
		lead = genericGradeLead
	}
	instruction := fmt.Sprintf("%s %s", lead, statement)

	raw, err := p.complete(ctx, gradeSystemPrompt, instruction, 10)
	if err != nil {
		p.logger.Error("Grade call failed", zap.Error(err))
		return DecisionUnknown
	}
	decision := ParseDecision(raw)
	if decision == DecisionUnknown {
		p.logger.Warn("Unexpected grading response", zap.String("response", raw))
	}
	return decision
}

// Perturb implements Provider.
func (p *OpenAIProvider) Perturb(ctx context.Context, prompt string) (string, error) {
	result, err := p.complete(ctx, perturbSystemPrompt, prompt, 0)
	if err != nil {
		return "", err
	}
	result = strings.TrimSpace(result)
	if result == "" {
		return "", fmt.Errorf("provider returned empty perturbation")
	}
	// The prompt is "{instruction}: {statement}"; an echo of the statement
	// means the model ignored the instruction. Not an error, but worth a flag.
	if _, statement, found := strings.Cut(prompt, ": "); found && strings.TrimSpace(statement) == result {
		p.logger.Warn("Perturbation output equals input", zap.String("statement", result))
	}
	return result, nil
}

// BatchPerturb implements Provider using the numbered-list format.
func (p *OpenAIProvider) BatchPerturb(ctx context.Context, prompts []string) ([]*string, error) {
	if len(prompts) == 0 {
		return nil, nil
	}
	payload := EncodeNumberedList(batchPerturbInstruction, prompts)
	raw, err := p.complete(ctx, perturbSystemPrompt, payload, 0)
	if err != nil {
		return nil, err
	}
	return ParseNumberedList(raw, len(prompts)), nil
}

// BatchGrade implements Provider using the numbered-list format.
func (p *OpenAIProvider) BatchGrade(ctx context.Context, statements []string, topicPrompt string) ([]Decision, error) {
	if len(statements) == 0 {
		return nil, nil
	}
	lead := topicPrompt
	if lead == "" {
		lead = genericGradeLead
	}
	payload := EncodeNumberedList(lead+"\n"+batchGradeInstruction, statements)
	raw, err := p.complete(ctx, gradeSystemPrompt, payload, 0)
	if err != nil {
		return nil, err
	}

	lines := ParseNumberedList(raw, len(statements))
	decisions := make([]Decision, len(statements))
	for i, line := range lines {
		if line == nil {
			decisions[i] = DecisionUnknown
			continue
		}
		decisions[i] = ParseDecision(*line)
	}
	return decisions, nil
}

// Generate implements Provider: produces up to count new statements
// conditioned on at most ten examples and the criterion's generation prompt.
func (p *OpenAIProvider) Generate(ctx context.Context, examples []string, topicPrompt, criterionName string, count int) ([]string, error) {
	if count <= 0 {
		return nil, nil
	}
	if len(examples) > maxExamples {
		examples = examples[:maxExamples]
	}

	var b strings.Builder
	b.WriteString(criteria.GenerationPrompt(criterionName))
	if topicPrompt != "" {
		fmt.Fprintf(&b, "\nTopic context: %s", topicPrompt)
	}
	fmt.Fprintf(&b, "\nGenerate exactly %d statements, one per numbered line.", count)
	if len(examples) > 0 {
		b.WriteString("\n\nExamples:\n")
		for i, ex := range examples {
			fmt.Fprintf(&b, "%d. %s\n", i+1, ex)
		}
	}

	raw, err := p.complete(ctx, "You generate test statements. Reply with numbered lines only.", b.String(), 0)
	if err != nil {
		return nil, fmt.Errorf("generate call failed: %w", err)
	}
	return parseGeneratedLines(raw, count, minGeneratedLen), nil
}
