package completion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/contract"
	llmx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/llm"
	promptx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/prompt"
	statex "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/state"
)

var _ contractx.Completer = (*Service)(nil)

// Service turns a transcript and dialogue context into one Proposal through an
// eino tool-calling chat model.
type Service struct {
	runner compose.Runnable[graphInput, contractx.Proposal]
}

func New(ctx context.Context, chatModel einomodel.ToolCallingChatModel, systemPrompt string) (*Service, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: chat model is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: arbiter prompt", contractx.ErrPromptMissing)
	}

	runner, err := compileCompletionGraph(ctx, chatModel, systemPrompt)
	if err != nil {
		return nil, err
	}
	return &Service{runner: runner}, nil
}

// NewFromConfig builds the OpenRouter-backed model and the embedded arbiter prompt.
func NewFromConfig(ctx context.Context, cfg llmx.Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	orCfg := cfg.OpenRouterFor(contractx.AgentTypeArbiter)
	chatModel, err := orCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("create arbiter model: %w", err)
	}
	return New(ctx, chatModel, promptx.LoadPromptSet().Arbiter)
}

func (s *Service) Complete(ctx context.Context, req contractx.CompletionRequest) (contractx.Proposal, error) {
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	out, err := s.runner.Invoke(ctx, graphInput{
		Vars: map[string]any{
			"current_date": now.Format("2006-01-02"),
			"situation":    req.Context.Summary(),
			"history":      toMessages(req.Transcript),
		},
		Tools: req.Tools,
	})
	if err != nil {
		if errors.Is(err, contractx.ErrModelInvoke) {
			return contractx.Proposal{}, err
		}
		return contractx.Proposal{}, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	return out, nil
}

// toMessages maps transcript turns onto chat messages. Tool results are sent as
// system notes because the transcript does not keep the assistant call envelope
// a tool-role message would have to answer.
func toMessages(turns []statex.Turn) []*schema.Message {
	msgs := make([]*schema.Message, 0, len(turns))
	for _, t := range turns {
		content := strings.TrimSpace(t.Content)
		if content == "" {
			continue
		}
		switch t.Role {
		case statex.RoleUser:
			msgs = append(msgs, schema.UserMessage(content))
		case statex.RoleAssistant:
			msgs = append(msgs, schema.AssistantMessage(content, nil))
		case statex.RoleTool:
			msgs = append(msgs, schema.SystemMessage(fmt.Sprintf("Result of %s: %s", t.Name, content)))
		}
	}
	return msgs
}

// toProposal keeps only the first tool call. Unparseable arguments degrade to an
// empty argument map so the gate can reject the call by its own rules.
func toProposal(ctx context.Context, msg *schema.Message) contractx.Proposal {
	if msg == nil {
		return contractx.Proposal{}
	}
	if len(msg.ToolCalls) == 0 {
		return contractx.TextProposal(msg.Content)
	}
	if len(msg.ToolCalls) > 1 {
		log.Debug().Int("calls", len(msg.ToolCalls)).Msg("completion: extra tool calls dropped")
	}

	call := msg.ToolCalls[0]
	tool := strings.TrimSpace(call.Function.Name)
	args := map[string]any{}
	if raw := strings.TrimSpace(call.Function.Arguments); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			log.Warn().Err(err).Str("tool", tool).Msg("completion: invalid tool args")
			args = map[string]any{}
		}
	}

	return contractx.Proposal{
		Text: strings.TrimSpace(msg.Content),
		Call: &contractx.ToolRequest{
			ID:   call.ID,
			Tool: tool,
			Args: args,
		},
	}
}
