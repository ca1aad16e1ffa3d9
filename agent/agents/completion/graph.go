package completion

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/contract"
)

type graphInput struct {
	Vars  map[string]any
	Tools []*schema.ToolInfo
}

type promptedInput struct {
	Messages []*schema.Message
	Tools    []*schema.ToolInfo
}

func compileCompletionGraph(
	ctx context.Context,
	chatModel einomodel.ToolCallingChatModel,
	systemPrompt string,
) (compose.Runnable[graphInput, contractx.Proposal], error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.MessagesPlaceholder("history", false),
	)

	graph := compose.NewGraph[graphInput, contractx.Proposal]()

	if err := graph.AddLambdaNode("prompt",
		compose.InvokableLambda(func(ctx context.Context, in graphInput) (promptedInput, error) {
			msgs, err := template.Format(ctx, in.Vars)
			if err != nil {
				return promptedInput{}, fmt.Errorf("format completion prompt: %w", err)
			}
			return promptedInput{Messages: msgs, Tools: in.Tools}, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add completion prompt node: %w", err)
	}

	if err := graph.AddLambdaNode("model",
		compose.InvokableLambda(func(ctx context.Context, in promptedInput) (*schema.Message, error) {
			m := chatModel
			if len(in.Tools) > 0 {
				bound, err := chatModel.WithTools(in.Tools)
				if err != nil {
					return nil, fmt.Errorf("%w: bind tools: %v", contractx.ErrModelInvoke, err)
				}
				m = bound
			}
			msg, err := m.Generate(ctx, in.Messages)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
			}
			if msg == nil {
				return nil, fmt.Errorf("%w: empty model response", contractx.ErrModelInvoke)
			}
			return msg, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add completion model node: %w", err)
	}

	if err := graph.AddLambdaNode("to_proposal",
		compose.InvokableLambda(func(ctx context.Context, msg *schema.Message) (contractx.Proposal, error) {
			return toProposal(ctx, msg), nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add completion proposal node: %w", err)
	}

	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add completion edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add completion edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", "to_proposal"); err != nil {
		return nil, fmt.Errorf("add completion edge model->proposal: %w", err)
	}
	if err := graph.AddEdge("to_proposal", compose.END); err != nil {
		return nil, fmt.Errorf("add completion edge proposal->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("completion.graph"))
	if err != nil {
		return nil, fmt.Errorf("compile completion graph: %w", err)
	}
	return runner, nil
}
