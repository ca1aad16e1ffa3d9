package arbiter

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	contractx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/contract"
	nodex "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/nodes/arbiter"
)

func (a *Arbiter) compileTurnGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.TurnState, error) {
			return nodex.ValidateRequest(in, a.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("load_conversation",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.TurnState) (*nodex.TurnState, error) {
			return nodex.LoadConversation(ctx, in, a.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_conversation: %w", err)
	}

	if err := graph.AddLambdaNode("record_user_turn",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.TurnState) (*nodex.TurnState, error) {
			return nodex.RecordUserTurn(in, a.cfg.ExtractLookback)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node record_user_turn: %w", err)
	}

	if err := graph.AddLambdaNode("resolve_lookup",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.TurnState) (*nodex.TurnState, error) {
			return nodex.ResolveLookup(ctx, in, a.tools, a.cfg.AutoCancelOnLookup)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node resolve_lookup: %w", err)
	}

	if err := graph.AddLambdaNode("propose_action",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.TurnState) (*nodex.TurnState, error) {
			return nodex.ProposeAction(ctx, in, a.completer, a.cfg.HistoryWindow)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node propose_action: %w", err)
	}

	if err := graph.AddLambdaNode("gate_action",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.TurnState) (*nodex.TurnState, error) {
			return nodex.GateAction(in, a.cfg.ExtractLookback)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node gate_action: %w", err)
	}

	if err := graph.AddLambdaNode("execute_action",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.TurnState) (*nodex.TurnState, error) {
			return nodex.ExecuteAction(ctx, in, a.tools)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node execute_action: %w", err)
	}

	if err := graph.AddLambdaNode("save_conversation",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.TurnState) (*nodex.TurnState, error) {
			return nodex.SaveConversation(ctx, in, a.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node save_conversation: %w", err)
	}

	if err := graph.AddLambdaNode("publish_events",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.TurnState) (*nodex.TurnState, error) {
			return nodex.PublishEvents(ctx, in, a.notifier)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node publish_events: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_reply",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.TurnState) (nodex.GraphOutput, error) {
			return nodex.FinalizeReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_reply: %w", err)
	}

	lookupBranch := compose.NewGraphBranch(
		func(ctx context.Context, in *nodex.TurnState) (string, error) {
			if in == nil {
				return "", fmt.Errorf("%w: turn state is nil", contractx.ErrValidation)
			}
			if in.HasLookup() {
				return "resolve_lookup", nil
			}
			return "propose_action", nil
		},
		map[string]bool{
			"resolve_lookup": true,
			"propose_action": true,
		},
	)
	if err := graph.AddBranch("record_user_turn", lookupBranch); err != nil {
		return nil, fmt.Errorf("add lookup branch: %w", err)
	}

	gateBranch := compose.NewGraphBranch(
		func(ctx context.Context, in *nodex.TurnState) (string, error) {
			if in == nil {
				return "", fmt.Errorf("%w: turn state is nil", contractx.ErrValidation)
			}
			if in.Pending() {
				return "execute_action", nil
			}
			return "save_conversation", nil
		},
		map[string]bool{
			"execute_action":    true,
			"save_conversation": true,
		},
	)
	if err := graph.AddBranch("gate_action", gateBranch); err != nil {
		return nil, fmt.Errorf("add gate branch: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "load_conversation"},
		{"load_conversation", "record_user_turn"},
		{"resolve_lookup", "save_conversation"},
		{"propose_action", "gate_action"},
		{"execute_action", "save_conversation"},
		{"save_conversation", "publish_events"},
		{"publish_events", "finalize_reply"},
		{"finalize_reply", compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("arbiter.handle_turn"))
	if err != nil {
		return nil, fmt.Errorf("compile arbiter graph: %w", err)
	}
	return runner, nil
}
