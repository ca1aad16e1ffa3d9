package arbiternode

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/contract"
)

func FinalizeReply(in *TurnState) (GraphOutput, error) {
	if in == nil || in.Conversation == nil {
		return GraphOutput{}, fmt.Errorf("%w: conversation is nil", contractx.ErrValidation)
	}

	reply := strings.TrimSpace(in.Reply)
	if reply == "" {
		reply = MsgDefaultGreeting
	}
	return GraphOutput{Reply: reply, Phase: in.Conversation.Context.Phase()}, nil
}
