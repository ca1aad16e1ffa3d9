package extract

// Selection is what a single reply says about choosing an option and booking it.
// Index is nil when no option could be recovered.
type Selection struct {
	Index           *int
	CustomerName    string
	Phone           string
	SpecialRequests string
}

func (s Selection) HasIndex() bool { return s.Index != nil }

// Infer reads one user message.
func Infer(text string, optionNames []string) Selection {
	out := Selection{
		CustomerName:    Name(text),
		Phone:           Phone(text),
		SpecialRequests: SpecialRequests(text),
	}
	if idx, ok := SelectionIndex(text, optionNames); ok {
		out.Index = &idx
	}
	return out
}

// Contact is what recent user turns say about the customer. Index is the most recent
// option reference, nil when none was found.
type Contact struct {
	Phone        string
	CustomerName string
	Index        *int
}

// Aggregate scans the last lookback user turns newest-first. Phone, name and option
// index are searched independently, each taking the most recent hit.
func Aggregate(userTurns, optionNames []string, lookback int) Contact {
	if lookback > 0 && len(userTurns) > lookback {
		userTurns = userTurns[len(userTurns)-lookback:]
	}
	var out Contact
	for i := len(userTurns) - 1; i >= 0; i-- {
		if out.Phone == "" {
			out.Phone = Phone(userTurns[i])
		}
		if out.CustomerName == "" {
			out.CustomerName = Name(userTurns[i])
		}
		if out.Index == nil && len(optionNames) > 0 {
			if idx, ok := SelectionIndex(userTurns[i], optionNames); ok {
				out.Index = &idx
			}
		}
		if out.Phone != "" && out.CustomerName != "" && (out.Index != nil || len(optionNames) == 0) {
			break
		}
	}
	return out
}

// Merge fills the blank phone and name of s from c. The index is left alone: an
// option reference counts only when it is in the reply being read.
func (s Selection) Merge(c Contact) Selection {
	if s.Phone == "" {
		s.Phone = c.Phone
	}
	if s.CustomerName == "" {
		s.CustomerName = c.CustomerName
	}
	return s
}
