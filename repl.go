package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

type chatSession interface {
	HandleMessage(ctx context.Context, sessionID string, text string) (string, error)
	Reset(ctx context.Context, sessionID string) error
}

// runREPL reads one user message per line until EOF, "exit" or "quit".
// "/reset" starts the conversation over.
func runREPL(ctx context.Context, chat chatSession, sessionID string, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Welcome! I can help you find a restaurant and book, change or cancel a table. Type /reset to start over, exit to quit.")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			fmt.Fprintln(out, "Goodbye!")
			return nil
		case "/reset":
			if err := chat.Reset(ctx, sessionID); err != nil {
				return fmt.Errorf("reset session: %w", err)
			}
			fmt.Fprintln(out, "Conversation reset. How can I help?")
			continue
		}

		reply, err := chat.HandleMessage(ctx, sessionID, line)
		if err != nil {
			return fmt.Errorf("handle message: %w", err)
		}
		fmt.Fprintf(out, "\n%s\n\n", reply)
	}
}
