package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/samvad-hq/okbot/internal/config"
	"github.com/samvad-hq/okbot/internal/domain"
	"github.com/samvad-hq/okbot/internal/store"
)

type command func(ctx context.Context, cfg *config.Config, out io.Writer) error

var commands = map[string]command{
	"threads": printThreads,
}

func main() {
	if len(os.Args) < 2 || commands[os.Args[1]] == nil {
		usage(os.Stderr)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := commands[os.Args[1]](context.Background(), cfg, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintf(w, "Usage: %s [%s]\n", os.Args[0], strings.Join(names, ", "))
}

func printThreads(ctx context.Context, cfg *config.Config, out io.Writer) error {
	st, err := store.New(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer st.Close()

	convs, err := st.Threads(ctx)
	if err != nil {
		return err
	}
	writeConversations(out, convs, cfg.SiteUsername)
	return nil
}

// writeConversations prints each conversation followed by a blank line.
func writeConversations(out io.Writer, convs []domain.Conversation, username string) {
	for _, c := range convs {
		for _, m := range c.Messages {
			body := strings.TrimSpace(m.Body)
			if m.Sender == username {
				fmt.Fprintf(out, "[OkBot]:  %s\n", body)
			} else {
				fmt.Fprintf(out, "[Suitor]: %s\n", body)
			}
		}
		fmt.Fprintln(out)
	}
}
