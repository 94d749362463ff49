package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Asker answers one question.
type Asker interface {
	Ask(ctx context.Context, question string) (string, error)
}

var (
	bannerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#06B6D4")).
			Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8"))
	promptStyle = lipgloss.NewStyle().Bold(true)
)

// Banner returns the welcome box shown when a chat session starts.
func Banner() string {
	body := titleStyle.Render("Islamic Finance Assistant") + "\n" +
		"Answers are drawn only from the Quran, Hadith, scholar writings\n" +
		"and AAOIFI standards, with a citation for every claim.\n" +
		mutedStyle.Render("Type 'quit' or 'exit' to leave.")
	return bannerStyle.Render(body)
}

// Chat runs a question/answer loop over in and out until the user types quit
// or exit, input ends, or ctx is cancelled. Blank lines are ignored. An error
// from asker is printed and the session continues.
func Chat(ctx context.Context, asker Asker, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, Banner())
	fmt.Fprintln(out)

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
		close(lines)
	}()

	for {
		fmt.Fprint(out, promptStyle.Render("You: "))
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "\nGoodbye.")
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			fmt.Fprintln(out, "\nGoodbye.")
			return <-readErr
		}
		question := strings.TrimSpace(line)
		if question == "" {
			continue
		}
		if strings.EqualFold(question, "quit") || strings.EqualFold(question, "exit") {
			fmt.Fprintln(out, "Goodbye.")
			return nil
		}
		answer, err := asker.Ask(ctx, question)
		if err != nil {
			if ctx.Err() != nil {
				fmt.Fprintln(out, "\nGoodbye.")
				return nil
			}
			fmt.Fprintln(out, errorStyle.Render("Error: "+err.Error()))
			fmt.Fprintln(out)
			continue
		}
		fmt.Fprintf(out, "\nAssistant: %s\n\n", answer)
	}
}
