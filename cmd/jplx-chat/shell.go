// ABOUTME: Interactive readline shell - slash commands plus message submission.
// ABOUTME: Single-threaded loop; one submission is in flight at a time.

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/jplx13/jplx-chat/internal/agent"
	"github.com/jplx13/jplx-chat/internal/pipeline"
	"github.com/jplx13/jplx-chat/internal/store"
	"github.com/jplx13/jplx-chat/internal/upload"
)

type shell struct {
	conversations *store.Store
	uploads       *upload.Controller
	agents        *agent.Controller
	pipe          *pipeline.Pipeline
}

func (s *shell) run(ctx context.Context) error {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		s.printPrompt()

		// Read input with context awareness
		inputCh := make(chan string, 1)
		errCh := make(chan error, 1)

		go func() {
			if scanner.Scan() {
				inputCh <- scanner.Text()
			} else {
				if err := scanner.Err(); err != nil {
					errCh <- err
				} else {
					errCh <- io.EOF
				}
			}
		}()

		var input string
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		case input = <-inputCh:
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if quit := s.handleCommand(ctx, input); quit {
				return nil
			}
			fmt.Println()
			continue
		}

		s.submit(ctx, input)
		fmt.Println()
	}
}

func (s *shell) printPrompt() {
	key := s.agents.State().Selected
	if att := s.uploads.Selected(); att != nil {
		fmt.Printf("[%s +%s]> ", key, att.Name)
		return
	}
	if key != agent.DefaultKey {
		fmt.Printf("[%s]> ", key)
		return
	}
	fmt.Print("> ")
}

// handleCommand dispatches a slash command. Returns true to exit the shell.
func (s *shell) handleCommand(ctx context.Context, input string) bool {
	cmd, args, _ := strings.Cut(input, " ")
	args = strings.TrimSpace(args)

	switch cmd {
	case "/quit", "/exit", "/q":
		return true
	case "/help":
		printHelp()
	case "/new":
		s.conversations.NewConversation(args)
		if args != "" {
			s.submit(ctx, args)
		} else {
			fmt.Println("Started a new conversation.")
		}
	case "/list":
		s.listConversations()
	case "/switch":
		s.switchConversation(args)
	case "/title":
		s.retitle(args)
	case "/delete":
		s.deleteConversation(args)
	case "/clear":
		s.conversations.ClearAll()
		fmt.Println("All conversations cleared.")
	case "/agents":
		s.listAgents()
	case "/use":
		s.useAgent(args)
	case "/attach":
		s.attach(args)
	case "/detach":
		s.uploads.Remove()
		fmt.Println("Attachment removed.")
	case "/history":
		s.printHistory()
	default:
		fmt.Printf("Unknown command %s. Try /help.\n", cmd)
	}
	return false
}

// submit sends one turn through the pipeline and renders the outcome.
// The pipeline appends both turns to the store; the shell only displays.
func (s *shell) submit(ctx context.Context, text string) {
	if s.agents.State().IsLoading {
		fmt.Println("Still waiting for the previous reply.")
		return
	}

	if s.conversations.ActiveID() == "" {
		s.conversations.NewConversation(text)
	}

	att := s.uploads.Selected()
	msg, err := s.pipe.Submit(ctx, text, att, s.agents.State().Selected)
	if err != nil {
		if banner := s.uploads.State().Error; banner != "" {
			color.Red("%s", banner)
		}
		// The error turn is already in the transcript; fall through to render it.
	}
	s.uploads.Remove()
	if msg.ID != "" {
		s.printMessage(msg)
	}
}

func (s *shell) listConversations() {
	list := s.conversations.List()
	if len(list) == 0 {
		fmt.Println("No conversations yet.")
		return
	}
	for i, conv := range list {
		marker := " "
		if conv.Active {
			marker = color.GreenString("▶")
		}
		preview := conv.LastMessage
		if len(preview) > 40 {
			preview = preview[:40] + "…"
		}
		fmt.Printf("%s %2d. %s %s %s\n",
			marker, i+1, color.New(color.Bold).Sprint(conv.Title),
			color.HiBlackString(relativeTime(conv.Timestamp)),
			color.HiBlackString(preview))
	}
}

// conversationByIndex resolves a 1-based /list position.
func (s *shell) conversationByIndex(arg string) (store.Conversation, bool) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return store.Conversation{}, false
	}
	list := s.conversations.List()
	if n < 1 || n > len(list) {
		return store.Conversation{}, false
	}
	return list[n-1], true
}

func (s *shell) switchConversation(args string) {
	conv, ok := s.conversationByIndex(args)
	if !ok {
		fmt.Println("Usage: /switch <number> (see /list)")
		return
	}
	if s.conversations.Switch(conv.ID) {
		fmt.Printf("Switched to %q.\n", conv.Title)
	}
}

func (s *shell) retitle(args string) {
	id := s.conversations.ActiveID()
	if id == "" {
		fmt.Println("No active conversation.")
		return
	}
	if strings.TrimSpace(args) == "" {
		fmt.Println("Usage: /title <new title>")
		return
	}
	s.conversations.StartEditingTitle(id)
	s.conversations.UpdateTitle(id, args)
	conv, _ := s.conversations.Get(id)
	fmt.Printf("Renamed to %q.\n", conv.Title)
}

func (s *shell) deleteConversation(args string) {
	conv, ok := s.conversationByIndex(args)
	if !ok {
		fmt.Println("Usage: /delete <number> (see /list)")
		return
	}
	s.conversations.Delete(conv.ID)
	fmt.Printf("Deleted %q.\n", conv.Title)
}

func (s *shell) listAgents() {
	selected := s.agents.State().Selected
	for _, key := range agent.Keys() {
		info := agent.Lookup(key)
		marker := " "
		if key == selected {
			marker = color.GreenString("▶")
		}
		fmt.Printf("%s %s %-10s %s\n", marker, info.Emoji, info.Label, color.HiBlackString(info.Tooltip))
	}
}

func (s *shell) useAgent(args string) {
	if args == "" {
		s.agents.Select(agent.DefaultKey)
		fmt.Println("Cleared agent selection, using auto.")
		return
	}
	if !agent.Known(args) {
		fmt.Printf("Unknown agent %q. See /agents.\n", args)
		return
	}
	s.agents.Select(args)
	fmt.Printf("Now using %s %s\n", agent.Lookup(args).Emoji, agent.Lookup(args).Label)
}

func (s *shell) attach(args string) {
	if args == "" {
		fmt.Println("Usage: /attach <path>")
		return
	}
	att, err := upload.Load(args)
	if err != nil {
		color.Red("%v", err)
		return
	}
	if s.uploads.Select(att) {
		fmt.Printf("Attached %s (%.2f MB).\n", att.Name, float64(att.Size)/1024/1024)
	} else {
		color.Red("%s", s.uploads.State().Error)
	}
}

func (s *shell) printHistory() {
	conv, ok := s.conversations.Active()
	if !ok {
		fmt.Println("No active conversation.")
		return
	}
	color.New(color.Bold).Printf("%s\n", conv.Title)
	for _, msg := range conv.Messages {
		s.printMessage(msg)
	}
}

func (s *shell) printMessage(msg store.Message) {
	ts := color.HiBlackString(msg.Timestamp.Format("15:04"))
	switch {
	case msg.IsError:
		fmt.Printf("%s %s %s\n", ts, color.New(color.FgRed, color.Bold).Sprint("error"), msg.Content)
	case msg.Role == store.RoleUser:
		fmt.Printf("%s %s %s\n", ts, color.New(color.FgGreen, color.Bold).Sprint("you"), msg.Content)
		if msg.File != nil {
			fmt.Printf("      %s\n", color.HiBlackString("📎 "+msg.File.Name))
		}
	default:
		label := agent.Lookup(msg.Agent)
		fmt.Printf("%s %s %s\n", ts,
			color.New(color.FgCyan, color.Bold).Sprintf("%s %s", label.Emoji, label.Label),
			msg.Content)
		if msg.DownloadURL != "" {
			fmt.Printf("      %s\n", color.HiBlackString("⬇ "+msg.DownloadURL))
		}
	}
}

// relativeTime renders a timestamp the way the conversation list shows it.
func relativeTime(t time.Time) string {
	diff := time.Since(t)
	switch {
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}

func printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  /new [text]      Start a new conversation (optionally send text)")
	fmt.Println("  /list            List conversations")
	fmt.Println("  /switch <n>      Switch to conversation n")
	fmt.Println("  /title <text>    Rename the active conversation")
	fmt.Println("  /delete <n>      Delete conversation n")
	fmt.Println("  /clear           Delete all conversations")
	fmt.Println("  /agents          List agents")
	fmt.Println("  /use <key>       Select an agent (/use alone resets to auto)")
	fmt.Println("  /attach <path>   Attach a file to the next message")
	fmt.Println("  /detach          Remove the attachment")
	fmt.Println("  /history         Show the active conversation")
	fmt.Println("  /help            Show this help")
	fmt.Println("  /quit            Exit")
}
