package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/chef-innovativo/server/internal/agent/model"
)

type turnFlags struct {
	sessionID string
	diet      []string
	language  string
}

func (f *turnFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.sessionID, "session", "s", "", "Session id of the transcript (generated when empty)")
	cmd.Flags().StringSliceVarP(&f.diet, "diet", "d", nil, "Dietary preferences, comma separated (e.g. vegetarian,gluten-free)")
	cmd.Flags().StringVarP(&f.language, "lang", "l", "", "Reply language code, skips detection")
}

func newAskCommand(s *session) *cobra.Command {
	var f turnFlags
	cmd := &cobra.Command{
		Use:   "ask [desire...]",
		Short: "Generate one recipe and exit",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := s.app.Runner.Invoke(cmd.Context(), model.TurnInput{
				SessionID:          f.sessionID,
				Desire:             strings.Join(args, " "),
				DietaryPreferences: f.diet,
				Language:           f.language,
			})
			if err != nil {
				return err
			}
			printOutcome(cmd.OutOrStdout(), out)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newChatCommand(s *session) *cobra.Command {
	var f turnFlags
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive recipe conversation",
		Long: `Each line is a food wish. Commands:
  /diet a, b   set dietary preferences (empty clears them)
  /lang xx     force the reply language (empty restores detection)
  /history     show this session's transcript
  /new         start a new session
  /quit        leave`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.sessionID == "" {
				f.sessionID = uuid.NewString()
			}
			return runChat(cmd, s.app, &f)
		},
	}
	f.register(cmd)
	return cmd
}

func runChat(cmd *cobra.Command, app *App, f *turnFlags) error {
	ctx := cmd.Context()
	w := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())

	fmt.Fprintf(w, "Innovative Chef (session %s). What would you like to cook?\n", f.sessionID)
	for {
		fmt.Fprint(w, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(w)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "/quit" || line == "exit" || line == "quit":
			fmt.Fprintln(w, "Bye!")
			return nil
		case strings.HasPrefix(line, "/diet"):
			f.diet = splitList(strings.TrimPrefix(line, "/diet"))
			fmt.Fprintf(w, "Dietary preferences: %s\n", orNone(f.diet))
			continue
		case strings.HasPrefix(line, "/lang"):
			f.language = strings.TrimSpace(strings.TrimPrefix(line, "/lang"))
			fmt.Fprintf(w, "Language: %s\n", orAuto(f.language))
			continue
		case line == "/new":
			f.sessionID = uuid.NewString()
			fmt.Fprintf(w, "New session %s\n", f.sessionID)
			continue
		case line == "/history":
			if err := printHistory(cmd, app, f.sessionID); err != nil {
				return err
			}
			continue
		}

		out, err := app.Runner.Invoke(ctx, model.TurnInput{
			SessionID:          f.sessionID,
			Desire:             line,
			DietaryPreferences: f.diet,
			Language:           f.language,
		})
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			continue
		}
		printOutcome(w, out)
	}
}

func newIndexCommand(s *session) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build the pairing index from the corpus directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if s.app.Index == nil {
				return errors.New("pairing index is not configured")
			}
			if force {
				n, err := s.app.Index.Rebuild(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d chunks\n", n)
				return nil
			}
			if err := s.app.Index.EnsureBuilt(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Pairing index ready")
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Rebuild even when an index already exists")
	return cmd
}

func newHistoryCommand(s *session) *cobra.Command {
	var (
		sessionID string
		clear     bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or clear the transcript of a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if clear {
				if err := s.app.Conversations.Clear(cmd.Context(), sessionID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared session %s\n", sessionID)
				return nil
			}
			return printHistory(cmd, s.app, sessionID)
		},
	}
	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "Session id")
	cmd.Flags().BoolVar(&clear, "clear", false, "Delete the transcript")
	_ = cmd.MarkFlagRequired("session")
	return cmd
}

func printHistory(cmd *cobra.Command, app *App, sessionID string) error {
	msgs, err := app.Conversations.LoadTranscript(cmd.Context(), sessionID)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if len(msgs) == 0 {
		fmt.Fprintln(w, "No messages yet.")
		return nil
	}
	for _, m := range msgs {
		fmt.Fprintf(w, "[%s] %s\n", m.Role, m.Content)
	}
	return nil
}

func printOutcome(w io.Writer, s *model.RecipeState) {
	if s.Succeeded() {
		fmt.Fprintln(w, s.FinalRecipe)
		return
	}
	fmt.Fprintln(w, s.Clarification)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func orNone(v []string) string {
	if len(v) == 0 {
		return "none"
	}
	return strings.Join(v, ", ")
}

func orAuto(v string) string {
	if v == "" {
		return "auto"
	}
	return v
}
