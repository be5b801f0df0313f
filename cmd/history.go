package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizbot/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently posted quizzes",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		verbose, _ := cmd.Flags().GetBool("verbose")

		s, err := inspectStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		posts, err := s.QuizRepo().RecentPosts(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("query posts: %w", err)
		}

		printHistory(cmd.OutOrStdout(), posts, verbose)
		return nil
	},
}

func printHistory(w io.Writer, posts []store.QuizPost, verbose bool) {
	if len(posts) == 0 {
		fmt.Fprintln(w, "No quizzes posted yet.")
		return
	}

	fmt.Fprintf(w, "%-19s  %-9s  %-3s  %-4s  %s\n", "Timestamp", "Source", "Try", "Sent", "Question")
	fmt.Fprintln(w, strings.Repeat("─", 100))

	for _, p := range posts {
		sent := "✓"
		if !p.Published {
			sent = "✗"
		}
		fmt.Fprintf(w, "%-19s  %-9s  %-3d  %-4s  %s\n",
			p.Timestamp.Local().Format("2006-01-02 15:04:05"),
			p.Source,
			p.Attempts,
			sent,
			truncate(p.Question, 60),
		)
		if !verbose {
			continue
		}
		for i, opt := range p.Options {
			mark := " "
			if i == p.CorrectOptionID {
				mark = "*"
			}
			fmt.Fprintf(w, "      %s %d) %s\n", mark, i+1, opt)
		}
		if p.Explanation != "" {
			fmt.Fprintf(w, "        %s\n", p.Explanation)
		}
		if p.PublishError != "" {
			fmt.Fprintf(w, "        error: %s\n", p.PublishError)
		}
	}
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of posts to show")
	historyCmd.Flags().BoolP("verbose", "v", false, "Show options and explanations")
}
