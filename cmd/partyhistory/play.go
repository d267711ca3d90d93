package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"partyhistory"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func playCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play the quiz interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp(app)

			session := app.NewQuizSession()
			defer session.Close()

			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Println("🎯 党史知识挑战")
				fmt.Println("⏳ 正在生成历史考题...")
				<-session.Start(cmd.Context())

				if err := playRound(session, scanner, os.Stdout); err != nil {
					return err
				}

				fmt.Print("\n再来一次? (y/N): ")
				if !scanner.Scan() || !strings.EqualFold(strings.TrimSpace(scanner.Text()), "y") {
					return nil
				}
			}
		},
	}
}

// playRound drives one attempt from InProgress to Finished.
func playRound(session *partyhistory.QuizSession, scanner *bufio.Scanner, out io.Writer) error {
	for {
		st := session.Snapshot()
		if st.Phase == partyhistory.PhaseFinished {
			printSummary(out, st)
			return nil
		}

		q := st.Current
		fmt.Fprintf(out, "\n题目 %d / %d    得分: %d\n", st.CurrentIndex+1, st.Total, st.Score)
		fmt.Fprintf(out, "%s\n", q.Text)
		for i, option := range q.Options {
			fmt.Fprintf(out, "  %s. %s\n", partyhistory.OptionLabel(i), option)
		}

		idx, err := readOption(scanner, out, len(q.Options))
		if err != nil {
			return err
		}
		session.SelectOption(idx)

		st = session.Snapshot()
		if *st.SelectedOption == q.CorrectOptionIndex {
			fmt.Fprintln(out, "✅ 回答正确！")
		} else {
			fmt.Fprintf(out, "❌ 回答错误，正确答案是 %s\n", partyhistory.OptionLabel(q.CorrectOptionIndex))
		}
		fmt.Fprintf(out, "历史解析: %s\n", q.Explanation)

		next := "下一题"
		if st.IsLast() {
			next = "查看结果"
		}
		fmt.Fprintf(out, "按回车%s...", next)
		if !scanner.Scan() {
			return io.ErrUnexpectedEOF
		}
		session.Advance()
	}
}

func readOption(scanner *bufio.Scanner, out io.Writer, n int) (int, error) {
	last := partyhistory.OptionLabel(n - 1)
	for {
		fmt.Fprintf(out, "请选择 (A-%s): ", last)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return 0, err
			}
			return 0, io.ErrUnexpectedEOF
		}

		answer := strings.ToUpper(strings.TrimSpace(scanner.Text()))
		if len(answer) == 1 {
			idx := int(answer[0] - 'A')
			if idx >= 0 && idx < n {
				return idx, nil
			}
		}
		fmt.Fprintf(out, "请输入 A 到 %s 之间的字母。\n", last)
	}
}

func printSummary(out io.Writer, st partyhistory.SessionState) {
	s := st.Summary
	fmt.Fprintln(out, "\n🏆 挑战完成")
	fmt.Fprintf(out, "您的最终得分: %d / %d (%d%%)\n", s.Score, s.Total, s.Percentage)
	fmt.Fprintln(out, s.Comment)
}

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Ask the history tutor questions",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp(app)

			chat := app.NewChatSession()
			for _, m := range chat.Messages() {
				fmt.Printf("🤖 %s\n", m.Text)
			}

			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("\n> ")
				if !scanner.Scan() {
					return scanner.Err()
				}

				reply, err := chat.Send(cmd.Context(), scanner.Text())
				switch {
				case errors.Is(err, partyhistory.ErrEmptyMessage):
					continue
				case errors.Is(err, partyhistory.ErrTutorUnavailable):
					app.Logger.Debug("tutor error", zap.Error(err))
				case err != nil:
					return err
				}
				fmt.Printf("🤖 %s\n", reply.Text)
			}
		},
	}
}
