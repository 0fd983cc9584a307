package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	requestx "github.com/tanpawarit/omega-summarizer/agent/request"
)

func summarizeCMD() *cobra.Command {
	var (
		url       string
		audioPath string
		model     string
		save      bool
	)

	summarize := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize one URL or audio file and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			if url != "" && audioPath != "" {
				return errors.New("use either --url or --audio, not both")
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}

			var out requestx.Outcome
			if audioPath != "" {
				f, err := os.Open(audioPath)
				if err != nil {
					return fmt.Errorf("open audio: %w", err)
				}
				defer f.Close()
				out = a.handler.SummarizeAudio(cmd.Context(), requestx.Audio{
					Name: filepath.Base(audioPath),
					Data: f,
				}, model)
			} else {
				out = a.handler.SummarizeURL(cmd.Context(), url, model)
			}

			printOutcome(cmd.OutOrStdout(), out)

			if save && out.DownloadName != "" {
				if err := os.WriteFile(out.DownloadName, []byte(out.Result.Text()), 0o644); err != nil {
					return fmt.Errorf("save summary: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "\nSaved to %s\n", out.DownloadName)
			}
			return nil
		},
	}
	summarize.Flags().StringVar(&url, "url", "", "article or YouTube URL")
	summarize.Flags().StringVar(&audioPath, "audio", "", "path to an audio file")
	summarize.Flags().StringVar(&model, "model", "", "decision model id")
	summarize.Flags().BoolVar(&save, "save", false, "write the summary to a markdown file")

	return summarize
}

func printOutcome(w io.Writer, out requestx.Outcome) {
	fmt.Fprintln(w, out.Result.String())
	if len(out.Entries) == 0 {
		return
	}
	fmt.Fprintf(w, "\n--- execution log (%s) ---\n", out.RequestID)
	for _, e := range out.Entries {
		fmt.Fprintf(w, "[%s] %-14s %-8s %s\n", e.Clock(), e.Tool, e.Status, e.Message)
	}
}
