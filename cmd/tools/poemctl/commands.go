package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	poemModel "github.com/zhouzirui/poem-studio/backend/internal/model/poem"
	poemService "github.com/zhouzirui/poem-studio/backend/internal/service/poem"
)

func newGenerateCmd(a *app) *cobra.Command {
	var req poemService.Request
	var save bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one poem",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.cfg.AI.Enabled() {
				return errors.New("provider credentials not configured; set POEM_API_KEY or the ARK_* variables")
			}

			chatModel, err := a.cfg.AI.NewChatModel(cmd.Context())
			if err != nil {
				return err
			}
			svc, err := poemService.NewService(chatModel, nil)
			if err != nil {
				return err
			}

			p, err := svc.Generate(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, p.Content)
			fmt.Fprintf(out, "\n-- %s · %s · %s (%s)\n", p.Theme, p.Style, p.Mood, p.ID)

			if save {
				if err := a.library.Save(cmd.Context(), p); err != nil {
					return err
				}
				fmt.Fprintln(out, "saved")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Theme, "theme", "", "what the poem is about (required)")
	cmd.Flags().StringVar(&req.Style, "style", poemService.DefaultStyle, "poetic form, e.g. haiku, sonnet")
	cmd.Flags().StringVar(&req.Mood, "mood", poemService.DefaultMood, "emotional tone")
	cmd.Flags().BoolVar(&save, "save", false, "add the poem to the saved list")
	_ = cmd.MarkFlagRequired("theme")
	return cmd
}

func newSavedCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "saved",
		Short: "Inspect or edit the saved list",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List saved poems, newest first",
			RunE: func(cmd *cobra.Command, args []string) error {
				poems := a.library.List(cmd.Context())
				out := cmd.OutOrStdout()
				if len(poems) == 0 {
					fmt.Fprintln(out, "no saved poems")
					return nil
				}
				for _, p := range poems {
					fmt.Fprintf(out, "%s  %-10s %-12s %s  %s\n",
						p.ID, p.Style, p.Mood, humanize.Time(p.CreatedAt), preview(p.Content, 40))
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove <id>",
			Short: "Remove one saved poem",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.library.Remove(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every saved poem",
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.library.Clear(cmd.Context())
			},
		},
	)
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Write a saved poem to a text file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ok := a.library.Get(cmd.Context(), args[0])
			if !ok {
				return fmt.Errorf("%s: %w", args[0], poemModel.ErrNotFound)
			}

			path := filepath.Join(dir, poemModel.Filename(p))
			if err := os.WriteFile(path, []byte(poemModel.Export(p)), 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "out", ".", "directory to write into")
	return cmd
}

func preview(content string, max int) string {
	flat := strings.Join(strings.Fields(content), " ")
	runes := []rune(flat)
	if len(runes) <= max {
		return flat
	}
	return string(runes[:max]) + "..."
}
