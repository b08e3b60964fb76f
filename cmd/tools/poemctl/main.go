package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/poem-studio/backend/internal/config"
	poemModel "github.com/zhouzirui/poem-studio/backend/internal/model/poem"
	"github.com/zhouzirui/poem-studio/backend/internal/storage"
)

// app carries what every command needs; it is filled in by the root PersistentPreRunE.
type app struct {
	cfg     *config.Config
	blobs   storage.Store
	library *poemModel.Library
}

func (a *app) close() {
	if closer, ok := a.blobs.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "poemctl",
		Short:         "Generate poems and manage the saved list from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil {
				logrus.WithError(err).Debug("no .env file loaded")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cfg.Log.Apply()

			blobs, err := storage.Open(cfg.Storage.Driver, cfg.Storage.Path)
			if err != nil {
				return err
			}

			a.cfg = cfg
			a.blobs = blobs
			a.library = poemModel.NewLibrary(blobs)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	root.AddCommand(newGenerateCmd(a), newSavedCmd(a), newExportCmd(a))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.WithError(err).Error("poemctl failed")
		os.Exit(1)
	}
}
