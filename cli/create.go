package cli

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"stillreel/artifacts"
	"stillreel/engine"
	"stillreel/logger"
	"stillreel/models"
	"stillreel/workflow"

	"github.com/spf13/cobra"
)

func newCreateCommand(ctx *commandContext) *cobra.Command {
	var imagePath, audioPath, outPath string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Convert an image and a sound file into an MP4 without the web UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.config()
			if err != nil {
				return err
			}
			if err := setupLogging(cfg, cmd.ErrOrStderr(), false); err != nil {
				return err
			}

			eng := engine.NewFFmpeg(cfg.FFmpegPath)
			defer eng.Close()
			store := artifacts.NewStore()
			defer store.Close()
			ctrl := workflow.New(eng, store, workflow.Options{Inspector: newInspector(cfg)})
			defer ctrl.Close()

			for _, in := range []struct {
				path   string
				choose func(models.Blob)
			}{
				{imagePath, ctrl.SelectImage},
				{audioPath, ctrl.SelectAudio},
			} {
				if in.path == "" {
					continue
				}
				blob, err := readBlob(in.path)
				if err != nil {
					return err
				}
				in.choose(blob)
			}

			artifact, err := ctrl.CreateVideo(cmd.Context())
			if err != nil {
				return fmt.Errorf("%s: %w", workflow.UserMessage(err), err)
			}

			_, data, err := store.Open(artifact.ID)
			if err != nil {
				return err
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			logger.Debugf("wrote artifact %s to %s", artifact.ID, outPath)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %s (%d bytes)\n", outPath, len(data))
			if m := artifact.Media; m != nil {
				fmt.Fprintf(out, "%dx%d %s/%s, %.1fs\n", m.Width, m.Height, m.VideoCodec, m.AudioCodec, m.DurationSeconds)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&imagePath, "image", "", "Still image file")
	cmd.Flags().StringVar(&audioPath, "audio", "", "Sound file")
	cmd.Flags().StringVarP(&outPath, "out", "o", "output.mp4", "Destination MP4 path")
	return cmd
}

func readBlob(path string) (models.Blob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Blob{}, fmt.Errorf("read input: %w", err)
	}
	return models.Blob{
		Name:        filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Data:        data,
	}, nil
}
