package cli

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
)

// requirement is an external binary stillreel shells out to.
type requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

type requirementStatus struct {
	requirement
	Available bool
	Detail    string
}

func checkBinaries(reqs []requirement) []requirementStatus {
	results := make([]requirementStatus, 0, len(reqs))
	for _, req := range reqs {
		req.Command = strings.TrimSpace(req.Command)
		status := requirementStatus{requirement: req}
		switch {
		case req.Command == "":
			status.Detail = "command not configured"
		default:
			path, err := exec.LookPath(req.Command)
			if err != nil {
				status.Detail = fmt.Sprintf("binary %q not found", req.Command)
			} else {
				status.Available = true
				status.Detail = path
			}
		}
		results = append(results, status)
	}
	return results
}

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that ffmpeg and ffprobe are available",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.config()
			if err != nil {
				return err
			}

			statuses := checkBinaries([]requirement{
				{Name: "ffmpeg", Command: cfg.FFmpegPath, Description: "Encodes the output clip"},
				{Name: "ffprobe", Command: cfg.FFprobePath, Description: "Inspects output clips", Optional: true},
			})

			rows := make([][]string, 0, len(statuses))
			missing := 0
			for _, s := range statuses {
				state := "ok"
				if !s.Available {
					state = "missing"
					if s.Optional {
						state = "missing (optional)"
					} else {
						missing++
					}
				}
				rows = append(rows, []string{s.Name, state, s.Detail, s.Description})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Dependency", "Status", "Detail", "Purpose"}, rows, nil))

			if missing > 0 {
				return fmt.Errorf("%d required dependency missing", missing)
			}
			return nil
		},
	}
}
