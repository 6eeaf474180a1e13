package main

import (
	"fmt"
	"os"
	"strings"

	"go-biobase-guidance-driver/biobdriver"
	"go-biobase-guidance-driver/guidance"

	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Print the output documents of one acquisition without a device",
	Long: `Render writes the BioBase output documents a device would receive
for a reset, the guidance of a position and a quality update, one document
per line. With --final the final status of the capture follows.`,
	RunE: runRender,
}

var renderFlags struct {
	guidance   string
	position   string
	impression string
	qualities  string
	keys       string
	final      int32
	templates  string
}

func init() {
	f := renderCmd.Flags()
	f.StringVarP(&renderFlags.guidance, "guidance", "g", "tft", "guidance type: none, lscan, statusled, tft, tft1000, touch")
	f.StringVarP(&renderFlags.position, "position", "p", string(guidance.PositionRightFourFingers), "object position")
	f.StringVarP(&renderFlags.impression, "impression", "i", string(guidance.ImpressionFlat), "impression type")
	f.StringVarP(&renderFlags.qualities, "qualities", "q", "", "comma separated quality states, names or codes")
	f.StringVarP(&renderFlags.keys, "keys", "k", "ok_contrast", "active keys: none, ok_contrast, accept_recapture")
	f.Int32Var(&renderFlags.final, "final", 0, "final capture status code")
	f.StringVar(&renderFlags.templates, "templates", "Templates", "touch display template directory")
}

func parseQualities(s string) ([]guidance.QualityState, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []guidance.QualityState
	for _, part := range strings.Split(s, ",") {
		q, err := guidance.ParseQualityState(part)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

func runRender(cmd *cobra.Command, args []string) error {
	defer biobdriver.Logger.Sync()

	g, err := guidance.ParseGuidanceType(renderFlags.guidance)
	if err != nil {
		return err
	}
	keys, err := guidance.ParseActiveKeys(renderFlags.keys)
	if err != nil {
		return err
	}
	qualities, err := parseQualities(renderFlags.qualities)
	if err != nil {
		return err
	}

	enc := guidance.NewEncoder(guidance.NewWriterPort(os.Stdout))
	r, err := guidance.NewRenderer(g, enc, renderFlags.templates)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := r.Reset(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	s := guidance.NewAcquisitionSession()
	s.Begin(guidance.Position(renderFlags.position), guidance.Impression(renderFlags.impression))
	s.Keys = keys
	if err := r.RenderGuidance(ctx, s); err != nil {
		return fmt.Errorf("guidance: %w", err)
	}
	if qualities != nil {
		s.SetQualities(qualities)
		if err := r.RenderStatus(ctx, s); err != nil {
			return fmt.Errorf("status: %w", err)
		}
	}
	if cmd.Flags().Changed("final") {
		status := guidance.ReturnCode(renderFlags.final)
		s.Status = status
		if err := r.RenderFinalStatus(ctx, s, status); err != nil {
			return fmt.Errorf("final status: %w", err)
		}
	}
	return nil
}
