package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xaenox/aura/internal/completion"
	"github.com/xaenox/aura/internal/models"
	"github.com/xaenox/aura/internal/risk"
	"github.com/xaenox/aura/internal/safety"
)

var (
	classifyOffline bool
	classifyImage   string
)

type decision struct {
	Classification       models.ClassificationResult `json:"classification"`
	Risk                 risk.Assessment             `json:"risk"`
	Safety               safety.CheckResult          `json:"safety"`
	RequiresConfirmation bool                        `json:"requiresConfirmation"`
}

var classifyCmd = &cobra.Command{
	Use:   "classify <message>",
	Short: "Print the classification, risk and safety decision for a message",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		message := strings.Join(args, " ")

		var gen completion.Generator = completion.OfflineGenerator{}
		if !classifyOffline {
			var err error
			if gen, err = newGenerator(ctx, cfg, logger); err != nil {
				return err
			}
		}

		c := newClassifier(completion.NewClient(gen, logger), cfg, logger).Classify(ctx, message)
		assessment := risk.NewAssessor(risk.DefaultTables()).Assess(c, message)
		check := safety.NewGate().Check(models.Request{Message: message, ImageBase64: classifyImage}, c.Intent, assessment)

		out, err := json.MarshalIndent(decision{
			Classification:       c,
			Risk:                 assessment,
			Safety:               check,
			RequiresConfirmation: safety.RequiresConfirmation(c.Intent, assessment.Level),
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	classifyCmd.Flags().BoolVar(&classifyOffline, "offline", false, "use only the keyword classifier")
	classifyCmd.Flags().StringVar(&classifyImage, "image", "", "base64 image to attach for the safety check")
}
