package cmd

import (
	"errors"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

const (
	PromptSingle = "Single applicant"
	PromptAll    = "All applicants"
)

var modePrompt = promptui.Select{
	Label: "Process",
	Items: []string{PromptSingle, PromptAll},
}

// target is the set of applicants a command works on. An empty applicantID means all of them.
type target struct {
	applicantID string
}

func (t target) all() bool {
	return t.applicantID == ""
}

func addTargetFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("applicant", "a", "", "process only the applicant with this Applicant ID")
	cmd.Flags().Bool("all", false, "process all applicants without asking")
}

// resolveTarget reads the target from flags and falls back to interactive prompts.
func resolveTarget(cmd *cobra.Command) (target, error) {
	id, _ := cmd.Flags().GetString("applicant")
	all, _ := cmd.Flags().GetBool("all")

	id = strings.TrimSpace(id)
	switch {
	case id != "" && all:
		return target{}, errors.New("--applicant and --all are mutually exclusive")
	case id != "":
		return target{applicantID: id}, nil
	case all:
		return target{}, nil
	}

	_, mode, err := modePrompt.Run()
	if err != nil {
		return target{}, err
	}

	if mode == PromptAll {
		return target{}, nil
	}

	idPrompt := promptui.Prompt{
		Label: "Applicant ID",
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("applicant id is required")
			}
			return nil
		},
	}

	id, err = idPrompt.Run()
	if err != nil {
		return target{}, err
	}

	return target{applicantID: strings.TrimSpace(id)}, nil
}
