package main

import (
	"context"
	"errors"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

var errAborted = errors.New("prompt aborted")

// typeSelector asks the user to pick one of the registered types.
type typeSelector func(ctx context.Context, types []string) (string, error)

func surveySelectType(ctx context.Context, types []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(types) == 0 {
		return "", errors.New("no document types registered")
	}
	var out string
	prompt := &survey.Select{
		Message: "Document type:",
		Options: types,
		Default: types[0],
		Help:    "The generator used to turn the payload into XML",
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return "", errAborted
		}
		return "", err
	}
	return out, nil
}
