package main

import (
	"context"
	"fmt"
	"os"

	"github.com/agbru/hedgesweep/internal/app"
	apperrors "github.com/agbru/hedgesweep/internal/errors"
)

func main() {
	application, err := app.New(os.Args, os.Stderr)
	if err != nil {
		if app.IsHelpError(err) {
			os.Exit(apperrors.ExitSuccess)
		}
		if apperrors.IsConfigError(err) {
			fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
			os.Exit(apperrors.ExitErrorConfig)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(apperrors.ExitErrorGeneric)
	}

	os.Exit(application.Run(context.Background(), os.Stdout))
}
