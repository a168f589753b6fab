package main

import (
	"context"
	"errors"
	"os"

	"github.com/secmon-lab/crucible/pkg/cli"
)

var version = "dev"

func main() {
	if err := cli.Run(context.Background(), os.Args, version); err != nil {
		var decisionErr *cli.DecisionError
		if errors.As(err, &decisionErr) {
			os.Exit(decisionErr.Code)
		}
		os.Exit(1)
	}
}
