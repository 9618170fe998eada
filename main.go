package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"github.com/w-h-a/shiplog/cmd"
	"github.com/w-h-a/shiplog/internal/run"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "shiplog",
		Usage: "run a command in a docker container and ship its output to cloudwatch logs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "docker-image",
				Usage:    "name of the docker image to use",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "bash-command",
				Usage:    "bash command to execute in the container",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "aws-cloudwatch-group",
				Usage:    "name of the cloudwatch log group",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "aws-cloudwatch-stream",
				Usage:    "name of the cloudwatch log stream under the log group",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "aws-access-key-id",
				Usage:    "aws access key id",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "aws-secret-access-key",
				Usage:    "aws secret access key",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "awsregion",
				Usage:    "aws region name",
				Required: true,
			},
		},
		Action: cmd.Run,
	}
}

func main() {
	app := newApp()

	if err := app.Run(os.Args); err != nil {
		// argument errors are returned rather than printed by cli
		fmt.Fprintln(os.Stderr, err)
		os.Exit(run.ExitInvalidArgs)
	}
}
