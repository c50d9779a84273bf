package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

var version = "dev"

func main() {
	app := cli.App{
		Name:      "ticksched",
		HelpName:  "ticksched",
		Usage:     "cooperative tick-driven task scheduler simulator",
		UsageText: "ticksched <command> [arguments...]",
		Version:   version,
		Commands: []cli.Command{
			{
				Name:    "run",
				Aliases: []string{"r"},
				Usage:   "run the scheduler with tasks from a config file",
				Action:  runAction,
				Flags: []cli.Flag{
					cli.StringFlag{
						Name:        "config, c",
						Usage:       "path to the YAML config",
						Value:       "config.yml",
						Destination: &cfgPath,
					},
					cli.BoolFlag{
						Name:        "debug, d",
						Usage:       "log every tick and dispatch",
						Destination: &debug,
					},
					cli.BoolFlag{
						Name:        "watch, w",
						Usage:       "reload task intervals when the config changes",
						Destination: &watch,
					},
				},
			},
			{
				Name:    "plan",
				Aliases: []string{"p"},
				Usage:   "print the predicted dispatch order without running",
				Action:  planAction,
				Flags: []cli.Flag{
					cli.StringFlag{
						Name:        "config, c",
						Usage:       "path to the YAML config",
						Value:       "config.yml",
						Destination: &cfgPath,
					},
					cli.Int64Flag{
						Name:        "passes, n",
						Usage:       "number of dispatch passes to predict",
						Value:       20,
						Destination: &passes,
					},
				},
			},
			{
				Name:    "history",
				Aliases: []string{"h"},
				Usage:   "list summaries of previous runs",
				Action:  historyAction,
				Flags: []cli.Flag{
					cli.StringFlag{
						Name:        "db",
						Usage:       "path to the history database",
						Value:       "ticksched.db",
						Destination: &dbPath,
					},
					cli.IntFlag{
						Name:        "limit, n",
						Usage:       "number of runs to list",
						Value:       10,
						Destination: &limit,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Printf("ticksched: %s\n", err.Error())
		os.Exit(1)
	}
}
