package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/retailbi/pkg/logger"
)

func main() {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		logger.Log.Warn().Err(err).Msg("could not load .env file")
	}

	if err := newApp().Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("bictl failed")
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "bictl",
		Usage: "Generate, consolidate and summarise retail datasets offline",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log output: console or json",
				Value:   "console",
				EnvVars: []string{"APP_LOG_FORMAT"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.SetFormat(c.String("log-format"))
			logger.SetLevel(c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			sampleCommand(),
			consolidateCommand(),
			summaryCommand(),
			fetchCommand(),
		},
	}
}
