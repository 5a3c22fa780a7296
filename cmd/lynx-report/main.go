// lynx-report generates reports from the command line.
//
// Usage:
//
//	lynx-report billing --month march --year 2024 --format xlsx
//	lynx-report sip-services --quarter 2 --year 2023 --out -
//	lynx-report contacts --query lee --enqueue
//	lynx-report migrate
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "lynx-report",
		Usage:   "Generate billing and SIP program reports",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env-file",
				Value:   ".env",
				Usage:   "Optional env file loaded before reading configuration",
				EnvVars: []string{"LYNX_ENV_FILE"},
			},
		},
		Commands: []*cli.Command{
			reportCommand(billingReport),
			reportCommand(sipDemographicsReport),
			reportCommand(sipServicesReport),
			reportCommand(sipQuarterlyDemographicsReport),
			reportCommand(contactsReport),
			reportCommand(billingReviewReport),
			migrateCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
