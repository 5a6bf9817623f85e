package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pthm/ocg/internal/cli"
	"github.com/pthm/ocg/internal/clientgen"
	"github.com/pthm/ocg/internal/doctor"
	"github.com/pthm/ocg/pkg/discover"
	"github.com/pthm/ocg/pkg/openrpc"
)

var (
	doctorURL     string
	doctorLang    string
	doctorDetails bool
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run health checks",
	Long:  `Run health checks on an OpenRPC document and every client generator.`,
	Example: `  # Check a local document against every language
  ocg doctor --url ./openrpc.json

  # Check a single language with verbose output
  ocg doctor --url http://localhost:5000/api/v1/ --lang go --verbose`,
	RunE: func(cmd *cobra.Command, args []string) error {
		url := resolveString(doctorURL, cfg.Generate.URL)
		lang := resolveString(doctorLang, cfg.Generate.Lang)
		if url == "" {
			return cli.ConfigError("--url is required", nil)
		}

		opts := cfg.DiscoverOptions()
		d := doctor.New(url, func(ctx context.Context, url string) (*openrpc.Document, error) {
			return discover.Load(ctx, url, opts...)
		})
		if lang != "" {
			l, err := clientgen.ParseLanguage(lang)
			if err != nil {
				return cli.ConfigError("invalid --lang", err)
			}
			d.WithLanguages(l)
		}

		return runDoctor(cmd.Context(), d, doctorDetails || verbose > 0)
	},
}

func init() {
	f := doctorCmd.Flags()
	f.StringVar(&doctorURL, "url", "", "OpenRPC document URL or file path")
	f.StringVar(&doctorLang, "lang", "", "only check this language")
	f.BoolVar(&doctorDetails, "details", false, "show detailed output")
}

func runDoctor(ctx context.Context, d *doctor.Doctor, verboseFlag bool) error {
	if !quiet {
		fmt.Println("ocg doctor - Health Check")
	}

	report, err := d.Run(ctx)
	if err != nil {
		return cli.GeneralError("running doctor", err)
	}

	report.Print(os.Stdout, verboseFlag)

	if report.HasErrors() {
		return cli.GeneralError("health checks failed", nil)
	}

	return nil
}
