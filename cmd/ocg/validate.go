package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/pthm/ocg/internal/cli"
	"github.com/pthm/ocg/pkg/discover"
	"github.com/pthm/ocg/pkg/openrpc"
)

var validateURL string

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(10)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate an OpenRPC document",
	Long:  `Acquire an OpenRPC document and check that a client can be generated from it.`,
	Example: `  # Validate a local document
  ocg validate --url ./openrpc.json

  # Validate the document served by a running server
  ocg validate --url http://localhost:5000/api/v1/`,
	RunE: func(cmd *cobra.Command, args []string) error {
		url := resolveString(validateURL, cfg.Generate.URL)
		if url == "" {
			return cli.ConfigError("--url is required", nil)
		}

		doc, err := discover.Load(cmd.Context(), url, cfg.DiscoverOptions()...)
		if err != nil {
			return cli.DocumentError(fmt.Sprintf("loading %s", url), err)
		}

		if !quiet {
			fmt.Println(summary(doc))
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateURL, "url", "", "OpenRPC document URL or file path")
}

// summary renders the document overview printed by validate.
func summary(doc *openrpc.Document) string {
	var b strings.Builder
	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}

	b.WriteString(okStyle.Render("✓ ") + titleStyle.Render(doc.Info.Title) + " is valid\n\n")
	row("version", doc.Info.Version)
	row("openrpc", doc.OpenRPC)
	if url := doc.ServerURL(); url != "" {
		row("server", url)
	} else {
		row("server", warnStyle.Render("none declared"))
	}

	row("methods", fmt.Sprint(len(doc.Methods)))
	for i := range doc.Methods {
		m := &doc.Methods[i]
		name := "  " + m.Name
		if m.Deprecated {
			name += warnStyle.Render(" (deprecated)")
		}
		row("", name)
	}

	var schemas []string
	if doc.Components != nil {
		for name := range doc.Components.Schemas {
			schemas = append(schemas, name)
		}
	}
	sort.Strings(schemas)
	row("schemas", fmt.Sprint(len(schemas)))
	for _, name := range schemas {
		row("", "  "+name)
	}

	return strings.TrimRight(b.String(), "\n")
}
