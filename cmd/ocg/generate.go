package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/pthm/ocg/internal/cli"
	"github.com/pthm/ocg/internal/clientgen"
	"github.com/pthm/ocg/internal/command"
	"github.com/pthm/ocg/internal/factory"
)

var (
	generateURL        string
	generateLang       string
	generateOut        string
	generatePackage    string
	generateClientName string
	generateClean      bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a client library",
	Long: `Generate a typed JSON-RPC client from an OpenRPC document.

Supported languages: ` + strings.Join(clientgen.LanguageNames(), ", "),
	Example: `  # Generate a Python client from a running server
  ocg generate --url http://localhost:5000/api/v1/ --lang python --out ./generated/

  # Generate a Go client from a local document
  ocg generate --url ./openrpc.json --lang go --package petstore

  # Replace previously generated files
  ocg generate --url ./openrpc.json --lang typescript --clean`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Resolve values: flags > config > defaults
		url := resolveString(generateURL, cfg.Generate.URL)
		lang := resolveString(generateLang, cfg.Generate.Lang)
		out := resolveString(generateOut, cfg.Generate.Out, "./generated")
		clean := resolveBool(generateClean, cfg.Generate.Clean)

		if url == "" {
			return cli.ConfigError("--url is required", nil)
		}

		if lang == "" && interactive() {
			picked, err := pickLanguage()
			if err != nil {
				return cli.GeneralError("selecting language", err)
			}
			lang = picked
		}

		clientCfg := cfg.ClientConfig()
		clientCfg.Package = resolveString(generatePackage, clientCfg.Package)
		clientCfg.ClientName = resolveString(generateClientName, clientCfg.ClientName)

		handler := command.New(logger, cfg.DiscoverOptions(), factory.WithConfig(clientCfg))
		handler.Clean = clean

		// The handler logs its own failures.
		if code := handler.Run(cmd.Context(), url, lang, out); code != command.ExitOK {
			return cli.SilentError(code)
		}
		if !quiet {
			fmt.Printf("Generated %s client in %s\n", lang, out)
		}
		return nil
	},
}

func init() {
	f := generateCmd.Flags()
	f.StringVar(&generateURL, "url", "", "OpenRPC document URL or file path")
	f.StringVar(&generateLang, "lang", "", "target language ("+strings.Join(clientgen.LanguageNames(), ", ")+")")
	f.StringVar(&generateOut, "out", "", "output directory (default ./generated)")
	f.StringVar(&generatePackage, "package", "", "package name for the generated client")
	f.StringVar(&generateClientName, "client-name", "", "name of the generated client type")
	f.BoolVar(&generateClean, "clean", false, "remove existing files in the language directory first")
}

// interactive reports whether both stdin and stdout are terminals.
func interactive() bool {
	isTTY := func(f *os.File) bool {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return isTTY(os.Stdin) && isTTY(os.Stdout)
}

func pickLanguage() (string, error) {
	var lang string
	sel := huh.NewSelect[string]().
		Title("Target language").
		Options(huh.NewOptions(clientgen.LanguageNames()...)...).
		Value(&lang)
	if err := huh.NewForm(huh.NewGroup(sel)).Run(); err != nil {
		return "", err
	}
	return lang, nil
}
