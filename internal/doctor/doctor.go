// Package doctor provides health checks for OpenRPC documents.
//
// The doctor command checks that a document can be acquired, that it passes
// structural validation, and that every client generator can build a client
// from it.
//
// Example usage:
//
//	d := doctor.New("http://localhost:5000/api/v1/", loader)
//	report, err := d.Run(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	report.Print(os.Stdout, true) // verbose=true
package doctor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pthm/ocg/internal/clientgen"
	_ "github.com/pthm/ocg/internal/clientgen/go"
	_ "github.com/pthm/ocg/internal/clientgen/python"
	_ "github.com/pthm/ocg/internal/clientgen/typescript"
	"github.com/pthm/ocg/pkg/openrpc"
)

// Status represents the result of a health check.
type Status int

const (
	// StatusPass indicates the check passed.
	StatusPass Status = iota
	// StatusWarn indicates a non-critical issue.
	StatusWarn
	// StatusFail indicates a critical issue that will cause failures.
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Symbol returns a status indicator symbol for terminal output.
func (s Status) Symbol() string {
	switch s {
	case StatusPass:
		return "✓"
	case StatusWarn:
		return "⚠"
	case StatusFail:
		return "✗"
	default:
		return "?"
	}
}

// Check categories in report order.
const (
	CategoryDocument = "Document"
	CategoryMethods  = "Methods"
	CategoryClients  = "Clients"
)

// CheckResult represents the outcome of a single health check.
type CheckResult struct {
	// Category groups related checks (e.g., "Document", "Methods", "Clients").
	Category string

	// Name is a short identifier for the check.
	Name string

	// Status is the check outcome.
	Status Status

	// Message is a human-readable description of the result.
	Message string

	// Details provides additional information for verbose output.
	Details string

	// FixHint suggests how to resolve issues.
	FixHint string
}

// Report contains all health check results.
type Report struct {
	Checks []CheckResult

	// Summary counts.
	Passed   int
	Warnings int
	Errors   int
}

// AddCheck adds a check result and updates summary counts.
func (r *Report) AddCheck(check CheckResult) {
	r.Checks = append(r.Checks, check)
	switch check.Status {
	case StatusPass:
		r.Passed++
	case StatusWarn:
		r.Warnings++
	case StatusFail:
		r.Errors++
	}
}

// Find returns the first check with the given category and name.
func (r *Report) Find(category, name string) (CheckResult, bool) {
	for _, c := range r.Checks {
		if c.Category == category && c.Name == name {
			return c, true
		}
	}
	return CheckResult{}, false
}

// Print writes the report to the given writer.
func (r *Report) Print(w io.Writer, verbose bool) {
	// Group checks by category
	categories := make(map[string][]CheckResult)
	var categoryOrder []string
	for _, check := range r.Checks {
		if _, exists := categories[check.Category]; !exists {
			categoryOrder = append(categoryOrder, check.Category)
		}
		categories[check.Category] = append(categories[check.Category], check)
	}

	for _, cat := range categoryOrder {
		_, _ = fmt.Fprintf(w, "\n%s\n", cat)
		for _, check := range categories[cat] {
			_, _ = fmt.Fprintf(w, "  %s %s\n", check.Status.Symbol(), check.Message)
			if verbose && check.Details != "" {
				for _, line := range strings.Split(check.Details, "\n") {
					_, _ = fmt.Fprintf(w, "      %s\n", line)
				}
			}
			if check.Status != StatusPass && check.FixHint != "" {
				_, _ = fmt.Fprintf(w, "      Fix: %s\n", check.FixHint)
			}
		}
	}

	_, _ = fmt.Fprintf(w, "\nSummary: %d passed, %d warnings, %d errors\n",
		r.Passed, r.Warnings, r.Errors)
}

// HasErrors returns true if any check failed.
func (r *Report) HasErrors() bool {
	return r.Errors > 0
}

// LoaderFunc acquires the document at url.
type LoaderFunc func(ctx context.Context, url string) (*openrpc.Document, error)

// Doctor performs health checks on an OpenRPC document.
type Doctor struct {
	url   string
	load  LoaderFunc
	langs []clientgen.Language

	// Populated during Run.
	doc   *openrpc.Document
	model *clientgen.Model
}

// New creates a new Doctor that checks every supported language.
func New(url string, load LoaderFunc) *Doctor {
	return &Doctor{
		url:   url,
		load:  load,
		langs: clientgen.Languages(),
	}
}

// WithLanguages restricts the client checks to langs.
func (d *Doctor) WithLanguages(langs ...clientgen.Language) *Doctor {
	d.langs = langs
	return d
}

// Run executes all health checks and returns a report. Problems with the
// document are reported as failed checks; the error is reserved for
// cancellation and misconfiguration.
func (d *Doctor) Run(ctx context.Context) (*Report, error) {
	if d.load == nil {
		return nil, errors.New("doctor: no document loader configured")
	}
	report := &Report{}

	if err := d.checkDocument(ctx, report); err != nil {
		return nil, fmt.Errorf("checking document: %w", err)
	}
	if d.doc == nil {
		return report, nil
	}
	d.checkMethods(report)
	d.checkClients(report)

	return report, nil
}

// checkDocument acquires and validates the document.
func (d *Doctor) checkDocument(ctx context.Context, report *Report) error {
	doc, err := d.load(ctx, d.url)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if openrpc.IsInvalidDocumentErr(err) {
			report.AddCheck(CheckResult{
				Category: CategoryDocument,
				Name:     "valid",
				Status:   StatusFail,
				Message:  "Document is not a valid OpenRPC document",
				Details:  err.Error(),
				FixHint:  "Fix the reported fields and run 'ocg validate' again",
			})
			return nil
		}
		report.AddCheck(CheckResult{
			Category: CategoryDocument,
			Name:     "acquired",
			Status:   StatusFail,
			Message:  fmt.Sprintf("Could not get OpenRPC document from %s", d.url),
			Details:  err.Error(),
			FixHint:  "Check that the server implements rpc.discover or that the file exists",
		})
		return nil
	}
	d.doc = doc

	report.AddCheck(CheckResult{
		Category: CategoryDocument,
		Name:     "valid",
		Status:   StatusPass,
		Message:  fmt.Sprintf("%s %s (OpenRPC %s)", doc.Info.Title, doc.Info.Version, doc.OpenRPC),
	})

	if doc.ServerURL() == "" {
		report.AddCheck(CheckResult{
			Category: CategoryDocument,
			Name:     "servers",
			Status:   StatusWarn,
			Message:  "No servers declared",
			Details:  "Generated clients have no default URL",
			FixHint:  "Add a servers entry or pass a URL when constructing the client",
		})
	} else {
		report.AddCheck(CheckResult{
			Category: CategoryDocument,
			Name:     "servers",
			Status:   StatusPass,
			Message:  fmt.Sprintf("Default server is %s", doc.ServerURL()),
		})
	}
	return nil
}

// checkMethods reports the method surface and deprecated methods.
func (d *Doctor) checkMethods(report *Report) {
	if len(d.doc.Methods) == 0 {
		report.AddCheck(CheckResult{
			Category: CategoryMethods,
			Name:     "count",
			Status:   StatusWarn,
			Message:  "Document declares no methods",
			FixHint:  "Generated clients will have no operations",
		})
		return
	}

	var notifications, deprecated []string
	for i := range d.doc.Methods {
		m := &d.doc.Methods[i]
		if m.Result == nil {
			notifications = append(notifications, m.Name)
		}
		if m.Deprecated {
			deprecated = append(deprecated, m.Name)
		}
	}

	report.AddCheck(CheckResult{
		Category: CategoryMethods,
		Name:     "count",
		Status:   StatusPass,
		Message:  fmt.Sprintf("%d methods (%d without result)", len(d.doc.Methods), len(notifications)),
		Details:  strings.Join(d.doc.MethodNames(), "\n"),
	})

	if len(deprecated) > 0 {
		sort.Strings(deprecated)
		report.AddCheck(CheckResult{
			Category: CategoryMethods,
			Name:     "deprecated",
			Status:   StatusWarn,
			Message:  fmt.Sprintf("%d deprecated methods", len(deprecated)),
			Details:  strings.Join(deprecated, "\n"),
			FixHint:  "Remove deprecated methods once callers have migrated",
		})
	}
}

// checkClients builds the client model and runs every selected generator.
func (d *Doctor) checkClients(report *Report) {
	model, err := clientgen.BuildModel(d.doc)
	if err != nil {
		report.AddCheck(CheckResult{
			Category: CategoryClients,
			Name:     "model",
			Status:   StatusFail,
			Message:  "Client model could not be built",
			Details:  err.Error(),
		})
		return
	}
	d.model = model

	report.AddCheck(CheckResult{
		Category: CategoryClients,
		Name:     "model",
		Status:   StatusPass,
		Message:  fmt.Sprintf("Client model has %d types and %d methods", len(model.Types), len(model.Methods)),
	})

	for _, lang := range d.langs {
		gen := clientgen.Get(lang)
		if gen == nil {
			report.AddCheck(CheckResult{
				Category: CategoryClients,
				Name:     lang.String(),
				Status:   StatusFail,
				Message:  fmt.Sprintf("No generator registered for %s", lang),
			})
			continue
		}

		files, err := gen.Generate(model, nil)
		if err != nil {
			report.AddCheck(CheckResult{
				Category: CategoryClients,
				Name:     lang.String(),
				Status:   StatusFail,
				Message:  fmt.Sprintf("%s client generation failed", lang),
				Details:  err.Error(),
			})
			continue
		}

		paths := make([]string, 0, len(files))
		for p := range files {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		report.AddCheck(CheckResult{
			Category: CategoryClients,
			Name:     lang.String(),
			Status:   StatusPass,
			Message:  fmt.Sprintf("%s client generates %d files", lang, len(files)),
			Details:  strings.Join(paths, "\n"),
		})
	}
}
