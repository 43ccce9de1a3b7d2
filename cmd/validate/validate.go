// Package validate implements citeweave's `validate` command: parse a
// source document, resolve and validate every outgoing link against a
// scope directory, and report the verdicts as JSON or text.
package validate

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/citeweave/citeweave/internal/cache"
	"github.com/citeweave/citeweave/internal/clierr"
	"github.com/citeweave/citeweave/internal/config"
	"github.com/citeweave/citeweave/internal/markdown"
	"github.com/citeweave/citeweave/internal/resolver"
	"github.com/citeweave/citeweave/internal/validator"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <source-file>",
		Short: "Validate a document's outgoing citations",
		Long: `validate parses a single Markdown document, resolves every outgoing
link against the scope directory tree, and reports each link's verdict:
valid, warning (short-name rescue applied), or error (target or anchor
not found).`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}

	cmd.Flags().String("scope", "", "Directory tree the file resolver searches (default: config scope.default, or .)")
	cmd.Flags().String("format", "", "Output format: json or text (default: config output.format, or json)")
	cmd.Flags().String("lines", "", "Restrict the report to links on lines start-end, e.g. 10-20")
	cmd.Flags().Bool("fix", false, "Preview path-conversion rewrites without editing the file")

	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	sourcePath := args[0]

	cfg, err := loadConfig(cmd)
	if err != nil {
		return clierr.InternalFailureError("validate", err)
	}

	scopeDir := flagOrDefault(cmd, "scope", cfg.Scope.Default)
	format := flagOrDefault(cmd, "format", cfg.Output.Format)
	lines, _ := cmd.Flags().GetString("lines")
	fix, _ := cmd.Flags().GetBool("fix")

	if format != "json" && format != "text" {
		return clierr.InternalFailureError("validate", fmt.Errorf("invalid --format: %s (must be json or text)", format))
	}

	lineStart, lineEnd, err := parseLineRange(lines)
	if err != nil {
		return clierr.InternalFailureError("validate", err)
	}

	fileCache := cache.NewParsedFileCache()
	doc, err := fileCache.Get(sourcePath)
	if err != nil {
		return clierr.New().WithKind(clierr.ParseError).WithFile(sourcePath).
			WithOperation("validate").WithError(err).Build()
	}

	res, err := resolver.New(scopeDir, resolver.WithIgnorePatterns(cfg.Scope.IgnorePatterns))
	if err != nil {
		return clierr.InternalFailureError("validate", err)
	}

	v := validator.New(res, fileCache)
	result := v.Validate(doc)

	if lineStart > 0 {
		result.Links = filterByLines(result.Links, lineStart, lineEnd)
		result.Summary = summarize(result.Links)
	}

	if format == "json" {
		if err := printJSON(result); err != nil {
			return clierr.InternalFailureError("validate", err)
		}
	} else {
		printText(result, fix)
	}

	if result.Summary.Errors > 0 {
		return clierr.New().WithKind(clierr.FileNotFound).WithFile(sourcePath).
			WithError(fmt.Errorf("%d link(s) failed validation", result.Summary.Errors)).Build()
	}
	return nil
}

// loadConfig reads .citeweave.yaml per the --config flag, falling back
// to the layered search paths when --config is unset.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	loader := config.NewLoader()

	configPath, _ := cmd.Root().PersistentFlags().GetString("config")
	if configPath != "" {
		return loader.LoadFromPath(configPath)
	}
	return loader.Load()
}

// flagOrDefault returns the flag's value if the user set it to a
// non-empty string, otherwise fallback (typically a config-file value).
func flagOrDefault(cmd *cobra.Command, name, fallback string) string {
	v, _ := cmd.Flags().GetString(name)
	if v != "" {
		return v
	}
	return fallback
}

func parseLineRange(spec string) (start, end int, err error) {
	if spec == "" {
		return 0, 0, nil
	}
	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid --lines range: %s (want start-end)", spec)
	}
	start, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid --lines start: %s", parts[0])
	}
	end, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid --lines end: %s", parts[1])
	}
	return start, end, nil
}

func filterByLines(links []markdown.Link, start, end int) []markdown.Link {
	filtered := make([]markdown.Link, 0, len(links))
	for _, link := range links {
		if link.Line >= start && link.Line <= end {
			filtered = append(filtered, link)
		}
	}
	return filtered
}

func summarize(links []markdown.Link) validator.Summary {
	var s validator.Summary
	for _, link := range links {
		s.Total++
		if link.Validation == nil {
			continue
		}
		switch link.Validation.Status {
		case markdown.StatusValid:
			s.Valid++
		case markdown.StatusWarning:
			s.Warnings++
		case markdown.StatusError:
			s.Errors++
		}
	}
	return s
}

func printJSON(result validator.Result) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func printText(result validator.Result, fix bool) {
	fmt.Printf("Validated %d link(s): %d valid, %d warning(s), %d error(s)\n\n",
		result.Summary.Total, result.Summary.Valid, result.Summary.Warnings, result.Summary.Errors)

	for _, link := range result.Links {
		if link.Validation == nil {
			continue
		}
		switch link.Validation.Status {
		case markdown.StatusValid:
			fmt.Printf("✓ line %d: %s\n", link.Line, link.FullMatch)
		case markdown.StatusWarning:
			fmt.Printf("⚠ line %d: %s\n", link.Line, link.FullMatch)
			if pc := link.Validation.PathConversion; pc != nil {
				if fix {
					fmt.Printf("    would rewrite %q -> %q\n", pc.Original, pc.Recommended)
				} else {
					fmt.Printf("    recommended: %s (pass --fix to preview a rewrite)\n", pc.Recommended)
				}
			}
		case markdown.StatusError:
			fmt.Printf("✗ line %d: %s — %s\n", link.Line, link.FullMatch, link.Validation.Error)
			if link.Validation.Suggestion != "" {
				fmt.Printf("    did you mean: %s?\n", link.Validation.Suggestion)
			}
			for _, c := range link.Validation.Candidates {
				fmt.Printf("    candidate: %s\n", c)
			}
		}
	}
}
