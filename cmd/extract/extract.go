// Package extract implements citeweave's `extract` command family:
// `links` runs the full pipeline over a source document's outgoing
// citations, while `header` and `file` extract a single named target
// directly via a synthetic link.
package extract

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/citeweave/citeweave/internal/cache"
	"github.com/citeweave/citeweave/internal/clierr"
	"github.com/citeweave/citeweave/internal/config"
	"github.com/citeweave/citeweave/internal/eligibility"
	extractorpkg "github.com/citeweave/citeweave/internal/extractor"
	"github.com/citeweave/citeweave/internal/markdown"
	"github.com/citeweave/citeweave/internal/resolver"
	"github.com/citeweave/citeweave/internal/validator"
	"github.com/citeweave/citeweave/pkg/citation"
)

// NewExtractCommand creates the extract command and its subcommands.
func NewExtractCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract referenced content into a deduplicated JSON payload",
	}

	cmd.AddCommand(newLinksCommand())
	cmd.AddCommand(newHeaderCommand())
	cmd.AddCommand(newFileCommand())

	return cmd
}

func newLinksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "links <source-file>",
		Short: "Extract all eligible outgoing citations from a document",
		Args:  cobra.ExactArgs(1),
		RunE:  runLinks,
	}

	cmd.Flags().String("scope", "", "Directory tree the file resolver searches (default: config scope.default, or .)")
	cmd.Flags().String("format", "", "Output format: json (default: config output.format, or json)")
	cmd.Flags().Bool("full-files", false, "Make whole-file (anchorless) links eligible for extraction")
	cmd.Flags().String("session", "", "Session id; skip extraction if this source's content was already extracted under it")

	return cmd
}

func runLinks(cmd *cobra.Command, args []string) error {
	sourcePath := args[0]

	cfg, err := loadConfig(cmd)
	if err != nil {
		return clierr.InternalFailureError("extract links", err)
	}

	scopeDir := flagOrDefault(cmd, "scope", cfg.Scope.Default)
	fullFiles, _ := cmd.Flags().GetBool("full-files")
	sessionID, _ := cmd.Flags().GetString("session")

	source, err := extractorpkg.ReadSource(sourcePath)
	if err != nil {
		return clierr.New().WithKind(clierr.ParseError).WithFile(sourcePath).
			WithOperation("extract links").WithError(err).Build()
	}

	var sessionCache *cache.SessionCache
	var contentHash string
	if sessionID != "" {
		sessionCache = cache.NewSessionCache(cfg.SessionCache.Directory)
		contentHash = cache.ContentHash(source)
		if sessionCache.Has(sessionID, contentHash) {
			return nil
		}
	}

	fileCache := cache.NewParsedFileCache()
	res, err := resolver.New(scopeDir, resolver.WithIgnorePatterns(cfg.Scope.IgnorePatterns))
	if err != nil {
		return clierr.InternalFailureError("extract links", err)
	}

	v := validator.New(res, fileCache)
	ex := extractorpkg.New(fileCache, v, eligibility.Default())

	content, validationErrors, err := ex.Run(sourcePath, eligibility.Flags{FullFiles: fullFiles})
	if err != nil {
		return clierr.New().WithKind(clierr.ParseError).WithFile(sourcePath).
			WithOperation("extract links").WithError(err).Build()
	}

	for _, msg := range validationErrors {
		fmt.Fprintln(os.Stderr, msg)
	}

	if err := printJSON(content); err != nil {
		return clierr.InternalFailureError("extract links", err)
	}

	if content.Stats.UniqueContent == 0 {
		return clierr.New().WithKind(clierr.FileNotFound).WithFile(sourcePath).
			WithError(fmt.Errorf("no eligible content extracted")).Build()
	}

	if sessionCache != nil {
		if err := sessionCache.Mark(sessionID, contentHash); err != nil {
			return clierr.InternalFailureError("extract links", err)
		}
	}

	return nil
}

func newHeaderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "header <target-file> <header-name>",
		Short: "Extract a single section from a target file by header name",
		Args:  cobra.ExactArgs(2),
		RunE:  runHeader,
	}

	cmd.Flags().String("scope", "", "Directory tree the file resolver searches (default: config scope.default, or .)")
	cmd.Flags().String("format", "", "Output format: json (default: config output.format, or json)")

	return cmd
}

func runHeader(cmd *cobra.Command, args []string) error {
	targetFile, headerName := args[0], args[1]

	cfg, err := loadConfig(cmd)
	if err != nil {
		return clierr.InternalFailureError("extract header", err)
	}
	scopeDir := flagOrDefault(cmd, "scope", cfg.Scope.Default)

	link := syntheticLink(targetFile, markdown.AnchorHeader, headerName)
	return runSynthetic(targetFile, scopeDir, cfg.Scope.IgnorePatterns, link)
}

func newFileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "file <target-file>",
		Short: "Extract a target file's full content",
		Args:  cobra.ExactArgs(1),
		RunE:  runFile,
	}

	cmd.Flags().String("scope", "", "Directory tree the file resolver searches (default: config scope.default, or .)")
	cmd.Flags().String("format", "", "Output format: json (default: config output.format, or json)")

	return cmd
}

func runFile(cmd *cobra.Command, args []string) error {
	targetFile := args[0]

	cfg, err := loadConfig(cmd)
	if err != nil {
		return clierr.InternalFailureError("extract file", err)
	}
	scopeDir := flagOrDefault(cmd, "scope", cfg.Scope.Default)

	link := syntheticLink(targetFile, markdown.AnchorNone, "")
	return runSynthetic(targetFile, scopeDir, cfg.Scope.IgnorePatterns, link)
}

// syntheticLink builds the factory-constructed link §6 describes for
// `extract header`/`extract file`: cross-document scope, validation
// absent, no enclosing source document.
func syntheticLink(targetFile string, anchorType markdown.AnchorType, anchor string) *markdown.Link {
	target := targetFile
	if anchorType == markdown.AnchorHeader {
		target = fmt.Sprintf("%s#%s", targetFile, anchor)
	}
	return &markdown.Link{
		Scope:      markdown.ScopeCrossDocument,
		AnchorType: anchorType,
		Target:     markdown.TargetPath{Raw: targetFile},
		Anchor:     anchor,
		FullMatch:  target,
		Line:       1,
	}
}

func runSynthetic(targetFile, scopeDir string, ignorePatterns []string, link *markdown.Link) error {
	fileCache := cache.NewParsedFileCache()
	res, err := resolver.New(scopeDir, resolver.WithIgnorePatterns(ignorePatterns))
	if err != nil {
		return clierr.InternalFailureError("extract", err)
	}

	v := validator.New(res, fileCache)
	ex := extractorpkg.New(fileCache, v, eligibility.Default())

	content, validationErrors := ex.RunSyntheticLink(link, targetFile, eligibility.Flags{FullFiles: true})

	for _, msg := range validationErrors {
		fmt.Fprintln(os.Stderr, msg)
	}

	if err := printJSON(content); err != nil {
		return clierr.InternalFailureError("extract", err)
	}

	if content.Stats.UniqueContent == 0 {
		return unresolvedSyntheticLinkError(targetFile, link)
	}

	return nil
}

// unresolvedSyntheticLinkError picks the CLIError matching why a
// synthetic `extract header`/`extract file` link produced no content,
// carrying the resolver's/validator's suggestion through.
func unresolvedSyntheticLinkError(targetFile string, link *markdown.Link) error {
	if link.Validation == nil {
		return clierr.FileNotFoundError(targetFile, "")
	}
	switch {
	case strings.HasPrefix(link.Validation.Error, "anchor not found"):
		return clierr.AnchorNotFoundError(targetFile, link.Anchor, link.Validation.Suggestion)
	case strings.HasPrefix(link.Validation.Error, "multiple files match"):
		return clierr.DuplicateShortNameError(targetFile, link.Validation.Candidates)
	case strings.HasPrefix(link.Validation.Error, "could not parse target file"):
		return clierr.InternalFailureError("extract", fmt.Errorf("%s", link.Validation.Error))
	default:
		return clierr.FileNotFoundError(targetFile, link.Validation.Suggestion)
	}
}

func printJSON(content citation.ExtractedContent) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(content)
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
