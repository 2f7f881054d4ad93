// Package cli provides the command line interface.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/ctxstudio/internal/assembler"
	"github.com/temirov/ctxstudio/internal/config"
	"github.com/temirov/ctxstudio/internal/output"
	"github.com/temirov/ctxstudio/internal/scanner"
	"github.com/temirov/ctxstudio/internal/selection"
	"github.com/temirov/ctxstudio/internal/services/clipboard"
	"github.com/temirov/ctxstudio/internal/tokenizer"
	"github.com/temirov/ctxstudio/internal/types"
	"github.com/temirov/ctxstudio/internal/utils"
)

const (
	exclusionFlagName = "exclude"
	formatFlagName    = "format"
	selectFlagName    = "select"
	allFlagName       = "all"
	copyFlagName      = "copy"
	summaryFlagName   = "summary"
	tokensFlagName    = "tokens"
	modelFlagName     = "model"
	versionFlagName   = "version"
	configFlagName    = "config"
	forceFlagName     = "force"
	globalFlagName    = "global"

	versionTemplate      = "ctxstudio version: %s\n"
	defaultPath          = "."
	rootUse              = "ctxstudio"
	rootShortDescription = "assemble selected project files into an LLM context document"
	rootLongDescription  = `ctxstudio scans a project directory, lets you select a subset of its files,
and assembles their contents into a single deterministic Markdown document
suitable for pasting into a large-language-model prompt.
A context_header.md or context_footer.md directly under the root is injected
automatically. Use --format to select raw or json output.`

	treeUse              = "tree [path]"
	treeAlias            = "t"
	treeShortDescription = "display the scanned selection tree (" + treeAlias + ")"
	treeLongDescription  = `Scan a root directory and display its selection tree, directories first,
sorted case-insensitively, with excluded directories filtered out.`
	treeUsageExample = `  # Show the tree for the current directory
  ctxstudio tree

  # Exclude build output alongside the defaults
  ctxstudio tree --exclude dist .`

	buildUse              = "build [path]"
	buildAlias            = "b"
	buildShortDescription = "assemble the context document (" + buildAlias + ")"
	buildLongDescription  = `Scan a root directory, select files, and print the assembled context
document. Each --select path (file or directory, relative to the root) is
toggled on; selecting a directory selects its whole subtree. Without
--select the entire tree is selected.`
	buildUsageExample = `  # Build a document from two selections and copy it
  ctxstudio build --select cmd --select README.md --copy .

  # Everything under the root as JSON with a precise token count
  ctxstudio build --all --format json --tokens .`

	configUse                  = "config"
	configShortDescription     = "manage ctxstudio configuration"
	configInitUse              = "init"
	configInitShortDescription = "write a starter configuration file"

	versionFlagDescription   = "display application version"
	configFlagDescription    = "path to a configuration file"
	exclusionFlagDescription = "directory name to exclude from the scan (repeatable)"
	formatFlagDescription    = "output format (raw or json)"
	selectFlagDescription    = "file or directory to select, relative to the root (repeatable)"
	allFlagDescription       = "select the entire tree"
	copyFlagDescription      = "copy the assembled document to the system clipboard"
	summaryFlagDescription   = "print selected file count and token estimate to stderr"
	tokensFlagDescription    = "count document tokens with a real tokenizer"
	modelFlagDescription     = "tokenizer model to use for token counting"
	forceFlagDescription     = "overwrite an existing configuration file"
	globalFlagDescription    = "write the global configuration file instead of a local one"

	defaultTokenizerModelName = "gpt-4o"

	invalidFormatMessage      = "invalid format value '%s'"
	warningSelectMissing      = "Warning: --select path %s matches nothing in the scanned tree\n"
	summaryLineFormat         = "Selected files: %d | Estimated tokens: %d\n"
	tokenCountLineFormat      = "Tokens (%s): %d\n"
	configWrittenFormat       = "Configuration written to %s\n"
	clipboardResultLineFormat = "%s\n"
)

// isSupportedFormat reports whether the provided format is recognized.
func isSupportedFormat(format string) bool {
	switch format {
	case types.FormatRaw, types.FormatJSON:
		return true
	default:
		return false
	}
}

// Execute runs the ctxstudio application with the provided logger.
func Execute(logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	rootCommand := createRootCommand(logger)
	return rootCommand.Execute()
}

// createRootCommand builds the root Cobra command.
func createRootCommand(logger *zap.Logger) *cobra.Command {
	var showVersion bool
	var explicitConfigPath string

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRun: func(command *cobra.Command, arguments []string) {
			if showVersion {
				fmt.Printf(versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
		},
	}
	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.PersistentFlags().StringVar(&explicitConfigPath, configFlagName, "", configFlagDescription)
	rootCommand.AddCommand(
		createTreeCommand(logger, &explicitConfigPath),
		createBuildCommand(logger, &explicitConfigPath),
		createConfigCommand(),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// createTreeCommand returns the tree subcommand.
func createTreeCommand(logger *zap.Logger, explicitConfigPath *string) *cobra.Command {
	var excludedDirectoryNames []string
	var outputFormat string

	treeCommand := &cobra.Command{
		Use:     treeUse,
		Aliases: []string{treeAlias},
		Short:   treeShortDescription,
		Long:    treeLongDescription,
		Example: treeUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			rootPath := defaultPath
			if len(arguments) == 1 {
				rootPath = arguments[0]
			}
			applicationConfiguration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{ExplicitFilePath: *explicitConfigPath})
			if configurationError != nil {
				return configurationError
			}
			resolvedFormat := resolveFormat(command, outputFormat, applicationConfiguration.Tree.Format)
			if !isSupportedFormat(resolvedFormat) {
				return fmt.Errorf(invalidFormatMessage, resolvedFormat)
			}
			exclusions := resolveExclusions(command, excludedDirectoryNames, applicationConfiguration.Tree.Paths.ExcludedDirectories)

			selectionTree, scanError := scanIntoSelectionTree(logger, rootPath, exclusions)
			if scanError != nil {
				return scanError
			}
			if resolvedFormat == types.FormatJSON {
				renderedTree, renderError := output.RenderTreeJSON(selectionTree)
				if renderError != nil {
					return renderError
				}
				fmt.Println(renderedTree)
				return nil
			}
			fmt.Print(output.RenderTreeRaw(selectionTree))
			return nil
		},
	}

	treeCommand.Flags().StringArrayVarP(&excludedDirectoryNames, exclusionFlagName, "e", nil, exclusionFlagDescription)
	treeCommand.Flags().StringVar(&outputFormat, formatFlagName, types.FormatRaw, formatFlagDescription)
	return treeCommand
}

// createBuildCommand returns the build subcommand.
func createBuildCommand(logger *zap.Logger, explicitConfigPath *string) *cobra.Command {
	var excludedDirectoryNames []string
	var outputFormat string
	var selectionPaths []string
	var selectAll bool
	var copyToClipboard bool
	var summaryEnabled bool
	var tokensEnabled bool
	var tokenizerModel string

	buildCommand := &cobra.Command{
		Use:     buildUse,
		Aliases: []string{buildAlias},
		Short:   buildShortDescription,
		Long:    buildLongDescription,
		Example: buildUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			rootPath := defaultPath
			if len(arguments) == 1 {
				rootPath = arguments[0]
			}
			applicationConfiguration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{ExplicitFilePath: *explicitConfigPath})
			if configurationError != nil {
				return configurationError
			}
			buildConfiguration := applicationConfiguration.Build

			resolvedFormat := resolveFormat(command, outputFormat, buildConfiguration.Format)
			if !isSupportedFormat(resolvedFormat) {
				return fmt.Errorf(invalidFormatMessage, resolvedFormat)
			}
			exclusions := resolveExclusions(command, excludedDirectoryNames, buildConfiguration.Paths.ExcludedDirectories)
			if !command.Flags().Changed(copyFlagName) && buildConfiguration.Clipboard != nil {
				copyToClipboard = *buildConfiguration.Clipboard
			}
			if !command.Flags().Changed(summaryFlagName) && buildConfiguration.Summary != nil {
				summaryEnabled = *buildConfiguration.Summary
			}
			if !command.Flags().Changed(tokensFlagName) && buildConfiguration.Tokens.Enabled != nil {
				tokensEnabled = *buildConfiguration.Tokens.Enabled
			}
			if !command.Flags().Changed(modelFlagName) && buildConfiguration.Tokens.Model != "" {
				tokenizerModel = buildConfiguration.Tokens.Model
			}

			return runBuild(logger, buildParameters{
				rootPath:        rootPath,
				exclusions:      exclusions,
				selectionPaths:  selectionPaths,
				selectAll:       selectAll,
				format:          resolvedFormat,
				copyToClipboard: copyToClipboard,
				summaryEnabled:  summaryEnabled,
				tokensEnabled:   tokensEnabled,
				tokenizerModel:  tokenizerModel,
			})
		},
	}

	buildCommand.Flags().StringArrayVarP(&excludedDirectoryNames, exclusionFlagName, "e", nil, exclusionFlagDescription)
	buildCommand.Flags().StringVar(&outputFormat, formatFlagName, types.FormatRaw, formatFlagDescription)
	buildCommand.Flags().StringArrayVar(&selectionPaths, selectFlagName, nil, selectFlagDescription)
	buildCommand.Flags().BoolVar(&selectAll, allFlagName, false, allFlagDescription)
	buildCommand.Flags().BoolVar(&copyToClipboard, copyFlagName, false, copyFlagDescription)
	buildCommand.Flags().BoolVar(&summaryEnabled, summaryFlagName, false, summaryFlagDescription)
	buildCommand.Flags().BoolVar(&tokensEnabled, tokensFlagName, false, tokensFlagDescription)
	buildCommand.Flags().StringVar(&tokenizerModel, modelFlagName, defaultTokenizerModelName, modelFlagDescription)
	return buildCommand
}

// createConfigCommand returns the config subcommand with its init action.
func createConfigCommand() *cobra.Command {
	configCommand := &cobra.Command{
		Use:   configUse,
		Short: configShortDescription,
	}

	var forceOverwrite bool
	var globalTarget bool
	initCommand := &cobra.Command{
		Use:   configInitUse,
		Short: configInitShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if globalTarget {
				target = config.InitTargetGlobal
			}
			writtenPath, initializeError := config.InitializeConfiguration(config.InitOptions{
				Target: target,
				Force:  forceOverwrite,
			})
			if initializeError != nil {
				return initializeError
			}
			fmt.Printf(configWrittenFormat, writtenPath)
			return nil
		},
	}
	initCommand.Flags().BoolVar(&forceOverwrite, forceFlagName, false, forceFlagDescription)
	initCommand.Flags().BoolVar(&globalTarget, globalFlagName, false, globalFlagDescription)

	configCommand.AddCommand(initCommand)
	return configCommand
}

// buildParameters carries the settled options for one build run.
type buildParameters struct {
	rootPath        string
	exclusions      []string
	selectionPaths  []string
	selectAll       bool
	format          string
	copyToClipboard bool
	summaryEnabled  bool
	tokensEnabled   bool
	tokenizerModel  string
}

// runBuild scans the root, applies the requested selection, assembles the
// document, and renders it. Clipboard failures are reported, not fatal.
func runBuild(logger *zap.Logger, parameters buildParameters) error {
	selectionTree, scanError := scanIntoSelectionTree(logger, parameters.rootPath, parameters.exclusions)
	if scanError != nil {
		return scanError
	}
	applySelection(selectionTree, parameters)

	rootNode, _ := selectionTree.Node(selectionTree.Root())
	documentBuilder := assembler.NewBuilder(logger)
	document := documentBuilder.Build(rootNode.Path, selectionTree.CheckedFiles())

	switch parameters.format {
	case types.FormatJSON:
		renderedResult, renderError := output.RenderBuildJSON(document)
		if renderError != nil {
			return renderError
		}
		fmt.Println(renderedResult)
	default:
		fmt.Println(document.Text)
	}

	if parameters.copyToClipboard {
		_, copyMessage := clipboard.NewService(logger).CopyText(document.Text)
		fmt.Fprintf(os.Stderr, clipboardResultLineFormat, copyMessage)
	}
	if parameters.tokensEnabled {
		reportPreciseTokens(document.Text, parameters.tokenizerModel)
	}
	if parameters.summaryEnabled {
		fmt.Fprintf(os.Stderr, summaryLineFormat, document.SelectedFileCount, document.EstimatedTokens)
	}
	return nil
}

// scanIntoSelectionTree validates the root, scans it, and builds the
// selection tree over the result.
func scanIntoSelectionTree(logger *zap.Logger, rootPath string, excludedDirectoryNames []string) (*selection.Tree, error) {
	directoryScanner, scannerError := scanner.NewScanner(rootPath, excludedDirectoryNames, logger)
	if scannerError != nil {
		return nil, scannerError
	}
	return selection.NewTree(directoryScanner.Scan()), nil
}

// applySelection toggles the requested nodes checked. Without any explicit
// selection the whole tree is selected. Unmatched --select paths produce a
// warning on stderr and are skipped.
func applySelection(selectionTree *selection.Tree, parameters buildParameters) {
	if parameters.selectAll || len(parameters.selectionPaths) == 0 {
		selectionTree.Toggle(selectionTree.Root(), types.CheckStateChecked)
		return
	}
	rootNode, rootFound := selectionTree.Node(selectionTree.Root())
	if !rootFound {
		return
	}
	for _, selectionPath := range parameters.selectionPaths {
		absoluteSelectionPath := selectionPath
		if !filepath.IsAbs(absoluteSelectionPath) {
			absoluteSelectionPath = filepath.Join(rootNode.Path, absoluteSelectionPath)
		}
		absoluteSelectionPath = filepath.Clean(absoluteSelectionPath)
		nodeID, nodeFound := selectionTree.NodeByPath(absoluteSelectionPath)
		if !nodeFound {
			fmt.Fprintf(os.Stderr, warningSelectMissing, selectionPath)
			continue
		}
		selectionTree.Toggle(nodeID, types.CheckStateChecked)
	}
}

// reportPreciseTokens counts document tokens with a real tokenizer and prints
// the result to stderr. Counter failures degrade to a warning.
func reportPreciseTokens(documentText string, model string) {
	tokenCounter, resolvedModel, counterError := tokenizer.NewCounter(tokenizer.Config{Model: model})
	if counterError != nil {
		fmt.Fprintf(os.Stderr, "Warning: token counting unavailable: %v\n", counterError)
		return
	}
	tokenCount, countError := tokenCounter.CountString(documentText)
	if countError != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to count tokens: %v\n", countError)
		return
	}
	fmt.Fprintf(os.Stderr, tokenCountLineFormat, strings.TrimSpace(resolvedModel), tokenCount)
}

// resolveFormat applies precedence: explicit flag, then configuration file,
// then the flag default.
func resolveFormat(command *cobra.Command, flagValue string, configuredValue string) string {
	if !command.Flags().Changed(formatFlagName) && configuredValue != "" {
		return strings.ToLower(configuredValue)
	}
	return strings.ToLower(flagValue)
}

// resolveExclusions applies precedence: explicit flags, then configuration,
// then the fixed default set. Flag values extend the configured or default
// set rather than replacing it.
func resolveExclusions(command *cobra.Command, flagValues []string, configuredValues []string) []string {
	baseValues := types.DefaultExcludedDirectoryNames()
	if len(configuredValues) > 0 {
		baseValues = configuredValues
	}
	if command.Flags().Changed(exclusionFlagName) {
		baseValues = append(baseValues, flagValues...)
	}
	return utils.DeduplicateNames(baseValues)
}
