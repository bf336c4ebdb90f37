package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/unit-scripts/cobc/pkg/compiler"
	"github.com/unit-scripts/cobc/pkg/config"
	cerrors "github.com/unit-scripts/cobc/pkg/errors"
	"github.com/unit-scripts/cobc/pkg/parser"
	"github.com/unit-scripts/cobc/pkg/preprocessor"
	"github.com/unit-scripts/cobc/pkg/sourcemap"
	"github.com/unit-scripts/cobc/pkg/ui"
)

func buildCmd() *cobra.Command {
	var (
		output        string
		strict        bool
		noFold        bool
		sourceMapMode string
		includePaths  []string
		defines       []string
	)

	cmd := &cobra.Command{
		Use:   "build [file.bos...]",
		Short: "Compile a unit script to a COB object file",
		Long: `Build compiles one or more BOS unit scripts into COB object files.

The pipeline:
1. Preprocesses the source (#include, #define, conditional compilation)
2. Parses it into an AST
3. Lowers the AST into bytecode and encodes a COB object file
4. Optionally emits a source map back to the original text

Example:
  cobc build unit.bos
  cobc build -o build/unit.cob unit.bos
  cobc build --strict unit.bos`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := &config.Config{
				Compiler: config.CompilerConfig{
					OutputPath: output,
					Strict:     strict,
				},
				Preprocessor: config.PreprocessorConfig{
					IncludePaths: includePaths,
					Defines:      defines,
				},
			}
			if sourceMapMode != "" {
				overrides.SourceMap.Mode = config.SourceMapMode(sourceMapMode)
			}

			cfg, err := config.Load(overrides)
			if err != nil {
				return err
			}
			if noFold {
				cfg.Compiler.FoldConstants = false
			}

			return runBuild(args, cfg)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output object-file path (default: replace the input extension with .cob; only valid for a single input file)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Treat an unhandled AST node as a fatal error instead of a placeholder warning")
	cmd.Flags().BoolVar(&noFold, "no-fold", false, "Disable constant folding during parsing")
	cmd.Flags().StringVar(&sourceMapMode, "sourcemap", "", "Source map emission mode: inline, separate, or none (default from config)")
	cmd.Flags().StringSliceVar(&includePaths, "include", nil, "Additional #include search path (repeatable)")
	cmd.Flags().StringSliceVar(&defines, "define", nil, "Predefine a macro as NAME or NAME=VALUE (repeatable)")

	return cmd
}

func runBuild(files []string, cfg *config.Config) error {
	buildUI := ui.NewBuildOutput()
	buildUI.PrintHeader(version)
	buildUI.PrintBuildStart(len(files))

	if len(files) > 1 && cfg.Compiler.OutputPath != "" {
		return fmt.Errorf("-o/--output cannot be used with more than one input file")
	}

	success := true
	var lastErr error

	for _, file := range files {
		outputPath := cfg.Compiler.OutputPath
		if outputPath == "" {
			outputPath = deriveOutputPath(file)
		}
		if err := buildFile(file, outputPath, buildUI, cfg); err != nil {
			success = false
			lastErr = err
			buildUI.PrintError(err.Error())
			break
		}
	}

	if success {
		buildUI.PrintSummary(true, "")
		return nil
	}

	buildUI.PrintSummary(false, lastErr.Error())
	return lastErr
}

func deriveOutputPath(inputPath string) string {
	for _, ext := range []string{".bos", ".cob.txt", ".txt"} {
		if strings.HasSuffix(inputPath, ext) {
			return strings.TrimSuffix(inputPath, ext) + ".cob"
		}
	}
	return inputPath + ".cob"
}

func buildFile(inputPath, outputPath string, buildUI *ui.BuildOutput, cfg *config.Config) error {
	buildUI.PrintFileStart(inputPath, outputPath)

	src, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	prepStart := time.Now()
	pp := preprocessor.New()
	for _, dir := range cfg.Preprocessor.IncludePaths {
		pp.AddIncludePath(dir)
	}
	for _, def := range cfg.Preprocessor.Defines {
		if err := pp.Define(def); err != nil {
			buildUI.PrintStep(ui.Step{Name: "Preprocess", Status: ui.StepError, Duration: time.Since(prepStart)})
			return fmt.Errorf("invalid define %q: %w", def, err)
		}
	}

	expanded, _, chunks, err := pp.ProcessFile(string(src), inputPath)
	prepDuration := time.Since(prepStart)
	if err != nil {
		buildUI.PrintStep(ui.Step{Name: "Preprocess", Status: ui.StepError, Duration: prepDuration})
		return fmt.Errorf("preprocessing error: %w", err)
	}
	buildUI.PrintStep(ui.Step{Name: "Preprocess", Status: ui.StepSuccess, Duration: prepDuration})

	parseStart := time.Now()
	mode := parser.Mode(0)
	if cfg.Compiler.FoldConstants {
		mode |= parser.FoldConstants
	}
	file, err := parser.ParseFile(inputPath, []byte(expanded), mode)
	parseDuration := time.Since(parseStart)
	if err != nil {
		buildUI.PrintStep(ui.Step{Name: "Parse", Status: ui.StepError, Duration: parseDuration})
		return fmt.Errorf("parse error: %w", err)
	}
	buildUI.PrintStep(ui.Step{Name: "Parse", Status: ui.StepSuccess, Duration: parseDuration})

	compileStart := time.Now()
	var diags cerrors.Diagnostics
	comp := compiler.New(compiler.Options{RaiseOnUnhandledNode: cfg.Compiler.Strict}, &diags)
	obj, err := comp.CompileFile(file)
	compileDuration := time.Since(compileStart)
	if err != nil {
		buildUI.PrintStep(ui.Step{Name: "Compile", Status: ui.StepError, Duration: compileDuration})
		return fmt.Errorf("compile error: %w", err)
	}

	status := ui.StepSuccess
	var msg string
	if diags.HasWarnings() {
		status = ui.StepWarning
		msg = fmt.Sprintf("%d warning(s)", len(diags.Warnings()))
		for _, w := range diags.Warnings() {
			buildUI.PrintWarning(w.Error())
		}
	}
	buildUI.PrintStep(ui.Step{Name: "Compile", Status: status, Duration: compileDuration, Message: msg})

	encodeStart := time.Now()
	data, err := obj.Encode()
	encodeDuration := time.Since(encodeStart)
	if err != nil {
		buildUI.PrintStep(ui.Step{Name: "Encode", Status: ui.StepError, Duration: encodeDuration})
		return fmt.Errorf("encode error: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		buildUI.PrintStep(ui.Step{Name: "Encode", Status: ui.StepError, Duration: encodeDuration})
		return fmt.Errorf("failed to write output: %w", err)
	}
	buildUI.PrintStep(ui.Step{
		Name:     "Encode",
		Status:   ui.StepSuccess,
		Duration: encodeDuration,
		Message:  fmt.Sprintf("%d bytes written", len(data)),
	})

	return emitSourceMap(outputPath, chunks, cfg, buildUI)
}

func emitSourceMap(outputPath string, chunks []preprocessor.Chunk, cfg *config.Config, buildUI *ui.BuildOutput) error {
	if cfg.SourceMap.Mode == config.SourceMapNone {
		buildUI.PrintStep(ui.Step{Name: "Source map", Status: ui.StepSkipped})
		return nil
	}

	sm := preprocessor.FromChunks(chunks)
	gen := sourcemap.NewGenerator(outputPath, sm)

	if cfg.SourceMap.Mode == config.SourceMapInline {
		inline, err := gen.GenerateInline()
		if err != nil {
			buildUI.PrintStep(ui.Step{Name: "Source map", Status: ui.StepError})
			return fmt.Errorf("source map generation failed: %w", err)
		}
		if err := appendInlineSourceMap(outputPath, inline); err != nil {
			buildUI.PrintStep(ui.Step{Name: "Source map", Status: ui.StepError})
			return fmt.Errorf("failed to append inline source map: %w", err)
		}
		buildUI.PrintStep(ui.Step{Name: "Source map", Status: ui.StepSuccess, Message: "inline"})
		return nil
	}

	data, err := gen.Generate()
	if err != nil {
		buildUI.PrintStep(ui.Step{Name: "Source map", Status: ui.StepError})
		return fmt.Errorf("source map generation failed: %w", err)
	}
	mapPath := outputPath + ".map"
	if err := os.WriteFile(mapPath, data, 0644); err != nil {
		buildUI.PrintStep(ui.Step{Name: "Source map", Status: ui.StepError})
		return fmt.Errorf("failed to write source map: %w", err)
	}
	buildUI.PrintStep(ui.Step{Name: "Source map", Status: ui.StepSuccess, Message: mapPath})
	return nil
}

// appendInlineSourceMap writes the data-URL comment produced by
// Generator.GenerateInline to a sibling ".cob.map.txt" file. The bytecode
// container is a binary format with no comment syntax of its own, so the
// object file itself is not modified.
func appendInlineSourceMap(outputPath, inline string) error {
	return os.WriteFile(outputPath+".map.txt", []byte(inline), 0644)
}
