// Package ui provides styled CLI output for cobc using lipgloss.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	colorPrimary   = lipgloss.Color("#7D56F4")
	colorSecondary = lipgloss.Color("#56C3F4")
	colorSuccess   = lipgloss.Color("#5AF78E")
	colorWarning   = lipgloss.Color("#F7DC6F")
	colorError     = lipgloss.Color("#FF6B9D")
	colorMuted     = lipgloss.Color("#6C7086")

	colorText      = lipgloss.Color("#CDD6F4")
	colorSubtle    = lipgloss.Color("#7F849C")
	colorBorder    = lipgloss.Color("#45475A")
	colorHighlight = lipgloss.Color("#F5E0DC")
	colorNormal    = lipgloss.Color("#FFFFFF")
)

// Styles
var (
	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 2).
			MarginBottom(1)

	styleVersion = lipgloss.NewStyle().
			Foreground(colorSubtle).
			Italic(true)

	styleSection = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorSecondary).
			MarginTop(1)

	styleFilePath = lipgloss.NewStyle().
			Foreground(colorHighlight).
			Bold(true)

	styleFileInput = lipgloss.NewStyle().
			Foreground(colorText)

	styleFileOutput = lipgloss.NewStyle().
			Foreground(colorSuccess)

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorWarning).
			Bold(true)

	styleError = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	styleMuted = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)

	styleStepLabel = lipgloss.NewStyle().
			Foreground(colorText).
			Width(14).
			Align(lipgloss.Left)

	styleStepStatus = lipgloss.NewStyle().
			Bold(true)

	styleStepTime = lipgloss.NewStyle().
			Foreground(colorSubtle).
			Italic(true)

	styleSummary = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(colorBorder).
			MarginTop(1).
			PaddingTop(1)

	styleIndent = lipgloss.NewStyle().
			PaddingLeft(2)

	styleNormalText = lipgloss.NewStyle().
			Foreground(colorNormal)
)

// BuildOutput manages the "cobc build" terminal output.
type BuildOutput struct {
	startTime   time.Time
	fileCount   int
	currentFile string
}

// NewBuildOutput creates a new build output manager.
func NewBuildOutput() *BuildOutput {
	return &BuildOutput{startTime: time.Now()}
}

// PrintHeader prints the cobc banner.
func (b *BuildOutput) PrintHeader(version string) {
	header := styleHeader.Render("cobc")
	versionBadge := styleVersion.Render("v" + version)
	fmt.Println(header + " " + versionBadge)
}

// PrintBuildStart announces how many scripts are about to be compiled.
func (b *BuildOutput) PrintBuildStart(fileCount int) {
	b.fileCount = fileCount

	var msg string
	if fileCount == 1 {
		msg = "Compiling 1 script"
	} else {
		msg = fmt.Sprintf("Compiling %d scripts", fileCount)
	}

	fmt.Println(styleSection.Render(msg))
	fmt.Println()
}

// PrintFileStart prints the source/object pair for the file about to build.
func (b *BuildOutput) PrintFileStart(inputPath, outputPath string) {
	b.currentFile = inputPath

	input := styleFileInput.Render(inputPath)
	arrow := styleMuted.Render("→")
	output := styleFileOutput.Render(outputPath)

	fmt.Printf("  %s %s %s\n", input, arrow, output)
	fmt.Println()
}

// Step represents one compiler pass (preprocess/parse/compile/encode).
type Step struct {
	Name     string
	Status   StepStatus
	Duration time.Duration
	Message  string
}

// StepStatus represents the outcome of a build step.
type StepStatus int

const (
	StepSuccess StepStatus = iota
	StepSkipped
	StepWarning
	StepError
)

// PrintStep prints one pass's result line, e.g. "Parse  Done (2ms)".
func (b *BuildOutput) PrintStep(step Step) {
	var icon, status, statusStyle string

	switch step.Status {
	case StepSuccess:
		icon, status = "✓", "Done"
		statusStyle = styleSuccess.Render(status)
	case StepSkipped:
		icon, status = "○", "Skipped"
		statusStyle = styleMuted.Render(status)
	case StepWarning:
		icon, status = "⚠", "Warning"
		statusStyle = styleWarning.Render(status)
	case StepError:
		icon, status = "✗", "Failed"
		statusStyle = styleError.Render(status)
	}

	label := styleStepLabel.Render(step.Name)
	line := fmt.Sprintf("  %s %s", icon, label)
	line += styleStepStatus.Render(statusStyle)

	if step.Duration > 0 {
		line += " " + styleStepTime.Render("("+formatDuration(step.Duration)+")")
	}

	fmt.Println(line)

	if step.Message != "" {
		fmt.Println(styleMuted.Render("    " + step.Message))
	}
}

// PrintSummary prints the final build result.
func (b *BuildOutput) PrintSummary(success bool, errorMsg string) {
	elapsed := time.Since(b.startTime)
	fmt.Println()

	var summaryLine string
	if success {
		summaryLine = fmt.Sprintf("%s Built in %s",
			styleSuccess.Render("Success!"),
			styleStepTime.Render(formatDuration(elapsed)),
		)
	} else {
		summaryLine = styleError.Render("Build failed")
		if errorMsg != "" {
			summaryLine += "\n" + styleError.Render("  Error: ") + errorMsg
		}
	}

	fmt.Println(styleSummary.Render(summaryLine))
}

// PrintError prints an error message.
func (b *BuildOutput) PrintError(msg string) {
	fmt.Println(styleIndent.Render(styleError.Render("✗ Error: ") + msg))
}

// PrintWarning prints a warning message.
func (b *BuildOutput) PrintWarning(msg string) {
	fmt.Println(styleIndent.Render(styleWarning.Render("⚠ Warning: ") + msg))
}

// PrintInfo prints an informational message.
func (b *BuildOutput) PrintInfo(msg string) {
	fmt.Println(styleIndent.Render(styleMuted.Render("ℹ " + msg)))
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}

// PrintVersionInfo prints cobc's version banner.
func PrintVersionInfo(version string) {
	fmt.Println(styleHeader.Render("cobc"))
	fmt.Println()
	fmt.Printf("  %s %s\n", styleMuted.Render("Version:"), styleSuccess.Render(version))
	fmt.Printf("  %s %s\n", styleMuted.Render("Target:"), styleNormalText.Render("COB bytecode"))
	fmt.Println()
}

// Box wraps content in a bordered, optionally-titled box.
func Box(title, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorPrimary).
		Padding(1, 2).
		Width(60)

	if title != "" {
		titleStyle := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
		content = titleStyle.Render(title) + "\n\n" + content
	}

	return boxStyle.Render(content)
}

// Table renders a simple two-column key/value table.
func Table(rows [][]string) string {
	var lines []string

	maxWidth := 0
	for _, row := range rows {
		if len(row) > 0 && len(row[0]) > maxWidth {
			maxWidth = len(row[0])
		}
	}

	for _, row := range rows {
		if len(row) >= 2 {
			label := styleMuted.Render(fmt.Sprintf("%-*s", maxWidth, row[0]))
			value := styleNormalText.Render(row[1])
			lines = append(lines, fmt.Sprintf("  %s  %s", label, value))
		}
	}

	return strings.Join(lines, "\n")
}

// Divider renders a horizontal rule.
func Divider() string {
	return styleMuted.Render(strings.Repeat("─", 60))
}

// PrintCobcHelp prints colorized top-level help output.
func PrintCobcHelp(version string) {
	header := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	muted := lipgloss.NewStyle().Foreground(colorMuted)
	desc := lipgloss.NewStyle().Foreground(colorText)
	section := lipgloss.NewStyle().Bold(true).Foreground(colorSecondary)
	command := lipgloss.NewStyle().Foreground(colorSuccess)
	flag := lipgloss.NewStyle().Foreground(colorHighlight)

	fmt.Println()
	fmt.Println(header.Render("cobc") + " " + muted.Render("- a unit-script compiler"))
	fmt.Println(muted.Render("  v" + version))
	fmt.Println()

	fmt.Println(desc.Render("cobc compiles BOS-style unit scripts to COB bytecode, with a"))
	fmt.Println(desc.Render("preprocessor pass, source maps back to the original text, and"))
	fmt.Println(desc.Render("a disassembler for inspecting compiled output."))
	fmt.Println()

	fmt.Println(section.Render("Usage:"))
	fmt.Println("  cobc [command] [flags]")
	fmt.Println()

	fmt.Println(section.Render("Available Commands:"))
	commands := []struct{ name, desc string }{
		{"build", "Compile a unit script to a COB object file"},
		{"decode", "Disassemble a COB object file back to a listing"},
		{"version", "Print the version number of cobc"},
		{"help", "Help about any command"},
	}
	for _, cmd := range commands {
		fmt.Printf("  %s  %s\n", command.Render(fmt.Sprintf("%-12s", cmd.name)), cmd.desc)
	}
	fmt.Println()

	fmt.Println(section.Render("Flags:"))
	fmt.Printf("  %s      help for cobc\n", flag.Render("-h, --help"))
	fmt.Printf("  %s   version for cobc\n", flag.Render("-v, --version"))
	fmt.Println()

	fmt.Println(muted.Render("Use \"cobc [command] --help\" for more information about a command."))
	fmt.Println()
}
