package contract

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Heat label constants.
const (
	CriticalValue = "Critical" // Critical value
	HighValue     = "High"     // High value
	ModerateValue = "Moderate" // Moderate value
	LowValue      = "Low"      // Low value
)

// Color variables for console output.
var (
	CriticalColor = color.New(color.FgRed, color.Bold)     // criticalColor represents standard danger.
	HighColor     = color.New(color.FgMagenta, color.Bold) // highColor represents strong, distinct warning.
	ModerateColor = color.New(color.FgYellow)              // moderateColor represents standard caution, not bold.
	LowColor      = color.New(color.FgCyan)                // lowColor represents informational / low-priority signal.
)

// HeatPercent returns how hot freq is relative to the hottest row, in [0, 100].
func HeatPercent(freq, maxFreq int) float64 {
	if maxFreq <= 0 || freq <= 0 {
		return 0
	}
	return float64(freq) * 100 / float64(maxFreq)
}

// GetPlainLabel returns a plain text label indicating the heat level.
func GetPlainLabel(heat float64) string {
	switch {
	case heat >= 80:
		return CriticalValue
	case heat >= 60:
		return HighValue
	case heat >= 40:
		return ModerateValue
	default:
		return LowValue
	}
}

// ColorizeFreq renders freq with the color of its heat label.
func ColorizeFreq(freq, maxFreq int) string {
	text := fmt.Sprintf("%d", freq)
	switch GetPlainLabel(HeatPercent(freq, maxFreq)) {
	case CriticalValue:
		return CriticalColor.Sprint(text)
	case HighValue:
		return HighColor.Sprint(text)
	case ModerateValue:
		return ModerateColor.Sprint(text)
	default:
		return LowColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path means os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 so there is room for "..." and at least one character.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// LevelForVerbosity maps the number of -V flags onto a log level. The second
// value is false when logging is switched off.
func LevelForVerbosity(verbosity int) (slog.Level, bool) {
	switch {
	case verbosity <= 0:
		return 0, false
	case verbosity == 1:
		return slog.LevelError, true
	case verbosity == 2:
		return slog.LevelWarn, true
	case verbosity == 3:
		return slog.LevelInfo, true
	default:
		return slog.LevelDebug, true
	}
}

// NewLogger builds a text logger on w for the given verbosity.
func NewLogger(w io.Writer, verbosity int) *slog.Logger {
	level, on := LevelForVerbosity(verbosity)
	if !on {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// InitLogger installs the stderr logger for the given verbosity as the default.
func InitLogger(verbosity int) {
	slog.SetDefault(NewLogger(os.Stderr, verbosity))
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a recoverable problem through the default logger.
func LogWarn(msg string, err error) {
	slog.Warn(msg, "error", err)
}

// GetAnalysisDBFilePath returns the path to the SQLite DB file for run tracking.
func GetAnalysisDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".git_hotspots.db"
	}
	return filepath.Join(homeDir, ".git_hotspots.db")
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
