// Package console holds the terminal helpers shared by the command line tools.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	golog "github.com/tochemey/goakt/v3/log"
	"github.com/ttacon/chalk"
)

// ParseLevel maps a --log-level value to a logger level.
func ParseLevel(s string) (golog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return golog.DebugLevel, nil
	case "", "info":
		return golog.InfoLevel, nil
	case "warn", "warning":
		return golog.WarningLevel, nil
	case "error":
		return golog.ErrorLevel, nil
	}
	return golog.InvalidLevel, fmt.Errorf("unknown log level %q", s)
}

// NewLogger returns a logger writing to stderr.
func NewLogger(level string) (golog.Logger, error) {
	l, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return golog.New(l, os.Stderr), nil
}

// Fail prints err in red and exits.
func Fail(err error) {
	fmt.Fprintln(os.Stderr, chalk.Red.Color("error: "+err.Error()))
	os.Exit(1)
}

// Title prints a bold heading.
func Title(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, chalk.Bold.TextStyle(fmt.Sprintf(format, args...)))
}

// Row prints a label and a value, the value coloured by how good it is.
func Row(w io.Writer, label string, value string, good bool) {
	c := chalk.Yellow
	if good {
		c = chalk.Green
	}
	fmt.Fprintf(w, "  %-28s %s\n", label, c.Color(value))
}
