package logger

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/vogtb/go-spreadsheet/cmd/rcsheet/config"
)

// New builds the front-end logger from config. output goes to out, which
// is stderr in normal use so it never mixes with grid output.
func New(c *config.Logger, out io.Writer) (*logrus.Logger, error) {
	l := logrus.New()
	l.SetOutput(out)

	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid logger.level: %w", err)
	}
	l.SetLevel(level)

	switch c.Format {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}

	return l, nil
}
