package common

import (
	"errors"
	"fmt"
	"log"
	"os"
)

// Logger is the ambient logging sink injected into the build cache and CLI.
// It defaults to stderr, matching spec §9's "inject a logging interface;
// default to stderr" design note.
type Logger struct {
	impl              *log.Logger
	fileName          string
	verbosity         int
	duplicateToStderr bool
}

func MakeLogger(logFile string, verbosity int) (*Logger, error) {
	var impl *log.Logger

	if logFile != "" && logFile != "stderr" {
		out, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
		if err != nil {
			return nil, err
		}
		impl = log.New(out, "", 0)
	} else {
		impl = log.New(os.Stderr, "", 0)
	}

	if verbosity < -1 || verbosity > 2 {
		return nil, errors.New("incorrect verbosity passed")
	}

	return &Logger{
		impl:              impl,
		fileName:          logFile,
		verbosity:         verbosity,
		duplicateToStderr: logFile != "stderr",
	}, nil
}

func formatStr(prefix string, v ...any) string {
	return fmt.Sprintf("%s%s", prefix, fmt.Sprintln(v...))
}

func (logger *Logger) Info(verbosity int, v ...any) {
	if logger.verbosity >= verbosity && logger.impl != nil {
		_ = logger.impl.Output(0, formatStr("<6>", v...))
	}
}

// Warn is for spec §7's non-aborting warnings: overwriting during copy_files,
// losing the promotion race. They go to the info sink, not the error sink.
func (logger *Logger) Warn(v ...any) {
	if logger.impl != nil {
		_ = logger.impl.Output(0, formatStr("<4>", v...))
	}
}

func (logger *Logger) Error(v ...any) {
	if logger.impl != nil {
		_ = logger.impl.Output(0, formatStr("<3>", v...))
	}
	if logger.duplicateToStderr {
		_, _ = fmt.Fprint(os.Stderr, formatStr("", v...))
	}
}

func (logger *Logger) RotateLogFile() error {
	if logger.fileName == "" {
		return nil
	}
	out, err := os.OpenFile(logger.fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		return err
	}

	logger.impl = log.New(out, "", 0)
	return nil
}

func (logger *Logger) GetFileName() string {
	return logger.fileName
}
