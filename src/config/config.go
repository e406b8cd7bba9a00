/*
Copyright (c) YugabyteDB, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package config

import (
	"strings"

	goerrors "github.com/go-errors/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

const (
	TRACE = "trace"
	DEBUG = "debug"
	INFO  = "info"
	WARN  = "warn"
	ERROR = "error"
	FATAL = "fatal"
	PANIC = "panic"
)

// LogLevel is the --log-level of the run log file. Terminal output does not
// depend on it.
var LogLevel = INFO

var (
	logLevels = []string{TRACE, DEBUG, INFO, WARN, ERROR, FATAL, PANIC}
	aliases   = map[string]string{"warning": WARN}
)

// ValidateLogLevel normalizes LogLevel to one of the level names above.
func ValidateLogLevel() error {
	level := strings.ToLower(strings.TrimSpace(LogLevel))
	level = lo.ValueOr(aliases, level, level)
	if !lo.Contains(logLevels, level) {
		return goerrors.Errorf("invalid log level: %s. Valid log levels = %v", LogLevel, logLevels)
	}
	LogLevel = level
	return nil
}

// Level is the logrus level for LogLevel, info when it is not valid.
func Level() log.Level {
	level, err := log.ParseLevel(LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// IsLogLevelDebugOrBelow reports whether debug dumps, such as the resolved
// anonymize settings, belong in the log.
func IsLogLevelDebugOrBelow() bool {
	return Level() >= log.DebugLevel
}
