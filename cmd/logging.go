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
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/yugabyte/chameleon/src/config"
)

type MyFormatter struct{}

var levelList = []string{
	"PANIC",
	"FATAL",
	"ERROR",
	"WARN",
	"INFO",
	"DEBUG",
	"TRACE",
}

func (mf *MyFormatter) Format(entry *log.Entry) ([]byte, error) {
	level := levelList[int(entry.Level)]
	fileName := "-"
	line := 0
	if entry.Caller != nil {
		fileName = filepath.Base(entry.Caller.File)
		line = entry.Caller.Line
	}
	// Example log line:
	// 2022-03-23 12:16:42 INFO main.go:27 Logging initialised.
	msg := fmt.Sprintf("%s %s %s:%d %s\n",
		entry.Time.Format("2006-01-02 15:04:05"), level,
		fileName, line, entry.Message)
	return []byte(msg), nil
}

// InitLogging sends logs to ${logDir}/logs/chameleon-<cmd>.log. Without a log
// dir, logs are discarded.
func InitLogging(logDir string, cmdName string) {
	if logDir == "" {
		log.SetOutput(io.Discard)
		return
	}
	logFileName := filepath.Join(logDir, "logs", fmt.Sprintf("chameleon-%s.log", strings.ReplaceAll(cmdName, " ", "-")))

	// lumberjack creates the "logs" folder and the file if missing
	logRotator := &lumberjack.Logger{
		Filename:   logFileName,
		MaxSize:    200, // 200 MB log size before rotation
		MaxBackups: 10,  // Allow upto 10 logs at once before deleting oldest logs.
	}
	log.SetOutput(logRotator)

	log.SetLevel(config.Level())
	log.SetReportCaller(true)
	log.SetFormatter(&MyFormatter{})
	log.Info("Logging initialised.")
	log.Infof("Args: %v", redactSaltFromArgs(os.Args))
	log.Infof("\n%s", getVersionInfo())
}

// redactSaltFromArgs masks the value of --salt, in both "--salt X" and
// "--salt=X" forms.
func redactSaltFromArgs(args []string) []string {
	redacted := append([]string(nil), args...)
	for i := 0; i < len(redacted); i++ {
		opt := redacted[i]
		if opt == "--salt" && i+1 < len(redacted) {
			redacted[i+1] = "XXX"
		} else if strings.HasPrefix(opt, "--salt=") {
			redacted[i] = "--salt=XXX"
		}
	}
	return redacted
}
