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
package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
	"golang.org/x/term"
)

var DoNotPrompt bool

// prompts read from here; tests swap it with SetPromptInput
var (
	promptInput         = bufio.NewReader(os.Stdin)
	promptInputInjected bool
)

// SetPromptInput makes prompts read from r. nil restores stdin.
func SetPromptInput(r io.Reader) {
	promptInputInjected = r != nil
	if r == nil {
		r = os.Stdin
	}
	promptInput = bufio.NewReader(r)
}

func IsPromptInputInjected() bool {
	return promptInputInjected
}

func PromptInput() *bufio.Reader {
	return promptInput
}

func Readline(r *bufio.Reader) (string, error) {
	var (
		isPrefix bool  = true
		err      error = nil
		line, ln []byte
	)
	for isPrefix && err == nil {
		line, isPrefix, err = r.ReadLine()
		ln = append(ln, line...)
	}
	return string(ln), err
}

func AskPrompt(args ...string) bool {
	if DoNotPrompt {
		return true
	}
	fmt.Printf("%s? [Y/N]: ", strings.Join(args, " "))

	input, err := Readline(promptInput)
	if err != nil && input == "" {
		log.Infof("no answer to prompt %q: %v", strings.Join(args, " "), err)
		return false
	}

	input = strings.ToUpper(strings.TrimSpace(input))
	return input == "Y" || input == "YES"
}

func FileOrFolderExists(path string) bool {
	_, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false
		} else {
			panic(err)
		}
	} else {
		return true
	}
}

func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}

func IsStdoutTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func IsStdinTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// HumanCount renders 1234567 as "1,234,567".
func HumanCount(n int) string {
	return humanize.Comma(int64(n))
}

func HumanBytes(n int64) string {
	if n < 0 {
		return "unknown"
	}
	return humanize.Bytes(uint64(n))
}
