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
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/tebeka/atexit"
)

const (
	EXIT_CODE_FAILURE     = 1
	EXIT_CODE_INTERRUPTED = 130
)

var ErrInterrupted = errors.New("interrupted")

type failureRecorder struct {
	id int
	fn func(err error)
}

var (
	// ErrExitErr is the error the process is terminating with.
	ErrExitErr error

	failureMu      sync.Mutex
	recorders      []failureRecorder
	nextRecorderId int

	exitHook = atexit.Exit
)

// SetExitHook replaces how ErrExit and Interrupt terminate. nil restores
// atexit.Exit.
func SetExitHook(h func(code int)) {
	if h == nil {
		exitHook = atexit.Exit
	} else {
		exitHook = h
	}
}

// OnFailure registers fn to see the error before ErrExit or Interrupt ends the
// process, so an in-flight run can be marked failed and its state dir
// released. Recorders run newest first. The returned func unregisters fn.
func OnFailure(fn func(err error)) (remove func()) {
	failureMu.Lock()
	defer failureMu.Unlock()
	nextRecorderId++
	id := nextRecorderId
	recorders = append(recorders, failureRecorder{id: id, fn: fn})
	return func() {
		failureMu.Lock()
		defer failureMu.Unlock()
		for i, r := range recorders {
			if r.id == id {
				recorders = append(recorders[:i], recorders[i+1:]...)
				return
			}
		}
	}
}

// ErrExit prints the formatted error and terminates with EXIT_CODE_FAILURE.
func ErrExit(format string, args ...interface{}) {
	err := fmt.Errorf(format, args...)

	format = strings.Replace(format, "%w", "%s", -1)
	fmt.Fprintf(os.Stderr, color.RedString("ERROR: ")+format+"\n", args...)
	log.Errorf(format, args...)

	terminate(err, EXIT_CODE_FAILURE)
}

// Interrupt terminates with EXIT_CODE_INTERRUPTED after sig was received.
func Interrupt(sig os.Signal) {
	PrintAndLog("Received signal %s. Exiting...", sig)
	terminate(fmt.Errorf("%w by signal %s", ErrInterrupted, sig), EXIT_CODE_INTERRUPTED)
}

func terminate(err error, code int) {
	failureMu.Lock()
	ErrExitErr = err
	pending := append([]failureRecorder(nil), recorders...)
	recorders = nil
	failureMu.Unlock()

	for i := len(pending) - 1; i >= 0; i-- {
		pending[i].fn(err)
	}
	exitHook(code)
}

func PrintAndLog(formatString string, args ...interface{}) {
	log.Infof(formatString, args...)
	if !strings.HasSuffix(formatString, "\n") {
		formatString = formatString + "\n"
	}
	fmt.Printf(formatString, args...)
}
