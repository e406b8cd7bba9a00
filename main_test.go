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
package main

import (
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yugabyte/chameleon/src/utils"
)

func TestExitOnSignal(t *testing.T) {
	code := -1
	utils.SetExitHook(func(c int) { code = c })
	defer utils.SetExitHook(nil)

	sigs := make(chan os.Signal, 1)
	sigs <- syscall.SIGINT
	exitOnSignal(sigs)
	assert.Equal(t, utils.EXIT_CODE_INTERRUPTED, code)
	assert.ErrorIs(t, utils.ErrExitErr, utils.ErrInterrupted)

	code = -1
	close(sigs)
	exitOnSignal(sigs)
	assert.Equal(t, -1, code)
}
