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
package pbreporter

import (
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

type EnablePBReporter struct {
	bar *mpb.Bar
}

func newEnablePBReporter(progressContainer *mpb.Progress, sheetName string) *EnablePBReporter {
	bar := progressContainer.AddBar(int64(0), // total is set once the sheet is read
		mpb.BarFillerClearOnComplete(),
		mpb.PrependDecorators(
			decor.Name(sheetName, decor.WCSyncSpaceR),
			decor.CountersNoUnit("%d / %d cells", decor.WCSyncSpace),
		),
		mpb.AppendDecorators(
			decor.OnComplete(
				decor.NewPercentage("%.2f", decor.WCSyncSpaceR), "done",
			),
			decor.OnComplete(
				decor.AverageETA(decor.ET_STYLE_GO), "",
			),
		),
	)
	return &EnablePBReporter{bar: bar}
}

func (pbr *EnablePBReporter) IncrProcessedCellCount(n int64) {
	pbr.bar.IncrInt64(n)
}

func (pbr *EnablePBReporter) SetTotalCellCount(totalCellCount int64, triggerComplete bool) {
	pbr.bar.SetTotal(totalCellCount, triggerComplete)
}

func (pbr *EnablePBReporter) IsComplete() bool {
	return pbr.bar.Completed()
}
