package pbreporter

import "github.com/vbauerster/mpb/v8"

// ProgressReporter tracks the cells of one sheet as its columns are anonymized.
type ProgressReporter interface {
	SetTotalCellCount(totalCellCount int64, triggerComplete bool)
	IncrProcessedCellCount(n int64)
	IsComplete() bool
}

func NewSheetPB(progressContainer *mpb.Progress, sheetName string, disablePb bool) ProgressReporter {
	if disablePb || progressContainer == nil {
		return newDisablePBReporter()
	} else {
		return newEnablePBReporter(progressContainer, sheetName)
	}
}
