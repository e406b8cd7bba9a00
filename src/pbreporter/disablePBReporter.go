package pbreporter

// DisablePBReporter keeps the counts without drawing anything, for
// --disable-pb and non-terminal output.
type DisablePBReporter struct {
	TotalCells      int64
	CurrentCells    int64
	IsCompleted     bool
	TriggerComplete bool
}

func newDisablePBReporter() *DisablePBReporter {
	return &DisablePBReporter{}
}

func (pbr *DisablePBReporter) SetTotalCellCount(totalCellCount int64, triggerComplete bool) {
	pbr.TriggerComplete = triggerComplete
	if totalCellCount < 0 {
		pbr.TotalCells = pbr.CurrentCells
	} else {
		pbr.TotalCells = totalCellCount
	}
	if triggerComplete && !pbr.IsCompleted {
		pbr.IsCompleted = true
		pbr.CurrentCells = pbr.TotalCells
	}
}

func (pbr *DisablePBReporter) IncrProcessedCellCount(n int64) {
	if n < 0 {
		return
	}
	pbr.CurrentCells += n
	if pbr.TotalCells > 0 && pbr.CurrentCells >= pbr.TotalCells {
		pbr.CurrentCells = pbr.TotalCells
		pbr.IsCompleted = true
	}
}

func (pbr *DisablePBReporter) IsComplete() bool {
	return pbr.IsCompleted
}
