package cmd

import (
	"fmt"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/yugabyte/chameleon/src/lockfile"
	"github.com/yugabyte/chameleon/src/metadb"
	"github.com/yugabyte/chameleon/src/utils"
)

// stateDirHandle is a locked state dir with its meta db open. It is released
// by Close, or by ErrExit and Interrupt if the command never gets to Close.
type stateDirHandle struct {
	dir    string
	lock   *lockfile.Lockfile
	metaDB *metadb.MetaDB
	forget func()
}

func openStateDir(dir string, cmdName string) (*stateDirHandle, error) {
	err := utils.EnsureDir(dir)
	if err != nil {
		return nil, fmt.Errorf("state dir %q: %w", dir, err)
	}
	lock := lockfile.NewLockfile(lockfile.GetLockfilePath(dir, cmdName))
	err = lock.Lock()
	if err != nil {
		return nil, err
	}

	err = metadb.CreateAndInitMetaDBIfRequired(dir)
	if err != nil {
		lock.Unlock()
		return nil, fmt.Errorf("init meta db: %w", err)
	}
	m, err := metadb.NewMetaDB(dir)
	if err != nil {
		lock.Unlock()
		return nil, fmt.Errorf("open meta db: %w", err)
	}
	s := &stateDirHandle{dir: dir, lock: lock, metaDB: m}
	s.forget = utils.OnFailure(func(error) { s.release() })
	return s, nil
}

func (s *stateDirHandle) Close() {
	s.forget()
	s.release()
}

// trackRun marks runId FAILED if the process terminates before the returned
// func is called.
func (s *stateDirHandle) trackRun(runId string) (done func()) {
	return utils.OnFailure(func(err error) {
		log.Errorf("run %s did not finish: %v", runId, err)
		if ferr := s.metaDB.FinishRun(runId, metadb.RUN_STATUS_FAILED, 0); ferr != nil {
			log.Errorf("record run %s: %v", runId, ferr)
		}
	})
}

func (s *stateDirHandle) release() {
	if err := s.metaDB.Close(); err != nil {
		log.Warnf("close meta db: %v", err)
	}
	if err := s.lock.Unlock(); err != nil {
		log.Warnf("%v", err)
	}
}

func (s *stateDirHandle) reportPath(runId string) string {
	return filepath.Join(s.dir, REPORTS_DIR, runId+".json")
}
