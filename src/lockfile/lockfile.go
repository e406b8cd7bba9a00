package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/nightlyone/lockfile"
	log "github.com/sirupsen/logrus"
)

var ErrStateDirBusy = errors.New("state dir is in use by another chameleon process")

// Lockfile guards a state dir against concurrent chameleon commands.
type Lockfile struct {
	fpath    string
	cmdPID   int
	lockfile lockfile.Lockfile
}

func GetLockfilePath(stateDir string, cmdName string) string {
	return filepath.Join(stateDir, fmt.Sprintf(".%sLockfile.lck", strings.ReplaceAll(cmdName, " ", "-")))
}

func NewLockfile(fpath string) *Lockfile {
	return &Lockfile{fpath: fpath, cmdPID: -1}
}

func (l *Lockfile) GetCmdPID() (int, error) {
	if l.cmdPID != -1 {
		return l.cmdPID, nil
	}

	bytes, err := os.ReadFile(l.fpath)
	if err != nil {
		return -1, fmt.Errorf("failed to read lockfile %q: %w", l.fpath, err)
	}
	l.cmdPID, err = strconv.Atoi(strings.Trim(string(bytes), " \n"))
	if err != nil {
		return -1, fmt.Errorf("failed to parse PID from lockfile %q: %w", l.fpath, err)
	}
	return l.cmdPID, nil
}

func (l *Lockfile) IsPIDActive() bool {
	pid, err := l.GetCmdPID()
	if err != nil {
		return false
	}

	proc, _ := os.FindProcess(pid) // Always succeeds on Unix systems

	// Signal(0) fails only if the process is not running
	err = proc.Signal(syscall.Signal(0))
	if err != nil {
		log.Infof("process %d is not active", pid)
		return false
	}
	log.Infof("process %d is active", pid)
	return true
}

func (l *Lockfile) Lock() error {
	absPath, err := filepath.Abs(l.fpath)
	if err != nil {
		return fmt.Errorf("lockfile path %q: %w", l.fpath, err)
	}
	l.lockfile, err = lockfile.New(absPath)
	if err != nil {
		return fmt.Errorf("failed to create lockfile %q: %w", l.fpath, err)
	}

	err = l.lockfile.TryLock()
	switch {
	case err == nil:
		log.Infof("locked %q", l.fpath)
		return nil
	case errors.Is(err, lockfile.ErrBusy):
		return fmt.Errorf("%w (lockfile %s)", ErrStateDirBusy, l.fpath)
	default:
		return fmt.Errorf("unable to lock the state dir: %w", err)
	}
}

func (l *Lockfile) Unlock() error {
	err := l.lockfile.Unlock()
	if err != nil {
		return fmt.Errorf("unable to unlock %q: %w", l.fpath, err)
	}
	return nil
}
