package xlog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/google/safeopen"
	"go.uber.org/multierr"

	"github.com/benz9527/xindex/lib/infra"
)

var _ io.WriteCloser = (*singleLog)(nil)

// singleLog appends to one file beneath filePath. The directory is watched
// and a removed or renamed log file is recreated by the next write, so an
// external logrotate keeps working.
type singleLog struct {
	filePath    string
	filename    string
	lock        sync.Mutex
	currentFile *os.File
	watcher     *fsnotify.Watcher
	closeC      <-chan struct{}
	doneC       chan struct{}
}

func newSingleLog(cfg *FileCoreConfig, closeC <-chan struct{}) (*singleLog, error) {
	if cfg == nil || cfg.Filename == "" || closeC == nil {
		return nil, infra.NewErrorStack("[XLogger] single log requires a filename and a close channel")
	}
	log := &singleLog{
		filePath: cfg.FilePath,
		filename: filepath.Base(cfg.Filename),
		closeC:   closeC,
		doneC:    make(chan struct{}),
	}
	if err := log.initialize(); err != nil {
		return nil, err
	}
	return log, nil
}

func (log *singleLog) Write(p []byte) (n int, err error) {
	select {
	case <-log.closeC:
		return 0, io.EOF
	default:
	}

	log.lock.Lock()
	defer log.lock.Unlock()
	if log.currentFile == nil {
		if err = log.openOrCreate(); err != nil {
			return 0, err
		}
	}
	return log.currentFile.Write(p)
}

func (log *singleLog) Sync() error {
	log.lock.Lock()
	defer log.lock.Unlock()
	if log.currentFile == nil {
		return nil
	}
	return log.currentFile.Sync()
}

// Close releases the current file handle only, a later write reopens it.
func (log *singleLog) Close() error {
	log.lock.Lock()
	defer log.lock.Unlock()
	if log.currentFile == nil {
		return nil
	}
	err := log.currentFile.Close()
	log.currentFile = nil
	return err
}

func (log *singleLog) initialize() error {
	if log.filePath == "" {
		log.filePath = os.TempDir()
	}
	if err := os.MkdirAll(log.filePath, 0o755); err != nil {
		return infra.WrapErrorStack(err)
	}
	log.lock.Lock()
	err := log.openOrCreate()
	log.lock.Unlock()
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return multierr.Append(infra.WrapErrorStack(fmt.Errorf("failed to create file watcher: %w", err)), log.Close())
	}
	if err = watcher.Add(log.filePath); err != nil {
		return multierr.Combine(
			infra.WrapErrorStack(fmt.Errorf("failed to add log directory to watcher: %w", err)),
			watcher.Close(),
			log.Close(),
		)
	}
	log.watcher = watcher
	go log.watch()
	return nil
}

// openOrCreate is called with the lock held.
func (log *singleLog) openOrCreate() error {
	pathToLog := filepath.Join(log.filePath, log.filename)
	if info, err := os.Stat(pathToLog); err == nil && info.IsDir() {
		return infra.NewErrorStack("log file <" + pathToLog + "> is a dir")
	}
	f, err := safeopen.OpenFileBeneath(log.filePath, log.filename, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return infra.WrapErrorStack(fmt.Errorf("unable to open log file %s: %w", pathToLog, err))
	}
	log.currentFile = f
	return nil
}

// watch runs until closeC is closed.
func (log *singleLog) watch() {
	defer close(log.doneC)
	for {
		select {
		case <-log.closeC:
			handleFileLogError(multierr.Append(log.Close(), log.watcher.Close()))
			return
		case event, ok := <-log.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != log.filename {
				continue
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				handleFileLogError(log.Close())
			}
		case err, ok := <-log.watcher.Errors:
			if !ok {
				return
			}
			handleFileLogError(err)
		}
	}
}

func handleFileLogError(err error) {
	if err == nil {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "[XLogger] file log: %v\n", err)
}
