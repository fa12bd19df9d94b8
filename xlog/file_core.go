package xlog

import (
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xindex/lib/infra"
)

var _ xLogCore = (*fileCore)(nil)

type FileCoreConfig struct {
	// FilePath is the log directory, the temp dir when empty.
	FilePath string `json:"filePath" yaml:"filePath"`
	Filename string `json:"filename" yaml:"filename"`
}

type fileCore struct {
	cfg    *FileCoreConfig
	closeC <-chan struct{}
}

func (fc *fileCore) Build(
	lvlEnabler zapcore.LevelEnabler,
	encoder LogEncoderType,
	writer LogOutWriterType,
	lvlEnc zapcore.LevelEncoder,
	tsEnc zapcore.TimeEncoder,
) (core zapcore.Core, err error) {
	if writer != File {
		return nil, infra.NewErrorStack("[XLogger] file core requires the file writer")
	}
	log, err := newSingleLog(fc.cfg, fc.closeC)
	if err != nil {
		return nil, err
	}
	config := zapcore.EncoderConfig{
		MessageKey:    "msg",
		LevelKey:      "lvl",
		EncodeLevel:   lvlEnc,
		TimeKey:       "ts",
		EncodeTime:    tsEnc,
		CallerKey:     "callAt",
		EncodeCaller:  zapcore.ShortCallerEncoder,
		FunctionKey:   "fn",
		NameKey:       "component",
		EncodeName:    zapcore.FullNameEncoder,
		StacktraceKey: coreKeyIgnored,
	}
	return zapcore.NewCore(getEncoderByType(encoder)(config), zapcore.Lock(log), lvlEnabler), nil
}

// WithXLoggerFileCore appends the log to cfg's file instead of a standard
// stream. The file and its directory watcher are released once closeC is
// closed, later entries are dropped.
func WithXLoggerFileCore(cfg *FileCoreConfig, closeC <-chan struct{}) XLoggerOption {
	return func(lc *loggerCfg) error {
		if cfg == nil || cfg.Filename == "" {
			return infra.NewErrorStack("[XLogger] file core requires a filename")
		}
		if closeC == nil {
			return infra.NewErrorStack("[XLogger] file core requires a close channel")
		}
		w := File
		lc.writerType = &w
		lc.core = &fileCore{cfg: cfg, closeC: closeC}
		return nil
	}
}
