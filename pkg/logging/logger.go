package logging

const (
	BaseDataDir = "data"
	LogsDir     = "logs"
)

// ProcessName type to ensure valid process names
type ProcessName string

const (
	RewardsProcess   ProcessName = "rewards"
	SchedulerProcess ProcessName = "scheduler"
)

// Logger is the logging interface shared by every component. Components
// receive it by constructor injection so tests can substitute a no-op.
type Logger interface {
	Debug(msg string, tags ...any)
	Info(msg string, tags ...any)
	Warn(msg string, tags ...any)
	Error(msg string, tags ...any)
	Fatal(msg string, tags ...any)
	Debugf(template string, args ...interface{})
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Errorf(template string, args ...interface{})
	Fatalf(template string, args ...interface{})
	With(tags ...any) Logger
}

// LoggerConfig controls where and how a process logger writes.
type LoggerConfig struct {
	LogDir        string
	ProcessName   ProcessName
	IsDevelopment bool
}

// NewDefaultConfig returns the standard config for a process.
func NewDefaultConfig(processName ProcessName) LoggerConfig {
	return LoggerConfig{
		LogDir:        BaseDataDir,
		ProcessName:   processName,
		IsDevelopment: true,
	}
}
