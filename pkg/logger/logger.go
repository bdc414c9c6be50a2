package logger

// Instance is a logging backend. The pipeline only ever talks to the
// package-level functions; backends are registered once at startup.
type Instance interface {
	Log(message string, keyvals ...any)
	Debug(message string, keyvals ...any)
	Info(message string, keyvals ...any)
	Warn(message string, keyvals ...any)
	Error(message string, keyvals ...any)
	Fatal(message string, keyvals ...any)
}

// Logger fans log calls out to all configured backends.
type Logger struct {
	instances []Instance
}

var singleton *Logger

func getSingleton() *Logger {
	return singleton
}

// Init installs the global logger backends. Must be called before any
// logging function; calls before Init are dropped silently.
func Init(instances ...Instance) {
	singleton = &Logger{
		instances: instances,
	}
}

// Log writes a message at the default level to all backends.
func Log(message string, keyvals ...any) {
	logger := getSingleton()
	if logger == nil {
		return
	}

	for _, instance := range logger.instances {
		instance.Log(message, keyvals...)
	}
}

// Debug writes a message at DEBUG level to all backends.
func Debug(message string, keyvals ...any) {
	logger := getSingleton()
	if logger == nil {
		return
	}

	for _, instance := range logger.instances {
		instance.Debug(message, keyvals...)
	}
}

// Info writes a message at INFO level to all backends.
func Info(message string, keyvals ...any) {
	logger := getSingleton()
	if logger == nil {
		return
	}

	for _, instance := range logger.instances {
		instance.Info(message, keyvals...)
	}
}

// Warn writes a message at WARN level to all backends.
func Warn(message string, keyvals ...any) {
	logger := getSingleton()
	if logger == nil {
		return
	}

	for _, instance := range logger.instances {
		instance.Warn(message, keyvals...)
	}
}

// Error writes a message at ERROR level to all backends.
func Error(message string, keyvals ...any) {
	logger := getSingleton()
	if logger == nil {
		return
	}

	for _, instance := range logger.instances {
		instance.Error(message, keyvals...)
	}
}

// Fatal writes a message at FATAL level and terminates the program.
func Fatal(message string, keyvals ...any) {
	logger := getSingleton()
	if logger == nil {
		return
	}

	for _, instance := range logger.instances {
		instance.Fatal(message, keyvals...)
	}
}
