package core

// Logger is any service that can log.
// Arguments may be errors, maps of extras or the user on whose behalf the work is done.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
