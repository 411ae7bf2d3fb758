package mock

import (
	"fmt"
	"strings"
	"sync"
)

// MockLog implements common.Logger and keeps every line for assertions.
type MockLog struct {
	Name string

	mutex sync.Mutex
	lines []string
}

func (l *MockLog) record(level, msg string) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.lines = append(l.lines, level+" "+strings.TrimRight(msg, "\n"))
}

func (l *MockLog) Debug(args ...interface{}) {
	l.record("DEBUG", fmt.Sprint(args...))
}

func (l *MockLog) Debugf(format string, args ...interface{}) {
	l.record("DEBUG", fmt.Sprintf(format, args...))
}

func (l *MockLog) Info(args ...interface{}) {
	l.record("INFO", fmt.Sprint(args...))
}

func (l *MockLog) Infof(format string, args ...interface{}) {
	l.record("INFO", fmt.Sprintf(format, args...))
}

func (l *MockLog) Warn(args ...interface{}) {
	l.record("WARN", fmt.Sprint(args...))
}

func (l *MockLog) Warnf(format string, args ...interface{}) {
	l.record("WARN", fmt.Sprintf(format, args...))
}

func (l *MockLog) Error(args ...interface{}) {
	l.record("ERROR", fmt.Sprint(args...))
}

func (l *MockLog) Errorf(format string, args ...interface{}) {
	l.record("ERROR", fmt.Sprintf(format, args...))
}

func (l *MockLog) Lines() []string {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// Contains reports whether any recorded line contains substr.
func (l *MockLog) Contains(substr string) bool {
	for _, line := range l.Lines() {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

func GetMockLogger(name string) *MockLog {
	return &MockLog{Name: name}
}
