package session

import "fmt"

// logInfo logs at INFO level to both the operator log and the structured log
func (s *Session) logInfo(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	s.logger.Printf("%s", msg)
	s.structured.Info(msg)
}

// logWarning logs at WARNING level to both the operator log and the structured log
func (s *Session) logWarning(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	s.logger.Printf("Warning: %s", msg)
	s.structured.Warning(msg)
}

// logError logs at ERROR level to both the operator log and the structured log
func (s *Session) logError(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	s.logger.Printf("Error: %s", msg)
	s.structured.Error(msg)
}
