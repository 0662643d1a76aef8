package engine

import "log"

// logf writes a stage-tagged debug line when the engine is configured
// verbose, matching the teacher's plain log.Printf idiom rather than a
// structured logging library (see DESIGN.md's dropped-dependency note
// on go.uber.org/zap).
func (e *Engine) logf(format string, args ...interface{}) {
	if !e.config.Verbose {
		return
	}
	log.Printf("pedsa: "+format, args...)
}
