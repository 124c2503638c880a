package pagestore

import "log/slog"

// logCorruption reports a detected on-disk inconsistency at the warn
// level. Callers that can still make progress (a stray out-of-range size
// class on Free, say) use this instead of failing the whole operation;
// callers that cannot, like a bad superblock checksum on Open, still
// return an error alongside it.
func (s *Store) logCorruption(msg string, args ...any) {
	logger := s.log
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn(msg, args...)
}
