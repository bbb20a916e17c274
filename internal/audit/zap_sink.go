package audit

import "go.uber.org/zap"

// ZapSink writes audit records as structured log lines, one per record.
// The log transport downstream of zap is the system of record.
type ZapSink struct {
	logger *zap.SugaredLogger
}

func NewZapSink(logger *zap.SugaredLogger) *ZapSink {
	return &ZapSink{logger: logger}
}

func (s *ZapSink) Write(r Record) error {
	s.logger.Infow("audit",
		"record_id", r.ID,
		"identity", r.Identity,
		"roles", r.Roles,
		"endpoint", r.Endpoint,
		"method", r.Method,
		"action", r.Action,
		"outcome", r.Outcome,
		"reason", r.Reason,
		"at", r.At,
	)
	return nil
}
