package metrics

// NopRecorder discards every observation. Tests use it to avoid registering
// collectors against the default Prometheus registry more than once.
type NopRecorder struct{}

func Nop() *NopRecorder { return &NopRecorder{} }

func (*NopRecorder) RecordVerdict(string, string)  {}
func (*NopRecorder) RecordExecution(string, bool)  {}
func (*NopRecorder) RecordError(string)            {}
func (*NopRecorder) RecordLatency(string, float64) {}
func (*NopRecorder) RecordQueueDepth(string, int)  {}
