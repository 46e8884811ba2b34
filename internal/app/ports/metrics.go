package ports

type AssistantMetrics interface {
	RecordRouted(handler string)
	RecordActionCreated(kind string)
	RecordActionResolved(outcome string)
	RecordExecutionFailure()
}
