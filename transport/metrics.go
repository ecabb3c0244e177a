package transport

const (
	// MetricOperations Encode/Decode 调用次数，标签 operation=encode|decode、outcome=success|error (Counter)
	MetricOperations = "flake_transport_operations_total"

	operationEncode = "encode"
	operationDecode = "decode"
)
