package snowflake

// Metrics 指标常量定义
const (
	// MetricGenerated 成功生成的 snowflake 总数 (Counter)
	MetricGenerated = "flake_snowflake_generated_total"

	// MetricIncrementWrapped 自增计数器回绕次数 (Counter)
	MetricIncrementWrapped = "flake_snowflake_increment_wrapped_total"

	// MetricDeconstructed Deconstruct 调用次数，按 outcome 区分 (Counter)
	MetricDeconstructed = "flake_snowflake_deconstructed_total"
)
