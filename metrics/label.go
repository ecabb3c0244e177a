package metrics

// Label 指标标签，为指标添加维度信息
//
// 命名使用小写字母和下划线；标签值必须是低基数的，
// 雪花 ID、请求 ID 这类值不能作为标签。
type Label struct {
	Key   string
	Value string
}

// L 便捷构造函数
//
//	counter.Inc(ctx, metrics.L("operation", "encode"), metrics.L("outcome", "success"))
func L(key, value string) Label {
	return Label{Key: key, Value: value}
}
