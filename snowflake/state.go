package snowflake

import "github.com/ceyewan/flake/bitlayout"

// State 生成器的自增计数器
//
// 计数器达到 4095 时先归零再使用，因此实际写入的值落在 0..4094。
// State 本身不加锁，由持有它的 Generator 串行访问。
type State struct {
	Increment int64
}

// Next 返回本次要写入 increment 字段的值，并推进计数器
//
// wrapped 为 true 表示本次调用前计数器已到上限并被重置。
func (s *State) Next() (value int64, wrapped bool) {
	if s.Increment >= bitlayout.MaxIncrement {
		s.Increment = 0
		wrapped = true
	}
	value = s.Increment
	s.Increment++
	return value, wrapped
}
