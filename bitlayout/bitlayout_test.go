package bitlayout

import (
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"testing"

	"github.com/ceyewan/flake/xerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ========================================
// 往返转换
// ========================================

// boundaryValues 覆盖精度边界 (2^53)、字段边界以及 uint64 上限
func boundaryValues() []uint64 {
	values := []uint64{
		0, 1, 2, 9, 10, 4095, 4096,
		1<<31 - 1, 1 << 31, 1<<32 - 1, 1 << 32,
		1<<50 - 1, 1 << 50,
		1<<53 - 1, 1 << 53, 1<<53 + 1,
		1<<63 - 1, 1 << 63, 1<<63 + 1,
		math.MaxUint64 - 1, math.MaxUint64,
		266241948824764416,
		130660958208131072,
	}
	for shift := 0; shift < 64; shift++ {
		values = append(values, 1<<shift, 1<<shift-1)
	}
	return values
}

func TestRoundTrip_Boundaries(t *testing.T) {
	for _, v := range boundaryValues() {
		bits := FormatBits(v)
		require.Len(t, bits, TotalBits)

		dec, err := DecimalFromBinary(bits)
		require.NoError(t, err, "value %d", v)
		assert.Equal(t, strconv.FormatUint(v, 10), dec)

		back, err := BinaryFromDecimal(strconv.FormatUint(v, 10))
		require.NoError(t, err, "value %d", v)
		assert.Equal(t, bits, back)
	}
}

func TestRoundTrip_RandomSweep(t *testing.T) {
	r := rand.New(rand.NewPCG(1420070400000, 4095))
	for i := 0; i < 20000; i++ {
		v := r.Uint64()

		dec, err := DecimalFromBinary(FormatBits(v))
		require.NoError(t, err)
		parsed, err := strconv.ParseUint(dec, 10, 64)
		require.NoError(t, err)
		require.Equal(t, v, parsed)

		bits, err := BinaryFromDecimal(dec)
		require.NoError(t, err)
		require.Equal(t, FormatBits(v), bits)
	}
}

// ========================================
// DecimalFromBinary
// ========================================

func TestDecimalFromBinary(t *testing.T) {
	tests := []struct {
		name     string
		bits     string
		want     string
		wantCode string
	}{
		{name: "single one", bits: "1", want: "1"},
		{name: "all zero", bits: strings.Repeat("0", 64), want: "0"},
		{name: "short zero", bits: "0", want: "0"},
		{name: "leading zeros beyond 64", bits: strings.Repeat("0", 100) + "1010", want: "10"},
		{name: "discord sample", bits: "0000001110110001111000011010010001010000000000100000000000000000", want: "266241948824764416"},
		{name: "max uint64", bits: strings.Repeat("1", 64), want: "18446744073709551615"},
		{name: "empty", bits: "", wantCode: "empty_input"},
		{name: "not binary", bits: "10201", wantCode: "not_binary"},
		{name: "sign", bits: "-101", wantCode: "not_binary"},
		{name: "65 significant bits", bits: "1" + strings.Repeat("0", 64), wantCode: "out_of_range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecimalFromBinary(tt.bits)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidInput)
				assert.Equal(t, tt.wantCode, xerrors.GetCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// ========================================
// BinaryFromDecimal / ParseDecimal
// ========================================

func TestBinaryFromDecimal(t *testing.T) {
	tests := []struct {
		name     string
		decimal  string
		want     uint64
		wantCode string
	}{
		{name: "zero", decimal: "0", want: 0},
		{name: "leading zeros tolerated", decimal: "000123", want: 123},
		{name: "above 2^53", decimal: "9007199254740993", want: 1<<53 + 1},
		{name: "max uint64", decimal: "18446744073709551615", want: math.MaxUint64},
		{name: "empty", decimal: "", wantCode: "empty_input"},
		{name: "letters", decimal: "not-a-number", wantCode: "not_decimal"},
		{name: "plus sign", decimal: "+1", wantCode: "not_decimal"},
		{name: "whitespace", decimal: " 1", wantCode: "not_decimal"},
		{name: "underscore", decimal: "1_000", wantCode: "not_decimal"},
		{name: "one past max", decimal: "18446744073709551616", wantCode: "out_of_range"},
		{name: "very long", decimal: strings.Repeat("9", 40), wantCode: "out_of_range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BinaryFromDecimal(tt.decimal)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidInput)
				assert.Equal(t, tt.wantCode, xerrors.GetCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, FormatBits(tt.want), got)

			v, err := ParseDecimal(tt.decimal)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestFormatBits(t *testing.T) {
	assert.Equal(t, strings.Repeat("0", 64), FormatBits(0))
	assert.Equal(t, strings.Repeat("0", 63)+"1", FormatBits(1))
	assert.Equal(t, strings.Repeat("1", 64), FormatBits(math.MaxUint64))
}

// ========================================
// Compose / Split
// ========================================

func TestLayoutConstants(t *testing.T) {
	assert.Equal(t, 64, TotalBits)
	assert.Equal(t, 12, ProcessShift)
	assert.Equal(t, 17, WorkerShift)
	assert.Equal(t, 22, TimestampShift)
	assert.EqualValues(t, 4095, MaxIncrement)
	assert.EqualValues(t, 31, MaxWorker)
	assert.EqualValues(t, 31, MaxProcess)
}

func TestCompose_ConcreteScenario(t *testing.T) {
	delta := uint64(1451222400000 - 1420070400000)
	v, err := Compose(Fields{Timestamp: delta, Worker: 1, Process: 0, Increment: 0})
	require.NoError(t, err)
	assert.Equal(t, delta<<22|1<<17, v)
	assert.Equal(t, uint64(130660958208131072), v)
}

func TestCompose_SplitInverse(t *testing.T) {
	fields := []Fields{
		{},
		{Timestamp: MaxTimestamp, Worker: MaxWorker, Process: MaxProcess, Increment: MaxIncrement},
		{Timestamp: 31152000000, Worker: 1, Process: 0, Increment: 7},
		{Timestamp: 1, Worker: 16, Process: 3, Increment: 4094},
	}
	for _, f := range fields {
		v, err := Compose(f)
		require.NoError(t, err)
		assert.Equal(t, f, Split(v))
	}

	all, err := Compose(fields[1])
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), all)
}

func TestSplit_MatchesBinarySlices(t *testing.T) {
	v := uint64(266241948824764416)
	bits := FormatBits(v)
	f := Split(v)

	parse := func(s string) uint64 {
		n, err := strconv.ParseUint(s, 2, 64)
		require.NoError(t, err)
		return n
	}
	assert.Equal(t, parse(bits[0:42]), f.Timestamp)
	assert.Equal(t, parse(bits[42:47]), f.Worker)
	assert.Equal(t, parse(bits[47:52]), f.Process)
	assert.Equal(t, parse(bits[52:64]), f.Increment)
	assert.Equal(t, uint64(1), f.Worker)
}

func TestCompose_Overflow(t *testing.T) {
	tests := []struct {
		name     string
		fields   Fields
		wantCode string
	}{
		{name: "timestamp", fields: Fields{Timestamp: MaxTimestamp + 1}, wantCode: "timestamp_overflow"},
		{name: "worker", fields: Fields{Worker: 32}, wantCode: "worker_overflow"},
		{name: "process", fields: Fields{Process: 32}, wantCode: "process_overflow"},
		{name: "increment", fields: Fields{Increment: 4096}, wantCode: "increment_overflow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compose(tt.fields)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrFieldOverflow)
			assert.Equal(t, tt.wantCode, xerrors.GetCode(err))
		})
	}
}

// ========================================
// Benchmark
// ========================================

func BenchmarkDecimalFromBinary(b *testing.B) {
	bits := FormatBits(266241948824764416)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = DecimalFromBinary(bits)
	}
}

func BenchmarkBinaryFromDecimal(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = BinaryFromDecimal("266241948824764416")
	}
}
