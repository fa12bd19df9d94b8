package infra

import (
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

var initPC = caller()

func caller() Frame {
	var PCs [3]uintptr
	n := runtime.Callers(2, PCs[:])
	frames := runtime.CallersFrames(PCs[:n])
	frame, _ := frames.Next()
	return Frame(frame.PC)
}

func TestFrameFormat(t *testing.T) {
	testcases := []struct {
		Frame
		format   string
		contains string
	}{
		{initPC, "%s", "err_stack_test.go"},
		{initPC, "%+s", "github.com/benz9527/xindex/lib/infra.init\n\t"},
		{initPC, "%n", "init"},
		{initPC, "%d", "15"},
		{initPC, "%v", "err_stack_test.go:15"},
		{initPC, "%+v", "lib/infra/err_stack_test.go:15"},
		{Frame(0), "%s", "unknownFile"},
		{Frame(0), "%n", "unknownFunc"},
		{Frame(0), "%d", "0"},
	}
	for _, tc := range testcases {
		res := fmt.Sprintf(tc.format, tc.Frame)
		require.Contains(t, res, tc.contains)
	}
}

func TestFrameMarshal(t *testing.T) {
	text, err := initPC.MarshalText()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(text), "github.com/benz9527/xindex/lib/infra.init "))
	require.True(t, strings.HasSuffix(string(text), "err_stack_test.go:15"))

	text, err = Frame(0).MarshalText()
	require.NoError(t, err)
	require.Equal(t, "unknownFrame", string(text))

	_bytes, err := json.Marshal(Frame(0))
	require.NoError(t, err)
	require.JSONEq(t, `{"frame":"unknownFrame"}`, string(_bytes))

	_bytes, err = json.Marshal(initPC)
	require.NoError(t, err)
	res := map[string]string{}
	require.NoError(t, json.Unmarshal(_bytes, &res))
	require.Equal(t, "github.com/benz9527/xindex/lib/infra.init", res["func"])
}

var errSentinel = errors.New("sentinel")

func TestErrorStack(t *testing.T) {
	es := NewErrorStack("boom")
	require.Equal(t, "boom", es.Error())
	require.NotEmpty(t, es.Frames())
	require.Contains(t, fmt.Sprintf("%n", es.Frames()[0]), "TestErrorStack")
	require.Contains(t, fmt.Sprintf("%+v", es), "err_stack_test.go")
	require.Equal(t, "boom", fmt.Sprintf("%s", es))

	wrapped := WrapErrorStack(fmt.Errorf("ctx: %w", errSentinel))
	require.ErrorIs(t, wrapped, errSentinel)
	require.Same(t, wrapped, WrapErrorStack(fmt.Errorf("again: %w", wrapped)))
	require.Nil(t, WrapErrorStack(nil))

	enc := zapcore.NewMapObjectEncoder()
	require.NoError(t, es.MarshalLogObject(enc))
	require.Equal(t, "boom", enc.Fields["error"])
	frames, ok := enc.Fields["errorStack"].([]interface{})
	require.True(t, ok)
	require.Len(t, frames, len(es.Frames()))
}
