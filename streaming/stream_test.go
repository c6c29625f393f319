package streaming

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/ogzhanolguncu/comment-wordcount/map_reduce"
	"github.com/stretchr/testify/require"
)

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: nil},
		{name: "trailing newline", input: "a\t1\nb\t1\n", want: []string{"a\t1", "b\t1"}},
		{name: "no trailing newline", input: "a\t1\nb\t1", want: []string{"a\t1", "b\t1"}},
		{name: "crlf", input: "a\t1\r\nb\t1\r\n", want: []string{"a\t1", "b\t1"}},
		{name: "blank line kept", input: "a\t1\n\nb\t1\n", want: []string{"a\t1", "", "b\t1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, SplitLines(tt.input))
		})
	}
}

func TestRunMapper(t *testing.T) {
	in := strings.NewReader("a,b,c,\"hello world\"\nx,y,z,\"hello there\"\n")
	var out bytes.Buffer

	err := RunMapper(in, &out, map_reduce.NewCommentTokenizer())
	require.NoError(t, err)
	require.Equal(t, "hello\t1\nworld\t1\nhello\t1\nthere\t1\n", out.String())
}

func TestRunMapperEmptyToken(t *testing.T) {
	var out bytes.Buffer

	err := RunMapper(strings.NewReader("a,b,c,a  b\n"), &out, map_reduce.NewCommentTokenizer())
	require.NoError(t, err)
	require.Equal(t, "a\t1\n\t1\nb\t1\n", out.String())
}

func TestRunMapperShortRecordWritesNothing(t *testing.T) {
	var out bytes.Buffer

	err := RunMapper(strings.NewReader("a,b,c,ok\nshort,row\n"), &out, map_reduce.NewCommentTokenizer())
	require.ErrorIs(t, err, map_reduce.ErrShortRecord)
	require.Empty(t, out.String())
}

func TestRunReducer(t *testing.T) {
	in := strings.NewReader("hello\t1\nhello\t1\nnoTabHere\nthere\t1\nworld\t1\n")
	var out bytes.Buffer

	err := RunReducer(in, &out, &map_reduce.Aggregator{})
	require.NoError(t, err)
	require.Equal(t, "hello\t2\nthere\t1\nworld\t1\n", out.String())
}

func TestRunReducerBadCountWritesNothing(t *testing.T) {
	var out bytes.Buffer

	err := RunReducer(strings.NewReader("a\t1\nb\tx\n"), &out, &map_reduce.Aggregator{})
	require.ErrorIs(t, err, map_reduce.ErrBadCount)
	require.Empty(t, out.String())
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, fmt.Errorf("disk full")
}

func TestWritePairsError(t *testing.T) {
	err := WritePairs(failingWriter{}, []map_reduce.KeyValue{{Key: "a", Value: "1"}})
	require.Error(t, err)
}
