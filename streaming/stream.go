// Package streaming speaks the line protocol of a streaming map/reduce
// framework: records in on stdin, "<key>\t<value>" lines out on stdout.
package streaming

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	. "github.com/ogzhanolguncu/comment-wordcount/map_reduce"
)

// ReadAll buffers the whole input before any processing starts.
func ReadAll(r io.Reader) (string, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(content), nil
}

// SplitLines splits buffered input on '\n'. A trailing newline does not produce an
// extra empty line, and a trailing '\r' is stripped from each line.
func SplitLines(contents string) []string {
	if contents == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(contents, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

func WritePairs(w io.Writer, kvs []KeyValue) error {
	bw := bufio.NewWriter(w)
	for _, kv := range kvs {
		if _, err := fmt.Fprintf(bw, "%s\t%s\n", kv.Key, kv.Value); err != nil {
			return fmt.Errorf("failed to write pair: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return nil
}

// RunMapper reads all of r, maps it and writes the pairs to w. Nothing is
// written if the mapper fails.
func RunMapper(r io.Reader, w io.Writer, m Mapper) error {
	contents, err := ReadAll(r)
	if err != nil {
		return err
	}

	kvs, err := m.Map("stdin", contents)
	if err != nil {
		return fmt.Errorf("map failed: %w", err)
	}

	return WritePairs(w, kvs)
}

// RunReducer reads all of r as pair lines, reduces them and writes the totals
// to w. Nothing is written if the reducer fails.
func RunReducer(r io.Reader, w io.Writer, rd Reducer) error {
	contents, err := ReadAll(r)
	if err != nil {
		return err
	}

	kvs, err := rd.Reduce(SplitLines(contents))
	if err != nil {
		return fmt.Errorf("reduce failed: %w", err)
	}

	return WritePairs(w, kvs)
}
