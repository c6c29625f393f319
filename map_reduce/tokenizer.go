package map_reduce

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
)

const DefaultCommentField = 3

var ErrShortRecord = fmt.Errorf("record has too few fields")

// whitespace is the ASCII \s class including vertical tab.
var whitespace = regexp.MustCompile(`[\t\n\v\f\r ]`)

// CommentTokenizer emits (token, 1) for every whitespace-separated token of
// one CSV column. Empty tokens produced by adjacent whitespace are kept.
type CommentTokenizer struct {
	Field int
	Comma rune
}

func NewCommentTokenizer() *CommentTokenizer {
	return &CommentTokenizer{
		Field: DefaultCommentField,
		Comma: ',',
	}
}

func (m *CommentTokenizer) Map(filename string, contents string) ([]KeyValue, error) {
	comments, err := m.comments(contents)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	var kvs []KeyValue
	for _, comment := range comments {
		for _, token := range whitespace.Split(comment, -1) {
			kvs = append(kvs, KeyValue{Key: token, Value: "1"})
		}
	}

	return kvs, nil
}

// comments extracts the comment column of every record. A single short
// record fails the whole input before anything is tokenized.
func (m *CommentTokenizer) comments(contents string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(contents))
	if m.Comma != 0 {
		r.Comma = m.Comma
	}
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var comments []string
	// next is the line the following record should start on. encoding/csv
	// skips blank lines, but a blank line is a record with no fields.
	next := 1
	for n := 1; ; n++ {
		row, err := r.Read()
		if err == io.EOF {
			if next <= lineCount(contents) {
				return nil, m.emptyRecord(n)
			}
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing record %d: %w", n, err)
		}
		if line, _ := r.FieldPos(0); line > next {
			return nil, m.emptyRecord(n)
		}
		last, _ := r.FieldPos(len(row) - 1)
		next = last + strings.Count(row[len(row)-1], "\n") + 1

		if m.Field < 0 || len(row) <= m.Field {
			return nil, fmt.Errorf("record %d has %d fields, need index %d: %w",
				n, len(row), m.Field, ErrShortRecord)
		}
		comments = append(comments, row[m.Field])
	}

	return comments, nil
}

func (m *CommentTokenizer) emptyRecord(n int) error {
	return fmt.Errorf("record %d has 0 fields, need index %d: %w", n, m.Field, ErrShortRecord)
}

func lineCount(contents string) int {
	if contents == "" {
		return 0
	}
	n := strings.Count(contents, "\n")
	if !strings.HasSuffix(contents, "\n") {
		n++
	}
	return n
}
