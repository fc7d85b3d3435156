// Package prompt asks the operator for the XPath expression.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// QueryText is the question shown before reading the expression.
const QueryText = "Please enter the XPath expression to extract the information: "

// ErrEmptyQuery is returned when the operator enters nothing.
var ErrEmptyQuery = errors.New("no XPath expression provided")

// ReadQuery writes text to w and reads one line from r. Surrounding whitespace
// is trimmed; an empty line or immediate EOF yields ErrEmptyQuery.
func ReadQuery(r io.Reader, w io.Writer, text string) (string, error) {
	if _, err := io.WriteString(w, text); err != nil {
		return "", fmt.Errorf("write prompt: %w", err)
	}
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("read xpath: %w", err)
		}
		return "", ErrEmptyQuery
	}
	query := strings.TrimSpace(scanner.Text())
	if query == "" {
		return "", ErrEmptyQuery
	}
	return query, nil
}
