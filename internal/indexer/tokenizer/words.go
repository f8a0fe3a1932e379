package tokenizer

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"unicode"
)

// EachWord calls fn with every whitespace-delimited word of r in order.
// Words have no length limit.
func EachWord(r io.Reader, fn func(word string)) error {
	br, ok := r.(io.RuneReader)
	if !ok {
		br = bufio.NewReader(r)
	}
	var word strings.Builder
	for {
		c, _, err := br.ReadRune()
		if err != nil {
			if word.Len() > 0 {
				fn(word.String())
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if unicode.IsSpace(c) {
			if word.Len() > 0 {
				fn(word.String())
				word.Reset()
			}
			continue
		}
		word.WriteRune(c)
	}
}
