package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ParseError reports a malformed line in a hex image.
type ParseError struct {
	Path string
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: invalid hex word %q: %v", e.Path, e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// LoadHex reads a hex text image: one 32-bit word per line, hexadecimal
// without prefix. The words form a single segment at address 0.
func LoadHex(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open hex file: %w", err)
	}
	defer func() { _ = f.Close() }()

	words, err := ParseHex(f)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			perr.Path = path
		}
		return nil, err
	}

	return &Program{
		Segments: []Segment{{
			Words: words,
			Flags: SegmentFlagRead | SegmentFlagWrite | SegmentFlagExecute,
		}},
	}, nil
}

// ParseHex parses every line before returning, so a malformed line yields
// no words at all. Blank lines at the end of the input are ignored; a blank
// line followed by more words is malformed.
func ParseHex(r io.Reader) ([]uint32, error) {
	var (
		words      []uint32
		blankLine  int
		lineNumber int
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNumber++
		text := strings.TrimSpace(scanner.Text())

		if text == "" {
			if blankLine == 0 {
				blankLine = lineNumber
			}
			continue
		}
		if blankLine != 0 {
			return nil, &ParseError{Path: "<input>", Line: blankLine, Err: strconv.ErrSyntax}
		}

		v, err := strconv.ParseUint(text, 16, 32)
		if err != nil {
			return nil, &ParseError{Path: "<input>", Line: lineNumber, Text: text, Err: numError(err)}
		}
		words = append(words, uint32(v))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read hex image: %w", err)
	}
	return words, nil
}

// numError strips strconv's wrapper, which repeats the input text.
func numError(err error) error {
	var ne *strconv.NumError
	if errors.As(err, &ne) {
		return ne.Err
	}
	return err
}
