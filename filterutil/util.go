// Package filterutil contains helpers for reading, splitting and writing the
// text of loot filters.
package filterutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/AdguardTeam/golibs/errors"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Newline sequences.
const (
	NewlineLF   = "\n"
	NewlineCRLF = "\r\n"
)

// Block is a group of consecutive non-blank lines.
type Block struct {
	// Lines are the lines of the block without the line terminators.
	Lines []string

	// Start is the zero-based index of the first line of the block in the
	// source text.
	Start int
}

// Decode converts the raw file contents into text.  A byte order mark, if
// any, selects the encoding and is dropped; UTF-8 is assumed otherwise.
func Decode(b []byte) (text string, err error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	res, _, err := transform.Bytes(dec, b)
	if err != nil {
		return "", fmt.Errorf("decoding text: %w", err)
	}

	return string(res), nil
}

// ReadFile reads and decodes the text file at path.
func ReadFile(path string) (text string, err error) {
	// #nosec G304 -- Trust the path, since it's provided by the user.
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading filter: %w", err)
	}

	return Decode(b)
}

// WriteFile writes text to path replacing the whole file at once: the data
// goes to a temporary file in the same directory that is then renamed over
// path.
func WriteFile(path, text string, perm fs.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}

	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			err = errors.WithDeferred(err, os.Remove(tmpName))
		}
	}()

	_, err = tmp.WriteString(text)
	if err != nil {
		return errors.WithDeferred(fmt.Errorf("writing temporary file: %w", err), tmp.Close())
	}

	err = tmp.Close()
	if err != nil {
		return fmt.Errorf("closing temporary file: %w", err)
	}

	err = os.Chmod(tmpName, perm)
	if err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}

	return os.Rename(tmpName, path)
}

// DetectNewline returns the newline sequence used by text.  It is
// [NewlineCRLF] if text has any, [NewlineLF] otherwise.
func DetectNewline(text string) (nl string) {
	if strings.Contains(text, NewlineCRLF) {
		return NewlineCRLF
	}

	return NewlineLF
}

// SplitLines splits text into lines without the terminators.  A final line
// terminator does not produce an empty last line.
func SplitLines(text string) (lines []string) {
	if text == "" {
		return nil
	}

	text = strings.ReplaceAll(text, NewlineCRLF, NewlineLF)
	text = strings.TrimSuffix(text, NewlineLF)

	return strings.Split(text, NewlineLF)
}

// IsBlank returns true if line consists of whitespace only.
func IsBlank(line string) (ok bool) {
	return strings.TrimSpace(line) == ""
}

// SplitBlocks groups lines into blocks delimited by one or more blank lines.
func SplitBlocks(lines []string) (blocks []Block) {
	cur := Block{Start: -1}
	for i, l := range lines {
		if IsBlank(l) {
			if cur.Start >= 0 {
				blocks = append(blocks, cur)
				cur = Block{Start: -1}
			}

			continue
		}

		if cur.Start < 0 {
			cur.Start = i
		}

		cur.Lines = append(cur.Lines, l)
	}

	if cur.Start >= 0 {
		blocks = append(blocks, cur)
	}

	return blocks
}

// SplitTextBlocks is a helper that splits text into blocks.
func SplitTextBlocks(text string) (blocks []Block) {
	return SplitBlocks(SplitLines(text))
}

// JoinBlocks writes the blocks separated by exactly one blank line and
// terminated by nl.
func JoinBlocks(blocks [][]string, nl string) (text string) {
	var sb strings.Builder
	for i, b := range blocks {
		if i > 0 {
			sb.WriteString(nl)
		}

		for _, l := range b {
			sb.WriteString(l)
			sb.WriteString(nl)
		}
	}

	return sb.String()
}
