package nem12

import (
	"bufio"
	"io"
	"strings"
)

const maxLineSize = 1 << 20

// Framer groups the lines of a NEM12 stream into blocks. It is used like a
// bufio.Scanner: call Scan until it returns false, then check Err.
type Framer struct {
	scanner *bufio.Scanner
	pending []string
	block   Block
	done    bool
}

func NewFramer(r io.Reader) *Framer {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Framer{scanner: scanner}
}

// Scan advances to the next block. 300 lines seen before any 200 line are
// dropped, and a trailing 200 line with no data still forms a block.
func (f *Framer) Scan() bool {
	if f.done {
		return false
	}

	for f.scanner.Scan() {
		line := strings.TrimRight(f.scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}

		switch recordType(line) {
		case RecordNMI:
			if len(f.pending) > 0 {
				f.block = Block{Lines: f.pending}
				f.pending = []string{line}
				return true
			}
			f.pending = []string{line}
		case RecordInterval:
			if f.pending != nil {
				f.pending = append(f.pending, line)
			}
		}
	}

	f.done = true
	if f.scanner.Err() != nil {
		f.pending = nil
		return false
	}
	if len(f.pending) > 0 {
		f.block = Block{Lines: f.pending}
		f.pending = nil
		return true
	}
	return false
}

func (f *Framer) Block() Block {
	return f.block
}

// Err returns the first non-EOF read error.
func (f *Framer) Err() error {
	return f.scanner.Err()
}
