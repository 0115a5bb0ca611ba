package arrangement

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// WriteTo writes the arrangement in the file format read by Parse: default
// ranges, a blank line, then every duty as a date line, a name line and one
// line per student. Resolved per-duty targets are not written; each load
// derives them again from the default ranges.
func (s *Snapshot) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: bufio.NewWriter(w)}
	for _, name := range s.defaultOrder {
		fmt.Fprintf(cw, "#%s=%s\n", name, s.defaults[name])
	}
	fmt.Fprintln(cw)
	for _, d := range s.Duties {
		fmt.Fprintf(cw, "@%s\n#%s\n", d.Date.Format(DateLayout), d.Name)
		for _, st := range d.Students {
			fmt.Fprintf(cw, "%s\n", st)
		}
		fmt.Fprintln(cw)
	}
	if cw.err != nil {
		return cw.n, cw.err
	}
	return cw.n, cw.w.Flush()
}

func (s *Snapshot) String() string {
	var b strings.Builder
	_, _ = s.WriteTo(&b)
	return b.String()
}

type countingWriter struct {
	w   *bufio.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}
