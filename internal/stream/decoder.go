package stream

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Decoder turns arbitrary chunks of an NDJSON stream into events. A
// trailing partial line is kept until the chunk that completes it.
type Decoder struct {
	buf []byte
}

// Feed appends chunk and returns every event completed by it. On a
// malformed line it returns the events decoded before it and the error;
// the bad line is discarded.
func (d *Decoder) Feed(chunk []byte) ([]Event, error) {
	d.buf = append(d.buf, chunk...)
	var events []Event
	for {
		i := bytes.IndexByte(d.buf, '\n')
		if i < 0 {
			return events, nil
		}
		line := d.buf[:i]
		d.buf = d.buf[i+1:]
		e, ok, err := parseLine(line)
		if err != nil {
			return events, err
		}
		if ok {
			events = append(events, e)
		}
	}
}

// Flush decodes whatever is buffered at end of stream.
func (d *Decoder) Flush() ([]Event, error) {
	line := d.buf
	d.buf = nil
	e, ok, err := parseLine(line)
	if err != nil || !ok {
		return nil, err
	}
	return []Event{e}, nil
}

// Buffered is the number of bytes held for an incomplete line.
func (d *Decoder) Buffered() int {
	return len(d.buf)
}

func parseLine(line []byte) (Event, bool, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return Event{}, false, nil
	}
	var e Event
	if err := json.Unmarshal(line, &e); err != nil {
		return Event{}, false, fmt.Errorf("decode stream record: %w", err)
	}
	if e.Type == "" {
		return Event{}, false, fmt.Errorf("%w: record without event name", ErrUnexpectedEvent)
	}
	return e, true, nil
}

// Read decodes r until EOF, calling fn for every event in order. It stops
// at the first error from r, the decoder, or fn.
func Read(r io.Reader, fn func(Event) error) error {
	var d Decoder
	chunk := make([]byte, 4096)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			events, derr := d.Feed(chunk[:n])
			for _, e := range events {
				if ferr := fn(e); ferr != nil {
					return ferr
				}
			}
			if derr != nil {
				return derr
			}
		}
		if errors.Is(err, io.EOF) {
			events, derr := d.Flush()
			for _, e := range events {
				if ferr := fn(e); ferr != nil {
					return ferr
				}
			}
			return derr
		}
		if err != nil {
			return err
		}
	}
}
