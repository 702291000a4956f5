package logging

import (
	"fmt"

	"github.com/Graylog2/go-gelf/gelf"
)

// NewGraylogWriter dials a GELF UDP endpoint. Each write becomes one message.
func NewGraylogWriter(addr string) (*gelf.Writer, error) {
	w, err := gelf.NewWriter(addr)
	if err != nil {
		return nil, fmt.Errorf("connecting to graylog at %s: %w", addr, err)
	}
	w.Facility = ServiceName
	return w, nil
}
