package loader

import (
	"fmt"
	"os"
)

// LoadBinary reads a raw image. Its bytes are loaded verbatim at address 0
// and execution starts there.
func LoadBinary(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read binary file: %w", err)
	}

	return &Program{
		Segments: []Segment{{
			Data:  data,
			Flags: SegmentFlagRead | SegmentFlagWrite | SegmentFlagExecute,
		}},
	}, nil
}
