package jpegmeta

import (
	"bytes"
	"fmt"
	"sort"
)

const iccTag = "ICC_PROFILE\x00"

// reassembleICC rebuilds an ICC profile from APP2 chunk payloads. Each
// chunk carries the tag, a 1-based sequence number and the total chunk
// count ahead of its slice of profile data.
func reassembleICC(chunks [][]byte) ([]byte, error) {
	type chunk struct {
		seq  int
		data []byte
	}
	var found []chunk
	expectedCount := 0
	seen := make(map[int]bool)

	for _, c := range chunks {
		if len(c) < 14 {
			continue
		}
		if string(c[:12]) != iccTag {
			continue
		}
		seq := int(c[12])
		count := int(c[13])
		if seq == 0 || seq > count {
			return nil, fmt.Errorf("jpegmeta: invalid ICC chunk sequence %d/%d", seq, count)
		}
		if seen[seq] {
			return nil, fmt.Errorf("jpegmeta: duplicate ICC chunk sequence %d", seq)
		}
		seen[seq] = true
		if expectedCount == 0 {
			expectedCount = count
		} else if count != expectedCount {
			return nil, fmt.Errorf("jpegmeta: inconsistent ICC chunk count: %d vs %d", count, expectedCount)
		}
		found = append(found, chunk{seq: seq, data: c[14:]})
	}

	if len(found) == 0 {
		return nil, nil // no ICC profile present
	}
	if len(found) != expectedCount {
		return nil, fmt.Errorf("jpegmeta: expected %d ICC chunks, found %d", expectedCount, len(found))
	}

	sort.Slice(found, func(i, j int) bool { return found[i].seq < found[j].seq })

	var buf bytes.Buffer
	for _, c := range found {
		buf.Write(c.data)
	}
	return buf.Bytes(), nil
}
