package sse

import "strings"

// Split appends text to pending and cuts the result on Separator.
//
// Every segment followed by a separator is returned as a complete record, in
// stream order. Whatever follows the last separator is returned as rest and
// must be passed back as pending on the next call: a record is only complete
// once its terminating blank line has been observed.
//
// Split is pure; it holds no state between calls.
func Split(pending, text string) (records []string, rest string) {
	buf := pending + text

	for {
		i := strings.Index(buf, Separator)
		if i < 0 {
			return records, buf
		}
		records = append(records, buf[:i])
		buf = buf[i+len(Separator):]
	}
}
