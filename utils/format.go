package utils

import (
	"github.com/dustin/go-humanize"
)

// HumanFileSize renders a byte count the way backup logs store it,
// e.g. "1.2 MB" or "87 kB".
func HumanFileSize(n int) string {
	return humanize.Bytes(uint64(n))
}
