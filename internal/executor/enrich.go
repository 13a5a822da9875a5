package executor

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
)

const modifiedTimeLayout = "2006-01-02 15:04:05"

// EnrichFindOutput prefixes each path printed by a find command with its size and
// appends its modification time. Paths that cannot be stat'ed are kept as-is and
// output of any other command is returned untouched.
func EnrichFindOutput(command string, stdout []byte) string {
	if !isFindCommand(command) {
		return string(stdout)
	}

	var enriched strings.Builder
	for _, line := range strings.Split(string(stdout), "\n") {
		path := strings.TrimSpace(line)
		if path == "" {
			continue
		}

		info, statError := os.Stat(path)
		if statError != nil {
			enriched.WriteString(path)
			enriched.WriteByte('\n')
			continue
		}
		fmt.Fprintf(&enriched, "%s  %s  (modified %s)\n",
			humanize.Bytes(uint64(info.Size())),
			path,
			info.ModTime().Local().Format(modifiedTimeLayout),
		)
	}
	return enriched.String()
}
