package sequencer

import (
	"fmt"
	"io"
)

// dumpW receives structural diagnostics from the MOD/S3M parsers when
// non-nil, matching the teacher's moddump companion tool.
var dumpW io.Writer

// SetDumpWriter installs w as the destination for parse-time structural
// dumps: one summary line per song with the title and the channel, order
// and pattern counts (plus the instrument count for S3M). Passing nil
// disables dumping, which is the default.
func SetDumpWriter(w io.Writer) { dumpW = w }

func dumpf(format string, args ...any) {
	if dumpW == nil {
		return
	}
	fmt.Fprintf(dumpW, format, args...)
}
