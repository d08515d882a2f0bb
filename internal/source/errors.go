package source

import (
	"errors"
	"fmt"

	"gomixer/internal/mixererr"
)

// errFullDecodeAfterPrepare is returned by FullDecode once PrepareToPlay
// has run: it must be rejected, since the audio thread may be concurrently
// mutating the DecodedStream by then.
var errFullDecodeAfterPrepare = errors.New("source: full decode requested after prepare_to_play")

func errUnsupportedChannels(n int) error {
	return mixererr.Wrap(mixererr.SourceLoadFailed, fmt.Errorf("channel count %d", n), "unsupported source channel layout")
}
