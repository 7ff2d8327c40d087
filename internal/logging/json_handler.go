package logging

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// newJSONHandler writes one object per record. Timestamps keep sub-second
// precision because a scan logs many frame decisions per second.
func newJSONHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	opts := slog.HandlerOptions{
		Level:     lvl,
		AddSource: addSource,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.TimeKey:
				attr.Key = "ts"
				if attr.Value.Kind() == slog.KindTime {
					attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339Nano))
				}
				return attr
			case slog.LevelKey:
				attr.Key = "level"
				attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
				return attr
			case slog.MessageKey:
				attr.Key = "msg"
				return attr
			case slog.SourceKey:
				if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
					attr.Value = slog.StringValue(fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
				}
				return attr
			}
			return finiteFloat(attr)
		},
	}

	return slog.NewJSONHandler(w, &opts)
}

// finiteFloat turns NaN and infinite scores or frame rates into strings;
// encoding/json rejects them and the record would lose the field.
func finiteFloat(attr slog.Attr) slog.Attr {
	if attr.Value.Kind() != slog.KindFloat64 {
		return attr
	}
	f := attr.Value.Float64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		attr.Value = slog.StringValue(strconv.FormatFloat(f, 'g', -1, 64))
	}
	return attr
}
