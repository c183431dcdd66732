package monitoring

import (
	"fmt"
	"io"
	"strconv"

	"neuroplatform/messaging"
	"neuroplatform/uid"
)

// OrderedWriter writes, on each call to Write, one line per sender UID in
// Order: the spike indices of the matching message in that batch (or a
// blank line if that sender did not spike this batch), separated by
// Separator. This mirrors the original platform's OrderedWriter functor,
// which assumed a fixed per-step ordering of sender entities.
type OrderedWriter struct {
	Out       io.Writer
	Order     []uid.UID
	Separator string
}

// NewOrderedWriter creates an OrderedWriter with the conventional
// single-space separator.
func NewOrderedWriter(out io.Writer, order []uid.UID) *OrderedWriter {
	return &OrderedWriter{Out: out, Order: order, Separator: " "}
}

// Write emits one line per entity in Order, in order, regardless of the
// order messages arrived in.
func (w *OrderedWriter) Write(messages []messaging.SpikeMessage) error {
	bySender := make(map[uid.UID]messaging.SpikeMessage, len(messages))
	for _, m := range messages {
		bySender[m.Header.SenderUID] = m
	}
	for _, id := range w.Order {
		msg, ok := bySender[id]
		if ok {
			for i, idx := range msg.Indices {
				if i > 0 {
					if _, err := io.WriteString(w.Out, w.Separator); err != nil {
						return err
					}
				}
				if _, err := io.WriteString(w.Out, strconv.FormatUint(uint64(idx), 10)); err != nil {
					return err
				}
			}
		}
		if _, err := fmt.Fprintln(w.Out); err != nil {
			return err
		}
	}
	return nil
}
