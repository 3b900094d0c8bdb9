package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/predmarkets/arbscan/internal/domain"
)

// Archiver implements domain.CycleArchiver: each completed cycle becomes one
// JSONL object, the diagnostics line first, then one line per opportunity.
type Archiver struct {
	writer *Writer
	prefix string
}

// NewArchiver creates an Archiver writing under the given key prefix.
func NewArchiver(writer *Writer, prefix string) *Archiver {
	return &Archiver{writer: writer, prefix: prefix}
}

// ArchiveCycle uploads one cycle snapshot to
// {prefix}/YYYY/MM/DD/{cycle_id}.jsonl. Large snapshots go through the
// multipart uploader.
func (a *Archiver) ArchiveCycle(ctx context.Context, result domain.CycleResult) error {
	buf, err := marshalCycle(result)
	if err != nil {
		return fmt.Errorf("s3blob: marshal cycle %s: %w", result.Diagnostics.CycleID, err)
	}

	key := path.Join(
		a.prefix,
		result.Diagnostics.StartedAt.UTC().Format("2006/01/02"),
		result.Diagnostics.CycleID+".jsonl",
	)

	const contentType = "application/x-ndjson"
	if int64(len(buf)) >= minPartSize {
		return a.writer.PutMultipart(ctx, key, bytes.NewReader(buf), contentType, minPartSize)
	}
	return a.writer.Put(ctx, key, bytes.NewReader(buf), contentType)
}

// marshalCycle renders the JSONL payload: diagnostics, then opportunities in
// rank order.
func marshalCycle(result domain.CycleResult) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)

	if err := enc.Encode(result.Diagnostics); err != nil {
		return nil, err
	}
	for _, o := range result.Opportunities {
		if err := enc.Encode(o); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
