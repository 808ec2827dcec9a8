package exporter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"jobscribe/internal/logging"
	"jobscribe/internal/logging/types"
	"jobscribe/internal/render"
	"jobscribe/pkg/models"
)

const (
	recordsPrefix   = "records"
	documentsPrefix = "documents"
)

// RecordExporter pushes persisted records, and their documents when
// rendered, through a Publisher
type RecordExporter struct {
	pub    Publisher
	logger types.Logger
}

// NewRecordExporter creates an exporter over pub
func NewRecordExporter(pub Publisher) *RecordExporter {
	return &RecordExporter{pub: pub, logger: logging.GetGlobalLogger()}
}

// Export uploads the record as records/<id>.json and doc, if any, under
// documents/. It returns the URLs of everything uploaded.
func (e *RecordExporter) Export(ctx context.Context, record models.Record, doc *render.Document) ([]string, error) {
	if record.ID == "" {
		return nil, fmt.Errorf("record without id cannot be exported")
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(record); err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}

	var urls []string
	url, err := e.pub.Publish(ctx, fmt.Sprintf("%s/%s.json", recordsPrefix, record.ID), buf.Bytes(), "application/json")
	if err != nil {
		return nil, err
	}
	urls = append(urls, url)

	if doc != nil {
		url, err := e.pub.Publish(ctx, documentsPrefix+"/"+doc.Filename, []byte(doc.Content), "text/markdown; charset=utf-8")
		if err != nil {
			return urls, err
		}
		urls = append(urls, url)
	}

	e.logger.Debug("Record exported", map[string]interface{}{
		"id":      record.ID,
		"objects": len(urls),
	})
	return urls, nil
}
