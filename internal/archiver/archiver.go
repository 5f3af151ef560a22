package archiver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/posfoundry/tablepos/internal/models"
)

// ArchivedOrder is the flattened parquet row for one settled order. Item
// detail stays in the snapshot store; the archive is for revenue reporting.
type ArchivedOrder struct {
	OrderID       string  `parquet:"name=order_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	BranchID      string  `parquet:"name=branch_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	TableID       string  `parquet:"name=table_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	ItemCount     int32   `parquet:"name=item_count, type=INT32"`
	Subtotal      float64 `parquet:"name=subtotal, type=DOUBLE"`
	Discount      float64 `parquet:"name=discount, type=DOUBLE"`
	Tax           float64 `parquet:"name=tax, type=DOUBLE"`
	Total         float64 `parquet:"name=total, type=DOUBLE"`
	CreatedAtUnix int64   `parquet:"name=created_at, type=INT64"`
}

// Snapshotter hands the archiver the settled orders and their totals. It is
// satisfied by the session runner so the archiver stays a leaf package.
type Snapshotter interface {
	CompletedOrders() []*models.Order
	OrderBreakdown(orderID string) (subtotal, discount, tax, total float64, err error)
}

// Archiver periodically exports the completed-order history as a parquet
// object, either to a local directory or to S3 via a cloud writer factory.
type Archiver struct {
	branchID           string
	source             Snapshotter
	cloudWriterFactory CloudWriterFactory
	bucket             string
	pathPrefix         string
	localDir           string
}

func New(ctx context.Context, branchID string, src Snapshotter, cfg models.ArchiveConfig) (*Archiver, error) {
	a := &Archiver{
		branchID:   branchID,
		source:     src,
		bucket:     cfg.Bucket,
		pathPrefix: cfg.PathPrefix,
	}
	if cfg.Bucket != "" {
		factory, err := NewS3WriterFactory(ctx, cfg.Region)
		if err != nil {
			return nil, err
		}
		a.cloudWriterFactory = factory
	} else {
		a.localDir = cfg.PathPrefix
		if a.localDir == "" {
			a.localDir = "."
		}
	}
	return a, nil
}

// Export writes one parquet snapshot of the settled history. Returns the
// object path written, or empty when there was nothing to archive.
func (a *Archiver) Export(ctx context.Context, at time.Time) (string, error) {
	completed := a.source.CompletedOrders()
	if len(completed) == 0 {
		return "", nil
	}

	objectName := fmt.Sprintf("orders-%s-%s.parquet", a.branchID, at.UTC().Format("20060102T150405"))

	var fw source.ParquetFile
	var objectPath string
	var err error
	if a.cloudWriterFactory != nil {
		objectPath = path.Join(a.pathPrefix, a.branchID, objectName)
		cw, err := a.cloudWriterFactory.NewWriter(ctx, a.bucket, objectPath)
		if err != nil {
			return "", fmt.Errorf("failed to create cloud file writer: %w", err)
		}
		fw = newCloudParquetFile(cw)
	} else {
		objectPath = path.Join(a.localDir, objectName)
		fw, err = local.NewLocalFileWriter(objectPath)
		if err != nil {
			return "", fmt.Errorf("failed to create local file writer: %w", err)
		}
	}

	pw, err := writer.NewParquetWriter(fw, new(ArchivedOrder), 4)
	if err != nil {
		fw.Close()
		return "", fmt.Errorf("failed to create parquet writer: %w", err)
	}

	for _, o := range completed {
		subtotal, discount, tax, total, err := a.source.OrderBreakdown(o.ID)
		if err != nil {
			continue // deleted between snapshot and breakdown
		}
		row := ArchivedOrder{
			OrderID:       o.ID,
			BranchID:      o.BranchID,
			TableID:       o.TableID,
			ItemCount:     int32(len(o.Items)),
			Subtotal:      subtotal,
			Discount:      discount,
			Tax:           tax,
			Total:         total,
			CreatedAtUnix: o.Timestamp.Unix(),
		}
		if err := pw.Write(row); err != nil {
			fw.Close()
			return "", fmt.Errorf("failed to write archive row: %w", err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return "", fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	if err := fw.Close(); err != nil {
		return "", fmt.Errorf("failed to close archive object: %w", err)
	}
	return objectPath, nil
}

// cloudParquetFile adapts a CloudWriter to the parquet source interface. The
// archive is written front to back, so reads and seeks are not supported.
type cloudParquetFile struct {
	cloudWriter CloudWriter
	offset      int64
}

func newCloudParquetFile(cw CloudWriter) *cloudParquetFile {
	return &cloudParquetFile{cloudWriter: cw}
}

func (c *cloudParquetFile) Write(p []byte) (int, error) {
	n, err := c.cloudWriter.Write(p)
	c.offset += int64(n)
	return n, err
}

func (c *cloudParquetFile) Close() error {
	return c.cloudWriter.Close()
}

func (c *cloudParquetFile) Read(p []byte) (int, error) {
	return 0, io.EOF
}

func (c *cloudParquetFile) Seek(offset int64, whence int) (int64, error) {
	if whence == io.SeekCurrent && offset == 0 {
		return c.offset, nil
	}
	return 0, errors.New("seek not supported on cloud archive objects")
}

func (c *cloudParquetFile) Open(name string) (source.ParquetFile, error) {
	return c, nil
}

func (c *cloudParquetFile) Create(name string) (source.ParquetFile, error) {
	return c, nil
}
