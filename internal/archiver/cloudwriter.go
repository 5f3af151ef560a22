package archiver

import "context"

// CloudWriter buffers one archive object and uploads it on Close. The upload
// runs under the context of the export that opened the writer.
type CloudWriter interface {
	Write(data []byte) (int, error)
	Close() error
}

type CloudWriterFactory interface {
	NewWriter(ctx context.Context, bucket, objectPath string) (CloudWriter, error)
}
