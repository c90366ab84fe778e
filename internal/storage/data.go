package storage

// Persistence

type WriteResult struct {
	path        string
	contentHash string
	size        int
}

func NewWriteResult(
	path string,
	contentHash string,
	size int,
) WriteResult {
	return WriteResult{
		path:        path,
		contentHash: contentHash,
		size:        size,
	}
}

func (w *WriteResult) Path() string {
	return w.path
}

// ContentHash is the "<algo>:<hex>" fingerprint of the written bytes.
func (w *WriteResult) ContentHash() string {
	return w.contentHash
}

func (w *WriteResult) Size() int {
	return w.size
}
