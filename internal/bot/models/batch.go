package models

// Batch is the transient, per-user group of files collected within one
// debounce window. It lives only in memory.
type Batch struct {
	ChatID int64
	Files  []FileRef
}

// Len returns the number of files in the batch.
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Files)
}
