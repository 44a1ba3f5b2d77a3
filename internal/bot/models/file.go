// Package models defines the bot's domain types: file references received
// from users, transient batches, and the persisted metadata and file records.
package models

import "fmt"

// FileKind is the kind of an uploaded attachment.
type FileKind string

const (
	KindDocument  FileKind = "document"
	KindPhoto     FileKind = "photo"
	KindVideo     FileKind = "video"
	KindAudio     FileKind = "audio"
	KindAnimation FileKind = "animation"
)

// Valid reports whether k is one of the known kinds.
func (k FileKind) Valid() bool {
	switch k {
	case KindDocument, KindPhoto, KindVideo, KindAudio, KindAnimation:
		return true
	}
	return false
}

// ParseFileKind converts a stored file_type value back into a FileKind.
func ParseFileKind(s string) (FileKind, error) {
	k := FileKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown file kind %q", s)
	}
	return k, nil
}

// FileRef is an opaque transport handle to a file a user sent.
type FileRef struct {
	Kind   FileKind
	FileID string
}

// File is a persisted record of one archived file.
type File struct {
	ID int64
	// Code links the file to its metadata record.
	Code string
	// Position is the file's index within its batch, in upload order.
	Position int
	// ChannelMessageID locates the re-uploaded copy inside the archive channel.
	ChannelMessageID int
	Kind             FileKind
}
