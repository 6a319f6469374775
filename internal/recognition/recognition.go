// Package recognition describes the external service that extracts
// transactions from receipt photos and voice notes.
package recognition

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hearthledger/hearth/internal/candidate"
	"github.com/hearthledger/hearth/internal/category"
)

// Kind selects the recognition endpoint for a file.
type Kind string

const (
	KindImage Kind = "image"
	KindAudio Kind = "audio"
)

// File is one upload handed to a Recognizer.
type File struct {
	Name     string
	Kind     Kind
	MIMEType string
	Data     []byte
}

// RecentTransaction is a compact view of a persisted row given to the
// recognizer as context.
type RecentTransaction struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Date        string `json:"date"`
}

// Hints carries the context a recognizer uses to classify rows.
type Hints struct {
	Categories         []category.Category    `json:"categories"`
	SubCategories      []category.SubCategory `json:"subCategories"`
	RecentTransactions []RecentTransaction    `json:"recentTransactions"`
	CurrentUserID      string                 `json:"currentUserId"`
}

// Recognizer extracts raw rows from a file. An empty slice with a nil error
// means the file contained no transactions.
type Recognizer interface {
	Recognize(ctx context.Context, f File, h Hints) ([]candidate.Raw, error)
}

var audioExt = map[string]bool{
	".mp3": true, ".m4a": true, ".ogg": true, ".oga": true, ".opus": true,
	".wav": true, ".webm": true, ".aac": true, ".flac": true,
}

var imageExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".heic": true, ".heif": true, ".gif": true,
}

// NewFile classifies data by its file name extension.
func NewFile(name string, data []byte) (File, error) {
	ext := strings.ToLower(filepath.Ext(name))

	var kind Kind

	switch {
	case imageExt[ext]:
		kind = KindImage
	case audioExt[ext]:
		kind = KindAudio
	default:
		return File{}, fmt.Errorf("unsupported file type %q", ext)
	}

	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" {
		mimeType = string(kind) + "/" + strings.TrimPrefix(ext, ".")
	}

	return File{Name: filepath.Base(name), Kind: kind, MIMEType: mimeType, Data: data}, nil
}

// Supported reports whether name has an extension NewFile accepts.
func Supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return imageExt[ext] || audioExt[ext]
}

// Extensions lists every accepted file extension, sorted.
func Extensions() []string {
	exts := make([]string, 0, len(imageExt)+len(audioExt))
	for e := range imageExt {
		exts = append(exts, e)
	}

	for e := range audioExt {
		exts = append(exts, e)
	}

	slices.Sort(exts)

	return exts
}
