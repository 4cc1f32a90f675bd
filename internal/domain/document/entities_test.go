package document

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func metas(n int, size int64, ext string) []FileMeta {
	out := make([]FileMeta, n)
	for i := range out {
		out[i] = FileMeta{Filename: fmt.Sprintf("file%d.%s", i, ext), Size: size}
	}
	return out
}

func TestValidateBatch(t *testing.T) {
	tests := []struct {
		name     string
		origin   Origin
		files    []FileMeta
		wantFile string
		wantErr  bool
	}{
		{"empty batch", OriginClaimant, nil, "", false},
		{"five claimant files", OriginClaimant, metas(5, 1024, "pdf"), "", false},
		{"six claimant files", OriginClaimant, metas(6, 1024, "pdf"), "", true},
		{"three reviewer files", OriginReviewer, metas(3, 1024, "png"), "", false},
		{"four reviewer files", OriginReviewer, metas(4, 1024, "png"), "", true},
		{"exactly 5MiB", OriginClaimant, metas(1, MaxFileSize, "jpg"), "", false},
		{"6MB file", OriginReviewer, []FileMeta{{Filename: "scan.pdf", Size: 6 * 1024 * 1024}}, "scan.pdf", true},
		{"upper case extension", OriginClaimant, []FileMeta{{Filename: "PHOTO.JPEG", Size: 10}}, "", false},
		{"no extension", OriginClaimant, []FileMeta{{Filename: "README", Size: 10}}, "README", true},
		{
			"four valid plus one bad extension",
			OriginClaimant,
			append(metas(4, 100, "docx"), FileMeta{Filename: "virus.exe", Size: 100}),
			"virus.exe",
			true,
		},
		{"blank name", OriginClaimant, []FileMeta{{Filename: "  ", Size: 10}}, "", true},
		{"long name", OriginClaimant, []FileMeta{{Filename: strings.Repeat("a", 300) + ".pdf", Size: 10}}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBatch(tt.origin, tt.files)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected err: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrFileValidation) {
				t.Fatalf("want ErrFileValidation, got %v", err)
			}
			var fe *FileValidationError
			if !errors.As(err, &fe) {
				t.Fatalf("want *FileValidationError, got %T", err)
			}
			if tt.wantFile != "" && fe.Filename != tt.wantFile {
				t.Fatalf("offending file = %q, want %q", fe.Filename, tt.wantFile)
			}
		})
	}
}

func TestMimeTypeFor(t *testing.T) {
	if m, ok := MimeTypeFor("a.DOCX"); !ok || !strings.Contains(m, "wordprocessingml") {
		t.Fatalf("docx mime = %q,%v", m, ok)
	}
	if _, ok := MimeTypeFor("a.gif"); ok {
		t.Fatal("gif must not be allowed")
	}
}

func TestSplitByOrigin(t *testing.T) {
	docs := []Document{
		{StoredFilename: "a"},
		{StoredFilename: "b", IsReviewDocument: true},
		{StoredFilename: "c"},
	}
	c, r := SplitByOrigin(docs)
	if len(c) != 2 || len(r) != 1 || r[0].StoredFilename != "b" {
		t.Fatalf("split = %v / %v", c, r)
	}
	if !OriginReviewer.IsReview() || OriginClaimant.IsReview() {
		t.Fatal("origin flags")
	}
}
