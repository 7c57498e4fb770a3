package storage

import (
	"context"
	"encoding/json"
	"io"
	"testing"
)

type memoryUploader struct {
	objects map[string][]byte
	types   map[string]string
}

func (m *memoryUploader) Upload(ctx context.Context, key, contentType string, reader io.Reader) (*UploadResult, error) {
	b, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	m.objects[key] = b
	m.types[key] = contentType
	return &UploadResult{Key: key, Location: m.GetPublicURL(key)}, nil
}

func (m *memoryUploader) Delete(ctx context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memoryUploader) GetPublicURL(key string) string {
	return publicURL("https://cdn.example.com/", key)
}

func TestTieSheetArchive_SaveOverwritesRound(t *testing.T) {
	up := &memoryUploader{objects: map[string][]byte{}, types: map[string]string{}}
	archive := NewTieSheetArchive(up)

	url, err := archive.Save(context.Background(), 7, 1, map[string]int{"matches": 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://cdn.example.com/tie-sheets/sport-7/round-1.json" {
		t.Errorf("unexpected url %q", url)
	}
	if _, err := archive.Save(context.Background(), 7, 1, map[string]int{"matches": 2}); err != nil {
		t.Fatalf("second save: %v", err)
	}
	if len(up.objects) != 1 {
		t.Fatalf("expected one object per round, got %d", len(up.objects))
	}

	key := TieSheetKey(7, 1)
	var got map[string]int
	if err := json.Unmarshal(up.objects[key], &got); err != nil || got["matches"] != 2 {
		t.Errorf("bad body %s: %v", up.objects[key], err)
	}
	if up.types[key] != "application/json" {
		t.Errorf("content type %q", up.types[key])
	}
}

func TestTieSheetArchive_Remove(t *testing.T) {
	up := &memoryUploader{objects: map[string][]byte{}, types: map[string]string{}}
	archive := NewTieSheetArchive(up)

	_, _ = archive.Save(context.Background(), 7, 1, map[string]int{"matches": 3})
	_, _ = archive.Save(context.Background(), 7, 2, map[string]int{"matches": 3})
	if err := archive.Remove(context.Background(), 7, 1); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok := up.objects[TieSheetKey(7, 1)]; ok {
		t.Error("round 1 snapshot should be deleted")
	}
	if _, ok := up.objects[TieSheetKey(7, 2)]; !ok {
		t.Error("round 2 snapshot should be kept")
	}
}

func TestTieSheetArchive_NilIsNoop(t *testing.T) {
	var archive *TieSheetArchive
	url, err := archive.Save(context.Background(), 1, 1, nil)
	if err != nil || url != "" {
		t.Errorf("got %q, %v", url, err)
	}
	if err := archive.Remove(context.Background(), 1, 1); err != nil {
		t.Errorf("Remove on nil archive: %v", err)
	}
}

func TestPublicURL(t *testing.T) {
	tests := []struct{ base, key, want string }{
		{"https://cdn.example.com", "a/b.json", "https://cdn.example.com/a/b.json"},
		{"https://cdn.example.com/", "/a/b.json", "https://cdn.example.com/a/b.json"},
		{"", "a", ""},
	}
	for _, tt := range tests {
		if got := publicURL(tt.base, tt.key); got != tt.want {
			t.Errorf("publicURL(%q, %q) = %q, want %q", tt.base, tt.key, got, tt.want)
		}
	}
}
