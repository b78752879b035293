package player

import (
	"bytes"
	"io"
	"testing"
)

func TestSeekBuffer_ReadThenRewind(t *testing.T) {
	b := newSeekBuffer(bytes.NewReader([]byte("abcdefgh")))

	buf := make([]byte, 4)
	if _, err := io.ReadFull(b, buf); err != nil {
		t.Fatal(err)
	}
	if string(buf) != "abcd" {
		t.Fatalf("read %q, want abcd", buf)
	}

	if _, err := b.Seek(1, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	if _, err := io.ReadFull(b, buf); err != nil {
		t.Fatal(err)
	}
	if string(buf) != "bcde" {
		t.Fatalf("after rewind read %q, want bcde", buf)
	}
}

func TestSeekBuffer_ForwardSeekReadsThrough(t *testing.T) {
	b := newSeekBuffer(bytes.NewReader([]byte("0123456789")))

	pos, err := b.Seek(6, io.SeekStart)
	if err != nil {
		t.Fatal(err)
	}
	if pos != 6 {
		t.Fatalf("pos = %d, want 6", pos)
	}

	rest, err := io.ReadAll(b)
	if err != nil {
		t.Fatal(err)
	}
	if string(rest) != "6789" {
		t.Fatalf("read %q, want 6789", rest)
	}
}

func TestSeekBuffer_SeekEnd(t *testing.T) {
	b := newSeekBuffer(bytes.NewReader([]byte("hello")))

	pos, err := b.Seek(0, io.SeekEnd)
	if err != nil {
		t.Fatal(err)
	}
	if pos != 5 {
		t.Fatalf("SeekEnd pos = %d, want 5", pos)
	}
	if _, err := b.Read(make([]byte, 1)); err != io.EOF {
		t.Fatalf("read at end err = %v, want EOF", err)
	}
}

func TestContentKind(t *testing.T) {
	tests := []struct {
		mime string
		uri  string
		want string
	}{
		{"audio/flac", "https://cdn.example.com/a", "flac"},
		{"audio/x-flac", "https://cdn.example.com/a", "flac"},
		{"audio/mpeg", "https://cdn.example.com/a", "mp3"},
		{"application/octet-stream", "https://cdn.example.com/a.flac?sig=x", "flac"},
		{"", "https://cdn.example.com/a.mp3?sig=x", "mp3"},
		{"application/octet-stream", "https://cdn.example.com/a", ""},
	}
	for _, tt := range tests {
		if got := contentKind(tt.mime, tt.uri); got != tt.want {
			t.Errorf("contentKind(%q, %q) = %q, want %q", tt.mime, tt.uri, got, tt.want)
		}
	}
}
