package scan_test

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"slidecap/internal/imaging"
	"slidecap/internal/logging"
	"slidecap/internal/media/frames"
	"slidecap/internal/scan"
	"slidecap/internal/testsupport"
)

func TestFileNameAndDefaults(t *testing.T) {
	cases := []struct {
		base string
		seq  int
		want string
	}{
		{"lecture", 1, "lecture_frame_001.png"},
		{"lecture", 42, "lecture_frame_042.png"},
		{"lecture", 1000, "lecture_frame_1000.png"},
	}
	for _, tc := range cases {
		if got := scan.FileName(tc.base, tc.seq); got != tc.want {
			t.Fatalf("FileName(%q, %d) = %q, want %q", tc.base, tc.seq, got, tc.want)
		}
	}
	if got := scan.DefaultOutputDir("/videos/Week 1.mp4"); got != filepath.Join("/videos", "Week 1_screenshots") {
		t.Fatalf("unexpected default output dir %q", got)
	}
	// Decomposed e + combining acute becomes a single code point.
	if got := scan.VideoBaseName("/v/cafe\u0301.mkv"); got != "caf\u00e9" {
		t.Fatalf("expected NFC base name, got %q", got)
	}
}

func TestEmitterSavesSequentially(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "nested")
	emitter := scan.NewEmitter("/videos/talk.mp4", dir, imaging.PNGWriter{}, logging.NewNop())
	img := testsupport.SolidImage(4, 4, nil)

	for i := 1; i <= 3; i++ {
		artifact := emitter.Save(frames.Frame{Index: i * 30, Image: img, FPS: 30})
		if artifact.Sequence != i {
			t.Fatalf("expected sequence %d, got %d", i, artifact.Sequence)
		}
		if !artifact.Persisted {
			t.Fatalf("expected artifact %d to be persisted", i)
		}
		if artifact.Timestamp != float64(i) {
			t.Fatalf("unexpected timestamp %v", artifact.Timestamp)
		}
		if _, err := os.Stat(artifact.Path); err != nil {
			t.Fatalf("expected file at %s: %v", artifact.Path, err)
		}
	}
	if emitter.Sequence() != 3 {
		t.Fatalf("unexpected final sequence %d", emitter.Sequence())
	}
	want := []string{"talk_frame_001.png", "talk_frame_002.png", "talk_frame_003.png"}
	got := testsupport.ListDir(t, dir)
	if len(got) != len(want) {
		t.Fatalf("unexpected files %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected files %v", got)
		}
	}
}

func TestEmitterReturnsPathWhenWriteFails(t *testing.T) {
	dir := t.TempDir()
	failing := imaging.WriterFunc(func(image.Image, string) error { return errors.New("disk full") })
	emitter := scan.NewEmitter("clip.avi", dir, failing, nil)

	first := emitter.Save(frames.Frame{Index: 0, Image: testsupport.SolidImage(2, 2, nil)})
	second := emitter.Save(frames.Frame{Index: 5, Image: testsupport.SolidImage(2, 2, nil)})
	if first.Persisted || second.Persisted {
		t.Fatal("expected failed writes to leave Persisted false")
	}
	if first.Path != filepath.Join(dir, "clip_frame_001.png") || second.Sequence != 2 {
		t.Fatalf("unexpected artifacts %+v %+v", first, second)
	}
}

func TestEmitterReturnsPathWhenDirectoryCannotBeCreated(t *testing.T) {
	parent := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(parent, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	emitter := scan.NewEmitter("clip.mov", filepath.Join(parent, "out"), nil, nil)
	artifact := emitter.Save(frames.Frame{Image: testsupport.SolidImage(2, 2, nil)})
	if artifact.Persisted {
		t.Fatal("expected artifact to be unpersisted")
	}
	if artifact.Path == "" || artifact.Sequence != 1 {
		t.Fatalf("expected path and sequence despite failure, got %+v", artifact)
	}
}
