package sanitize

import (
	"strings"
	"testing"
)

func TestTextStripsTagsAndEscapes(t *testing.T) {
	got := Text("  <b>hello</b> & bye  ")
	if got != "hello &amp; bye" {
		t.Fatalf("Text() = %q", got)
	}
}

func TestTextDropsScriptBody(t *testing.T) {
	got := Text(`<script>alert(1)</script>nice video`)
	if strings.Contains(got, "alert") || !strings.Contains(got, "nice video") {
		t.Fatalf("Text() = %q", got)
	}
}

func TestCommentTextLengthBoundary(t *testing.T) {
	ok := strings.Repeat("a", MaxCommentLength)
	if text, err := CommentText(ok); err != nil || text != ok {
		t.Fatalf("2000 chars rejected: %v", err)
	}
	if _, err := CommentText(ok + "a"); err != ErrTooLong {
		t.Fatalf("2001 chars: err = %v, want ErrTooLong", err)
	}
}

func TestCommentTextCountsCharactersNotBytes(t *testing.T) {
	s := strings.Repeat("好", MaxCommentLength)
	if _, err := CommentText(s); err != nil {
		t.Fatalf("multi-byte comment rejected: %v", err)
	}
}

func TestCommentTextRejectsEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "<p></p>", "<script>x</script>"} {
		if _, err := CommentText(in); err != ErrEmpty {
			t.Errorf("CommentText(%q) err = %v, want ErrEmpty", in, err)
		}
	}
}
