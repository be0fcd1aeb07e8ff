package cleaner

import "testing"

func TestCleanStripsHTML(t *testing.T) {
	t.Parallel()

	c := New()
	got := c.Clean(`<p>Breaking: <a href="https://example.com">markets</a> rally</p>`)

	if got != "Breaking: markets rally" {
		t.Fatalf("unexpected cleaned text: %q", got)
	}
}

func TestCleanRemovesURLs(t *testing.T) {
	t.Parallel()

	c := New()
	got := c.Clean("read more at https://example.com/story?id=1 today")

	if got != "read more at today" {
		t.Fatalf("unexpected cleaned text: %q", got)
	}
}

func TestCleanCollapsesWhitespace(t *testing.T) {
	t.Parallel()

	c := New()
	got := c.Clean("  too\n\tmany   spaces  ")

	if got != "too many spaces" {
		t.Fatalf("unexpected cleaned text: %q", got)
	}
}

func TestCleanEmptyAndPlainText(t *testing.T) {
	t.Parallel()

	c := New()
	if got := c.Clean(""); got != "" {
		t.Fatalf("empty input should stay empty, got %q", got)
	}
	if got := c.Clean("plain headline"); got != "plain headline" {
		t.Fatalf("plain text should pass through, got %q", got)
	}
}
