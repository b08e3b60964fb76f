package poem

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Poem is an immutable generated poem together with the request that produced it.
type Poem struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Theme     string    `json:"theme"`
	Style     string    `json:"style"`
	Mood      string    `json:"mood"`
	CreatedAt time.Time `json:"createdAt"`
}

// New builds a Poem with a fresh identifier. Content and theme are trimmed,
// style and mood lower-cased; line breaks inside content are kept verbatim.
func New(content, theme, style, mood string, now time.Time) Poem {
	return Poem{
		ID:        NewID(now),
		Content:   strings.TrimSpace(content),
		Theme:     strings.TrimSpace(theme),
		Style:     strings.ToLower(style),
		Mood:      strings.ToLower(mood),
		CreatedAt: now.UTC(),
	}
}

// NewID returns "poem_<unix millis>_<9 random chars>".
func NewID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("poem_%d_%s", now.UnixMilli(), suffix)
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Filename is the suggested download name, e.g. "poem-ocean-waves.txt".
func Filename(p Poem) string {
	slug := whitespaceRun.ReplaceAllString(strings.ToLower(p.Theme), "-")
	return "poem-" + slug + ".txt"
}

// Export renders the plain-text download form of a poem.
func Export(p Poem) string {
	var b strings.Builder
	b.WriteString(p.Content)
	b.WriteString("\n\n---\n")
	fmt.Fprintf(&b, "Theme: %s\n", p.Theme)
	fmt.Fprintf(&b, "Style: %s\n", p.Style)
	fmt.Fprintf(&b, "Mood: %s\n", p.Mood)
	fmt.Fprintf(&b, "Created: %s", p.CreatedAt.Format("2006-01-02"))
	return b.String()
}

// ShareTitle is the title used when sharing a poem.
func ShareTitle(p Poem) string {
	return fmt.Sprintf("A %s poem about %s", p.Style, p.Theme)
}

// ShareText is the body used when sharing a poem.
func ShareText(p Poem) string {
	return fmt.Sprintf("Check out this %s poem about %s:\n\n%s", p.Style, p.Theme, p.Content)
}
