package document

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/entlink/internal/domain/graph"
	"github.com/kailas-cloud/entlink/internal/domain/rating"
	"github.com/kailas-cloud/entlink/internal/domain/resolution"
)

// MaxContentSize is the maximum document content size in bytes.
const MaxContentSize = 1 << 20 // 1MB

// Token is one word of the token stream.
type Token struct {
	// Surface text, unmodified.
	Text string `json:"text"`
	// Offset is the byte index of the token in Content.
	Offset int `json:"offset"`
}

// TokenSequence is a contiguous span [Start, End) over the token stream with
// a stage-specific value attached.
type TokenSequence[T any] struct {
	Start int `json:"start"`
	End   int `json:"end"`
	Value T   `json:"value"`
}

// Len returns the number of tokens in the span.
func (s TokenSequence[T]) Len() int { return s.End - s.Start }

// Sentence marks a sentence boundary span.
type Sentence struct {
	Index int `json:"index"`
}

// SemanticEntity attaches a resolved knowledge-base subject to a span.
type SemanticEntity struct {
	Subject graph.NodeID `json:"subject"`
	// URI is set by upstream spotting when the id is not yet known.
	URI   string  `json:"uri,omitempty"`
	Score float64 `json:"score"`
	Rated bool    `json:"rated"`
}

// Unresolved reports an entity known only by URI. Such entities have no
// knowledge-base subject yet and are never rated.
func (e SemanticEntity) Unresolved() bool { return e.Subject == 0 && e.URI != "" }

// Mention is a span carrying a semantic entity.
type Mention = TokenSequence[SemanticEntity]

// AmbiguityGroup holds the candidates competing for one literal mention.
type AmbiguityGroup struct {
	Literal    string         `json:"literal"`
	Candidates []graph.NodeID `json:"candidates"`
}

// Document is the unit of work shared by all pipeline stages.
// Stages mutate it in place; missing annotations are treated as empty.
type Document struct {
	ID        string                    `json:"id"`
	Content   string                    `json:"content"`
	Tokens    []Token                   `json:"tokens"`
	Sentences []TokenSequence[Sentence] `json:"sentences"`
	Graph     *graph.Graph              `json:"-"`
	Groups    []AmbiguityGroup          `json:"groups"`
	Entities  []Mention                 `json:"entities"`

	Resolution resolution.Outcome `json:"-"`
	Ratings    rating.Outcome     `json:"-"`
}

// New creates a document with an empty graph.
func New(id, content string, tokens []Token) *Document {
	return &Document{
		ID:         id,
		Content:    content,
		Tokens:     tokens,
		Graph:      graph.New(),
		Resolution: resolution.New(),
		Ratings:    rating.Outcome{},
	}
}

// Validate checks the structural invariants a transport layer can enforce.
func (d *Document) Validate() error {
	if len(d.Content) > MaxContentSize {
		return fmt.Errorf("content too large (max %d bytes)", MaxContentSize)
	}
	for i, t := range d.Tokens {
		if t.Offset < 0 || t.Offset+len(t.Text) > len(d.Content) {
			return fmt.Errorf("token %d offset %d out of content bounds", i, t.Offset)
		}
	}
	for i, s := range d.Sentences {
		if !d.validSpan(s.Start, s.End) {
			return fmt.Errorf("sentence %d span [%d,%d) invalid", i, s.Start, s.End)
		}
	}
	for i, e := range d.Entities {
		if !d.validSpan(e.Start, e.End) {
			return fmt.Errorf("entity %d span [%d,%d) invalid", i, e.Start, e.End)
		}
	}
	return nil
}

// validSpan reports whether [start, end) is a non-empty span over Tokens.
func (d *Document) validSpan(start, end int) bool {
	return start >= 0 && end > start && end <= len(d.Tokens)
}

// MentionText returns the literal text of the mention: the content slice
// from its first token to the end of its last token. Falls back to the
// space-joined tokens when offsets do not fit the content.
func (d *Document) MentionText(m Mention) (string, bool) {
	if !d.validSpan(m.Start, m.End) {
		return "", false
	}
	first, last := d.Tokens[m.Start], d.Tokens[m.End-1]
	end := last.Offset + len(last.Text)
	if first.Offset >= 0 && first.Offset <= end && end <= len(d.Content) {
		return d.Content[first.Offset:end], true
	}
	parts := make([]string, 0, m.Len())
	for _, t := range d.Tokens[m.Start:m.End] {
		parts = append(parts, t.Text)
	}
	return strings.Join(parts, " "), true
}

// MentionOffset returns the character (rune) offset of the mention's first
// token. Token offsets are bytes; the conversion walks Content up to it.
func (d *Document) MentionOffset(m Mention) (int, bool) {
	if !d.validSpan(m.Start, m.End) {
		return 0, false
	}
	off := d.Tokens[m.Start].Offset
	if off < 0 || off > len(d.Content) {
		return 0, false
	}
	return utf8.RuneCountInString(d.Content[:off]), true
}

// Length returns the content length in characters.
func (d *Document) Length() int { return utf8.RuneCountInString(d.Content) }

// FirstToken returns the first token of the mention.
func (d *Document) FirstToken(m Mention) (Token, bool) {
	if !d.validSpan(m.Start, m.End) {
		return Token{}, false
	}
	return d.Tokens[m.Start], true
}

// Subjects returns the distinct resolved subjects of all entities,
// in first-mention order.
func (d *Document) Subjects() []graph.NodeID {
	seen := make(map[graph.NodeID]struct{}, len(d.Entities))
	out := make([]graph.NodeID, 0, len(d.Entities))
	for _, e := range d.Entities {
		if _, ok := seen[e.Value.Subject]; ok {
			continue
		}
		seen[e.Value.Subject] = struct{}{}
		out = append(out, e.Value.Subject)
	}
	return out
}

// EnsureGraph returns the document graph, creating an empty one if missing.
func (d *Document) EnsureGraph() *graph.Graph {
	if d.Graph == nil {
		d.Graph = graph.New()
	}
	return d.Graph
}
