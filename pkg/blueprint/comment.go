package blueprint

import (
	"strings"

	"github.com/pkg/errors"
)

// TagKind names a recognized documentation tag.
type TagKind string

const (
	TagParam    TagKind = "param"
	TagQuery    TagKind = "query"
	TagResponse TagKind = "response"
	TagBody     TagKind = "body"
	// TagPath is only meaningful in a router binding's declaration comment.
	TagPath TagKind = "path"
)

// ErrNoDoc is returned when a comment contains no parseable documentation
// block; callers treat the annotated site as undocumented.
var ErrNoDoc = errors.New("no documentation block found")

// Comment is the parsed form of one documentation comment.
type Comment struct {
	Title       string
	Description string
	Tags        []Tag
	// Dropped records param/query tags discarded due to local parse
	// failures; the rest of the comment is still usable.
	Dropped []TagError
}

// Tag is one parsed @tag line with its continuation body.
type Tag struct {
	Kind TagKind
	// Type is the data-type bracket content; a bracket containing "/" is
	// a content type instead.
	Type        string
	ContentType string
	// Name is the parameter name, the response status code text,
	// or the @path value.
	Name        string
	Description string
	// Literal holds indented continuation text following the tag's inline
	// text; for response and body tags it overrides example synthesis.
	Literal    string
	HasLiteral bool
	// Line is 1-based within the comment text.
	Line int
}

// TagError is a recoverable, tag-local parse failure.
type TagError struct {
	Kind TagKind
	Line int
	Err  error
}

var tagKinds = map[string]TagKind{
	"param":    TagParam,
	"query":    TagQuery,
	"response": TagResponse,
	"body":     TagBody,
	"path":     TagPath,
}

// ParseComment parses raw comment text into a [Comment].
//
// The first content line is the title; after a blank line, free-form text up
// to the first @tag line is the description. Tag bodies may continue onto
// subsequent lines; continuations extend the description for param/query tags
// and become a literal example override for response/body tags.
//
// It returns [ErrNoDoc] when the text holds no content at all, and an error
// when a response or body tag is malformed; both abort the enclosing route.
func ParseComment(text string) (*Comment, error) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = stripCommentMarkers(line)
	}

	c := &Comment{}
	i := 0
	// Title: the first non-blank line.
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	if i == len(lines) {
		return nil, ErrNoDoc
	}
	if !isTagLine(lines[i]) {
		c.Title = strings.TrimSpace(lines[i])
		i++
	}

	// Description: everything up to the first tag line.
	var desc []string
	for ; i < len(lines) && !isTagLine(lines[i]); i++ {
		desc = append(desc, strings.TrimRight(lines[i], " \t"))
	}
	c.Description = strings.TrimSpace(strings.Join(desc, "\n"))

	// Tags with their continuation lines.
	for i < len(lines) {
		line := lines[i]
		tagLine := i + 1
		i++
		if !isTagLine(line) {
			continue
		}
		name, rest := splitTagName(strings.TrimSpace(line)[1:])
		kind, known := tagKinds[name]

		var cont []string
		for ; i < len(lines) && !isTagLine(lines[i]); i++ {
			if s := strings.TrimSpace(lines[i]); s != "" {
				cont = append(cont, s)
			}
		}
		if !known {
			// Unknown tags and their continuations are ignored.
			continue
		}

		tag, err := parseTag(kind, rest, tagLine)
		if err != nil {
			if kind == TagResponse || kind == TagBody {
				return nil, errors.Wrapf(err, "line %d: malformed @%s tag", tagLine, name)
			}
			c.Dropped = append(c.Dropped, TagError{Kind: kind, Line: tagLine, Err: err})
			continue
		}
		if len(cont) > 0 {
			switch kind {
			case TagResponse, TagBody:
				tag.Literal = strings.Join(cont, "\n")
				tag.HasLiteral = true
			default:
				joined := strings.Join(cont, " ")
				if tag.Description == "" {
					tag.Description = joined
				} else {
					tag.Description += " " + joined
				}
			}
		}
		c.Tags = append(c.Tags, tag)
	}
	return c, nil
}

func parseTag(kind TagKind, rest string, line int) (Tag, error) {
	tag := Tag{Kind: kind, Line: line}
	rest = strings.TrimSpace(rest)

	// Bracketed slots: whichever bracket contains "/" is the content type,
	// the other is the data-type name.
	for strings.HasPrefix(rest, "{") {
		end := strings.Index(rest, "}")
		if end < 0 {
			return tag, errors.New("unterminated { bracket")
		}
		content := strings.TrimSpace(rest[1:end])
		rest = strings.TrimSpace(rest[end+1:])
		switch {
		case strings.Contains(content, "/"):
			tag.ContentType = content
		case tag.Type == "":
			tag.Type = content
		default:
			return tag, errors.Errorf("duplicate type bracket {%s}", content)
		}
	}

	// Name slot: parameter name, response code text, or router path.
	if kind != TagBody {
		if idx := strings.IndexAny(rest, " \t"); idx >= 0 {
			tag.Name = rest[:idx]
			rest = strings.TrimSpace(rest[idx+1:])
		} else {
			tag.Name = rest
			rest = ""
		}
	}
	tag.Description = rest
	return tag, nil
}

func isTagLine(line string) bool {
	s := strings.TrimSpace(line)
	if !strings.HasPrefix(s, "@") || len(s) < 2 {
		return false
	}
	c := s[1]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func splitTagName(s string) (name, rest string) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			continue
		}
		return strings.ToLower(s[:i]), s[i:]
	}
	return strings.ToLower(s), ""
}

// stripCommentMarkers removes comment delimiters while preserving the
// indentation that follows them.
func stripCommentMarkers(line string) string {
	s := line
	trimmed := strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(trimmed, "//"):
		s = strings.TrimPrefix(strings.TrimLeft(s, " \t"), "//")
	case strings.HasPrefix(trimmed, "/*"):
		s = strings.TrimPrefix(strings.TrimLeft(s, " \t"), "/*")
	case strings.HasPrefix(trimmed, "*") && !strings.HasPrefix(trimmed, "*/"):
		s = strings.TrimPrefix(strings.TrimLeft(s, " \t"), "*")
	}
	s = strings.TrimSuffix(strings.TrimRight(s, " \t"), "*/")
	return s
}
