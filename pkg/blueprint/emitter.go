package blueprint

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Emitter serializes the documentation model into API Blueprint text.
// It is bound to a single destination for the whole run and writes strictly
// sequentially; the first write error sticks and short-circuits the rest.
type Emitter struct {
	w   io.Writer
	err error
}

func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

// Err returns the first write error encountered, if any.
func (e *Emitter) Err() error {
	return e.err
}

func (e *Emitter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	if _, err := fmt.Fprintf(e.w, format, args...); err != nil {
		e.err = errors.Wrap(err, "failed to write blueprint")
	}
}

// WriteHeader emits the format line, the optional host line and the optional
// top-level title and description.
func (e *Emitter) WriteHeader(host, title, description string) {
	e.printf("FORMAT: 1A\n")
	if host != "" {
		e.printf("HOST: %s\n", host)
	}
	e.printf("\n")
	if title != "" {
		e.printf("# %s\n\n", title)
	}
	if description != "" {
		e.printf("%s\n\n", description)
	}
}

// WriteRouter emits one router's group heading and all of its routes,
// in discovery order.
func (e *Emitter) WriteRouter(r *Router) {
	e.printf("# Group %s\n", r.Title)
	if r.Description != "" {
		e.printf("%s\n", r.Description)
	}
	e.printf("\n")
	for _, g := range r.Routes {
		e.writeGroup(r, g)
	}
}

func (e *Emitter) writeGroup(r *Router, g *Group) {
	full := RewritePath(joinPaths(r.Path, g.Path))
	if names := queryNames(g); len(names) > 0 {
		full += "{?" + strings.Join(names, ",") + "}"
	}
	e.printf("## %s [%s]\n\n", g.Path, full)
	for _, b := range g.Methods {
		e.writeBlock(b)
	}
}

func (e *Emitter) writeBlock(b *Block) {
	e.printf("### %s [%s]\n", b.Title, b.Method)
	if b.Description != "" {
		e.printf("%s\n", b.Description)
	}
	e.printf("\n")

	if len(b.Params) > 0 {
		e.printf("+ Parameters\n")
		for _, p := range b.Params {
			e.printf("  + %s: %s (required, %s)", p.Name, encodedExample(p), p.Type)
			if p.Description != "" {
				e.printf(" - %s", p.Description)
			}
			e.printf("\n")
		}
		e.printf("\n")
	}

	if b.Body != nil {
		contentType := b.Body.ContentType
		if contentType == "" {
			contentType = "application/json"
		}
		if b.Body.Type != "" {
			e.printf("+ Request %s (%s)\n\n", b.Body.Type, contentType)
		} else {
			e.printf("+ Request (%s)\n\n", contentType)
		}
		e.writeIndented(renderBody(b.Body.Body))
	}

	for _, resp := range b.Responses {
		e.writeResponse(resp)
	}
}

func (e *Emitter) writeResponse(resp Response) {
	// The implicit text/plain marker is never printed.
	if resp.ContentType != "" {
		e.printf("+ Response %d (%s)\n\n", resp.Code, resp.ContentType)
	} else {
		e.printf("+ Response %d\n\n", resp.Code)
	}
	if resp.Body != nil {
		e.printf("    + Body\n\n")
		e.writeIndented(renderBody(resp.Body))
	}
	if resp.Schema != nil {
		e.printf("    + Schema\n\n")
		e.writeIndented(renderJSON(schemaValue(resp.Schema)))
	}
}

func (e *Emitter) writeIndented(text string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		if line == "" {
			e.printf("\n")
			continue
		}
		e.printf("        %s\n", line)
	}
	e.printf("\n")
}

// renderBody renders a literal string verbatim and anything else as
// canonical JSON.
func renderBody(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return renderJSON(v)
}

// renderJSON renders v with deterministic, lexically ordered object keys.
func renderJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// schemaValue converts a structural schema into its JSON Schema rendering.
func schemaValue(s *Schema) any {
	switch s.Kind {
	case KindObject:
		m := map[string]any{"type": "object"}
		if len(s.Properties) > 0 {
			props := make(map[string]any, len(s.Properties))
			for _, p := range s.Properties {
				props[p.Name] = schemaValue(p.Schema)
			}
			m["properties"] = props
		}
		if s.Additional != nil {
			m["additionalProperties"] = schemaValue(s.Additional)
		}
		return m
	case KindArray:
		m := map[string]any{"type": "array"}
		switch {
		case s.Items != nil:
			m["items"] = schemaValue(s.Items)
		case len(s.Tuple) > 0:
			items := make([]any, 0, len(s.Tuple))
			for _, item := range s.Tuple {
				items = append(items, schemaValue(item))
			}
			m["items"] = items
		}
		return m
	default:
		return map[string]any{"type": string(s.Kind)}
	}
}

var pathParamRe = regexp.MustCompile(`:([A-Za-z0-9_]+)`)

// RewritePath converts :segment placeholders to {segment} form.
// Applying it to already converted text is a no-op.
func RewritePath(path string) string {
	return pathParamRe.ReplaceAllString(path, "{$1}")
}

func joinPaths(routerPath, groupPath string) string {
	routerPath = strings.TrimSuffix(routerPath, "/")
	if routerPath == "" {
		return groupPath
	}
	if !strings.HasPrefix(groupPath, "/") {
		groupPath = "/" + groupPath
	}
	return routerPath + groupPath
}

// queryNames lists query parameter names across a group's methods in their
// block-local order, first occurrence wins.
func queryNames(g *Group) []string {
	var names []string
	seen := make(map[string]bool)
	for _, b := range g.Methods {
		for _, p := range b.Params {
			if !p.Query || seen[p.Name] {
				continue
			}
			seen[p.Name] = true
			names = append(names, p.Name)
		}
	}
	return names
}

// encodedExample percent-encodes a parameter's example for the context it
// appears in: query parameters escape reserved query characters, URL path
// parameters escape reserved path characters.
func encodedExample(p Param) string {
	text := formatValue(p.Example)
	if p.Query {
		return url.QueryEscape(text)
	}
	return url.PathEscape(text)
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(data)
	}
}
