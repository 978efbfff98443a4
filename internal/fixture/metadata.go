package fixture

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// Directive block markers.
const (
	BlockOpen  = "/*"
	BlockClose = "*/"
	NameToken  = ":name:"
)

// Recognized directive prefixes.
const (
	DirectiveDescription = ":description:"
	DirectiveShouldFail  = ":should_fail_because:"
	DirectiveTags        = ":tags:"
)

// Metadata is the directive block content of a fixture.
type Metadata struct {
	Description      string
	Tags             []string
	ShouldFail       bool
	ShouldFailReason string
}

// directive applies the text after a prefix to the metadata.
type directive func(m *Metadata, value string)

// directives is the directive grammar. Lines inside the block that match
// none of these prefixes are ignored.
var directives = []struct {
	prefix string
	apply  directive
}{
	{DirectiveDescription, func(m *Metadata, v string) {
		m.Description = strings.TrimSpace(v)
	}},
	{DirectiveShouldFail, func(m *Metadata, v string) {
		m.ShouldFail = true
		m.ShouldFailReason = strings.TrimSpace(v)
	}},
	{DirectiveTags, func(m *Metadata, v string) {
		m.Tags = splitTags(v)
	}},
}

// ParseMetadata reads the directive block at the top of a fixture.
//
// The block opens on the first line containing both BlockOpen and NameToken
// and closes on the next line containing BlockClose. A fixture without a
// block yields zero Metadata with an empty, non-nil tag list. A line longer
// than maxLineBytes ends the scan: whatever was parsed up to it is returned
// without error.
func ParseMetadata(r io.Reader) (Metadata, error) {
	md := Metadata{Tags: []string{}}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	inBlock := false
	for sc.Scan() {
		line := sc.Text()
		if !inBlock {
			if strings.Contains(line, BlockOpen) && strings.Contains(line, NameToken) {
				inBlock = true
			}
			continue
		}
		if strings.Contains(line, BlockClose) {
			break
		}
		applyDirective(&md, line)
	}
	if err := sc.Err(); err != nil && !errors.Is(err, bufio.ErrTooLong) {
		return Metadata{}, err
	}
	return md, nil
}

// ParseMetadataString is ParseMetadata over an in-memory fixture.
func ParseMetadataString(src string) Metadata {
	// strings.Reader never fails.
	md, err := ParseMetadata(strings.NewReader(src))
	if err != nil {
		return Metadata{Tags: []string{}}
	}
	return md
}

func applyDirective(md *Metadata, line string) {
	trimmed := strings.TrimSpace(line)
	for _, d := range directives {
		if strings.HasPrefix(trimmed, d.prefix) {
			d.apply(md, strings.TrimPrefix(trimmed, d.prefix))
			return
		}
	}
}

// splitTags splits on single spaces and drops empty tokens.
func splitTags(v string) []string {
	parts := strings.Split(v, " ")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		tags = append(tags, p)
	}
	return tags
}
