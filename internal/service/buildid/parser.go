package buildid

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

const (
	fileMarker    = "File:"
	buildIDMarker = "Build ID:"
)

var (
	// ErrUnexpectedBinary is returned when readelf reports a file that was not requested.
	ErrUnexpectedBinary = errors.New("readelf reported an unexpected file")
	// ErrOrphanBuildID is returned for a build ID not preceded by the binary it belongs to.
	ErrOrphanBuildID = errors.New("build ID without a binary")
	// ErrDuplicateBuildID is returned when one binary yields more than one build ID.
	ErrDuplicateBuildID = errors.New("binary has more than one build ID")
	// ErrSharedBuildID is returned when two binaries report the same build ID.
	ErrSharedBuildID = errors.New("build ID reported by more than one binary")
	// ErrEmptyBuildID is returned for a build ID marker with no value.
	ErrEmptyBuildID = errors.New("empty build ID")
	// ErrMissingBuildID is returned when a requested binary produced no build ID.
	ErrMissingBuildID = errors.New("no build ID found")
)

// parserState is the position of notesParser within readelf output.
type parserState int

const (
	// awaitingBinaryName expects a "File:" line before any build ID.
	awaitingBinaryName parserState = iota
	// awaitingBuildID has a current binary and expects its "Build ID:" line.
	awaitingBuildID
)

// notesParser extracts one build ID per requested binary from "readelf -n" output.
type notesParser struct {
	state   parserState
	current string
	// requested holds the paths handed to readelf.
	requested map[string]struct{}
	// byBase indexes requested paths by file name, for tools that print shortened names.
	byBase map[string][]string
	ids    map[string]string
	// owners maps each build ID back to the binary that reported it.
	owners map[string]string
}

// newNotesParser prepares a parser for the given requested paths.
// readelf omits the "File:" line for a single input, so a lone binary is current from the start.
func newNotesParser(requested []string) *notesParser {
	p := &notesParser{
		state:     awaitingBinaryName,
		requested: make(map[string]struct{}, len(requested)),
		byBase:    make(map[string][]string, len(requested)),
		ids:       make(map[string]string, len(requested)),
		owners:    make(map[string]string, len(requested)),
	}

	for _, path := range requested {
		p.requested[path] = struct{}{}
		base := filepath.Base(path)
		p.byBase[base] = append(p.byBase[base], path)
	}

	if len(requested) == 1 {
		p.state = awaitingBuildID
		p.current = requested[0]
	}

	return p
}

// parseNotes maps every requested path to its build ID.
func parseNotes(output []byte, requested []string) (map[string]string, error) {
	p := newNotesParser(requested)

	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if err := p.feed(strings.TrimSpace(scanner.Text())); err != nil {
			return nil, err
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan readelf output: %w", err)
	}

	if err := p.verify(); err != nil {
		return nil, err
	}

	return p.ids, nil
}

// feed advances the state machine by one trimmed line.
func (p *notesParser) feed(line string) error {
	if name, ok := strings.CutPrefix(line, fileMarker); ok {
		path, err := p.lookup(strings.TrimSpace(name))
		if err != nil {
			return err
		}

		p.current = path
		p.state = awaitingBuildID

		return nil
	}

	id, ok := strings.CutPrefix(line, buildIDMarker)
	if !ok {
		return nil
	}

	id = strings.TrimSpace(id)

	switch {
	case p.state != awaitingBuildID:
		return fmt.Errorf("%w: %s", ErrOrphanBuildID, id)
	case id == "":
		return fmt.Errorf("%w: %s", ErrEmptyBuildID, p.current)
	}

	if existing, seen := p.ids[p.current]; seen {
		return fmt.Errorf("%w: %s has %s and %s", ErrDuplicateBuildID, p.current, existing, id)
	}

	if owner, taken := p.owners[id]; taken {
		return fmt.Errorf("%w: %s is shared by %s and %s", ErrSharedBuildID, id, owner, p.current)
	}

	p.ids[p.current] = id
	p.owners[id] = p.current
	p.state = awaitingBinaryName

	return nil
}

// lookup maps a name printed by readelf to a requested path.
func (p *notesParser) lookup(name string) (string, error) {
	if _, ok := p.requested[name]; ok {
		return name, nil
	}

	if candidates := p.byBase[filepath.Base(name)]; len(candidates) == 1 {
		return candidates[0], nil
	}

	return "", fmt.Errorf("%w: %s", ErrUnexpectedBinary, name)
}

// verify fails unless every requested path got a build ID.
func (p *notesParser) verify() error {
	var missing []string

	for path := range p.requested {
		if _, ok := p.ids[path]; !ok {
			missing = append(missing, path)
		}
	}

	if len(missing) == 0 {
		return nil
	}

	slices.Sort(missing)

	return fmt.Errorf("%w: %s", ErrMissingBuildID, strings.Join(missing, ", "))
}
