package permission

import (
	"strconv"
	"strings"
)

// Set is a total mapping from every Feature to a Level. The zero value grants
// nothing, which is also the default for users never granted anything.
type Set struct {
	levels [featureCount]Level
}

func (s Set) Get(f Feature) Level {
	if f >= featureCount {
		return LevelNone
	}
	return s.levels[f]
}

func (s *Set) Set(f Feature, l Level) {
	if f < featureCount {
		s.levels[f] = l
	}
}

// Accessible returns the subset of available the holder may at least read,
// preserving the order of available.
func (s Set) Accessible(available []Feature) []Feature {
	out := make([]Feature, 0, len(available))
	for _, f := range available {
		if s.Get(f).Allows(LevelRead) {
			out = append(out, f)
		}
	}
	return out
}

// Encode serializes the set as comma-joined "name:level" tokens in bit order,
// omitting NONE entries. The all-NONE set encodes as "".
func (s Set) Encode() string {
	var b strings.Builder
	for _, f := range Features {
		l := s.levels[f]
		if l == LevelNone {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(f.String())
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(int(l)))
	}
	return b.String()
}

// Decode parses an encoded set. Unknown feature names and malformed tokens are
// skipped rather than failing the whole decode, so sets written by newer
// builds still load.
func Decode(encoded string) Set {
	var s Set
	for _, tok := range strings.Split(encoded, ",") {
		name, lvl, ok := strings.Cut(tok, ":")
		if !ok {
			continue
		}
		f, ok := ParseFeature(name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(lvl))
		if err != nil || n < int(LevelNone) || n > int(LevelFull) {
			continue
		}
		s.levels[f] = Level(n)
	}
	return s
}
