package wzip

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Profile is the YAML form of the codec parameters two parties share.
//
//	name: swedish-prose
//	alphabet: "0123456789abcdef"
//	literal_delimiter: " "
//	backref_delimiter: "_"
//	letters: default        # default | unicode | explicit letters
//	elision: true
//	primer: ""
//
// The letters values "default" and "unicode" are reserved names, matched
// in any letter case; every other value is an explicit letter set. A set
// whose text collides with a reserved name goes in letter_set instead,
// which is always read literally. Setting both is an error.
type Profile struct {
	Name                   string `yaml:"name,omitempty"`
	Alphabet               string `yaml:"alphabet,omitempty"`
	LiteralDelimiter       string `yaml:"literal_delimiter,omitempty"`
	BackReferenceDelimiter string `yaml:"backref_delimiter,omitempty"`
	Letters                string `yaml:"letters,omitempty"`
	LetterSet              string `yaml:"letter_set,omitempty"`
	Elision                *bool  `yaml:"elision,omitempty"`
	Primer                 string `yaml:"primer,omitempty"`
}

// ParseProfile parses a YAML profile. Unknown keys are rejected.
func ParseProfile(data []byte) (*Profile, error) {
	return ReadProfile(bytes.NewReader(data))
}

// ReadProfile reads a YAML profile from r. An empty document is the default
// profile.
func ReadProfile(r io.Reader) (*Profile, error) {
	var p Profile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: profile: %v", ErrInvalidOptions, err)
	}
	return &p, nil
}

// Marshal returns the profile as YAML.
func (p *Profile) Marshal() ([]byte, error) {
	return yaml.Marshal(p)
}

// Options converts the profile to validated codec options.
func (p *Profile) Options() (Options, error) {
	var opts Options
	if p.Alphabet != "" {
		a, err := NewAlphabet(p.Alphabet)
		if err != nil {
			return Options{}, fmt.Errorf("profile %q: %w", p.Name, err)
		}
		opts.Alphabet = a
	}

	var err error
	if opts.LiteralDelimiter, err = singleRune("literal_delimiter", p.LiteralDelimiter); err != nil {
		return Options{}, err
	}
	if opts.BackReferenceDelimiter, err = singleRune("backref_delimiter", p.BackReferenceDelimiter); err != nil {
		return Options{}, err
	}

	switch {
	case p.Letters != "" && p.LetterSet != "":
		return Options{}, fmt.Errorf("%w: profile %q sets both letters and letter_set", ErrInvalidOptions, p.Name)
	case p.LetterSet != "":
		opts.Letters = NewLetterSet(p.LetterSet)
	default:
		opts.Letters = letterClassByName(p.Letters)
	}
	opts.NoElision = p.Elision != nil && !*p.Elision
	opts.Primer = p.Primer

	if err := opts.Validate(); err != nil {
		return Options{}, fmt.Errorf("profile %q: %w", p.Name, err)
	}
	return opts, nil
}

// singleRune returns 0 for an empty field so the default applies.
func singleRune(field, s string) (rune, error) {
	if s == "" {
		return 0, nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("%w: %s must be one symbol, got %q", ErrInvalidOptions, field, s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}
