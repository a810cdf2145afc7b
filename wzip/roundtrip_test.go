package wzip

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, input string, opts Options) string {
	t.Helper()
	text, err := CompressWithOptions(input, opts)
	require.NoError(t, err)
	back, err := DecompressWithOptions(text, opts)
	require.NoError(t, err)
	require.Equal(t, input, back)
	return text
}

func TestRoundTripCorpus(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "corpus", "*.txt"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, path := range files {
		t.Run(filepath.Base(path), func(t *testing.T) {
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			input := string(data)

			text := roundTrip(t, input, Options{})
			roundTrip(t, input, Options{NoElision: true})
			roundTrip(t, input, Options{Letters: UnicodeLetters})
			roundTrip(t, input, Options{Primer: PrimerFor(input)})

			// Repeating the text must cost far less the second time.
			twice := roundTrip(t, input+input, Options{})
			assert.Less(t, len(twice), 2*len(text))
		})
	}
}

func TestRoundTripRandom(t *testing.T) {
	rng := rand.New(rand.NewPCG(19, 91))
	pool := []rune("aaabbb c9.0_ \n\tåÖé-Z\\")

	for i := 0; i < 300; i++ {
		n := rng.IntN(300)
		in := make([]rune, n)
		for j := range in {
			in[j] = pool[rng.IntN(len(pool))]
		}
		input := string(in)

		roundTrip(t, input, Options{})
		roundTrip(t, input, Options{NoElision: true})
		roundTrip(t, input, Options{Letters: UnicodeLetters})
	}
}

func TestRoundTripCustomFormat(t *testing.T) {
	opts := Options{
		Alphabet:               MustAlphabet("0123456789abcdef"),
		LiteralDelimiter:       '|',
		BackReferenceDelimiter: '^',
	}
	input := "0xdeadbeef | 0xcafe ^ 0xdeadbeef | 0xcafe ^ done"
	text := roundTrip(t, input, opts)
	assert.Contains(t, text, "^")

	// The default format reads something else, if anything.
	if back, err := Decompress(text); err == nil {
		assert.NotEqual(t, input, back)
	}
}

func TestDeterminism(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "corpus", "nils.txt"))
	require.NoError(t, err)
	input := string(data)

	first := Compress(input)
	second := Compress(input)
	assert.Equal(t, first, second)

	a, err := Decompress(first)
	require.NoError(t, err)
	b, err := Decompress(first)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestElisionOnLetterRuns(t *testing.T) {
	inputs := []string{
		"abcdefghijklmnopabcabcabcabc",
		strings.Repeat("vildgåsflock", 6) + "vild" + "vildgås",
		"HolgerssonHolgHolgHolgerssonHol",
		strings.Repeat("x", 200) + strings.Repeat("xy", 20),
	}

	// A phrase of plain letters is never stripped, so both encodings agree.
	for _, input := range inputs {
		elided := slices.Collect(Encode(input))
		seq, err := EncodeWithOptions(input, Options{NoElision: true})
		require.NoError(t, err)
		plain := slices.Collect(seq)

		assert.Zero(t, countBackRefs(elided), "input %q", input)
		assert.Equal(t, plain, elided, "input %q", input)

		roundTrip(t, input, Options{})
		roundTrip(t, input, Options{NoElision: true})
	}
}

func TestElisionOnMixedContent(t *testing.T) {
	inputs := []string{
		"9hello9hello",
		"1vild1vildgås1vildgåsflock",
		"x1abc1abd1abe",
		"2023-05-01 kl 2023-05-02 kl",
	}

	// Token counts may go either way here; only the lossless replay and
	// the presence of back-references are fixed.
	for _, input := range inputs {
		tokens := slices.Collect(Encode(input))
		assert.Positive(t, countBackRefs(tokens), "input %q", input)

		text := roundTrip(t, input, Options{})
		assert.Contains(t, text, "_", "input %q", input)
		roundTrip(t, input, Options{NoElision: true})
		roundTrip(t, input, Options{Letters: UnicodeLetters})
	}
}

func countBackRefs(tokens []Token) int {
	n := 0
	for _, tok := range tokens {
		if tok.Kind == KindBackReference {
			n++
		}
	}
	return n
}

func TestBackReferencesInProse(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "corpus", "nils.txt"))
	require.NoError(t, err)

	backrefs := 0
	for tok := range Encode(string(data)) {
		if tok.Kind == KindBackReference {
			backrefs++
		}
	}
	assert.Positive(t, backrefs)
}
