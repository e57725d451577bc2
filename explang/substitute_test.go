package explang

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNoSuchCapture = errors.New("no such capture")

type mapReader struct {
	reads int
}

func (r *mapReader) Member(target any, name string) (any, error) {
	r.reads++

	env, ok := target.(map[string]any)
	if !ok {
		return nil, errNoSuchCapture
	}

	v, ok := env[name]
	if !ok {
		return nil, errNoSuchCapture
	}

	return v, nil
}

func TestSubstituteCaptures(t *testing.T) {
	env := map[string]any{"idx": 1, "key": "color", "n": 3}

	path, err := Parse(`x.Items[$idx].Tags[$key].Take($n, "z")`, &ParseOptions{Captures: env})
	require.NoError(t, err)

	reader := &mapReader{}

	substituted, err := SubstituteCaptures(path, reader)
	require.NoError(t, err)

	assert.Equal(t, `x => x.Items[1].Tags["color"].Take(3, "z")`, substituted.String())
	assert.Equal(t, 3, reader.reads)
	assert.NoError(t, CheckConstantArguments(substituted))
	assert.Same(t, path.Root, substituted.Root)
}

func TestSubstituteCaptures_LeavesInputUntouched(t *testing.T) {
	env := map[string]any{"idx": 1}
	opts := &ParseOptions{Captures: env}

	original := MustParse("x.Items[$idx].Name", opts)
	pristine := MustParse("x.Items[$idx].Name", opts)

	_, err := SubstituteCaptures(original, &mapReader{})
	require.NoError(t, err)

	if diff := cmp.Diff(pristine, original); diff != "" {
		t.Errorf("input path was modified (-want +got):\n%s", diff)
	}
}

func TestSubstituteCaptures_ReflectsCurrentValues(t *testing.T) {
	env := map[string]any{"idx": 1}
	path := MustParse("x.Items[$idx]", &ParseOptions{Captures: env})

	first, err := SubstituteCaptures(path, &mapReader{})
	require.NoError(t, err)

	env["idx"] = 2

	second, err := SubstituteCaptures(path, &mapReader{})
	require.NoError(t, err)

	assert.Equal(t, "x => x.Items[1]", first.String())
	assert.Equal(t, "x => x.Items[2]", second.String())
}

func TestSubstituteCaptures_NoCaptures(t *testing.T) {
	path := MustParse("x.A.B[0]", nil)

	substituted, err := SubstituteCaptures(path, &mapReader{})
	require.NoError(t, err)

	assert.Same(t, path.Body, substituted.Body, "unchanged subtrees are shared")
}

func TestSubstituteCaptures_ReadFailure(t *testing.T) {
	path := NewPath(nil).Index(Captured(map[string]any{}, "missing")).Build()

	_, err := SubstituteCaptures(path, &mapReader{})
	require.ErrorIs(t, err, ErrCaptureRead)
	assert.ErrorIs(t, err, errNoSuchCapture)
}

func TestSubstituteCaptures_ReclassifiesBracketsFromCurrentValue(t *testing.T) {
	env := map[string]any{"sel": "color"}
	path := MustParse("x.Tags[$sel]", &ParseOptions{Captures: env})

	keyed, err := SubstituteCaptures(path, &mapReader{})
	require.NoError(t, err)

	call, ok := keyed.Body.(*Call)
	require.True(t, ok)
	assert.True(t, call.Indexer)

	env["sel"] = 1

	positional, err := SubstituteCaptures(path, &mapReader{})
	require.NoError(t, err)

	index, ok := positional.Body.(*Index)
	require.True(t, ok)
	assert.Equal(t, 1, index.Arg.(*Literal).Value)
	assert.Equal(t, "x => x.Tags[1]", positional.String())

	_, ok = positional.Chain()
	assert.True(t, ok)

}

func TestSubstituteCaptures_PositionalCaptureTurnsIntoKey(t *testing.T) {
	env := map[string]any{"sel": 0}
	path := MustParse("x.Tags[$sel]", &ParseOptions{Captures: env})
	require.IsType(t, &Index{}, path.Body)

	env["sel"] = "size"

	substituted, err := SubstituteCaptures(path, &mapReader{})
	require.NoError(t, err)
	assert.IsType(t, &Call{}, substituted.Body)
	assert.Equal(t, `x => x.Tags["size"]`, substituted.String())
}

func TestSubstituteCaptures_LiteralBracketsKeepTheirKind(t *testing.T) {
	path := NewPath(nil).Index(Const("k")).Key(2).Build()

	substituted, err := SubstituteCaptures(path, &mapReader{})
	require.NoError(t, err)
	assert.Same(t, path.Body, substituted.Body)
}

func TestSubstituteCaptures_NilPath(t *testing.T) {
	_, err := SubstituteCaptures(nil, &mapReader{})
	assert.ErrorIs(t, err, ErrBrokenChain)
}
