package condition

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestParseSingleComparison(t *testing.T) {
	res, err := Parse("q1 == 1")
	require.NoError(t, err)

	assert.Equal(t, []string{"q1"}, res.IDs())
	assert.Equal(t, []Pair{{Equal, "1"}}, res.Pairs("q1"))
}

func TestParseCombined(t *testing.T) {
	res, err := Parse(`(q1 >= 3) AND (q2 != SKIPPED or q1<10) or q3 == "a b"`)
	require.NoError(t, err)

	assert.Equal(t, []string{"q1", "q2", "q3"}, res.IDs())
	want := map[string][]Pair{
		"q1": {{GreaterEqual, "3"}, {Less, "10"}},
		"q2": {{NotEqual, "SKIPPED"}},
		"q3": {{Equal, "a b"}},
	}
	got := map[string][]Pair{}
	for _, id := range res.IDs() {
		got[id] = res.Pairs(id)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("pairs mismatch (-want +got):\n%s", diff)
	}
}

func TestParseNegativeNumber(t *testing.T) {
	res, err := Parse("temp > -5.5")
	require.NoError(t, err)
	assert.Equal(t, []Pair{{Greater, "-5.5"}}, res.Pairs("temp"))
}

func TestParseErrors(t *testing.T) {
	for _, src := range []string{
		"",
		"q1",
		"q1 ==",
		"q1 = 1",
		"q1 ! 1",
		"(q1 == 1",
		"q1 == 1)",
		"q1 == 1 and",
		"q1 == 1 q2 == 2",
		"q1 == 'open",
		"and == 1",
	} {
		t.Run(fmt.Sprintf("%q", src), func(t *testing.T) {
			_, err := Parse(src)
			var syntaxErr *SyntaxError
			assert.ErrorAs(t, err, &syntaxErr)
		})
	}
}

func TestParserReuse(t *testing.T) {
	p := New()
	_, err := p.Parse("a == 1 or b == 2 or c == 3")
	require.NoError(t, err)

	res, err := p.Parse("z < 4")
	require.NoError(t, err)
	assert.Equal(t, []string{"z"}, res.IDs())
}

func TestSharedParserConcurrentUse(t *testing.T) {
	defer goleak.VerifyNone(t)

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("q%d", i)
			res, err := Parse(fmt.Sprintf("(%s == %d) or (%s == NOT_DISPLAYED)", id, i, id))
			if err != nil {
				errs <- err
				return
			}
			want := []Pair{{Equal, fmt.Sprint(i)}, {Equal, "NOT_DISPLAYED"}}
			if diff := cmp.Diff(want, res.Pairs(id)); diff != "" {
				errs <- fmt.Errorf("%s: %s", id, diff)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
