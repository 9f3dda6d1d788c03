package filterlist_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/AdguardTeam/golibs/testutil"
	"github.com/lootkeeper/lootfilter/filterlist"
	"github.com/lootkeeper/lootfilter/filterutil"
	"github.com/lootkeeper/lootfilter/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testFilter is a filter with the table of contents, which mentions the
// insertion marker too.
const testFilter = `#===============================================================================================================
# Table of contents
# [[0100]] Custom rules
# [[0200]] Currency
#===============================================================================================================

#------------------------------------
#   [[0100]] Custom rules
#------------------------------------

#------------------------------------
#   [[0200]] Currency
#------------------------------------

#Show # %D5 $type->currency->stackedthree $tier->t3
#	StackSize >= 2
#	Class == "Stackable Currency"
#	BaseType == "Chaos Orb"
#	SetFontSize 40

Show # $type->currency $tier->t1
	Class == "Stackable Currency"
	BaseType == "Divine Orb" "Mirror of Kalandra"
	SetFontSize 45
	PlayAlertSound 6 300 # Divine
	PlayEffect Red
	MinimapIcon 0 Red Star

Show # $type->currency $tier->t3
	Class == "Stackable Currency"
	BaseType == "Chaos Orb" "Vaal Orb"
	SetFontSize 40

Hide # $type->currency $tier->t5
	Class == "Stackable Currency"
	BaseType == "Scroll of Wisdom"
	SetFontSize 18
	#PlayEffect Grey
`

// newTestDocument parses text and fails the test on error.
func newTestDocument(tb testing.TB, text string) (doc *filterlist.Document) {
	tb.Helper()

	doc, err := filterlist.Parse(text, nil)
	require.NoError(tb, err)

	return doc
}

// documentKeys returns the keys of doc in order.
func documentKeys(doc *filterlist.Document) (keys []filterlist.Key) {
	doc.Range(func(k filterlist.Key, _ filterlist.Block) (cont bool) {
		keys = append(keys, k)

		return true
	})

	return keys
}

func TestParse_roundTrip(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		in   string
		want string
	}{{
		name: "exact",
		in:   testFilter,
		want: testFilter,
	}, {
		name: "crlf",
		in:   strings.ReplaceAll(testFilter, "\n", "\r\n"),
		want: strings.ReplaceAll(testFilter, "\n", "\r\n"),
	}, {
		name: "extra_blank_lines",
		in:   strings.Replace(testFilter, "\n\nShow", "\n\n\n  \nShow", 1),
		want: testFilter,
	}, {
		name: "no_final_newline",
		in:   strings.TrimSuffix(testFilter, "\n"),
		want: testFilter,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			doc := newTestDocument(t, tc.in)
			assert.Equal(t, tc.want, doc.Serialize())
		})
	}
}

func TestParse_errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		in         string
		wantErrMsg string
	}{{
		name: "no_marker",
		in:   "# Some other file\n\nShow\n\tBaseType == \"Chaos Orb\"\n",
		wantErrMsg: `insertion marker "[[0100]]" not found: ` +
			`not a recognized filter format`,
	}, {
		name: "header",
		in:   "# [[0100]]\n\nBaseType Orb\nShow # $type->a $tier->b\n",
		wantErrMsg: `parsing filter: block at line 3: syntax error: ` +
			`non-comment line before the show or hide line, line 0: "BaseType Orb"`,
	}, {
		name: "duplicate",
		in:   "# [[0100]]\n\nShow # $type->a $tier->b\n\nHide # $type->a $tier->b\n",
		wantErrMsg: `parsing filter: inserting $type->a $tier->b: ` +
			`$type->a $tier->b: duplicate key`,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			doc, err := filterlist.Parse(tc.in, nil)
			testutil.AssertErrorMsg(t, tc.wantErrMsg, err)
			assert.Nil(t, doc)
		})
	}
}

func TestParse_precondition(t *testing.T) {
	t.Parallel()

	_, err := filterlist.Parse(testFilter, &filterlist.Config{
		InsertionMarker: "[[9999]]",
	})

	var perr *filterlist.PreconditionError
	require.ErrorAs(t, err, &perr)

	assert.Equal(t, "[[9999]]", perr.Marker)
}

func TestParse_anchor(t *testing.T) {
	t.Parallel()

	doc := newTestDocument(t, testFilter)

	// The table of contents is the first text block, the heading is the
	// second one.
	want := filterlist.Key{Type: filterlist.TypeTextBlock, Tier: "1"}
	assert.Equal(t, want, doc.AnchorKey())
	assert.False(t, doc.Imported())
	assert.Equal(t, 7, doc.Len())
}

func TestParse_untagged(t *testing.T) {
	t.Parallel()

	const text = "# [[0100]]\n\n" +
		"Show\n\tBaseType == \"Chaos Orb\"\n\n" +
		"Hide # $type->rest\n\tRarity Normal\n"

	doc := newTestDocument(t, text)

	r, err := doc.GetRule(filterlist.TypeUntagged, "0")
	require.NoError(t, err)

	assert.Equal(t, "Show # $type->untagged $tier->0", r.Lines()[0])

	r, err = doc.GetRule("rest", "1")
	require.NoError(t, err)

	assert.Equal(t, "Hide # $type->rest $tier->1", r.Lines()[0])

	// The synthesized tags survive saving and parsing again, and new untagged
	// rules don't collide with them.
	saved := doc.Serialize() + "\nShow\n\tBaseType == \"Vaal Orb\"\n"
	doc = newTestDocument(t, saved)

	_, err = doc.GetRule(filterlist.TypeUntagged, "0")
	require.NoError(t, err)

	r, err = doc.GetRule(filterlist.TypeUntagged, "1")
	require.NoError(t, err)

	names, ok := r.BaseTypes()
	require.True(t, ok)

	assert.Equal(t, []string{"Vaal Orb"}, names)
}

func TestParse_typeOnlyTag(t *testing.T) {
	t.Parallel()

	const text = "# [[0100]]\n\n" +
		"Show # $type->currency\n\tRarity Unique\n\n" +
		"Show # $type->currency $tier->0\n\tRarity Rare\n"

	doc := newTestDocument(t, text)

	r, err := doc.GetRule("currency", "0")
	require.NoError(t, err)

	assert.Equal(t, []string{"Show # $type->currency $tier->0", "\tRarity Rare"}, r.Lines())

	r, err = doc.GetRule("currency", "1")
	require.NoError(t, err)

	assert.Equal(t, []string{"Show # $type->currency $tier->1", "\tRarity Unique"}, r.Lines())
}

func TestDocument_GetRule(t *testing.T) {
	t.Parallel()

	doc := newTestDocument(t, testFilter)

	r, err := doc.GetRule("currency", "t1")
	require.NoError(t, err)

	assert.Equal(t, "currency", r.TypeTag())
	assert.Equal(t, "t1", r.TierTag())

	_, err = doc.GetRule("currency", "t9")
	assert.ErrorIs(t, err, filterlist.ErrUnknownKey)

	_, err = doc.GetRule(filterlist.TypeTextBlock, "0")
	assert.ErrorIs(t, err, filterlist.ErrNotRule)

	b, err := doc.Get(filterlist.Key{Type: filterlist.TypeTextBlock, Tier: "0"})
	require.NoError(t, err)
	require.IsType(t, (*filterlist.TextBlock)(nil), b)

	assert.Contains(t, b.Lines()[1], "Table of contents")
}

func TestDocument_InsertBlocks(t *testing.T) {
	t.Parallel()

	doc := newTestDocument(t, testFilter)
	anchor := doc.AnchorKey()

	keys, err := doc.InsertBlocks(
		"# Custom\n\n" +
			"Show # $type->custom $tier->a\n\tBaseType == \"Exalted Orb\"\n\n" +
			"Show\n\tBaseType == \"Orb of Fusing\"\n",
	)
	require.NoError(t, err)

	wantKeys := []filterlist.Key{
		{Type: filterlist.TypeTextBlock, Tier: "3"},
		{Type: "custom", Tier: "a"},
		{Type: filterlist.TypeUntagged, Tier: "0"},
	}
	assert.Equal(t, wantKeys, keys)

	all := documentKeys(doc)
	anchorIdx := indexOfKey(all, anchor)
	require.GreaterOrEqual(t, anchorIdx, len(wantKeys))

	assert.Equal(t, wantKeys, all[anchorIdx-len(wantKeys):anchorIdx])

	r, err := doc.GetRule(filterlist.TypeUntagged, "0")
	require.NoError(t, err)

	assert.True(t, r.Enabled())
	assert.Contains(t, doc.Serialize(), "Show # $type->untagged $tier->0\n")
}

func TestDocument_InsertBlocks_rollback(t *testing.T) {
	t.Parallel()

	doc := newTestDocument(t, testFilter)
	before := doc.Serialize()

	_, err := doc.InsertBlocks(
		"Show # $type->custom $tier->a\n\tBaseType == \"Exalted Orb\"\n\n" +
			"Show # $type->currency $tier->t1\n\tBaseType == \"Exalted Orb\"\n",
	)
	require.Error(t, err)

	assert.Equal(t, before, doc.Serialize())

	_, err = doc.GetRule("custom", "a")
	assert.ErrorIs(t, err, filterlist.ErrUnknownKey)

	var serr *rules.SyntaxError
	_, err = doc.InsertBlocks("Oops\nShow # $type->custom $tier->b\n")
	require.ErrorAs(t, err, &serr)

	assert.Equal(t, "Oops", serr.Line)
	assert.Equal(t, before, doc.Serialize())
}

// indexOfKey returns the index of k in keys or -1.
func indexOfKey(keys []filterlist.Key, k filterlist.Key) (idx int) {
	for i, key := range keys {
		if key == k {
			return i
		}
	}

	return -1
}

func TestDocument_RemoveRule(t *testing.T) {
	t.Parallel()

	doc := newTestDocument(t, testFilter)
	n := doc.Len()

	require.NoError(t, doc.RemoveRule("currency", "t5"))

	assert.Equal(t, n-1, doc.Len())
	assert.NotContains(t, doc.Serialize(), "Scroll of Wisdom")

	err := doc.RemoveRule("currency", "t5")
	assert.ErrorIs(t, err, filterlist.ErrUnknownKey)

	err = doc.RemoveRule(filterlist.TypeTextBlock, "0")
	assert.ErrorIs(t, err, filterlist.ErrNotRule)
	assert.Equal(t, n-1, doc.Len())
}

func TestDocument_Rules(t *testing.T) {
	t.Parallel()

	doc := newTestDocument(t, testFilter)

	var tiers []string
	doc.Rules(func(r *rules.Rule) (cont bool) {
		tiers = append(tiers, r.TierTag())

		return r.TierTag() != "t1"
	})

	assert.Equal(t, []string{"t3", "t1"}, tiers)
}

func TestDocument_mutations(t *testing.T) {
	t.Parallel()

	doc := newTestDocument(t, testFilter)

	r, err := doc.GetRule("currency", "t1")
	require.NoError(t, err)

	r.Hide()

	want := strings.Replace(testFilter, `Show # $type->currency $tier->t1
	Class == "Stackable Currency"
	BaseType == "Divine Orb" "Mirror of Kalandra"
	SetFontSize 45
	PlayAlertSound 6 300 # Divine
	PlayEffect Red
	MinimapIcon 0 Red Star`, `Hide # $type->currency $tier->t1
	Class == "Stackable Currency"
	BaseType == "Divine Orb" "Mirror of Kalandra"
	SetFontSize 45
#	PlayAlertSound 6 300 # Divine
#	PlayEffect Red
#	MinimapIcon 0 Red Star`, 1)
	assert.Equal(t, want, doc.Serialize())

	r.Show()
	assert.Equal(t, testFilter, doc.Serialize())
}

func TestDocument_hideSaveShow(t *testing.T) {
	t.Parallel()

	doc := newTestDocument(t, testFilter)

	r, err := doc.GetRule("currency", "t1")
	require.NoError(t, err)

	r.Hide()

	doc = newTestDocument(t, doc.Serialize())

	r, err = doc.GetRule("currency", "t1")
	require.NoError(t, err)

	r.Show()

	assert.Equal(t, testFilter, doc.Serialize())
}

func TestDocument_SaveToFile(t *testing.T) {
	t.Parallel()

	in := strings.ReplaceAll(testFilter, "\n", "\r\n")
	doc := newTestDocument(t, in)

	path := filepath.Join(t.TempDir(), "test.filter")
	require.NoError(t, doc.SaveToFile(path))

	got, err := filterutil.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, in, got)

	var sb strings.Builder
	n, err := doc.WriteTo(&sb)
	require.NoError(t, err)

	assert.Equal(t, int64(len(in)), n)
	assert.Equal(t, in, sb.String())
}

func BenchmarkParse(b *testing.B) {
	text := testFilter
	for i := range 200 {
		text += "\nShow # $type->bench $tier->" + strings.Repeat("x", i+1) +
			"\n\tBaseType == \"Chaos Orb\"\n\tSetFontSize 40\n"
	}

	b.ReportAllocs()
	for b.Loop() {
		_, err := filterlist.Parse(text, nil)
		require.NoError(b, err)
	}
}
