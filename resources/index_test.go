package resources

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLoader struct {
	blocks     []ChallengeBlock
	guides     []FieldGuide
	nonprofits []Nonprofit
	phrases    *Phrases
	err        error
}

func (m *mockLoader) LoadChallengeBlocks() ([]ChallengeBlock, error) { return m.blocks, m.err }
func (m *mockLoader) LoadFieldGuides() ([]FieldGuide, error)         { return m.guides, nil }
func (m *mockLoader) LoadNonprofits() ([]Nonprofit, error)           { return m.nonprofits, nil }
func (m *mockLoader) LoadPhrases() (*Phrases, error)                 { return m.phrases, nil }

func testLoader() *mockLoader {
	return &mockLoader{
		blocks: []ChallengeBlock{
			{Name: "Basic Bonfires", Order: 2, Challenges: []Challenge{
				{ID: "b1", Name: "Reverse a String", ChallengeType: 5},
			}},
			{Name: "Get Started", Order: 0, Challenges: []Challenge{
				{ID: "g1", Name: "Learn how Free Code Camp Works"},
				{ID: "g2", Name: "Join Our Chat Room"},
			}},
			{Name: "Basic HTML", Order: 1, Challenges: []Challenge{
				{ID: "h1", Name: "Say Hello to HTML Elements"},
			}},
		},
		guides: []FieldGuide{
			{ID: "f1", Name: "What is Free Code Camp", DashedName: "what-is-free-code-camp"},
		},
		nonprofits: []Nonprofit{{ID: "n1", Name: "Good Cause"}},
		phrases:    &Phrases{Phrases: []string{"Aloha!"}, Verbs: []string{"nailed"}, Compliments: []string{"Awesome!"}},
	}
}

func TestLoadOrdersBlocks(t *testing.T) {
	x, err := Load(testLoader(), "development")
	require.NoError(t, err)

	want := [][]string{{"g1", "g2"}, {"h1"}, {"b1"}}
	if diff := cmp.Diff(want, x.ChallengeMapWithIDs()); diff != "" {
		t.Errorf("ChallengeMapWithIDs mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"g1", "g2", "h1", "b1"}, x.AllChallengeIDs())
	assert.Equal(t, "development", x.Environment())
}

func TestChallengeMapForDisplay(t *testing.T) {
	assert := assert.New(t)
	x, err := Load(testLoader(), "")
	require.NoError(t, err)
	d := x.ChallengeMapForDisplay()
	if assert.Len(d, 3) {
		assert.Equal("Get-Started", d[0].DashedName)
		assert.Equal(2, d[0].Count)
		assert.Equal("Basic-Bonfires", d[2].DashedName)
	}
	assert.Equal([]string{"Reverse a String"}, x.ChallengeMapWithNames()[2])
	assert.Len(x.AllChallenges(), 4)
}

func TestIndexMemoizes(t *testing.T) {
	x, err := Load(testLoader(), "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([][]DisplayBlock, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = x.ChallengeMapForDisplay()
		}(i)
	}
	wg.Wait()
	for _, r := range results {
		assert.True(t, &r[0] == &results[0][0], "every caller must share one computed view")
	}
}

func TestFieldGuidesAndNonprofits(t *testing.T) {
	assert := assert.New(t)
	x, err := Load(testLoader(), "")
	require.NoError(t, err)
	assert.Equal([]string{"f1"}, x.AllFieldGuideIDs())
	assert.Equal([]GuideRef{{Name: "What is Free Code Camp", DashedName: "what-is-free-code-camp", ID: "f1"}}, x.AllFieldGuideNamesAndIDs())
	assert.Equal([]NonprofitRef{{Name: "Good Cause"}}, x.AllNonprofitNames())
	assert.Equal("Aloha!", x.RandomPhrase())
	assert.Equal("nailed", x.RandomVerb())
	assert.Equal("Awesome!", x.RandomCompliment())
}

func TestRandomFromEmptyList(t *testing.T) {
	l := testLoader()
	l.phrases = &Phrases{}
	x, err := Load(l, "")
	require.NoError(t, err)
	assert.Equal(t, "", x.RandomPhrase())
}

func TestLoadError(t *testing.T) {
	l := testLoader()
	l.err = errors.New("boom")
	_, err := Load(l, "")
	assert.EqualError(t, err, "boom")
}

func writeFile(t *testing.T, path, content string) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestDirLoader(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "challenges", "01-html.json"),
		`{"name":"Basic HTML","order":1,"challenges":[{"_id":"h1","name":"Say Hello","challengeType":0}]}`)
	writeFile(t, filepath.Join(dir, "challenges", "00-start.json"),
		`{"name":"Get Started","order":0,"challenges":[{"_id":"g1","name":"Welcome","challengeType":2}]}`)
	writeFile(t, filepath.Join(dir, "field-guides.json"), `[{"_id":"f1","name":"Guide","dashedName":"guide"}]`)
	writeFile(t, filepath.Join(dir, "nonprofits.json"), `[{"_id":"n1","name":"Cause"}]`)
	writeFile(t, filepath.Join(dir, "resources.json"), `{"phrases":["Hi"],"verbs":["did"],"compliments":["Wow"]}`)

	x, err := Load(&DirLoader{Dir: dir}, "test")
	require.NoError(t, err)
	assert.Equal([]string{"g1", "h1"}, x.AllChallengeIDs())
	assert.Equal([]string{"guide"}, []string{x.AllFieldGuideNamesAndIDs()[0].DashedName})
	assert.Equal([]NonprofitRef{{Name: "Cause"}}, x.AllNonprofitNames())
}

func TestDirLoaderBadJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "challenges", "broken.json"), `{"name":`)
	_, err := (&DirLoader{Dir: dir}).LoadChallengeBlocks()
	assert.Error(t, err)
}
