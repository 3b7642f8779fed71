// Package resources holds the in-memory content index built from the seed
// files, plus helpers that touch content outside the user model.
package resources

import (
	"math/rand"
	"regexp"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"
)

// DisplayBlock is a challenge block as the challenge map renders it.
type DisplayBlock struct {
	Name       string      `json:"name"`
	DashedName string      `json:"dashedName"`
	Challenges []Challenge `json:"challenges"`
	Count      int         `json:"count"`
}

// GuideRef names a field guide.
type GuideRef struct {
	Name       string `json:"name"`
	DashedName string `json:"dashedName"`
	ID         string `json:"id"`
}

// NonprofitRef names a nonprofit.
type NonprofitRef struct {
	Name string `json:"name"`
}

// Index answers content lookups. The raw seed data is read once by Load;
// every derived view is computed on first use and then reused.
// An Index is safe for concurrent use.
type Index struct {
	env         string
	blocks      []ChallengeBlock
	fieldGuides []FieldGuide
	nonprofits  []Nonprofit
	phrases     Phrases

	displayOnce sync.Once
	display     []DisplayBlock

	idsOnce sync.Once
	ids     [][]string

	namesOnce sync.Once
	names     [][]string

	allIDsOnce sync.Once
	allIDs     []string

	allOnce sync.Once
	all     []Challenge

	guideIDsOnce sync.Once
	guideIDs     []string

	guideRefsOnce sync.Once
	guideRefs     []GuideRef

	nonprofitOnce  sync.Once
	nonprofitNames []NonprofitRef
}

var whitespace = regexp.MustCompile(`\s`)

// Load reads all seed content through loader. Challenge blocks are ordered by
// their order field.
func Load(loader Loader, env string) (*Index, error) {
	blocks, err := loader.LoadChallengeBlocks()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].Order < blocks[j].Order })
	guides, err := loader.LoadFieldGuides()
	if err != nil {
		return nil, err
	}
	nonprofits, err := loader.LoadNonprofits()
	if err != nil {
		return nil, err
	}
	phrases, err := loader.LoadPhrases()
	if err != nil {
		return nil, err
	}
	log.Infof("Loaded %d challenge blocks, %d field guides, %d nonprofits", len(blocks), len(guides), len(nonprofits))
	return &Index{
		env:         env,
		blocks:      blocks,
		fieldGuides: guides,
		nonprofits:  nonprofits,
		phrases:     *phrases,
	}, nil
}

func (x *Index) ChallengeMapForDisplay() []DisplayBlock {
	x.displayOnce.Do(func() {
		x.display = make([]DisplayBlock, len(x.blocks))
		for i, b := range x.blocks {
			x.display[i] = DisplayBlock{
				Name:       b.Name,
				DashedName: whitespace.ReplaceAllString(b.Name, "-"),
				Challenges: b.Challenges,
				Count:      len(b.Challenges),
			}
		}
	})
	return x.display
}

// ChallengeMapWithIDs lists the challenge ids of each block.
func (x *Index) ChallengeMapWithIDs() [][]string {
	x.idsOnce.Do(func() {
		x.ids = make([][]string, len(x.blocks))
		for i, b := range x.blocks {
			ids := make([]string, len(b.Challenges))
			for j, c := range b.Challenges {
				ids[j] = c.ID
			}
			x.ids[i] = ids
		}
	})
	return x.ids
}

// ChallengeMapWithNames lists the challenge names of each block.
func (x *Index) ChallengeMapWithNames() [][]string {
	x.namesOnce.Do(func() {
		x.names = make([][]string, len(x.blocks))
		for i, b := range x.blocks {
			names := make([]string, len(b.Challenges))
			for j, c := range b.Challenges {
				names[j] = c.Name
			}
			x.names[i] = names
		}
	})
	return x.names
}

func (x *Index) AllChallengeIDs() []string {
	x.allIDsOnce.Do(func() {
		for _, ids := range x.ChallengeMapWithIDs() {
			x.allIDs = append(x.allIDs, ids...)
		}
	})
	return x.allIDs
}

func (x *Index) AllChallenges() []Challenge {
	x.allOnce.Do(func() {
		for _, b := range x.blocks {
			x.all = append(x.all, b.Challenges...)
		}
	})
	return x.all
}

func (x *Index) AllFieldGuideIDs() []string {
	x.guideIDsOnce.Do(func() {
		x.guideIDs = make([]string, len(x.fieldGuides))
		for i, g := range x.fieldGuides {
			x.guideIDs[i] = g.ID
		}
	})
	return x.guideIDs
}

func (x *Index) AllFieldGuideNamesAndIDs() []GuideRef {
	x.guideRefsOnce.Do(func() {
		x.guideRefs = make([]GuideRef, len(x.fieldGuides))
		for i, g := range x.fieldGuides {
			x.guideRefs[i] = GuideRef{Name: g.Name, DashedName: g.DashedName, ID: g.ID}
		}
	})
	return x.guideRefs
}

func (x *Index) AllNonprofitNames() []NonprofitRef {
	x.nonprofitOnce.Do(func() {
		x.nonprofitNames = make([]NonprofitRef, len(x.nonprofits))
		for i, n := range x.nonprofits {
			x.nonprofitNames[i] = NonprofitRef{Name: n.Name}
		}
	})
	return x.nonprofitNames
}

func pick(list []string) string {
	if len(list) == 0 {
		return ""
	}
	return list[rand.Intn(len(list))]
}

func (x *Index) RandomPhrase() string {
	return pick(x.phrases.Phrases)
}

func (x *Index) RandomVerb() string {
	return pick(x.phrases.Verbs)
}

func (x *Index) RandomCompliment() string {
	return pick(x.phrases.Compliments)
}

// Environment is the deployment environment the index was loaded for.
func (x *Index) Environment() string {
	return x.env
}
